package observability

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

var startTime = time.Now()

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[94m"
	colorRed    = "\033[91m"
)

// termMu serializes log lines and status lines on the terminal.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type termWriter struct {
	out io.Writer
}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return tw.out.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() io.Writer {
	return termWriter{out: os.Stderr}
}

const banner = `
  ___ _       ___      _
 | __(_)_ _  | _ ) ___| |_
 | _|| | ' \ | _ \/ _ \  _|
 |_| |_|_||_||___/\___/\__|

  matemática financiera paso a paso
`

// PrintBanner writes the startup banner, centered when stdout is a terminal.
func PrintBanner(name string) {
	width := termWidth()
	color := colorBlue
	if !isTerminal() {
		color = ""
	}
	lines := strings.Split(banner, "\n")
	if name != "" && name != "finbot" {
		lines = append(lines, "  ["+name+"]")
	}

	termMu.Lock()
	defer termMu.Unlock()
	for _, l := range lines {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		if color == "" {
			fmt.Println(l)
			continue
		}
		fmt.Printf("%s%s%s%s\n", strings.Repeat(" ", padding), color, l, colorReset)
	}
}

// StatusLine summarizes the process state on one line.
func StatusLine() string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	role, task, lastHB := GetStatus()
	inFlight, solved, failed := Counters()

	pulse := colorGreen + "HEALTHY" + colorReset
	switch delta := time.Since(lastHB); {
	case delta > 90*time.Second:
		pulse = colorRed + "OFFLINE" + colorReset
	case delta > 40*time.Second:
		pulse = colorYellow + "LAGGING" + colorReset
	}

	if task == "" {
		task = "-"
	}
	if len(task) > 30 {
		task = task[:27] + "..."
	}

	return fmt.Sprintf("[%s] %s %-9s in-flight=%d solved=%d failed=%d task=%q up=%v mem=%.1fMB",
		lastHB.Format("15:04:05"), pulse, role, inFlight, solved, failed, task,
		time.Since(startTime).Round(time.Second), float64(m.Alloc)/1024/1024)
}

// PrintStatus writes the status line through the terminal lock.
func PrintStatus() {
	line := StatusLine()
	termMu.Lock()
	defer termMu.Unlock()
	fmt.Fprintln(os.Stderr, line)
}
