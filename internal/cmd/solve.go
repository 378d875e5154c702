package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rahul/finbot/internal/agent"
	"github.com/rahul/finbot/internal/catalog"
	"github.com/rahul/finbot/internal/engine"
	"github.com/rahul/finbot/internal/render"
	"github.com/spf13/cobra"
)

var (
	solvePlanPath string
	solveOutPath  string
	solveText     bool
	solveWidth    int
	solveChrome   string
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Execute a calculation plan offline",
	Long: `Execute a calculation plan read from a JSON file (or stdin with "-") and
print the worked solution. No language model is involved.

Examples:
  finbot solve --plan plan.json
  finbot solve --plan plan.json --out solucion.png
  cat plan.json | finbot solve --plan -`,
	RunE: runSolve,
}

func init() {
	rootCmd.AddCommand(solveCmd)

	solveCmd.Flags().StringVar(&solvePlanPath, "plan", "", "Plan JSON file, or - for stdin")
	solveCmd.Flags().StringVar(&solveOutPath, "out", "", "Write the rendered PNG to this file (needs Chrome)")
	solveCmd.Flags().BoolVar(&solveText, "text", false, "Print the text solution even when --out is set")
	solveCmd.Flags().IntVar(&solveWidth, "width", 800, "Card width in pixels")
	solveCmd.Flags().StringVar(&solveChrome, "chrome", "", "Chrome binary to render with (default: found on PATH)")
	_ = solveCmd.MarkFlagRequired("plan")
}

func readPlan(path string, stdin io.Reader) (*engine.Plan, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return agent.ParsePlan(string(data))
}

func runSolve(cmd *cobra.Command, args []string) error {
	plan, err := readPlan(solvePlanPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	exec, err := engine.NewExecutor(nil).Execute(plan)
	if err != nil {
		return err
	}

	cat := catalog.Default()
	if solveOutPath == "" || solveText {
		fmt.Fprintln(cmd.OutOrStdout(), render.Text(exec, cat))
	}
	if solveOutPath == "" {
		return nil
	}

	renderer := render.NewChromeRenderer(cat, solveWidth, 30*time.Second).WithExecPath(solveChrome)
	defer renderer.Close()

	png, err := renderer.Render(context.Background(), exec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(solveOutPath, png, 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", solveOutPath, len(png))
	return nil
}
