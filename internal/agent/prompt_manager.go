package agent

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rahul/finbot/internal/catalog"
)

//go:embed prompts/planner.md
var defaultPlannerPrompt string

type PromptManager struct {
	Directory string
	Catalog   *catalog.Catalog
}

func NewPromptManager(dir string, cat *catalog.Catalog) *PromptManager {
	if cat == nil {
		cat = catalog.Default()
	}
	return &PromptManager{Directory: dir, Catalog: cat}
}

// GetPlannerPrompt builds the plan generator's system prompt: planner.md
// from the prompts directory (or the built-in default), any extra notes
// files, then the list of formulas the generator may use.
func (pm *PromptManager) GetPlannerPrompt() (string, error) {
	base := defaultPlannerPrompt
	var extras []string

	if pm.Directory != "" {
		data, err := os.ReadFile(filepath.Join(pm.Directory, "planner.md"))
		switch {
		case err == nil:
			base = string(data)
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("failed to read planner prompt: %v", err)
		}
		extras = pm.readExtras()
	}

	parts := []string{strings.TrimSpace(base)}
	parts = append(parts, extras...)
	parts = append(parts, "## Fórmulas disponibles\n\n"+pm.Catalog.PromptList())
	return strings.Join(parts, "\n\n---\n\n"), nil
}

// readExtras returns the other .md files of the prompts directory,
// glossary.md first and the rest by name.
func (pm *PromptManager) readExtras() []string {
	files, err := os.ReadDir(pm.Directory)
	if err != nil {
		return nil
	}

	order := map[string]int{
		"glossary.md": 1,
		"examples.md": 2,
	}
	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".md") || f.Name() == "planner.md" {
			continue
		}
		path := filepath.Join(pm.Directory, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
			continue
		}
		contents = append(contents, strings.TrimSpace(string(data)))
	}
	return contents
}
