// Package catalog describes the formula vocabulary to humans and to the
// plan generator: parameter names, a display template and a short
// description for every formula identifier.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed formulas.yaml
var formulasYAML []byte

const missingTemplate = "Fórmula no encontrada"

type Formula struct {
	Name        string   `yaml:"name"`
	Params      []string `yaml:"params"`
	Template    string   `yaml:"template"`
	Description string   `yaml:"description"`
}

type Family struct {
	Key      string    `yaml:"key"`
	Title    string    `yaml:"title"`
	Formulas []Formula `yaml:"formulas"`
}

type Catalog struct {
	Families []Family `yaml:"families"`

	byName map[string]Formula
}

// Parse decodes a catalogue document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode formula catalogue: %w", err)
	}
	c.byName = make(map[string]Formula)
	for _, fam := range c.Families {
		for _, f := range fam.Formulas {
			if _, dup := c.byName[f.Name]; dup {
				return nil, fmt.Errorf("formula %s listed twice", f.Name)
			}
			c.byName[f.Name] = f
		}
	}
	return &c, nil
}

var builtin *Catalog

func init() {
	c, err := Parse(formulasYAML)
	if err != nil {
		panic(err)
	}
	builtin = c
}

// Default returns the embedded catalogue.
func Default() *Catalog {
	return builtin
}

// Lookup returns the catalogue entry for a formula identifier.
func (c *Catalog) Lookup(name string) (Formula, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Template returns the display template for a formula identifier.
func (c *Catalog) Template(name string) string {
	if f, ok := c.Lookup(name); ok && f.Template != "" {
		return f.Template
	}
	return missingTemplate
}

// Names lists every identifier in catalogue order.
func (c *Catalog) Names() []string {
	var names []string
	for _, fam := range c.Families {
		for _, f := range fam.Formulas {
			names = append(names, f.Name)
		}
	}
	return names
}

// PromptList renders the catalogue as the formula list the plan generator
// is allowed to choose from.
func (c *Catalog) PromptList() string {
	var b strings.Builder
	for _, fam := range c.Families {
		fmt.Fprintf(&b, "### %s\n", fam.Title)
		for _, f := range fam.Formulas {
			fmt.Fprintf(&b, "- %s(%s): %s  [%s]\n", f.Name, strings.Join(f.Params, ", "), f.Description, f.Template)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
