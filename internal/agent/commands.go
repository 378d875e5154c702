package agent

import (
	"fmt"
	"sort"
	"strings"
)

type CommandKind int

const (
	CommandNone CommandKind = iota
	CommandMenu
	CommandHistory
	CommandSolve
)

const (
	menuCommand    = "menu"
	historyCommand = "historial"
)

// commandPrefixes are the characters a command may start with.
const commandPrefixes = "!/#"

// Command is a parsed chat message.
type Command struct {
	Kind     CommandKind
	Name     string // as typed, including the prefix
	Provider string
	Problem  string
}

// Commands maps resolver command names to provider names.
type Commands struct {
	providers map[string]string
	names     []string
}

func NewCommands(providers map[string]string) *Commands {
	c := &Commands{providers: make(map[string]string, len(providers))}
	for name, provider := range providers {
		name = strings.ToLower(name)
		c.providers[name] = provider
		c.names = append(c.names, name)
	}
	// longest first so "resolver10" wins over "resolver1"
	sort.Slice(c.names, func(i, j int) bool {
		if len(c.names[i]) != len(c.names[j]) {
			return len(c.names[i]) > len(c.names[j])
		}
		return c.names[i] < c.names[j]
	})
	return c
}

// Parse classifies a message. Matching ignores case; the problem keeps
// the original text.
func (c *Commands) Parse(text string) Command {
	text = strings.TrimSpace(text)
	if text == "" || !strings.ContainsRune(commandPrefixes, rune(text[0])) {
		return Command{Kind: CommandNone}
	}
	body := text[1:]

	switch {
	case strings.EqualFold(body, menuCommand):
		return Command{Kind: CommandMenu, Name: text}
	case strings.EqualFold(body, historyCommand):
		return Command{Kind: CommandHistory, Name: text}
	}

	for _, name := range c.names {
		if len(body) < len(name) || !strings.EqualFold(body[:len(name)], name) {
			continue
		}
		return Command{
			Kind:     CommandSolve,
			Name:     text[:1+len(name)],
			Provider: c.providers[name],
			Problem:  strings.TrimSpace(body[len(name):]),
		}
	}
	return Command{Kind: CommandNone}
}

// Menu lists the resolver commands, the first one marked as recommended.
func (c *Commands) Menu() string {
	names := append([]string(nil), c.names...)
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("👋 ¡Hola! Soy tu asistente de Matemática Financiera.\n\n")
	b.WriteString("Puedes usar los siguientes comandos para resolver problemas:\n")
	for i, name := range names {
		if i == 0 {
			fmt.Fprintf(&b, "* *!%s* (Recomendado ✨)\n", name)
			continue
		}
		fmt.Fprintf(&b, "* *!%s*\n", name)
	}
	fmt.Fprintf(&b, "* *!%s* (tus últimos problemas)\n", historyCommand)
	b.WriteString("\nSimplemente escribe el comando seguido de tu problema.\n")
	if len(names) > 0 {
		fmt.Fprintf(&b, "*Ejemplo:* `!%s ¿Cuál es el interés simple de S/1000 al 5%% anual por 2 años?`", names[0])
	}
	return strings.TrimRight(b.String(), "\n")
}
