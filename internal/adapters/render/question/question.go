// Package question renders a mandatory question for the terminal. The hook
// prints it on stderr when a prompt is blocked.
package question

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title       lipgloss.Style
	prompt      lipgloss.Style
	optionID    lipgloss.Style
	label       lipgloss.Style
	description lipgloss.Style
	context     lipgloss.Style
	footer      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		prompt:      lipgloss.NewStyle().Bold(true),
		optionID:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		description: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(5),
		context:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		footer:      lipgloss.NewStyle().Faint(true),
	}
}

var contextLabels = map[string]string{
	"folder":   "Folder",
	"detected": "Detected",
	"request":  "Request",
}

// Render formats q as a block of text: title, prompt, lettered options and
// any context lines.
func Render(q domain.MandatoryQuestion) string {
	s := newStyles()
	lines := []string{
		s.title.Render("Mandatory question"),
		s.prompt.Render(q.Prompt),
		"",
	}

	for _, option := range q.Options {
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.optionID.Render(fmt.Sprintf("%3s)", option.ID)),
			" ",
			s.label.Render(option.Label),
		))
		if option.Description != "" {
			lines = append(lines, s.description.Render(option.Description))
		}
	}

	if len(q.Context) > 0 {
		lines = append(lines, "")
		keys := make([]string, 0, len(q.Context))
		for key := range q.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			label, ok := contextLabels[key]
			if !ok {
				label = key
			}
			lines = append(lines, s.context.Render(fmt.Sprintf("%s: %s", label, q.Context[key])))
		}
	}

	lines = append(lines, "", s.footer.Render(footer(q)))
	return strings.Join(lines, "\n")
}

func footer(q domain.MandatoryQuestion) string {
	if q.Stage == domain.StageMemoryLoad && len(q.Options) > 0 && isNumbered(q.Options[0].ID) {
		return "Reply with a number, or D to skip."
	}
	return "Reply with one of the letters above."
}

func isNumbered(id string) bool {
	return id != "" && id[0] >= '0' && id[0] <= '9'
}
