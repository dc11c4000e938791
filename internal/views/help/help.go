// Package help renders the markdown help overlay.
package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
)

// Markdown builds the help document from the active bindings and the
// algorithms the server offers.
func Markdown(bindings []key.Binding, algorithms []string) string {
	var b strings.Builder
	b.WriteString("# SortVisualiser\n\n")
	b.WriteString("Steps stream from the server and play back one per frame. ")
	b.WriteString("Pausing stops both the local playback and the server.\n\n")

	b.WriteString("## Keys\n\n")
	b.WriteString("| Key | Action |\n|---|---|\n")
	for _, kb := range bindings {
		h := kb.Help()
		if h.Key == "" {
			continue
		}
		fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
	}

	if len(algorithms) > 0 {
		b.WriteString("\n## Algorithms\n\n")
		for _, a := range algorithms {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}

	b.WriteString("\n## Input\n\n")
	b.WriteString("Enter 1 to 20 integers separated by commas, e.g. `5, 3, 8, 1`.\n")
	return b.String()
}

// Render formats the help document for a terminal of the given width. If
// glamour cannot build a renderer the raw markdown is returned.
func Render(width int, bindings []key.Binding, algorithms []string) string {
	md := Markdown(bindings, algorithms)
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
