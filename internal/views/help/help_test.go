package help

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
)

func TestMarkdownListsBindingsAndAlgorithms(t *testing.T) {
	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start")),
		key.NewBinding(key.WithKeys("x")),
	}
	md := Markdown(bindings, []string{"bubbleSort", "heapSort"})

	assert.Contains(t, md, "| `s` | start |")
	assert.NotContains(t, md, "`x`")
	assert.Contains(t, md, "- heapSort")
}

func TestMarkdownWithoutAlgorithms(t *testing.T) {
	assert.NotContains(t, Markdown(nil, nil), "## Algorithms")
}

func TestRender(t *testing.T) {
	out := Render(60, nil, []string{"radixSort"})
	assert.Contains(t, out, "radixSort")
	assert.Contains(t, out, "SortVisualiser")
}
