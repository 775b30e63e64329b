package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/lun-4/obsidian-maid/internal/views"
)

type KeyMap struct {
	Sample  key.Binding
	Preview key.Binding
	Split   key.Binding
	Down    key.Binding
	Up      key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Sample:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sample a task")),
		Preview: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "toggle reorder preview")),
		Split:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "toggle median split")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move cursor")),
		Up:      key.NewBinding(key.WithKeys("k", "up")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command palette")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sample, k.Preview, k.Split, k.Down, k.Palette, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Sample, k.Preview, k.Split},
		{k.Down, k.Palette, k.Help, k.Quit},
	}
}

var paletteHelp = []string{
	"sample [under LINE]  draw from the whole document or one subtree",
	"reorder [split]      preview the reordered document",
	"show BUCKET|all      limit the task pane to one bucket",
	"priority LINE        resolved priority of a task",
}

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	lines := make([]string, 0, len(paletteHelp))
	for _, l := range paletteHelp {
		lines = append(lines, fmt.Sprintf("- %s", l))
	}
	full := m.helpModel
	full.ShowAll = true
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: lines,
		HelpView: full.View(m.Keys),
	})
}
