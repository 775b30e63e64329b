package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lun-4/obsidian-maid/internal/commands"
	"github.com/lun-4/obsidian-maid/internal/reorder"
	"github.com/lun-4/obsidian-maid/internal/scheduler"
)

func (m Model) openPalette() Model {
	m.Palette.Active = true
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Focus()
	m.Status = StatusBar{Text: "command palette active"}
	return m
}

func (m Model) closePalette() Model {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
	return m
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m = m.closePalette()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		m.commandInput, _ = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	cmd, err := commands.Parse(m.Palette.Input)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m.closePalette()
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Sample: func(a commands.SampleArgs) (commands.Result, error) {
			if a.Under != nil && !m.Forest.Has(*a.Under) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at line %d", *a.Under+1)}
			}
			return m.sample(a.Under), nil
		},
		Reorder: func(a commands.ReorderArgs) (commands.Result, error) {
			m.MedianSplit = a.MedianSplit
			m.PreviewVisible = true
			m.relayout()
			return commands.Result{Message: fmt.Sprintf("reorder preview: %d tasks", m.Forest.Len())}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			if a.Bucket == "all" {
				m.ShowBucket = ""
			} else {
				m.ShowBucket = reorder.Bucket(a.Bucket)
			}
			m.relayout()
			return commands.Result{Message: fmt.Sprintf("showing %s", a.Bucket)}, nil
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			if !m.Forest.Has(a.Position) {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("no task at line %d", a.Position+1)}
			}
			pos := a.Position
			return commands.Result{
				Message: fmt.Sprintf("L%d priority %d (eligible: %t)", pos+1, m.Forest.ResolvePriority(pos), scheduler.Eligible(m.Forest, pos)),
				Cursor:  &pos,
			}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		if res.Cursor != nil && !m.moveTo(*res.Cursor) {
			res.Message = strings.TrimSpace(res.Message + " (hidden by show filter)")
		}
		m.Status = StatusBar{Text: res.Message}
	}
	return m.closePalette()
}

// sample draws from the document, or from the subtree under root when set,
// and returns the outcome with the picked position as cursor.
func (m Model) sample(root *int) commands.Result {
	if m.rng == nil {
		return commands.Result{Message: "no random source configured"}
	}
	var (
		pick scheduler.Pick
		ok   bool
	)
	if root != nil {
		pick, ok = scheduler.SampleSubtree(m.Forest, m.rng, *root)
	} else {
		pick, ok = scheduler.Sample(m.Forest, m.rng)
	}
	if !ok {
		return commands.Result{Message: "no eligible task"}
	}
	pos := pick.Position
	t, _ := m.Forest.Task(pos)
	return commands.Result{
		Message: fmt.Sprintf("sampled L%d (weight %d of %d): %s", pos+1, pick.Weight, pick.Total, t.Title()),
		Cursor:  &pos,
	}
}
