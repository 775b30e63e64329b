package update

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lun-4/obsidian-maid/internal/scheduler"
)

// scheduleDue queues every future due date of the document.
func (m *Model) scheduleDue() {
	if m.Scheduler == nil {
		return
	}
	if err := m.Scheduler.Replace(scheduler.DueEvents(m.Forest, m.now())); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	}
}

func (m *Model) applyDue(ev scheduler.DueEvent) {
	m.DueLog = append(m.DueLog, ev)
	if len(m.DueLog) > dueLogLimit {
		m.DueLog = m.DueLog[len(m.DueLog)-dueLogLimit:]
	}
	m.Status = StatusBar{Text: fmt.Sprintf("due now: L%d %s", ev.Position+1, ev.Text)}
}

func waitForDueCmd(ch <-chan scheduler.DueEvent) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return DueMsg{Event: ev}
	}
}
