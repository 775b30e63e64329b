package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lun-4/obsidian-maid/internal/reorder"
	"github.com/lun-4/obsidian-maid/internal/scheduler"
	"github.com/lun-4/obsidian-maid/internal/views"
)

func (m Model) Init() tea.Cmd {
	if m.Scheduler != nil {
		return waitForDueCmd(m.Scheduler.C())
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}

		switch {
		case key.Matches(typed, m.Keys.Quit):
			m.Quitting = true
			return m, tea.Quit
		case key.Matches(typed, m.Keys.Palette):
			return m.openPalette(), nil
		case key.Matches(typed, m.Keys.Help):
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case key.Matches(typed, m.Keys.Sample):
			res := m.sample(nil)
			if res.Cursor != nil {
				m.moveTo(*res.Cursor)
			}
			m.Status = StatusBar{Text: res.Message}
			return m, nil
		case key.Matches(typed, m.Keys.Preview):
			m.PreviewVisible = !m.PreviewVisible
			m.refreshPreview()
			return m, nil
		case key.Matches(typed, m.Keys.Split):
			m.MedianSplit = !m.MedianSplit
			m.relayout()
			m.Status = StatusBar{Text: fmt.Sprintf("median split: %t", m.MedianSplit)}
			return m, nil
		case key.Matches(typed, m.Keys.Down):
			m.moveCursor(1)
			return m, nil
		case key.Matches(typed, m.Keys.Up):
			m.moveCursor(-1)
			return m, nil
		}
		if m.PreviewVisible {
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(typed)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.preview.Width = views.PaneWidth(typed.Width)
		if h := typed.Height - 8; h > 3 {
			m.preview.Height = h
		}
		m.refreshPreview()
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case DueMsg:
		m.applyDue(typed.Event)
		if m.Scheduler != nil {
			return m, waitForDueCmd(m.Scheduler.C())
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	selected := "-"
	if pos, ok := m.SelectedPosition(); ok {
		selected = fmt.Sprintf("L%d", pos+1)
	}

	right := ""
	switch {
	case m.HelpVisible:
		right = m.renderHelpIfVisible()
	case m.PreviewVisible:
		right = views.RenderPreviewPanel("reorder preview", m.preview.View())
	default:
		right = m.renderSelectedView()
	}

	status := m.Status.Text
	if p := views.RenderPalette(views.PaletteData{Active: m.Palette.Active, InputView: m.commandInput.View()}); p != "" {
		status = p
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("maid | %s | %d tasks | selected: %s", m.Document, m.Forest.Len(), selected),
		LeftPane:   m.renderBucketsView(),
		RightPane:  right,
		StatusLine: status,
		IsError:    m.Status.IsError && !m.Palette.Active,
		Footer:     m.helpModel.ShortHelpView(m.Keys.ShortHelp()),
		Width:      m.width,
	})
}

func (m Model) renderBucketsView() string {
	cursor := -1
	if pos, ok := m.SelectedPosition(); ok {
		cursor = pos
	}
	data := views.BucketPanelData{Document: m.Document, Cursor: cursor, MedianSplit: m.MedianSplit}
	index := make(map[reorder.Bucket]int, len(reorder.Buckets))
	for _, section := range m.layout.Sections {
		if m.ShowBucket != "" && section.Bucket != m.ShowBucket {
			continue
		}
		index[section.Bucket] = len(data.Buckets)
		data.Buckets = append(data.Buckets, views.BucketData{Name: string(section.Bucket)})
	}
	for _, r := range m.rows {
		t, _ := m.Forest.Task(r.position)
		i := index[r.bucket]
		data.Buckets[i].Tasks = append(data.Buckets[i].Tasks, views.TaskLine{
			Position: r.position,
			Text:     t.Title(),
			Depth:    r.depth,
			Priority: m.Forest.ResolvePriority(r.position),
			Eligible: scheduler.Eligible(m.Forest, r.position),
		})
	}
	return views.RenderBucketPanel(data)
}

func (m Model) renderSelectedView() string {
	pos, ok := m.SelectedPosition()
	if !ok {
		return views.RenderPreviewPanel("task", "")
	}
	t, _ := m.Forest.Task(pos)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("line: %d\n", pos+1))
	b.WriteString(fmt.Sprintf("state: %s\n", t.State))
	b.WriteString(fmt.Sprintf("bucket: %s\n", reorder.Classify(t)))
	if t.Priority != nil {
		b.WriteString(fmt.Sprintf("priority: %d\n", *t.Priority))
	} else {
		b.WriteString(fmt.Sprintf("priority: %d (resolved)\n", m.Forest.ResolvePriority(pos)))
	}
	if t.DueAt != nil {
		b.WriteString("due: " + t.DueAt.Format("2006-01-02 15:04") + "\n")
	}
	if t.DoneAt != nil {
		b.WriteString("done: " + t.DoneAt.Format("2006-01-02 15:04") + "\n")
	}
	b.WriteString(fmt.Sprintf("children: %d\n", len(t.Children)))
	if len(m.DueLog) > 0 {
		last := m.DueLog[len(m.DueLog)-1]
		b.WriteString(fmt.Sprintf("\nlast due: L%d @ %s", last.Position+1, last.DueAt.Format("15:04:05")))
	}
	return views.RenderPreviewPanel("task", strings.TrimSpace(b.String()))
}

func renderPreview(doc string, width int) string {
	return views.RenderMarkdown(doc, width)
}
