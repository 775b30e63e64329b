package update

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/lun-4/obsidian-maid/internal/config"
	"github.com/lun-4/obsidian-maid/internal/model"
	"github.com/lun-4/obsidian-maid/internal/reorder"
	"github.com/lun-4/obsidian-maid/internal/scheduler"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

// row is one visible task in layout order.
type row struct {
	position int
	depth    int
	bucket   reorder.Bucket
}

type Options struct {
	Document  string
	Forest    *model.Forest
	Settings  config.Settings
	Scheduler *scheduler.Engine
	Rand      scheduler.RandSource
	Now       func() time.Time
}

type Model struct {
	Document       string
	Forest         *model.Forest
	Settings       config.Settings
	MedianSplit    bool
	PreviewVisible bool
	HelpVisible    bool
	// ShowBucket limits the task pane to one bucket when set.
	ShowBucket reorder.Bucket
	Palette    CommandPaletteState
	Status     StatusBar
	Keys       KeyMap
	Scheduler  *scheduler.Engine
	DueLog     []scheduler.DueEvent
	Quitting   bool
	LastError  error

	layout       reorder.Layout
	rows         []row
	cursor       int
	rng          scheduler.RandSource
	now          func() time.Time
	width        int
	height       int
	preview      viewport.Model
	commandInput textinput.Model
	helpModel    help.Model
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type DueMsg struct {
	Event scheduler.DueEvent
}

const dueLogLimit = 20

func NewModel(opts Options) Model {
	f := opts.Forest
	if f == nil {
		f, _ = model.BuildForest(nil, opts.Settings.Scheduling())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	m := Model{
		Document:    opts.Document,
		Forest:      f,
		Settings:    opts.Settings,
		MedianSplit: opts.Settings.MedianSplit,
		Keys:        DefaultKeyMap(),
		Scheduler:   opts.Scheduler,
		rng:         opts.Rand,
		now:         now,
	}
	m.initBubbleComponents()
	m.relayout()
	m.scheduleDue()
	return m
}

func (m *Model) initBubbleComponents() {
	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "sample under 3 | reorder split | show done | priority 7"
	m.commandInput.CharLimit = 128
	m.commandInput.Prompt = ": "

	m.preview = viewport.New(58, 20)
	m.helpModel = help.New()
}

func (m Model) reorderOptions() reorder.Options {
	opts := m.Settings.ReorderOptions()
	opts.MedianSplit = m.MedianSplit
	return opts
}

// relayout recomputes buckets, visible rows and the preview, keeping the
// cursor on the same task when it is still visible.
func (m *Model) relayout() {
	selected, hadSelection := m.SelectedPosition()
	m.layout = reorder.Plan(m.Forest, m.reorderOptions())
	m.rows = make([]row, 0, len(m.rows))
	for _, section := range m.layout.Sections {
		if m.ShowBucket != "" && section.Bucket != m.ShowBucket {
			continue
		}
		for _, root := range section.Roots {
			base := m.Forest.Depth(root)
			for _, pos := range m.Forest.Subtree(root) {
				m.rows = append(m.rows, row{position: pos, depth: m.Forest.Depth(pos) - base, bucket: section.Bucket})
			}
		}
	}
	m.cursor = 0
	if hadSelection {
		m.moveTo(selected)
	}
	m.refreshPreview()
}

func (m *Model) refreshPreview() {
	if !m.PreviewVisible {
		return
	}
	doc, err := reorder.Reorder(m.Forest, m.reorderOptions())
	if err != nil {
		m.preview.SetContent(err.Error())
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return
	}
	m.preview.SetContent(renderPreview(doc, m.preview.Width))
	m.preview.GotoTop()
}

// SelectedPosition is the task under the cursor.
func (m Model) SelectedPosition() (int, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return 0, false
	}
	return m.rows[m.cursor].position, true
}

// moveTo puts the cursor on pos and reports whether pos is visible.
func (m *Model) moveTo(pos int) bool {
	for i, r := range m.rows {
		if r.position == pos {
			m.cursor = i
			return true
		}
	}
	return false
}

func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
}
