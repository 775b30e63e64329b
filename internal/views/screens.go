package views

import (
	"fmt"
	"strings"
)

type TaskLine struct {
	Position int
	Text     string
	Depth    int
	Priority int
	Eligible bool
}

type BucketData struct {
	Name  string
	Tasks []TaskLine
}

type BucketPanelData struct {
	Document    string
	Buckets     []BucketData
	Cursor      int
	MedianSplit bool
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

type PaletteData struct {
	Active    bool
	InputView string
}

// RenderBucketPanel lists every bucket with its tasks in layout order. Cursor
// is the task position to highlight, or -1.
func RenderBucketPanel(data BucketPanelData) string {
	var b strings.Builder
	split := "off"
	if data.MedianSplit {
		split = "on"
	}
	b.WriteString(fmt.Sprintf("%s | median split: %s\n", data.Document, split))
	for _, bucket := range data.Buckets {
		b.WriteString("\n" + titleStyle.Render(bucket.Name) + fmt.Sprintf(" (%d)\n", len(bucket.Tasks)))
		if len(bucket.Tasks) == 0 {
			b.WriteString(mutedStyle.Render("  (empty)") + "\n")
			continue
		}
		for _, t := range bucket.Tasks {
			marker := "  "
			if t.Position == data.Cursor {
				marker = "> "
			}
			weight := "-"
			if t.Eligible {
				weight = fmt.Sprintf("%d", t.Priority)
			}
			line := fmt.Sprintf("%s%sL%-4d w=%-3s %s", marker, strings.Repeat("  ", t.Depth), t.Position+1, weight, t.Text)
			if t.Position == data.Cursor {
				line = cursorStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

func RenderPreviewPanel(title, body string) string {
	if strings.TrimSpace(body) == "" {
		body = mutedStyle.Render("(nothing to preview)")
	}
	return titleStyle.Render(title) + "\n" + body
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("help") + "\n")
	for _, line := range data.Bindings {
		b.WriteString(line + "\n")
	}
	if data.HelpView != "" {
		b.WriteString("\n" + data.HelpView)
	}
	return strings.TrimSpace(b.String())
}

func RenderPalette(data PaletteData) string {
	if !data.Active {
		return ""
	}
	return "command: " + data.InputView
}
