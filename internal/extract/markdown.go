// Package extract turns markdown checklists into ordered task records.
package extract

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lun-4/obsidian-maid/internal/model"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var (
	// checkboxPattern matches the first line of an item, past any markers and
	// quote prefixes that share the line.
	checkboxPattern   = regexp.MustCompile(`^[ \t>]*(?:(?:[-*+]|\d{1,9}[.)])[ \t]+(?:>[ \t]*)*)+\[(.)\](?:[ \t]|$)`)
	markerLinePattern = regexp.MustCompile(`^[ \t>]*(?:[-*+]|\d{1,9}[.)])(?:[ \t]|$)`)
)

// Extractor walks the goldmark AST of a document. Every list item becomes a
// record positioned at the zero-based line of its marker. RawText holds the
// lines the item owns before its first child item, Tail the ones after it.
type Extractor struct {
	// Location is used for dates without a zone. Defaults to time.Local.
	Location *time.Location
}

func New() *Extractor {
	return &Extractor{Location: time.Local}
}

func Extract(src []byte) ([]model.Record, error) {
	return New().Extract(src)
}

func ExtractFile(path string) ([]model.Record, error) {
	return New().ExtractFile(path)
}

func (e *Extractor) ExtractFile(path string) ([]model.Record, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", path, err)
	}
	return e.Extract(src)
}

func (e *Extractor) ExtractReader(r io.Reader) ([]model.Record, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return e.Extract(src)
}

type span struct {
	start, end int
	parent     int
}

func (e *Extractor) Extract(src []byte) ([]model.Record, error) {
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	ix := newLineIndex(src)

	spans := make([]span, 0)
	// One entry per open list item; span is -1 for items without a record.
	type open struct{ span, start, end int }
	stack := make([]open, 0)
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}
		if !entering {
			stack = stack[:len(stack)-1]
			return ast.WalkContinue, nil
		}
		start, ok := ix.startLine(n)
		if !ok {
			stack = append(stack, open{span: -1, start: -1, end: -1})
			return ast.WalkContinue, nil
		}
		end := ix.endLine(n, start)
		if ix.nestedOnSameLine(n, start) {
			stack = append(stack, open{span: -1, start: start, end: end})
			return ast.WalkContinue, nil
		}
		parent := -1
		for i := len(stack) - 1; i >= 0; i-- {
			o := stack[i]
			if o.span >= 0 {
				parent = o.span
				break
			}
			// The innermost item on a shared line takes over the outer range.
			if o.start == start && o.end > end {
				end = o.end
			}
		}
		spans = append(spans, span{start: start, end: end, parent: parent})
		stack = append(stack, open{span: len(spans) - 1, start: start, end: end})
		return ast.WalkContinue, nil
	})

	owner := make([]int, ix.count())
	for i := range owner {
		owner[i] = -1
	}
	firstChild := make([]int, len(spans))
	for i, s := range spans {
		firstChild[i] = -1
		for l := s.start; l <= s.end; l++ {
			owner[l] = i
		}
		if s.parent >= 0 && firstChild[s.parent] < 0 {
			firstChild[s.parent] = s.start
		}
	}

	records := make([]model.Record, 0, len(spans))
	for i, s := range spans {
		first := ix.text(s.start)
		cols := leadingColumns(first)
		head := []string{strings.TrimLeft(first, " \t")}
		var tail []string
		for l := s.start + 1; l <= s.end; l++ {
			if owner[l] != i {
				continue
			}
			line := dedent(ix.text(l), cols)
			if firstChild[i] >= 0 && l > firstChild[i] {
				tail = append(tail, line)
			} else {
				head = append(head, line)
			}
		}
		rec, err := parseItem(s.start, head[0], loc)
		if err != nil {
			return nil, err
		}
		rec.RawText = joinTrimmed(head)
		rec.Tail = joinTrimmed(tail)
		if s.parent >= 0 {
			rec.Parent = model.Int(spans[s.parent].start)
		}
		records = append(records, rec)
	}
	return records, nil
}

type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{src: src, starts: starts}
}

func (ix lineIndex) count() int { return len(ix.starts) }

func (ix lineIndex) lineOf(offset int) int {
	return sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > offset }) - 1
}

func (ix lineIndex) text(line int) string {
	end := len(ix.src)
	if line+1 < len(ix.starts) {
		end = ix.starts[line+1]
	}
	return string(bytes.TrimRight(ix.src[ix.starts[line]:end], "\r\n"))
}

func (ix lineIndex) blank(line int) bool {
	return strings.Trim(ix.text(line), " \t>") == ""
}

// startLine is the first source line of block n. For a list item that is the
// line holding its marker.
func (ix lineIndex) startLine(n ast.Node) (int, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Kind() {
	case ast.KindListItem:
		content, ok := ix.startLine(n.FirstChild())
		if !ok {
			return 0, false
		}
		return ix.markerLine(content), true
	case ast.KindFencedCodeBlock:
		// Lines hold the code only; the opening fence sits right above.
		if lines := n.Lines(); lines.Len() > 0 {
			return ix.lineOf(lines.At(0).Start) - 1, true
		}
		if fc, ok := n.(*ast.FencedCodeBlock); ok && fc.Info != nil {
			return ix.lineOf(fc.Info.Segment.Start), true
		}
		return 0, false
	}
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return ix.lineOf(lines.At(0).Start), true
	}
	if c := n.FirstChild(); c != nil && c.Type() == ast.TypeBlock {
		return ix.startLine(c)
	}
	return 0, false
}

// markerLine walks back from the item's first content line to the line with
// its list marker. Items may open with a blank marker line.
func (ix lineIndex) markerLine(content int) int {
	for l := content; l >= 0; l-- {
		if markerLinePattern.MatchString(ix.text(l)) {
			return l
		}
	}
	return content
}

// endLine is the last non-blank line before the block that follows n.
func (ix lineIndex) endLine(n ast.Node, start int) int {
	limit := ix.count()
next:
	for c := n; c != nil && c.Kind() != ast.KindDocument; c = c.Parent() {
		for s := c.NextSibling(); s != nil; s = s.NextSibling() {
			if l, ok := ix.startLine(s); ok && l > start {
				limit = l
				break next
			}
		}
	}
	end := limit - 1
	for end > start && ix.blank(end) {
		end--
	}
	return end
}

// nestedOnSameLine reports whether the first thing inside item is another
// list item opening on the same line, as in "- - [ ] x" or "- > - [ ] x".
func (ix lineIndex) nestedOnSameLine(item ast.Node, line int) bool {
	for n := item.FirstChild(); n != nil; n = n.FirstChild() {
		switch n.Kind() {
		case ast.KindListItem:
			l, ok := ix.startLine(n)
			return ok && l == line
		case ast.KindList, ast.KindBlockquote:
		default:
			return false
		}
	}
	return false
}

func leadingColumns(line string) int {
	col := 0
	for _, r := range line {
		switch r {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return col
		}
	}
	return col
}

// dedent strips up to cols columns of leading whitespace.
func dedent(line string, cols int) string {
	col := 0
	for i, r := range line {
		if col >= cols {
			return line[i:]
		}
		switch r {
		case ' ':
			col++
		case '\t':
			next := col + 4 - col%4
			if next > cols {
				return strings.Repeat(" ", next-cols) + line[i+1:]
			}
			col = next
		default:
			return line[i:]
		}
	}
	return ""
}

func joinTrimmed(lines []string) string {
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func parseItem(line int, raw string, loc *time.Location) (model.Record, error) {
	rec := model.Record{Position: line, RawText: raw}
	if m := checkboxPattern.FindStringSubmatch(raw); m != nil {
		rec.State = model.ParseState(m[1])
	}
	meta, err := parseMetadata(line, raw, loc)
	if err != nil {
		return model.Record{}, err
	}
	rec.Priority = meta.priority
	rec.DueAt = meta.due
	rec.DoneAt = meta.done
	return rec, nil
}
