// Package reorder rewrites the top-level task forest of a document into
// labeled priority buckets. Subtrees travel with their root untouched.
package reorder

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lun-4/obsidian-maid/internal/model"
)

var ErrInconsistent = errors.New("reorder: output does not cover every task")

// ConsistencyError means the serialized output lost or repeated a task, or
// dropped source lines of one (Lost). The output must not be written back.
type ConsistencyError struct {
	Missing    []int
	Duplicated []int
	Lost       []int
}

func (e *ConsistencyError) Error() string {
	if len(e.Lost) > 0 {
		return fmt.Sprintf("%s: missing=%v duplicated=%v lost=%v", ErrInconsistent, e.Missing, e.Duplicated, e.Lost)
	}
	return fmt.Sprintf("%s: missing=%v duplicated=%v", ErrInconsistent, e.Missing, e.Duplicated)
}

func (e *ConsistencyError) Unwrap() error { return ErrInconsistent }

type Headers map[Bucket]string

func DefaultHeaders() Headers {
	return Headers{
		BucketAnomalous:     "## anomalous",
		BucketUnprioritized: "## unprioritized",
		BucketPrioritized:   "## prioritized",
		BucketDone:          "## done",
	}
}

type Options struct {
	// MedianSplit partitions the prioritized bucket at the median resolved
	// priority before sorting each half.
	MedianSplit bool
	// Indent is added once per depth level in front of child tasks. It is
	// widened to spaces when it would not reach the parent's content column.
	Indent  string
	Headers Headers
}

func DefaultOptions() Options {
	return Options{Indent: "\t", Headers: DefaultHeaders()}
}

func (o Options) header(b Bucket) string {
	if h, ok := o.Headers[b]; ok && h != "" {
		return h
	}
	return DefaultHeaders()[b]
}

// Reorder serializes f bucket by bucket. Every task of f appears exactly once
// in the result or a *ConsistencyError is returned.
func Reorder(f *model.Forest, opts Options) (string, error) {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}
	layout := Plan(f, opts)

	var b strings.Builder
	touched := make(map[int]int, f.Len())
	wrote := false
	for _, section := range layout.Sections {
		if section.Bucket == BucketAnomalous && len(section.Roots) == 0 {
			continue
		}
		if wrote {
			b.WriteString("\n")
		}
		wrote = true
		b.WriteString(opts.header(section.Bucket))
		b.WriteString("\n")
		for _, root := range section.Roots {
			writeSubtree(&b, f, root, opts.Indent, touched)
		}
	}

	out := b.String()
	if err := verify(f, touched, out); err != nil {
		return "", err
	}
	return out, nil
}

func writeSubtree(b *strings.Builder, f *model.Forest, root int, indent string, touched map[int]int) {
	type frame struct {
		pos    int
		prefix string
		tail   bool
	}
	stack := []frame{{pos: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t, ok := f.Task(top.pos)
		if !ok {
			continue
		}
		if top.tail {
			writeLines(b, top.prefix, t.Tail)
			continue
		}
		touched[top.pos]++
		writeLines(b, top.prefix, t.RawText)
		if t.Tail != "" {
			stack = append(stack, frame{pos: top.pos, prefix: top.prefix, tail: true})
		}
		child := childPrefix(top.prefix, indent, t.Title())
		for i := len(t.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{pos: t.Children[i], prefix: child})
		}
	}
}

func writeLines(b *strings.Builder, prefix, text string) {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			b.WriteString(prefix)
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
}

var listMarker = regexp.MustCompile(`^(?:[-*+]|\d{1,9}[.)])([ \t]+|$)`)

// contentColumn is the column where the item's content starts, past every
// list marker sharing the line.
func contentColumn(line string) (int, bool) {
	col, found := 0, false
	for {
		m := listMarker.FindStringSubmatchIndex(line)
		if m == nil {
			return col, found
		}
		marker := columns(line[:m[2]], col)
		next := columns(line[m[2]:m[3]], marker)
		// More than four columns of padding means the content is indented code
		// and starts one column past the marker.
		if m[3] == len(line) || next-marker > 4 {
			return marker + 1, true
		}
		col, found = next, true
		line = line[m[3]:]
	}
}

// columns is the column reached after writing s starting at column start.
func columns(s string, start int) int {
	col := start
	for _, r := range s {
		if r == '\t' {
			col += 4 - col%4
		} else {
			col++
		}
	}
	return col
}

// childPrefix is the leading whitespace of a child under a parent written at
// prefix. A child nests only when its marker lands at or past the parent's
// content column and less than four columns beyond it.
func childPrefix(prefix, indent, parent string) string {
	content, ok := contentColumn(parent)
	if !ok {
		return prefix + indent
	}
	base := columns(prefix, 0)
	if w := columns(indent, base) - base; w >= content && w < content+4 {
		return prefix + indent
	}
	return prefix + strings.Repeat(" ", content)
}

func verify(f *model.Forest, touched map[int]int, out string) error {
	var missing, duplicated, lost []int
	for _, pos := range f.Positions() {
		switch n := touched[pos]; {
		case n == 0:
			missing = append(missing, pos)
		case n > 1:
			duplicated = append(duplicated, pos)
		}
	}

	emitted := make(map[string]int)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			emitted[line]++
		}
	}
	for _, pos := range f.Positions() {
		t, _ := f.Task(pos)
		for _, line := range strings.Split(t.RawText+"\n"+t.Tail, "\n") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			if emitted[line] == 0 {
				lost = append(lost, pos)
				break
			}
			emitted[line]--
		}
	}

	if len(missing) > 0 || len(duplicated) > 0 || len(lost) > 0 {
		return &ConsistencyError{Missing: missing, Duplicated: duplicated, Lost: lost}
	}
	return nil
}
