package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrInvalidState    = errors.New("model: invalid task state")
	ErrInvalidPosition = errors.New("model: invalid task position")
)

// TaskState is the single character between the checkbox brackets. The empty
// state marks a list item that has no checkbox at all.
type TaskState string

const (
	StateUnspecified TaskState = ""
	StateOpen        TaskState = " "
	StateDone        TaskState = "x"
	StateAbandoned   TaskState = "-"
)

func ParseState(marker string) TaskState {
	if marker == "X" {
		return StateDone
	}
	return TaskState(marker)
}

func (s TaskState) IsValid() bool {
	if s == StateUnspecified {
		return true
	}
	if utf8.RuneCountInString(string(s)) != 1 {
		return false
	}
	return !strings.ContainsAny(string(s), "\r\n")
}

func (s TaskState) IsOpen() bool { return s == StateOpen }

func (s TaskState) IsSpecified() bool { return s != StateUnspecified }

// IsTerminal reports whether the state is an explicit marker other than open:
// done, abandoned, or any custom marker such as deferred.
func (s TaskState) IsTerminal() bool {
	return s.IsSpecified() && !s.IsOpen()
}

func (s TaskState) String() string {
	switch s {
	case StateUnspecified:
		return "unspecified"
	case StateOpen:
		return "open"
	case StateDone:
		return "done"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("custom(%s)", string(s))
	}
}

// Record is one raw list item as handed over by an extractor, in document
// order. RawText is the item's source up to its first child item, Tail the
// source it owns after its children. Continuation lines are indented relative
// to the item's marker.
type Record struct {
	Position int
	RawText  string
	Tail     string
	State    TaskState
	Priority *int
	DoneAt   *time.Time
	DueAt    *time.Time
	Parent   *int
}

func (r Record) Validate() error {
	if r.Position < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPosition, r.Position)
	}
	if !r.State.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidState, r.State)
	}
	if r.Parent != nil && *r.Parent < 0 {
		return fmt.Errorf("%w: parent %d", ErrInvalidPosition, *r.Parent)
	}
	return nil
}

type Task struct {
	Position int
	RawText  string
	Tail     string
	State    TaskState
	Priority *int
	DoneAt   *time.Time
	DueAt    *time.Time
	Parent   *int
	Children []int
}

// Title is the first line of the task's source.
func (t Task) Title() string {
	if i := strings.IndexByte(t.RawText, '\n'); i >= 0 {
		return t.RawText[:i]
	}
	return t.RawText
}

func (t Task) IsRoot() bool { return t.Parent == nil }

func (t Task) HasPriority() bool { return t.Priority != nil }

func (t Task) clone() Task {
	out := t
	if t.Children != nil {
		out.Children = append([]int(nil), t.Children...)
	}
	return out
}

func taskFromRecord(r Record) *Task {
	return &Task{
		Position: r.Position,
		RawText:  r.RawText,
		Tail:     r.Tail,
		State:    r.State,
		Priority: r.Priority,
		DoneAt:   r.DoneAt,
		DueAt:    r.DueAt,
		Parent:   r.Parent,
	}
}

// Int returns a pointer to v, for building records with explicit priorities.
func Int(v int) *int { return &v }
