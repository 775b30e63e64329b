package model

import (
	"errors"
	"fmt"
)

var (
	ErrMissingParent     = errors.New("model: missing parent task")
	ErrDuplicatePosition = errors.New("model: duplicate task position")
)

// MissingParentError reports a record whose parent has not been seen yet.
// Parents always precede their children in document order, so this means the
// input is corrupt or out of order.
type MissingParentError struct {
	Position int
	Parent   int
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("%s: task %d references parent %d", ErrMissingParent, e.Position, e.Parent)
}

func (e *MissingParentError) Unwrap() error { return ErrMissingParent }

type Scheduling struct {
	DefaultPriority     int
	PriorityInheritance bool
}

// Forest owns every task of one document. Parent and child links are plain
// positions into the same arena.
type Forest struct {
	tasks map[int]*Task
	order []int
	cfg   Scheduling
}

func BuildForest(records []Record, cfg Scheduling) (*Forest, error) {
	f := &Forest{
		tasks: make(map[int]*Task, len(records)),
		order: make([]int, 0, len(records)),
		cfg:   cfg,
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, exists := f.tasks[r.Position]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicatePosition, r.Position)
		}
		if r.Parent != nil {
			parent, ok := f.tasks[*r.Parent]
			if !ok {
				return nil, &MissingParentError{Position: r.Position, Parent: *r.Parent}
			}
			parent.Children = append(parent.Children, r.Position)
		}
		f.tasks[r.Position] = taskFromRecord(r)
		f.order = append(f.order, r.Position)
	}
	return f, nil
}

func (f *Forest) Config() Scheduling { return f.cfg }

func (f *Forest) Len() int { return len(f.order) }

func (f *Forest) Has(pos int) bool {
	_, ok := f.tasks[pos]
	return ok
}

// Task returns a copy of the task at pos.
func (f *Forest) Task(pos int) (Task, bool) {
	t, ok := f.tasks[pos]
	if !ok {
		return Task{}, false
	}
	return t.clone(), true
}

// Positions lists every task in document order.
func (f *Forest) Positions() []int {
	return append([]int(nil), f.order...)
}

// Roots lists top-level tasks in document order.
func (f *Forest) Roots() []int {
	out := make([]int, 0)
	for _, pos := range f.order {
		if f.tasks[pos].Parent == nil {
			out = append(out, pos)
		}
	}
	return out
}

func (f *Forest) Children(pos int) []int {
	t, ok := f.tasks[pos]
	if !ok {
		return nil
	}
	return append([]int(nil), t.Children...)
}

// Depth is 0 for a root task and -1 for an unknown position.
func (f *Forest) Depth(pos int) int {
	t, ok := f.tasks[pos]
	if !ok {
		return -1
	}
	depth := 0
	for steps := 0; t.Parent != nil && steps < len(f.order); steps++ {
		parent, ok := f.tasks[*t.Parent]
		if !ok {
			break
		}
		t = parent
		depth++
	}
	return depth
}

// Walk visits every task depth-first from the roots, children in source
// order. Returning false from fn stops the walk.
func (f *Forest) Walk(fn func(t Task, depth int) bool) {
	type frame struct {
		pos   int
		depth int
	}
	roots := f.Roots()
	stack := make([]frame, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, frame{pos: roots[i]})
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t := f.tasks[top.pos]
		if !fn(t.clone(), top.depth) {
			return
		}
		for i := len(t.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{pos: t.Children[i], depth: top.depth + 1})
		}
	}
}

// Subtree lists pos and all of its descendants in document order.
func (f *Forest) Subtree(pos int) []int {
	if !f.Has(pos) {
		return nil
	}
	out := make([]int, 0)
	stack := []int{pos}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, top)
		children := f.tasks[top].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}
