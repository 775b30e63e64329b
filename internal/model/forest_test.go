package model

import (
	"errors"
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{Position: 0, RawText: "- [ ] a", State: StateOpen},
		{Position: 1, RawText: "- [ ] b", State: StateOpen, Priority: Int(3)},
		{Position: 2, RawText: "- [ ] c", State: StateOpen, Parent: Int(1)},
		{Position: 3, RawText: "- [x] d", State: StateDone, Parent: Int(2)},
		{Position: 4, RawText: "- [ ] e", State: StateOpen, Parent: Int(1)},
		{Position: 6, RawText: "- f", State: StateUnspecified},
	}
}

func TestBuildForestLinksChildrenInSourceOrder(t *testing.T) {
	f, err := BuildForest(sampleRecords(), Scheduling{DefaultPriority: 1})
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	if f.Len() != 6 {
		t.Fatalf("unexpected task count: %d", f.Len())
	}
	if got := f.Children(1); !reflect.DeepEqual(got, []int{2, 4}) {
		t.Fatalf("children of 1 = %v, want [2 4]", got)
	}
	if got := f.Children(2); !reflect.DeepEqual(got, []int{3}) {
		t.Fatalf("children of 2 = %v, want [3]", got)
	}
	if got := f.Roots(); !reflect.DeepEqual(got, []int{0, 1, 6}) {
		t.Fatalf("roots = %v, want [0 1 6]", got)
	}
	if f.Depth(3) != 2 || f.Depth(0) != 0 || f.Depth(99) != -1 {
		t.Fatalf("unexpected depths: %d %d %d", f.Depth(3), f.Depth(0), f.Depth(99))
	}
}

func TestBuildForestPositionsAreUnique(t *testing.T) {
	records := sampleRecords()
	f, err := BuildForest(records, Scheduling{})
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	seen := make(map[int]bool)
	for _, pos := range f.Positions() {
		if seen[pos] {
			t.Fatalf("duplicate position %d", pos)
		}
		seen[pos] = true
	}
	for _, r := range records {
		if !seen[r.Position] {
			t.Fatalf("record %d missing from forest", r.Position)
		}
	}

	dup := append(records, Record{Position: 2, State: StateOpen})
	if _, err := BuildForest(dup, Scheduling{}); !errors.Is(err, ErrDuplicatePosition) {
		t.Fatalf("expected ErrDuplicatePosition, got %v", err)
	}
}

func TestBuildForestMissingParent(t *testing.T) {
	records := []Record{
		{Position: 0, State: StateOpen},
		{Position: 2, State: StateOpen, Parent: Int(1)},
	}
	f, err := BuildForest(records, Scheduling{})
	if f != nil {
		t.Fatal("expected no forest on error")
	}
	var mp *MissingParentError
	if !errors.As(err, &mp) {
		t.Fatalf("expected MissingParentError, got %v", err)
	}
	if mp.Position != 2 || mp.Parent != 1 {
		t.Fatalf("unexpected error detail: %+v", mp)
	}
	if !errors.Is(err, ErrMissingParent) {
		t.Fatalf("expected errors.Is ErrMissingParent, got %v", err)
	}
}

func TestBuildForestSelfParentIsMissing(t *testing.T) {
	_, err := BuildForest([]Record{{Position: 0, Parent: Int(0)}}, Scheduling{})
	if !errors.Is(err, ErrMissingParent) {
		t.Fatalf("expected ErrMissingParent, got %v", err)
	}
}

func TestTaskReturnsCopy(t *testing.T) {
	f, err := BuildForest(sampleRecords(), Scheduling{})
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	task, ok := f.Task(1)
	if !ok {
		t.Fatal("expected task 1")
	}
	task.Children[0] = 42
	if got := f.Children(1); got[0] != 2 {
		t.Fatalf("forest mutated through copy: %v", got)
	}
}

func TestWalkAndSubtreeVisitDepthFirst(t *testing.T) {
	f, err := BuildForest(sampleRecords(), Scheduling{})
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	var order []int
	var depths []int
	f.Walk(func(task Task, depth int) bool {
		order = append(order, task.Position)
		depths = append(depths, depth)
		return true
	})
	if !reflect.DeepEqual(order, []int{0, 1, 2, 3, 4, 6}) {
		t.Fatalf("walk order = %v", order)
	}
	if !reflect.DeepEqual(depths, []int{0, 0, 1, 2, 1, 0}) {
		t.Fatalf("walk depths = %v", depths)
	}
	if got := f.Subtree(1); !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Fatalf("subtree(1) = %v", got)
	}
	if got := f.Subtree(42); got != nil {
		t.Fatalf("subtree of unknown task = %v, want nil", got)
	}
}
