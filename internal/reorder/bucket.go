package reorder

import (
	"cmp"
	"slices"

	"github.com/lun-4/obsidian-maid/internal/model"
)

type Bucket string

const (
	BucketAnomalous     Bucket = "anomalous"
	BucketUnprioritized Bucket = "unprioritized"
	BucketPrioritized   Bucket = "prioritized"
	BucketDone          Bucket = "done"
)

// Buckets is the emission order of sections.
var Buckets = []Bucket{BucketAnomalous, BucketUnprioritized, BucketPrioritized, BucketDone}

func (b Bucket) IsValid() bool {
	switch b {
	case BucketAnomalous, BucketUnprioritized, BucketPrioritized, BucketDone:
		return true
	default:
		return false
	}
}

// Classify puts a top-level task into exactly one bucket. An unspecified state
// carrying an explicit priority matches no rule and lands in the anomalous
// bucket.
func Classify(t model.Task) Bucket {
	switch {
	case (t.State.IsOpen() || !t.State.IsSpecified()) && !t.HasPriority():
		return BucketUnprioritized
	case t.State.IsOpen() && t.HasPriority():
		return BucketPrioritized
	case t.State.IsTerminal():
		return BucketDone
	default:
		return BucketAnomalous
	}
}

type Section struct {
	Bucket Bucket
	Roots  []int
}

// Layout holds every bucket in emission order with its sorted top-level
// positions.
type Layout struct {
	Sections []Section
}

func (l Layout) Roots(b Bucket) []int {
	for _, s := range l.Sections {
		if s.Bucket == b {
			return s.Roots
		}
	}
	return nil
}

// Plan classifies and sorts the top-level tasks of f without serializing.
func Plan(f *model.Forest, opts Options) Layout {
	grouped := make(map[Bucket][]model.Task, len(Buckets))
	for _, pos := range f.Roots() {
		t, _ := f.Task(pos)
		b := Classify(t)
		grouped[b] = append(grouped[b], t)
	}

	unprioritized := grouped[BucketUnprioritized]
	slices.SortStableFunc(unprioritized, byPosition)

	prioritized := sortPrioritized(f, grouped[BucketPrioritized], opts.MedianSplit)

	done := grouped[BucketDone]
	slices.SortStableFunc(done, compareDone)

	layout := Layout{Sections: make([]Section, 0, len(Buckets))}
	for _, b := range Buckets {
		var tasks []model.Task
		switch b {
		case BucketAnomalous:
			tasks = grouped[BucketAnomalous]
		case BucketUnprioritized:
			tasks = unprioritized
		case BucketPrioritized:
			tasks = prioritized
		case BucketDone:
			tasks = done
		}
		layout.Sections = append(layout.Sections, Section{Bucket: b, Roots: positions(tasks)})
	}
	return layout
}

func positions(tasks []model.Task) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Position)
	}
	return out
}

func byPosition(a, b model.Task) int {
	return cmp.Compare(a.Position, b.Position)
}

// comparePrioritized orders tasks with a due date first, then by due date,
// then by resolved priority descending, then by position.
func comparePrioritized(f *model.Forest) func(a, b model.Task) int {
	return func(a, b model.Task) int {
		switch {
		case a.DueAt != nil && b.DueAt == nil:
			return -1
		case a.DueAt == nil && b.DueAt != nil:
			return 1
		case a.DueAt != nil && b.DueAt != nil && !a.DueAt.Equal(*b.DueAt):
			return a.DueAt.Compare(*b.DueAt)
		}
		if c := cmp.Compare(f.ResolvePriority(b.Position), f.ResolvePriority(a.Position)); c != 0 {
			return c
		}
		return byPosition(a, b)
	}
}

func sortPrioritized(f *model.Forest, tasks []model.Task, medianSplit bool) []model.Task {
	compare := comparePrioritized(f)
	if !medianSplit || len(tasks) < 2 {
		slices.SortStableFunc(tasks, compare)
		return tasks
	}

	median := medianPriority(f, tasks)
	high := make([]model.Task, 0, len(tasks))
	low := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.ResolvePriority(t.Position) >= median {
			high = append(high, t)
		} else {
			low = append(low, t)
		}
	}
	slices.SortStableFunc(high, compare)
	slices.SortStableFunc(low, compare)
	return append(high, low...)
}

// medianPriority is the upper median of the resolved priorities.
func medianPriority(f *model.Forest, tasks []model.Task) int {
	ps := make([]int, 0, len(tasks))
	for _, t := range tasks {
		ps = append(ps, f.ResolvePriority(t.Position))
	}
	slices.Sort(ps)
	return ps[len(ps)/2]
}

// compareDone puts the most recently completed task first. Tasks without a
// completion date follow the dated ones in document order.
func compareDone(a, b model.Task) int {
	switch {
	case a.DoneAt != nil && b.DoneAt != nil:
		if c := b.DoneAt.Compare(*a.DoneAt); c != 0 {
			return c
		}
	case a.DoneAt != nil:
		return -1
	case b.DoneAt != nil:
		return 1
	}
	return byPosition(a, b)
}
