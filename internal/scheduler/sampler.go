package scheduler

import "github.com/lun-4/obsidian-maid/internal/model"

// RandSource draws an integer uniformly from [0, n). *rand.Rand from
// math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type Weighted struct {
	Position int
	Weight   int
}

// Pick is a successful draw. Total is the weight sum the draw was taken over.
type Pick struct {
	Position int
	Weight   int
	Total    int
}

// Eligible reports whether pos is an open task with a non-negative resolved
// priority. Negative priorities pause a task.
func Eligible(f *model.Forest, pos int) bool {
	t, ok := f.Task(pos)
	if !ok || !t.State.IsOpen() {
		return false
	}
	return f.ResolvePriority(pos) >= 0
}

// Weights lists eligible tasks in document order. keep may be nil.
func Weights(f *model.Forest, keep func(model.Task) bool) []Weighted {
	out := make([]Weighted, 0)
	for _, pos := range f.Positions() {
		if !Eligible(f, pos) {
			continue
		}
		if keep != nil {
			t, _ := f.Task(pos)
			if !keep(t) {
				continue
			}
		}
		out = append(out, Weighted{Position: pos, Weight: f.ResolvePriority(pos)})
	}
	return out
}

func Sample(f *model.Forest, rng RandSource) (Pick, bool) {
	return SampleWhere(f, rng, nil)
}

// SampleWhere draws one eligible task accepted by keep, weighted by resolved
// priority. It returns false when the total weight is below one; callers
// must not treat that as a pick of position 0.
func SampleWhere(f *model.Forest, rng RandSource, keep func(model.Task) bool) (Pick, bool) {
	return draw(Weights(f, keep), rng)
}

// SampleSubtree restricts the draw to root and its descendants.
func SampleSubtree(f *model.Forest, rng RandSource, root int) (Pick, bool) {
	members := make(map[int]bool)
	for _, pos := range f.Subtree(root) {
		members[pos] = true
	}
	if len(members) == 0 {
		return Pick{}, false
	}
	return SampleWhere(f, rng, func(t model.Task) bool { return members[t.Position] })
}

func draw(pairs []Weighted, rng RandSource) (Pick, bool) {
	total := 0
	for _, p := range pairs {
		total += p.Weight
	}
	if total < 1 {
		return Pick{}, false
	}
	index := rng.IntN(total)
	for _, p := range pairs {
		if p.Weight > index {
			return Pick{Position: p.Position, Weight: p.Weight, Total: total}, true
		}
		index -= p.Weight
	}
	// Unreachable for a source honoring [0, total).
	return Pick{}, false
}
