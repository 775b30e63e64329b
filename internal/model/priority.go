package model

// ResolvePriority returns the effective priority of the task at pos. It is
// always defined: unknown tasks and tasks without a resolvable explicit
// priority get the default.
func (f *Forest) ResolvePriority(pos int) int {
	t, ok := f.tasks[pos]
	if !ok {
		return f.cfg.DefaultPriority
	}
	// Parent chains are acyclic, so the walk ends within len(order) steps.
	for steps := 0; steps <= len(f.order); steps++ {
		if t.Priority != nil {
			return *t.Priority
		}
		if !f.cfg.PriorityInheritance || t.Parent == nil {
			return f.cfg.DefaultPriority
		}
		parent, ok := f.tasks[*t.Parent]
		if !ok {
			return f.cfg.DefaultPriority
		}
		t = parent
	}
	return f.cfg.DefaultPriority
}

func (f *Forest) ResolvedPriorities() map[int]int {
	out := make(map[int]int, len(f.order))
	for _, pos := range f.order {
		out[pos] = f.ResolvePriority(pos)
	}
	return out
}
