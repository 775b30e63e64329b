package scheduler

import (
	"math/rand/v2"
	"testing"

	"github.com/lun-4/obsidian-maid/internal/model"
)

type fixedRand struct {
	value int
	calls []int
}

func (r *fixedRand) IntN(n int) int {
	r.calls = append(r.calls, n)
	return r.value
}

func mustForest(t *testing.T, records []model.Record, cfg model.Scheduling) *model.Forest {
	t.Helper()
	f, err := model.BuildForest(records, cfg)
	if err != nil {
		t.Fatalf("build forest: %v", err)
	}
	return f
}

func TestSampleDistributionByQuantile(t *testing.T) {
	f := mustForest(t, []model.Record{
		{Position: 1, State: model.StateOpen, Priority: model.Int(1)},
		{Position: 2, State: model.StateOpen, Priority: model.Int(2)},
		{Position: 3, State: model.StateOpen, Priority: model.Int(3)},
	}, model.Scheduling{DefaultPriority: 1})

	want := []int{1, 2, 2, 3, 3, 3}
	for draw, pos := range want {
		rng := &fixedRand{value: draw}
		pick, ok := Sample(f, rng)
		if !ok {
			t.Fatalf("draw %d: expected a pick", draw)
		}
		if pick.Position != pos {
			t.Fatalf("draw %d: picked %d, want %d", draw, pick.Position, pos)
		}
		if pick.Total != 6 || len(rng.calls) != 1 || rng.calls[0] != 6 {
			t.Fatalf("draw %d: unexpected total %d calls %v", draw, pick.Total, rng.calls)
		}
	}
}

func TestSampleNoEligibleTask(t *testing.T) {
	cases := map[string][]model.Record{
		"all zero": {
			{Position: 0, State: model.StateOpen, Priority: model.Int(0)},
			{Position: 1, State: model.StateOpen, Priority: model.Int(0)},
		},
		"all done": {
			{Position: 0, State: model.StateDone, Priority: model.Int(3)},
			{Position: 1, State: model.StateAbandoned, Priority: model.Int(3)},
		},
		"paused and plain": {
			{Position: 0, State: model.StateOpen, Priority: model.Int(-1)},
			{Position: 1, State: model.StateUnspecified, Priority: model.Int(4)},
		},
		"empty": nil,
	}
	for name, records := range cases {
		f := mustForest(t, records, model.Scheduling{DefaultPriority: 1})
		rng := &fixedRand{}
		if pick, ok := Sample(f, rng); ok {
			t.Fatalf("%s: expected no eligible task, got %+v", name, pick)
		}
		if len(rng.calls) != 0 {
			t.Fatalf("%s: random source consulted without eligible tasks", name)
		}
	}
}

func TestSampleZeroPriorityNeverPicked(t *testing.T) {
	f := mustForest(t, []model.Record{
		{Position: 0, State: model.StateOpen, Priority: model.Int(0)},
		{Position: 1, State: model.StateOpen, Priority: model.Int(2)},
	}, model.Scheduling{})

	if !Eligible(f, 0) {
		t.Fatal("expected zero-priority task to be eligible")
	}
	for draw := 0; draw < 2; draw++ {
		pick, ok := Sample(f, &fixedRand{value: draw})
		if !ok || pick.Position != 1 {
			t.Fatalf("draw %d: got %+v ok=%v, want position 1", draw, pick, ok)
		}
	}
}

func TestSampleUsesInheritedWeights(t *testing.T) {
	f := mustForest(t, []model.Record{
		{Position: 0, State: model.StateDone, Priority: model.Int(4)},
		{Position: 1, State: model.StateOpen, Parent: model.Int(0)},
	}, model.Scheduling{DefaultPriority: 1, PriorityInheritance: true})

	weights := Weights(f, nil)
	if len(weights) != 1 || weights[0] != (Weighted{Position: 1, Weight: 4}) {
		t.Fatalf("unexpected weights: %+v", weights)
	}
}

func TestSampleSubtree(t *testing.T) {
	f := mustForest(t, []model.Record{
		{Position: 0, State: model.StateOpen, Priority: model.Int(5)},
		{Position: 1, State: model.StateOpen, Priority: model.Int(1)},
		{Position: 2, State: model.StateOpen, Priority: model.Int(1), Parent: model.Int(1)},
	}, model.Scheduling{})

	seen := map[int]bool{}
	for draw := 0; draw < 2; draw++ {
		pick, ok := SampleSubtree(f, &fixedRand{value: draw}, 1)
		if !ok {
			t.Fatalf("draw %d: expected pick", draw)
		}
		seen[pick.Position] = true
	}
	if seen[0] || !seen[1] || !seen[2] {
		t.Fatalf("subtree sample escaped its root: %v", seen)
	}
	if _, ok := SampleSubtree(f, &fixedRand{}, 99); ok {
		t.Fatal("expected no pick for unknown root")
	}
}

func TestSampleSeededIsReproducible(t *testing.T) {
	f := mustForest(t, []model.Record{
		{Position: 0, State: model.StateOpen, Priority: model.Int(1)},
		{Position: 4, State: model.StateOpen, Priority: model.Int(10)},
		{Position: 9, State: model.StateOpen, Priority: model.Int(3)},
	}, model.Scheduling{})

	a := rand.New(rand.NewPCG(7, 7))
	b := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		pa, _ := Sample(f, a)
		pb, _ := Sample(f, b)
		if pa != pb {
			t.Fatalf("iteration %d: %+v != %+v", i, pa, pb)
		}
	}
}
