package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// Workers own disjoint positions and schedule each one twice. Only the
// second version may be emitted.
func TestEngineConcurrentRescheduleEmitsLatestOnce(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const (
		workers   = 8
		perWorker = 150
	)
	total := workers * perWorker
	base := time.Now().Add(30 * time.Millisecond)

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWorker {
				pos := w*perWorker + i
				first := DueEvent{Position: pos, Text: "stale", DueAt: base.Add(time.Hour)}
				if err := engine.Schedule(first); err != nil {
					t.Errorf("schedule %d: %v", pos, err)
					return
				}
				latest := DueEvent{
					Position: pos,
					Text:     fmt.Sprintf("- [ ] task %d", pos),
					DueAt:    base.Add(time.Duration(i%40) * time.Millisecond),
				}
				if err := engine.Schedule(latest); err != nil {
					t.Errorf("reschedule %d: %v", pos, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := engine.Pending(); got > total {
		t.Fatalf("pending = %d, want at most %d", got, total)
	}

	seen := make(map[int]bool, total)
	deadline := time.After(5 * time.Second)
	for len(seen) < total {
		select {
		case <-deadline:
			t.Fatalf("timeout: received=%d total=%d dropped=%d", len(seen), total, engine.Dropped())
		case ev := <-engine.C():
			if seen[ev.Position] {
				t.Fatalf("position %d emitted twice", ev.Position)
			}
			if ev.Text == "stale" {
				t.Fatalf("position %d emitted its replaced event", ev.Position)
			}
			seen[ev.Position] = true
		}
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got=%d", engine.Dropped())
	}
	if engine.Pending() != 0 {
		t.Fatalf("expected empty queue, got %d", engine.Pending())
	}
}
