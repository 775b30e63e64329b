package scheduler

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lun-4/obsidian-maid/internal/model"
)

var (
	ErrInvalidDueTime = errors.New("scheduler: invalid due time")
	ErrEngineStopped  = errors.New("scheduler: engine stopped")
)

// DueEvent fires when an open task reaches its due time.
type DueEvent struct {
	Position int
	Text     string
	DueAt    time.Time
}

// DueEvents lists open tasks of f due after now, in document order.
func DueEvents(f *model.Forest, now time.Time) []DueEvent {
	out := make([]DueEvent, 0)
	for _, pos := range f.Positions() {
		t, _ := f.Task(pos)
		if !t.State.IsOpen() || t.DueAt == nil || !t.DueAt.After(now) {
			continue
		}
		out = append(out, DueEvent{Position: pos, Text: t.Title(), DueAt: *t.DueAt})
	}
	return out
}

// entry is a pending event. index is its slot in the heap.
type entry struct {
	event DueEvent
	seq   uint64
	index int
}

type dueHeap []*entry

func (h dueHeap) Len() int { return len(h) }

func (h dueHeap) Less(i, j int) bool {
	if !h[i].event.DueAt.Equal(h[j].event.DueAt) {
		return h[i].event.DueAt.Before(h[j].event.DueAt)
	}
	return h[i].seq < h[j].seq
}

func (h dueHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *dueHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *dueHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	e.index = -1
	return e
}

// Engine emits each task's due event on C once its time has come. A task has
// at most one pending event; scheduling it again replaces the earlier one.
type Engine struct {
	mu      sync.Mutex
	queue   dueHeap
	byPos   map[int]*entry
	out     chan DueEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped atomic.Uint64
	seq     uint64
	now     func() time.Time
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		byPos:  make(map[int]*entry),
		out:    make(chan DueEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
	}
}

// C is closed after Stop.
func (e *Engine) C() <-chan DueEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	if !e.started {
		close(e.out)
		e.mu.Unlock()
		return
	}
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev DueEvent) error {
	if ev.DueAt.IsZero() {
		return ErrInvalidDueTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	e.push(ev)
	e.signalWakeup()
	return nil
}

// Replace drops every pending event and queues evs instead. It is used when
// the document is read again.
func (e *Engine) Replace(evs []DueEvent) error {
	for _, ev := range evs {
		if ev.DueAt.IsZero() {
			return fmt.Errorf("%w: position %d", ErrInvalidDueTime, ev.Position)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrEngineStopped
	}
	e.queue = e.queue[:0]
	clear(e.byPos)
	for _, ev := range evs {
		e.push(ev)
	}
	e.signalWakeup()
	return nil
}

// Cancel removes the pending event of pos and reports whether there was one.
func (e *Engine) Cancel(pos int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	item, ok := e.byPos[pos]
	if !ok {
		return false
	}
	heap.Remove(&e.queue, item.index)
	delete(e.byPos, pos)
	e.signalWakeup()
	return true
}

// Pending is the number of events not yet emitted.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

func (e *Engine) Dropped() uint64 {
	return e.dropped.Load()
}

// push must be called with mu held.
func (e *Engine) push(ev DueEvent) {
	e.seq++
	if item, ok := e.byPos[ev.Position]; ok {
		item.event = ev
		item.seq = e.seq
		heap.Fix(&e.queue, item.index)
		return
	}
	item := &entry{event: ev, seq: e.seq}
	heap.Push(&e.queue, item)
	e.byPos[ev.Position] = item
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		if next, ok := e.nextDue(); ok {
			timer.Reset(max(time.Until(next), 0))
		} else {
			timer.Stop()
		}

		select {
		case <-timer.C:
			for _, ev := range e.popDue(e.now()) {
				select {
				case e.out <- ev:
				default:
					e.dropped.Add(1)
				}
			}
		case <-e.wakeup:
		case <-e.stopCh:
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) nextDue() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return time.Time{}, false
	}
	return e.queue[0].event.DueAt, true
}

func (e *Engine) popDue(now time.Time) []DueEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []DueEvent
	for len(e.queue) > 0 && !e.queue[0].event.DueAt.After(now) {
		item := heap.Pop(&e.queue).(*entry)
		delete(e.byPos, item.event.Position)
		out = append(out, item.event)
	}
	return out
}
