package tsruntime

import "container/heap"

// TimerID identifies a scheduled timer, returned by SetTimeout/SetInterval
// and accepted by ClearTimeout/ClearInterval.
type TimerID uint64

// timerNode is one entry in the [TimerService]'s min-heap, ordered by
// (Deadline, ID) so same-millisecond timers fire in scheduling order.
type timerNode struct {
	id        TimerID
	deadline  int64 // ms, per Backend.NowMS's epoch
	interval  int64 // 0 for one-shot timers
	fn        func()
	cleared   bool
	heapIndex int
}

type timerHeap []*timerNode

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline != h[j].deadline {
		return h[i].deadline < h[j].deadline
	}
	return h[i].id < h[j].id
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *timerHeap) Push(x any) {
	n := x.(*timerNode)
	n.heapIndex = len(*h)
	*h = append(*h, n)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// TimerService implements setTimeout/setInterval/clearTimeout/clearInterval
// semantics over a binary min-heap keyed by (deadline, id), exactly as
// spec.md §4.4 describes, grounded on the teacher's loop.go timerHeap and
// js.go SetTimeout/SetInterval/ClearTimeout/ClearInterval adapter. Clearing
// a timer defers removal (a cleared flag, not an immediate heap splice)
// since the node may already be mid-dispatch in OnTimeout.
type TimerService struct {
	backend Backend
	heap    timerHeap
	byID    map[TimerID]*timerNode
	nextID  TimerID
	logger  Logger
}

// NewTimerService constructs a timer service driven by backend.
func NewTimerService(backend Backend, logger Logger) *TimerService {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &TimerService{
		backend: backend,
		heap:    make(timerHeap, 0),
		byID:    make(map[TimerID]*timerNode),
		logger:  logger,
	}
}

// SetTimeout schedules fn to run once after delayMS milliseconds.
func (t *TimerService) SetTimeout(fn func(), delayMS int64) TimerID {
	return t.schedule(fn, delayMS, 0)
}

// SetInterval schedules fn to run repeatedly every intervalMS milliseconds.
func (t *TimerService) SetInterval(fn func(), intervalMS int64) TimerID {
	return t.schedule(fn, intervalMS, intervalMS)
}

func (t *TimerService) schedule(fn func(), delayMS, interval int64) TimerID {
	if delayMS < 0 {
		delayMS = 0
	}
	t.nextID++
	node := &timerNode{
		id:       t.nextID,
		deadline: t.backend.NowMS() + delayMS,
		interval: interval,
		fn:       fn,
	}
	heap.Push(&t.heap, node)
	t.byID[node.id] = node
	t.syncDeadline()
	if t.logger.IsEnabled(LevelDebug) {
		t.logger.Log(LogEntry{Level: LevelDebug, Category: "timer", TimerID: uint64(node.id), Message: "scheduled"})
	}
	return node.id
}

// ClearTimeout/ClearInterval both defer-remove the node: it is marked
// cleared and skipped when popped, rather than spliced out of the heap
// immediately, since a clear may race with the node already being the one
// currently firing.
func (t *TimerService) ClearTimeout(id TimerID) error { return t.clear(id) }
func (t *TimerService) ClearInterval(id TimerID) error { return t.clear(id) }

func (t *TimerService) clear(id TimerID) error {
	node, ok := t.byID[id]
	if !ok {
		return ErrTimerNotFound
	}
	node.cleared = true
	delete(t.byID, id)
	return nil
}

// OnTimeout is called by the backend (directly, or via Runtime.OnTimeout)
// when NowMS has reached the previously set deadline. It fires every due
// timer, rescheduling intervals, and returns the count fired.
func (t *TimerService) OnTimeout(nowMS int64) int {
	fired := 0
	for len(t.heap) > 0 {
		node := t.heap[0]
		if node.deadline > nowMS {
			break
		}
		heap.Pop(&t.heap)
		if node.cleared {
			delete(t.byID, node.id)
			continue
		}

		// node.id stays in byID while fn runs, so ClearTimeout/ClearInterval
		// called from inside the callback's own body still finds the node
		// and sets node.cleared (B1) instead of missing it and letting an
		// interval reschedule itself below.
		node.fn()
		fired++
		if t.logger.IsEnabled(LevelDebug) {
			t.logger.Log(LogEntry{Level: LevelDebug, Category: "timer", TimerID: uint64(node.id), Message: "fired"})
		}

		if node.interval > 0 && !node.cleared {
			node.deadline = nowMS + node.interval
			heap.Push(&t.heap, node)
		} else {
			delete(t.byID, node.id)
		}
	}
	t.syncDeadline()
	return fired
}

// Pending reports how many timers remain scheduled.
func (t *TimerService) Pending() int { return len(t.byID) }

func (t *TimerService) syncDeadline() {
	if len(t.heap) == 0 {
		t.backend.SetNextDeadline(0)
		return
	}
	t.backend.SetNextDeadline(t.heap[0].deadline)
}
