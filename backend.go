package tsruntime

import "time"

// TaskID identifies a task scheduled via [Backend.CreateTask] or
// [Backend.PostTaskDelay], used to cancel it later.
type TaskID uint64

// Backend is the contract an embedder implements to drive the runtime's
// event loop: the four hooks of spec.md §4.4 plus CancelTask. The runtime
// never polls for I/O or
// owns a thread itself; it only asks the backend what time it is, when it
// next wants to be woken, and to run a callback now or after a delay.
type Backend interface {
	// NowMS returns the current time in milliseconds, the same clock the
	// runtime uses to compute timer deadlines.
	NowMS() int64

	// SetNextDeadline tells the backend the absolute time (ms) at which the
	// runtime's timer heap next needs [Runtime.OnTimeout] called. A
	// deadline of 0 means "no pending timer".
	SetNextDeadline(deadlineMS int64)

	// CreateTask schedules fn to run on the backend's own thread as soon as
	// possible (used for microtask-like immediate continuations), returning
	// an id that can be passed to CancelTask.
	CreateTask(fn func()) TaskID

	// PostTaskDelay schedules fn to run after delay, returning a
	// cancellable id.
	PostTaskDelay(fn func(), delay time.Duration) TaskID

	// CancelTask cancels a previously scheduled task; canceling an
	// already-fired or unknown id is a no-op.
	CancelTask(id TaskID)
}
