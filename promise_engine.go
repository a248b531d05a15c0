package tsruntime

// PromiseState is the three-state Promise/A+ state machine.
type PromiseState int

const (
	Pending PromiseState = iota
	Fulfilled
	Rejected
)

// ResolveEntry records one `.then`-style continuation registered against a
// pending [Promise]: the fulfillment/rejection handlers and the downstream
// promise they feed, exactly as the teacher's `handler` struct backs
// ChainedPromise.Then (promise.go).
type ResolveEntry struct {
	onFulfilled func(any) (any, error)
	onRejected  func(any) (any, error)
	downstream  *Promise
}

// Promise implements the engine described in spec.md §4.5: a state
// machine, a result union, and a list of resolve entries notified (via the
// backend's task queue, never synchronously) once the promise settles.
type Promise struct {
	state  PromiseState
	value  any
	reason any

	entries []ResolveEntry
	backend Backend
	onReject func(reason any) // uncaught-rejection hook; nil unless assigned (Runtime does not set it)
}

// NewPromise creates a pending promise plus its resolve/reject functions,
// mirroring the teacher's NewChainedPromise three-return shape.
func NewPromise(backend Backend) (*Promise, func(any), func(any)) {
	p := &Promise{state: Pending, backend: backend}
	return p, p.resolve, p.reject
}

// State returns the promise's current state.
func (p *Promise) State() PromiseState { return p.state }

// resolve settles the promise as fulfilled with val, adopting val's state
// if val is itself a promise (ThenPromise adoption, spec.md §4.5).
func (p *Promise) resolve(val any) {
	if p.state != Pending {
		return
	}
	if inner, ok := val.(*Promise); ok {
		inner.addEntry(ResolveEntry{
			onFulfilled: func(v any) (any, error) { p.resolve(v); return nil, nil },
			onRejected:  func(r any) (any, error) { p.reject(r); return nil, nil },
		})
		return
	}
	p.state = Fulfilled
	p.value = val
	p.fanOut()
}

// reject settles the promise as rejected with reason.
func (p *Promise) reject(reason any) {
	if p.state != Pending {
		return
	}
	p.state = Rejected
	p.reason = reason
	p.fanOut()
}

// fanOut schedules every registered resolve entry to run as a backend
// task, never inline, preserving the ordering guarantees of §5.
func (p *Promise) fanOut() {
	entries := p.entries
	p.entries = nil
	for _, e := range entries {
		e := e
		p.backend.CreateTask(func() { p.runEntry(e) })
	}
	if p.state == Rejected && len(entries) == 0 && p.onReject != nil {
		p.backend.CreateTask(func() {
			if len(p.entries) == 0 {
				p.onReject(p.reason)
			}
		})
	}
}

func (p *Promise) runEntry(e ResolveEntry) {
	var result any
	var err error
	switch p.state {
	case Fulfilled:
		if e.onFulfilled != nil {
			result, err = e.onFulfilled(p.value)
		} else {
			e.downstream.resolve(p.value)
			return
		}
	case Rejected:
		if e.onRejected != nil {
			result, err = e.onRejected(p.reason)
		} else {
			e.downstream.reject(p.reason)
			return
		}
	default:
		return
	}
	if err != nil {
		e.downstream.reject(err)
		return
	}
	e.downstream.resolve(result)
}

// addEntry appends a resolve entry, firing it immediately (as a backend
// task) if the promise has already settled.
func (p *Promise) addEntry(e ResolveEntry) {
	if p.state == Pending {
		p.entries = append(p.entries, e)
		return
	}
	p.backend.CreateTask(func() { p.runEntry(e) })
}

// Then registers fulfillment/rejection handlers and returns the downstream
// promise, exactly as `ChainedPromise.Then` does.
func (p *Promise) Then(onFulfilled, onRejected func(any) (any, error)) *Promise {
	downstream, _, _ := NewPromise(p.backend)
	p.addEntry(ResolveEntry{onFulfilled: onFulfilled, onRejected: onRejected, downstream: downstream})
	return downstream
}

// Catch is Then with only a rejection handler.
func (p *Promise) Catch(onRejected func(any) (any, error)) *Promise {
	return p.Then(nil, onRejected)
}

// Finally registers onFinally to run regardless of settlement, returning
// no downstream promise — spec.md's explicit OQ3 choice over ECMAScript's
// promise-returning `finally`. The discarded downstream promise exists only
// so addEntry/runEntry's settle-or-queue plumbing has somewhere to resolve.
func (p *Promise) Finally(onFinally func()) {
	p.addEntry(ResolveEntry{
		onFulfilled: func(v any) (any, error) { onFinally(); return v, nil },
		onRejected:  func(r any) (any, error) { onFinally(); return r, nil },
		downstream:  &Promise{state: Pending, backend: p.backend},
	})
}
