package tsruntime

import "fmt"

// PromiseCombinators groups the static Promise.all/race/allSettled/any
// helpers. Not named by spec.md's module list, but present in the original
// runtime's promise module as static helpers layered on the already
// specified resolve-entry primitives (no new data model), and directly
// exercised by the teacher's js.go (All/Race/AllSettled/Any on *JS).
type PromiseCombinators struct {
	backend Backend
}

// NewPromiseCombinators binds the combinators to a backend, matching how
// the teacher's JS adapter binds combinator methods to a *Loop.
func NewPromiseCombinators(backend Backend) *PromiseCombinators {
	return &PromiseCombinators{backend: backend}
}

// All resolves once every input promise fulfills, with the results in
// input order, or rejects as soon as any one rejects.
func (c *PromiseCombinators) All(promises []*Promise) *Promise {
	out, resolve, reject := NewPromise(c.backend)
	if len(promises) == 0 {
		resolve([]any{})
		return out
	}
	results := make([]any, len(promises))
	remaining := len(promises)
	for i, p := range promises {
		i := i
		p.Then(
			func(v any) (any, error) {
				results[i] = v
				remaining--
				if remaining == 0 {
					resolve(append([]any(nil), results...))
				}
				return nil, nil
			},
			func(r any) (any, error) {
				reject(r)
				return nil, nil
			},
		)
	}
	return out
}

// Race settles with the first input promise to settle, in either
// direction.
func (c *PromiseCombinators) Race(promises []*Promise) *Promise {
	out, resolve, reject := NewPromise(c.backend)
	for _, p := range promises {
		p.Then(
			func(v any) (any, error) { resolve(v); return nil, nil },
			func(r any) (any, error) { reject(r); return nil, nil },
		)
	}
	return out
}

// SettledResult mirrors ECMAScript's `{status, value|reason}` shape for
// [PromiseCombinators.AllSettled].
type SettledResult struct {
	Fulfilled bool
	Value     any
	Reason    any
}

// AllSettled resolves once every input promise has settled (fulfilled or
// rejected), never itself rejecting.
func (c *PromiseCombinators) AllSettled(promises []*Promise) *Promise {
	out, resolve, _ := NewPromise(c.backend)
	if len(promises) == 0 {
		resolve([]SettledResult{})
		return out
	}
	results := make([]SettledResult, len(promises))
	remaining := len(promises)
	for i, p := range promises {
		i := i
		p.Then(
			func(v any) (any, error) {
				results[i] = SettledResult{Fulfilled: true, Value: v}
				remaining--
				if remaining == 0 {
					resolve(append([]SettledResult(nil), results...))
				}
				return nil, nil
			},
			func(r any) (any, error) {
				results[i] = SettledResult{Fulfilled: false, Reason: r}
				remaining--
				if remaining == 0 {
					resolve(append([]SettledResult(nil), results...))
				}
				return nil, nil
			},
		)
	}
	return out
}

// AggregateError collects every rejection reason when [PromiseCombinators.Any]
// finds no fulfilled promise among its inputs.
type AggregateError struct {
	Reasons []any
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("tsruntime: all %d promises were rejected", len(e.Reasons))
}

// Any resolves with the first fulfilled input promise, or rejects with an
// [AggregateError] once every input has rejected.
func (c *PromiseCombinators) Any(promises []*Promise) *Promise {
	out, resolve, reject := NewPromise(c.backend)
	if len(promises) == 0 {
		reject(&AggregateError{})
		return out
	}
	reasons := make([]any, len(promises))
	remaining := len(promises)
	for i, p := range promises {
		i := i
		p.Then(
			func(v any) (any, error) { resolve(v); return nil, nil },
			func(r any) (any, error) {
				reasons[i] = r
				remaining--
				if remaining == 0 {
					reject(&AggregateError{Reasons: reasons})
				}
				return nil, nil
			},
		)
	}
	return out
}
