package tsruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromiseThenFulfillmentChain(t *testing.T) {
	backend := NewLoopBackend()
	p, resolve, _ := NewPromise(backend)

	var got any
	p.Then(func(v any) (any, error) {
		got = v
		return nil, nil
	}, nil)

	resolve("foo")
	backend.Run()

	require.Equal(t, "foo", got)
	require.Equal(t, Fulfilled, p.State())
}

func TestPromiseRejectionPropagatesThroughMissingHandler(t *testing.T) {
	backend := NewLoopBackend()
	p, _, reject := NewPromise(backend)

	var caught any
	p.Then(func(v any) (any, error) { return v, nil }, nil).
		Catch(func(r any) (any, error) {
			caught = r
			return nil, nil
		})

	reject("boom")
	backend.Run()

	require.Equal(t, "boom", caught)
}

// TestPromiseResolveWithInnerPromiseAdoptsOnce grounds B2: resolving a
// promise with another promise adopts its eventual value exactly once, even
// through a further level of adoption.
func TestPromiseResolveWithInnerPromiseAdoptsOnce(t *testing.T) {
	backend := NewLoopBackend()
	outer, resolveOuter, _ := NewPromise(backend)
	middle, resolveMiddle, _ := NewPromise(backend)
	inner, resolveInner, _ := NewPromise(backend)

	settleCount := 0
	var finalValue any
	outer.Then(func(v any) (any, error) {
		settleCount++
		finalValue = v
		return nil, nil
	}, nil)

	resolveOuter(middle)
	resolveMiddle(inner)
	resolveInner("deep value")
	backend.Run()

	require.Equal(t, 1, settleCount)
	require.Equal(t, "deep value", finalValue)
}

func TestPromiseSettlesOnlyOnce(t *testing.T) {
	backend := NewLoopBackend()
	p, resolve, reject := NewPromise(backend)
	resolve("first")
	reject("second")
	resolve("third")
	require.Equal(t, Fulfilled, p.State())
	require.Equal(t, "first", p.value)
}

func TestPromiseFinallyRunsOnBothPaths(t *testing.T) {
	backend := NewLoopBackend()

	fulfilled, resolve, _ := NewPromise(backend)
	finallyRan := 0
	fulfilled.Finally(func() { finallyRan++ })
	resolve("ok")
	backend.Run()
	require.Equal(t, 1, finallyRan)

	rejected, _, reject := NewPromise(backend)
	rejected.Finally(func() { finallyRan++ })
	reject("err")
	backend.Run()
	require.Equal(t, 2, finallyRan)
}

func TestPromiseHandlersNeverRunSynchronously(t *testing.T) {
	backend := NewLoopBackend()
	p, resolve, _ := NewPromise(backend)

	ran := false
	p.Then(func(v any) (any, error) { ran = true; return nil, nil }, nil)
	resolve("now")
	require.False(t, ran, "fan-out must be scheduled as a backend task, never run inline")

	backend.Run()
	require.True(t, ran)
}
