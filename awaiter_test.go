package tsruntime

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// resolverPromise models spec.md scenario 5's `resolver(msg, ms)`: log msg,
// then resolve after ms via the timer service.
func resolverPromise(backend Backend, timers *TimerService, log *[]string, msg int, ms int64) *Promise {
	p, resolve, _ := NewPromise(backend)
	*log = append(*log, strconv.Itoa(msg))
	timers.SetTimeout(func() { resolve(msg) }, ms)
	return p
}

// TestAsyncAwaitCounterScenario grounds spec.md scenario 5: six iterations
// of `print "==i"`, `await resolver(a++, 500)`, then a trailing `==7`,
// implemented as an explicit FSM per DESIGN NOTES §9 rather than a
// computed-goto.
func TestAsyncAwaitCounterScenario(t *testing.T) {
	backend := NewLoopBackend()
	timers := NewTimerService(backend, nil)
	backend.SetOnDeadline(func(now int64) { timers.OnTimeout(now) })

	var out []string
	a := 1
	i := 0

	p := NewAwaiterFrame(backend, func(f *AwaiterFrame, resumeVal any, resumeErr error) (*Promise, bool, any, error) {
		switch f.Label {
		case 0:
			i++
			out = append(out, "=="+strconv.Itoa(i))
			msg := a
			a++
			f.Label = 1
			return resolverPromise(backend, timers, &out, msg, 500), false, nil, nil
		case 1:
			if i >= 6 {
				i++
				out = append(out, "=="+strconv.Itoa(i))
				return nil, true, nil, nil
			}
			f.Label = 0
			return f.Step(f, nil, nil)
		}
		return nil, true, nil, nil
	})

	done := make(chan struct{})
	p.Then(func(any) (any, error) { close(done); return nil, nil }, nil)

	go backend.Run()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("async counter did not complete")
	}

	require.Equal(t, []string{
		"==1", "1", "==2", "2", "==3", "3", "==4", "4", "==5", "5", "==6", "6", "==7",
	}, out)
}

func TestAwaiterFrameRejectsOnStepError(t *testing.T) {
	backend := NewLoopBackend()
	p := NewAwaiterFrame(backend, func(f *AwaiterFrame, _ any, _ error) (*Promise, bool, any, error) {
		return nil, false, nil, &UserError{Value: NewErrorObject("boom")}
	})

	var reason any
	p.Then(nil, func(r any) (any, error) { reason = r; return nil, nil })
	backend.Run()

	require.NotNil(t, reason)
}
