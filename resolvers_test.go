package tsruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombinatorsAllResolvesInInputOrder(t *testing.T) {
	backend := NewLoopBackend()
	combos := NewPromiseCombinators(backend)

	p1, resolve1, _ := NewPromise(backend)
	p2, resolve2, _ := NewPromise(backend)

	all := combos.All([]*Promise{p1, p2})
	resolve2("second")
	resolve1("first")
	backend.Run()

	require.Equal(t, Fulfilled, all.State())
	require.Equal(t, []any{"first", "second"}, all.value)
}

func TestCombinatorsAllRejectsOnFirstRejection(t *testing.T) {
	backend := NewLoopBackend()
	combos := NewPromiseCombinators(backend)

	p1, _, reject1 := NewPromise(backend)
	p2, resolve2, _ := NewPromise(backend)

	all := combos.All([]*Promise{p1, p2})
	reject1("broke")
	resolve2("irrelevant")
	backend.Run()

	require.Equal(t, Rejected, all.State())
	require.Equal(t, "broke", all.reason)
}

func TestCombinatorsRaceSettlesWithFirst(t *testing.T) {
	backend := NewLoopBackend()
	combos := NewPromiseCombinators(backend)

	p1, resolve1, _ := NewPromise(backend)
	p2, resolve2, _ := NewPromise(backend)

	race := combos.Race([]*Promise{p1, p2})
	resolve2("fast")
	resolve1("slow")
	backend.Run()

	require.Equal(t, "fast", race.value)
}

func TestCombinatorsAllSettledNeverRejects(t *testing.T) {
	backend := NewLoopBackend()
	combos := NewPromiseCombinators(backend)

	p1, resolve1, _ := NewPromise(backend)
	p2, _, reject2 := NewPromise(backend)

	settled := combos.AllSettled([]*Promise{p1, p2})
	resolve1("ok")
	reject2("nope")
	backend.Run()

	require.Equal(t, Fulfilled, settled.State())
	results := settled.value.([]SettledResult)
	require.True(t, results[0].Fulfilled)
	require.Equal(t, "ok", results[0].Value)
	require.False(t, results[1].Fulfilled)
	require.Equal(t, "nope", results[1].Reason)
}

func TestCombinatorsAnyRejectsWithAggregateErrorWhenAllFail(t *testing.T) {
	backend := NewLoopBackend()
	combos := NewPromiseCombinators(backend)

	p1, _, reject1 := NewPromise(backend)
	p2, _, reject2 := NewPromise(backend)

	any := combos.Any([]*Promise{p1, p2})
	reject1("a")
	reject2("b")
	backend.Run()

	require.Equal(t, Rejected, any.State())
	agg, ok := any.reason.(*AggregateError)
	require.True(t, ok)
	require.Len(t, agg.Reasons, 2)
}

func TestCombinatorsAllEmptyInputResolvesImmediately(t *testing.T) {
	backend := NewLoopBackend()
	combos := NewPromiseCombinators(backend)
	all := combos.All(nil)
	require.Equal(t, Fulfilled, all.State())
	require.Equal(t, []any{}, all.value)
}
