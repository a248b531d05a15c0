package tsruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorObjectStringFormat(t *testing.T) {
	e := NewErrorObject("inner fatal")
	require.Equal(t, "[TS Error] message:[inner fatal]", e.String())

	e.Filename = "main.ts"
	e.Line, e.Col = 10, 3
	require.Equal(t, "[TS Error] message:[inner fatal] at main.ts:10:3", e.String())
}

// inner runs spec.md scenario 6's inner(): try { print "inner do"; throw
// Error("inner fatal") } catch(e) { print "inner caught: "+e; throw
// Error("from inner") } finally { print "inner finally" }, returning the
// signal that propagates out to the caller.
func inner(s *TryBlockStack, out *[]string) *ControlSignal {
	s.Enter(true, true)
	*out = append(*out, "inner do")

	sig := s.Throw(NewErrorObject("inner fatal"))
	if exc, ok := s.CheckCatch(sig); ok {
		*out = append(*out, "inner caught: "+exc.String())
		sig = s.Throw(NewErrorObject("from inner"))
	}
	if s.CheckFinally() {
		*out = append(*out, "inner finally")
	}
	return sig
}

// TestTryCatchFinallyScenario grounds spec.md scenario 6 and B3 (throwing
// from inside a catch handler runs the enclosing finally, then propagates
// to the next enclosing try) directly against [TryBlockStack].
func TestTryCatchFinallyScenario(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	s := NewTryBlockStack(h)
	var out []string

	s.Enter(true, true)
	out = append(out, "outer do")

	sig := inner(s, &out)
	if exc, ok := s.CheckCatch(sig); ok {
		out = append(out, "outer catch: "+exc.String())
	}
	if s.CheckFinally() {
		out = append(out, "outer finally")
	}

	require.Equal(t, []string{
		"outer do",
		"inner do",
		"inner caught: [TS Error] message:[inner fatal]",
		"inner finally",
		"outer catch: [TS Error] message:[from inner]",
		"outer finally",
	}, out)
}

func TestThrowCollapsesScopeStackToTryDepth(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	s := NewTryBlockStack(h)

	s.Enter(true, false)
	require.Len(t, h.scopes.frames, 0)

	h.PushScope()
	h.PushScope()
	require.Len(t, h.scopes.frames, 2)

	s.Throw(NewErrorObject("x"))
	require.Len(t, h.scopes.frames, 0, "scopes pushed since try-entry must be discarded on throw")
}

func TestCheckCatchReturnsFalseWithNoCatchClause(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	s := NewTryBlockStack(h)
	s.Enter(false, true)

	sig := s.Throw(NewErrorObject("uncaught"))
	_, ok := s.CheckCatch(sig)
	require.False(t, ok, "a try block with no catch clause must let the exception propagate")
}

func TestCheckFinallyAlwaysPopsBlock(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	s := NewTryBlockStack(h)
	s.Enter(false, true)

	require.True(t, s.CheckFinally())
	require.Empty(t, s.blocks)
}
