package tsruntime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeakTableResolveAndInvalidate(t *testing.T) {
	h, err := NewHeap()
	require.NoError(t, err)
	obj, err := NewInstance(h, &Vtable{Name: "Target"})
	require.NoError(t, err)

	ref := h.weakTable.New(obj)
	got, err := ref.Deref()
	require.NoError(t, err)
	require.Same(t, obj, got)

	h.weakTable.invalidate(obj)
	_, err = ref.Deref()
	require.ErrorIs(t, err, ErrWeakReferentGone)
}

func TestWeakTableScavengeCompactsBelowLoadFactor(t *testing.T) {
	wt := newWeakTable()
	h, err := NewHeap()
	require.NoError(t, err)

	var refs []*WeakRef
	var objs []*Object
	for i := 0; i < 1200; i++ {
		obj, err := NewInstance(h, &Vtable{Name: "Scavengee"})
		require.NoError(t, err)
		objs = append(objs, obj)
		refs = append(refs, wt.New(obj))
	}

	// invalidate all but a handful, then scavenge in batches until a full
	// cycle completes, matching the teacher's registry.Scavenge cadence.
	for _, obj := range objs[:1190] {
		wt.invalidate(obj)
	}
	for i := 0; i < len(wt.ring); i += 100 {
		wt.Scavenge(100)
	}

	require.Len(t, wt.ring, 10, "a full cycle under 25% load must compact the ring to the live ids")
	for _, ref := range refs[1190:] {
		_, err := ref.Deref()
		require.NoError(t, err)
	}
	for _, ref := range refs[:1190] {
		_, err := ref.Deref()
		require.ErrorIs(t, err, ErrWeakReferentGone)
	}
}

func TestWeakTableScavengeNoOpOnEmptyRing(t *testing.T) {
	wt := newWeakTable()
	require.NotPanics(t, func() { wt.Scavenge(10) })
}

func TestWeakTableSharesOneEntryPerObject(t *testing.T) {
	wt := newWeakTable()
	h, err := NewHeap()
	require.NoError(t, err)
	obj, err := NewInstance(h, &Vtable{Name: "Shared"})
	require.NoError(t, err)

	first := wt.New(obj)
	second := wt.New(obj)
	require.Equal(t, first.id, second.id, "a second New(obj) must share the object's one entry, not allocate another")
	require.Len(t, wt.byID, 1)
}

func TestWeakTableReleaseRemovesEntryOnlyAfterLastRef(t *testing.T) {
	wt := newWeakTable()
	h, err := NewHeap()
	require.NoError(t, err)
	obj, err := NewInstance(h, &Vtable{Name: "Refcounted"})
	require.NoError(t, err)

	first := wt.New(obj)
	second := wt.New(obj)

	first.Release()
	require.Len(t, wt.byID, 1, "entry must survive while a second WeakRef still holds it")
	_, err = second.Deref()
	require.NoError(t, err)

	second.Release()
	require.Len(t, wt.byID, 0, "entry must be removed once the last WeakRef releases it")

	// releasing an already-released ref is a no-op, not a double decrement
	first.Release()
	require.Len(t, wt.byID, 0)
}

func TestWeakTableReleaseAfterInvalidateIsSafe(t *testing.T) {
	wt := newWeakTable()
	h, err := NewHeap()
	require.NoError(t, err)
	obj, err := NewInstance(h, &Vtable{Name: "Dying"})
	require.NoError(t, err)

	ref := wt.New(obj)
	wt.invalidate(obj)

	_, err = ref.Deref()
	require.ErrorIs(t, err, ErrWeakReferentGone)

	ref.Release()
	require.Len(t, wt.byID, 0)
}
