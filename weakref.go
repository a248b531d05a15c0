package tsruntime

import "sync"

// weakTableBuckets is a fixed prime bucket count (OQ4). [WeakTable] does not
// use it: its entries live in Go maps, which grow as needed.
const weakTableBuckets = 509

// WeakRef is a handle that observes an [Object]'s lifetime without holding
// a strong reference to it. Dereferencing after the referent has been
// destroyed (explicitly, or via the collector's sweep) returns
// [ErrWeakReferentGone].
type WeakRef struct {
	id       uint64
	table    *WeakTable
	released bool
}

// Deref resolves the weak reference, returning the live object or
// [ErrWeakReferentGone] if it has been destroyed.
func (w *WeakRef) Deref() (*Object, error) {
	return w.table.resolve(w.id)
}

// Release implements the `weak_release` operation: it drops this handle's
// claim on the underlying entry, removing the entry once every WeakRef
// sharing it has been released. Calling Release more than once on the same
// WeakRef is a no-op after the first call.
func (w *WeakRef) Release() {
	if w.released {
		return
	}
	w.released = true
	w.table.release(w.id)
}

// weakEntry is the single table entry an object's outstanding [WeakRef]s
// all share. count tracks how many live WeakRefs point at it, so the
// Data Model invariant "at most one weak entry exists per object" holds
// even when New is called on the same object more than once.
type weakEntry struct {
	id    uint64
	obj   *Object
	dead  bool
	count int
}

// WeakTable tracks one [weakEntry] per live object, invalidated the
// instant its referent is destroyed (Object.destroy), plus a ring-buffer
// scavenger that periodically compacts dead entries out of the backing
// map. This is the teacher's promise registry scavenger (registry.go:
// `weak.Pointer[promise]` plus a ring buffer of ids, scavenged in batches,
// compacted below a 25% load factor) adapted from Go-GC-observed weak
// pointers to manually invalidated entries, since this runtime's objects
// are reclaimed by explicit refcounting and mark-sweep rather than Go's
// collector.
type WeakTable struct {
	mu     sync.Mutex
	byID   map[uint64]*weakEntry
	byObj  map[*Object]*weakEntry
	ring   []uint64
	head   int
	nextID uint64
}

func newWeakTable() *WeakTable {
	return &WeakTable{
		byID:   make(map[uint64]*weakEntry),
		byObj:  make(map[*Object]*weakEntry),
		ring:   make([]uint64, 0, 1024),
		nextID: 1,
	}
}

// New implements `make_weak`: it returns a weak reference to obj, sharing
// the object's existing entry (and bumping its refcount) if one is already
// outstanding, rather than allocating a second entry for the same object.
func (t *WeakTable) New(obj *Object) *WeakRef {
	t.mu.Lock()
	e, ok := t.byObj[obj]
	if !ok {
		id := t.nextID
		t.nextID++
		e = &weakEntry{id: id, obj: obj}
		t.byID[id] = e
		t.byObj[obj] = e
		t.ring = append(t.ring, id)
	}
	e.count++
	id := e.id
	t.mu.Unlock()
	return &WeakRef{id: id, table: t}
}

// resolve implements `weak_get`.
func (t *WeakTable) resolve(id uint64) (*Object, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byID[id]
	if !ok || e.dead {
		return nil, ErrWeakReferentGone
	}
	return e.obj, nil
}

// release drops one WeakRef's claim on its entry, deleting the entry once
// the last claim is gone. A dead entry (its object already destroyed) is
// unlinked from byObj already, so only byID needs cleanup here.
func (t *WeakTable) release(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byID[id]
	if !ok {
		return
	}
	e.count--
	if e.count > 0 {
		return
	}
	delete(t.byID, id)
	if !e.dead {
		delete(t.byObj, e.obj)
	}
}

// invalidate marks obj's weak entry dead. Called by Object.destroy at the
// moment the strong refcount reaches zero or the collector sweeps obj, so
// Deref never observes a freed slot. The entry itself lingers in byID
// (returning ErrWeakReferentGone on resolve) until the last WeakRef
// releases it or Scavenge reaps it.
func (t *WeakTable) invalidate(obj *Object) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.byObj[obj]
	if !ok {
		return
	}
	e.dead = true
	delete(t.byObj, obj)
}

// Scavenge drains up to batchSize entries from the ring buffer, removing
// dead ones from the map, and compacts the ring once a full cycle
// completes with a load factor under 25% — identical cadence to the
// teacher's registry.Scavenge.
func (t *WeakTable) Scavenge(batchSize int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if batchSize <= 0 || len(t.ring) == 0 {
		return
	}

	ringLen := len(t.ring)
	start := t.head
	end := start + batchSize
	if end > ringLen {
		end = ringLen
	}

	for i := start; i < end; i++ {
		id := t.ring[i]
		if id == 0 {
			continue
		}
		if e, ok := t.byID[id]; !ok || e.dead {
			delete(t.byID, id)
			t.ring[i] = 0
		}
	}

	t.head = end
	cycleCompleted := t.head >= ringLen
	if cycleCompleted {
		t.head = 0
		if cap(t.ring) > 256 && float64(len(t.byID)) < float64(len(t.ring))*0.25 {
			t.compactAndRenew()
		}
	}
}

func (t *WeakTable) compactAndRenew() {
	newRing := make([]uint64, 0, len(t.byID))
	for _, id := range t.ring {
		if id != 0 {
			if _, ok := t.byID[id]; ok {
				newRing = append(newRing, id)
			}
		}
	}
	t.ring = newRing
	t.head = 0
}
