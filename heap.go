package tsruntime

import (
	"fmt"
)

// Heap is the segregated-fit allocator backing every object the runtime
// creates: one [Cluster] chain per size class for small/medium payloads,
// plus a [LargeTable] for anything above largeObjectThreshold. Adapted from
// the teacher's single-threaded [Loop] state (no internal locking beyond
// what Metrics needs for concurrent inspection) since spec.md restricts
// the runtime to one cooperative thread.
type Heap struct {
	classes    []int
	clusters   map[int]*clusterChain
	largeTable *LargeTable
	weakTable  *WeakTable
	scopes     *ScopeStack

	logger  Logger
	metrics *Metrics

	strictGC bool
	gc       *Collector

	liveObjects int
}

// clusterChain is the list of [Cluster]s backing one size class; Alloc
// scans from head for a free slot before appending a new cluster.
type clusterChain struct {
	slotSize int
	slots    int
	head     *Cluster
}

// NewHeap constructs a [Heap] ready for allocation.
func NewHeap(opts ...HeapOption) (*Heap, error) {
	cfg, err := resolveHeapOptions(opts)
	if err != nil {
		return nil, err
	}

	h := &Heap{
		classes:    cfg.sizeClasses,
		clusters:   make(map[int]*clusterChain, len(cfg.sizeClasses)),
		largeTable: newLargeTable(),
		weakTable:  newWeakTable(),
		scopes:     newScopeStack(),
		logger:     cfg.logger,
		metrics:    cfg.metrics,
	}
	for _, c := range cfg.sizeClasses {
		slots := cfg.defaultSlotCount
		if slots <= 0 {
			slots = defaultSlotCountFor(c)
		}
		h.clusters[c] = &clusterChain{slotSize: c, slots: slots}
	}
	h.gc = newCollector(h)
	return h, nil
}

// Alloc reserves a slot of at least n payload bytes, running the mutator's
// class for the given [Vtable]. It returns an [*AllocationError] (never a
// bare nil) on failure, per OQ1 (errors.go).
func (h *Heap) Alloc(n int, vt *Vtable) (*Object, error) {
	class, ok := sizeClassFor(h.classes, n)
	if !ok {
		obj, err := h.allocLarge(n, vt)
		if err != nil {
			return nil, err
		}
		h.afterAlloc()
		return obj, nil
	}

	chain := h.clusters[class]
	if chain == nil {
		return nil, &AllocationError{Size: n, Class: "small", Cause: fmt.Errorf("no cluster chain for class %d", class)}
	}

	obj, err := h.allocInChain(chain, n, vt)
	if err != nil {
		return nil, err
	}
	h.afterAlloc()
	return obj, nil
}

func (h *Heap) allocInChain(chain *clusterChain, n int, vt *Vtable) (*Object, error) {
	for c := chain.head; c != nil; c = c.next {
		if obj, ok := c.allocSlot(n, vt); ok {
			return obj, nil
		}
	}
	c := newCluster(chain.slotSize, chain.slots)
	c.next = chain.head
	chain.head = c
	obj, ok := c.allocSlot(n, vt)
	if !ok {
		return nil, &AllocationError{Size: n, Class: "small", Cause: fmt.Errorf("fresh cluster of slot size %d could not hold %d bytes", chain.slotSize, n)}
	}
	return obj, nil
}

func (h *Heap) allocLarge(n int, vt *Vtable) (*Object, error) {
	rec, err := h.largeTable.insert(n, vt)
	if err != nil {
		return nil, &AllocationError{Size: n, Class: "large", Cause: err}
	}
	return rec.object, nil
}

func (h *Heap) afterAlloc() {
	h.liveObjects++
	if h.metrics != nil {
		h.metrics.RecordAllocation()
	}
	if h.logger != nil && h.logger.IsEnabled(LevelDebug) {
		h.logger.Log(LogEntry{Level: LevelDebug, Category: "gc", Message: "allocation", Fields: map[string]any{"live": h.liveObjects}})
	}
	if h.strictGC {
		h.gc.Collect()
	}
}

// PushScope opens a new [LocalScope] for GC roots, mirroring the compiled
// function prologue's scope push (spec.md §4.1/§4.3).
func (h *Heap) PushScope() *LocalScope { return h.scopes.Push() }

// PopScope closes the most recently pushed [LocalScope]. It is a
// precondition violation to pop out of order; the caller (compiled code)
// is expected to push/pop in strict LIFO order per function activation.
func (h *Heap) PopScope(s *LocalScope) { h.scopes.Pop(s) }

// Collect runs a full mark-and-sweep pass over clusters, the large table,
// and all live scopes, reclaiming anything unreachable and not already
// destroyed by the refcounting fast path.
func (h *Heap) Collect() {
	h.gc.Collect()
}

// Metrics returns the heap's attached [Metrics] collector.
func (h *Heap) Metrics() *Metrics { return h.metrics }
