package tsruntime

import "time"

// Collector implements mark-and-sweep over the heap's clusters and large
// table, rooted at the strong-root table (every [LocalScope] frame on the
// [ScopeStack]) plus the [Module] containers registered with the runtime.
// Refcounting (Object.AddRef/Release) is the fast path for acyclic
// structures; Collect only needs to run to reclaim reference cycles the
// refcount scheme cannot see, matching spec.md's P2/P3 invariants.
type Collector struct {
	heap  *Heap
	roots []*Object // additional roots beyond the scope stack, e.g. modules
}

func newCollector(h *Heap) *Collector {
	return &Collector{heap: h}
}

// AddRoot registers an additional permanent root (a [Module] container),
// which is never subject to sweep itself but is traversed for outgoing
// references.
func (c *Collector) AddRoot(obj *Object) {
	if obj != nil {
		c.roots = append(c.roots, obj)
	}
}

// RemoveRoot unregisters a previously added permanent root.
func (c *Collector) RemoveRoot(obj *Object) {
	for i, r := range c.roots {
		if r == obj {
			c.roots = append(c.roots[:i], c.roots[i+1:]...)
			return
		}
	}
}

// Collect runs one full mark-and-sweep pass, returning the number of
// objects reclaimed.
func (c *Collector) Collect() int {
	start := time.Now()

	c.heap.scopes.forEachRoot(func(o *Object) { c.mark(o) })
	for _, root := range c.roots {
		c.mark(root)
	}

	reclaimed := c.sweep()

	if c.heap.metrics != nil {
		c.heap.metrics.RecordCollection(time.Since(start))
		c.heap.metrics.setLiveCounts(c.heap.liveObjects, len(c.heap.clusters), 0)
	}
	if c.heap.logger != nil && c.heap.logger.IsEnabled(LevelDebug) {
		c.heap.logger.Log(LogEntry{
			Level:    LevelDebug,
			Category: "gc",
			Message:  "collection complete",
			Fields:   map[string]any{"reclaimed": reclaimed, "duration_ms": time.Since(start).Milliseconds()},
		})
	}
	return reclaimed
}

func (c *Collector) mark(obj *Object) {
	if obj == nil || obj.marked {
		return
	}
	obj.marked = true
	obj.gcVisit(c.mark)
}

func (c *Collector) sweep() int {
	reclaimed := 0

	for _, chain := range c.heap.clusters {
		for cl := chain.head; cl != nil; cl = cl.next {
			for i := range cl.slots {
				if !cl.used[i] {
					continue
				}
				obj := &cl.slots[i]
				if obj.marked {
					obj.marked = false
					continue
				}
				cl.free(i)
				c.heap.weakTable.invalidate(obj)
				c.heap.liveObjects--
				reclaimed++
			}
		}
	}

	var deadLarge []*Object
	c.heap.largeTable.forEachLive(func(obj *Object) {
		if obj.marked {
			obj.marked = false
			return
		}
		deadLarge = append(deadLarge, obj)
	})
	for _, obj := range deadLarge {
		c.heap.largeTable.remove(obj)
		c.heap.weakTable.invalidate(obj)
		c.heap.liveObjects--
		reclaimed++
	}

	return reclaimed
}
