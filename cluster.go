package tsruntime

// Cluster is a single contiguous arena of fixed-size slots, all belonging
// to one size class. Allocation recycles freed slots from an intrusive free
// list first (a free slot's freeNext field holds index+1 of the next free
// slot instead of object data) and bumps into never-used slots only when
// that list is empty. Grounded on the classic segregated-fit
// design documented by the pack's runtime allocator references
// (runtime/malloc.go class_to_size tables): one arena per size class,
// carved into uniform slots, rather than a general-purpose free-list
// allocator searching for best fit.
type Cluster struct {
	slotSize int
	slots    []Object
	used     []bool

	bumpNext int
	freeHead int // index+1 into slots of the first free slot, 0 = none

	liveCount int
	next      *Cluster // next cluster in the size class's chain
}

func newCluster(slotSize, slotCount int) *Cluster {
	return &Cluster{
		slotSize: slotSize,
		slots:    make([]Object, slotCount),
		used:     make([]bool, slotCount),
	}
}

// allocSlot claims a free slot for an object of payload size n (n <=
// slotSize), initializing its header to vt. Returns false if the cluster
// has no free slot.
func (c *Cluster) allocSlot(n int, vt *Vtable) (*Object, bool) {
	var idx int
	switch {
	case c.freeHead != 0:
		idx = c.freeHead - 1
		c.freeHead = c.slots[idx].freeNext
	case c.bumpNext < len(c.slots):
		idx = c.bumpNext
		c.bumpNext++
	default:
		return nil, false
	}

	c.used[idx] = true
	c.liveCount++
	obj := &c.slots[idx]
	*obj = Object{
		Vtable:  vt,
		cluster: c,
		slotIdx: idx,
	}
	return obj, true
}

// free releases a slot back to the free list. Called by the [Collector]
// during sweep and by [Object.Release] when a refcount reaches zero.
func (c *Cluster) free(idx int) {
	if !c.used[idx] {
		return
	}
	c.used[idx] = false
	c.liveCount--
	c.slots[idx] = Object{freeNext: c.freeHead}
	c.freeHead = idx + 1
}

// forEachLive invokes fn for every currently allocated slot, used by the
// collector's mark and sweep passes.
func (c *Cluster) forEachLive(fn func(*Object)) {
	for i := range c.slots {
		if c.used[i] {
			fn(&c.slots[i])
		}
	}
}
