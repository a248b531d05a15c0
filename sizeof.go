package tsruntime

// Size classes for the segregated-fit heap (heap.go, cluster.go). The
// Go runtime allocator (class_to_size, runtime/malloc.go, represented in
// the retrieved pack) rounds every small allocation up to one of a fixed
// table of size classes so objects of similar size share a cluster/span;
// this is the same idea, reduced to the power-of-two ladder spec.md calls
// for (32B .. 4KiB), above which an allocation is "large" and gets its own
// entry in the large-object table instead of a cluster slot.
const (
	minSizeClass = 32
	maxSizeClass = 4096

	// largeObjectThreshold is the boundary above which Heap.Alloc bypasses
	// clusters entirely and tracks the object in the large-object table.
	largeObjectThreshold = maxSizeClass
)

// defaultSizeClasses is the default size-class ladder: ascending powers of
// two from minSizeClass to maxSizeClass inclusive.
var defaultSizeClasses = func() []int {
	var classes []int
	for c := minSizeClass; c <= maxSizeClass; c *= 2 {
		classes = append(classes, c)
	}
	return classes
}()

// sizeClassFor returns the smallest size class able to hold n bytes, and
// false if n exceeds the largest class in classes (largeObjectThreshold for
// the default ladder; the caller should use the large-object path instead).
func sizeClassFor(classes []int, n int) (int, bool) {
	for _, c := range classes {
		if n <= c {
			return c, true
		}
	}
	return 0, false
}

// alignUp rounds n up to the nearest multiple of align, which must be a
// power of two.
func alignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

const (
	// sizeOfCacheLine is a cache-line size covering both x86-64 (64B lines)
	// and Apple Silicon / other ARM64 (128B lines). No struct in this
	// package is padded with it; Cluster's counters are unpadded.
	sizeOfCacheLine = 128

	// defaultClusterBytes targets a cluster arena of roughly 512 KiB per
	// size class, per spec.md's description of clusters as contiguous
	// mid-sized arenas (a middle ground between per-object heap allocation
	// and one arena for the whole heap).
	defaultClusterBytes = 512 * 1024
)

// defaultSlotCountFor derives how many slots of the given size class fit a
// defaultClusterBytes arena, with a floor of 16 slots for the largest class.
func defaultSlotCountFor(classSize int) int {
	n := defaultClusterBytes / classSize
	if n < 16 {
		n = 16
	}
	return n
}
