package gop

import (
	"fmt"
	"math"
	"sort"
	"unsafe"
)

// chunk is one contiguously allocated block of slots. Its backing slice is
// allocated once and never appended to, so the address of every slot is
// stable for the chunk's lifetime.
type chunk[T any] struct {
	slots []T
	start uint32 // global index of slots[0]
}

// StoragePool is a growable arena of element slots. It owns an ordered
// sequence of chunks and exposes them as a single global index space:
// index i always resolves to the same slot for as long as the chunk
// holding it remains allocated, which is what keeps handles and pointers
// valid across growth.
//
// The pool is pure address-space management. It never inspects slot
// contents and never tracks which slots are in use; that is the object
// pool layer's job.
type StoragePool[T any] struct {
	chunks   []chunk[T]
	size     uint32 // total slots across all chunks
	elemSize uintptr
	label    string
	obs      Observer
}

// NewStoragePool returns an empty storage pool for T. A nil observer is
// replaced with NopObserver.
func NewStoragePool[T any](obs Observer) *StoragePool[T] {
	if obs == nil {
		obs = NopObserver{}
	}
	var zero T
	return &StoragePool[T]{
		elemSize: unsafe.Sizeof(zero),
		label:    typeLabel[T](),
		obs:      obs,
	}
}

// slotRoom checks that growing from size by n slots of elemSize bytes each
// keeps both the slot count and the total byte size inside the uint32
// index space.
func slotRoom(size, n uint32, elemSize uintptr) error {
	if n == 0 {
		return fmt.Errorf("StoragePool: cannot allocate a zero-slot chunk: %w", ErrCapacityOverflow)
	}
	total := uint64(size) + uint64(n)
	if total > math.MaxUint32 || total*uint64(elemSize) > math.MaxUint32 {
		return fmt.Errorf("StoragePool: %d slots of %d bytes exceed the index space: %w", total, elemSize, ErrCapacityOverflow)
	}
	return nil
}

// Allocate appends one new chunk holding n additional slots. The new slots
// occupy global indices [Size(), Size()+n). On success an allocation
// notification with the slot and byte deltas is emitted.
func (s *StoragePool[T]) Allocate(n uint32) error {
	if err := slotRoom(s.size, n, s.elemSize); err != nil {
		return err
	}
	s.chunks = append(s.chunks, chunk[T]{slots: make([]T, n), start: s.size})
	s.size += n
	s.obs.Allocated(s.label, int(n), int(uintptr(n)*s.elemSize))
	return nil
}

// Deallocate releases the most recently appended chunk and emits a
// deallocation notification with negative deltas. The caller must
// guarantee no slot in that chunk is occupied; this is not checked.
// Deallocate on an empty pool is a no-op.
func (s *StoragePool[T]) Deallocate() {
	if len(s.chunks) == 0 {
		return
	}
	last := len(s.chunks) - 1
	n := uint32(len(s.chunks[last].slots))
	s.chunks[last] = chunk[T]{}
	s.chunks = s.chunks[:last]
	s.size -= n
	s.obs.Allocated(s.label, -int(n), -int(uintptr(n)*s.elemSize))
}

// At resolves global index i to its slot. It is the hot-path primitive:
// i must be below Size(), out-of-range indices are not checked here.
func (s *StoragePool[T]) At(i uint32) *T {
	if len(s.chunks) == 1 {
		return &s.chunks[0].slots[i]
	}
	// find the last chunk whose start index is not above i
	k := sort.Search(len(s.chunks), func(j int) bool { return s.chunks[j].start > i }) - 1
	c := &s.chunks[k]
	return &c.slots[i-c.start]
}

// Storage returns the slots of chunk k, exposed for introspection and
// tests.
func (s *StoragePool[T]) Storage(k int) []T {
	return s.chunks[k].slots
}

// StorageCount returns the number of chunks.
func (s *StoragePool[T]) StorageCount() int {
	return len(s.chunks)
}

// Size returns the total slot count across all chunks.
func (s *StoragePool[T]) Size() uint32 {
	return s.size
}

// SizeOfValue returns the byte size of one element slot.
func (s *StoragePool[T]) SizeOfValue() uintptr {
	return s.elemSize
}

// AlignOfValue returns the alignment of one element slot.
func (s *StoragePool[T]) AlignOfValue() uintptr {
	var zero T
	return unsafe.Alignof(zero)
}
