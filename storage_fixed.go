package gop

import (
	"fmt"
	"unsafe"
)

// FixedStoragePool is the fixed-page variant of StoragePool: every chunk
// holds exactly pageSize slots, so resolving a global index is plain
// divide/modulo arithmetic instead of a chunk search. The page count is
// bounded at construction time.
type FixedStoragePool[T any] struct {
	pages    [][]T
	pageSize uint32
	maxPages int
	size     uint32
	elemSize uintptr
	label    string
	obs      Observer
}

// NewFixedStoragePool returns a fixed-page storage pool for T holding one
// eagerly allocated page of pageSize slots. Up to maxPages pages can be
// allocated in total. A nil observer is replaced with NopObserver.
func NewFixedStoragePool[T any](pageSize uint32, maxPages int, obs Observer) (*FixedStoragePool[T], error) {
	if obs == nil {
		obs = NopObserver{}
	}
	if maxPages < 1 {
		return nil, fmt.Errorf("FixedStoragePool: page count %d is below 1: %w", maxPages, ErrCapacityOverflow)
	}
	var zero T
	f := &FixedStoragePool[T]{
		pageSize: pageSize,
		maxPages: maxPages,
		elemSize: unsafe.Sizeof(zero),
		label:    typeLabel[T](),
		obs:      obs,
	}
	if err := f.Allocate(); err != nil {
		return nil, err
	}
	return f, nil
}

// Allocate appends one page of pageSize slots. It fails with a capacity
// overflow when the page ceiling is reached or the resulting size leaves
// the uint32 index space.
func (f *FixedStoragePool[T]) Allocate() error {
	if len(f.pages) >= f.maxPages {
		return fmt.Errorf("FixedStoragePool: page ceiling %d reached: %w", f.maxPages, ErrCapacityOverflow)
	}
	if err := slotRoom(f.size, f.pageSize, f.elemSize); err != nil {
		return err
	}
	f.pages = append(f.pages, make([]T, f.pageSize))
	f.size += f.pageSize
	f.obs.Allocated(f.label, int(f.pageSize), int(uintptr(f.pageSize)*f.elemSize))
	return nil
}

// Deallocate releases the most recently appended page. The caller must
// guarantee no slot in that page is occupied; this is not checked.
// Deallocate on an empty pool is a no-op.
func (f *FixedStoragePool[T]) Deallocate() {
	if len(f.pages) == 0 {
		return
	}
	f.pages[len(f.pages)-1] = nil
	f.pages = f.pages[:len(f.pages)-1]
	f.size -= f.pageSize
	f.obs.Allocated(f.label, -int(f.pageSize), -int(uintptr(f.pageSize)*f.elemSize))
}

// At resolves global index i to its slot. i must be below Size();
// out-of-range indices are not checked here.
func (f *FixedStoragePool[T]) At(i uint32) *T {
	return &f.pages[i/f.pageSize][i%f.pageSize]
}

// Storage returns the slots of page k, exposed for introspection and
// tests.
func (f *FixedStoragePool[T]) Storage(k int) []T {
	return f.pages[k]
}

// StorageCount returns the number of pages.
func (f *FixedStoragePool[T]) StorageCount() int {
	return len(f.pages)
}

// Size returns the total slot count across all pages.
func (f *FixedStoragePool[T]) Size() uint32 {
	return f.size
}

// PageSize returns the slot count of every page.
func (f *FixedStoragePool[T]) PageSize() uint32 {
	return f.pageSize
}

// SizeOfValue returns the byte size of one element slot.
func (f *FixedStoragePool[T]) SizeOfValue() uintptr {
	return f.elemSize
}
