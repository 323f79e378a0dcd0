package gop

import (
	"fmt"
	"iter"
	"strings"

	"github.com/willf/bitset"
)

// ObjectPool hands out stable integer handles for constructed objects.
// It owns a StoragePool for slot memory, recycles freed slots through a
// free list and tracks occupancy in a bitset. Storage grows on demand in
// chunks the size of the construction capacity, so Capacity() is always
// an integer multiple of it.
//
// ID is the handle type, any type with uint32 as its underlying type.
// A handle is the global slot index of the object it was returned for.
// Freed indices are reused verbatim by later constructions; see Ref for
// references that detect such reuse.
type ObjectPool[T any, ID ~uint32, P Policy[T, ID]] struct {
	objects *StoragePool[T]
	free    freeList
	alive   *bitset.BitSet
	gens    []uint32
	used    uint32 // high-water mark of slots ever constructed into
	live    uint32
	step    uint32 // growth increment, equal to the construction capacity
	maxSize uint32
	label   string
	obs     Observer
	policy  P
}

// NewObjectPool returns a pool for T with an eagerly allocated first chunk
// of initial slots, customized by the policy type parameter P.
func NewObjectPool[T any, ID ~uint32, P Policy[T, ID]](initial uint32, opts ...Option) (*ObjectPool[T, ID, P], error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	objects := NewStoragePool[T](cfg.obs)
	if err := objects.Allocate(initial); err != nil {
		return nil, err
	}
	return &ObjectPool[T, ID, P]{
		objects: objects,
		alive:   bitset.New(uint(initial)),
		step:    initial,
		maxSize: cfg.maxSize,
		label:   typeLabel[T](),
		obs:     cfg.obs,
	}, nil
}

// New returns a pool with uint32 handles and the default policy.
func New[T any](initial uint32, opts ...Option) (*ObjectPool[T, uint32, DefaultPolicy[T, uint32]], error) {
	return NewObjectPool[T, uint32, DefaultPolicy[T, uint32]](initial, opts...)
}

// Construct places value into a slot and returns its handle and a pointer
// to the pooled object. Freed slots are reused first; only when the free
// list is empty and every slot below the capacity has been used does the
// pool grow by one chunk. Growing past MaxSize fails with
// ErrCapacityOverflow and leaves the pool unchanged.
func (p *ObjectPool[T, ID, P]) Construct(value T) (ID, *T, error) {
	idx, slot, err := p.acquire()
	if err != nil {
		return 0, nil, err
	}
	*slot = value
	p.publish(idx, slot)
	return ID(idx), slot, nil
}

// ConstructWith constructs in place: init receives the slot directly
// instead of a value being copied in. Slots are zeroed between occupants,
// so init starts from the zero value of T. A nil init leaves the zero
// value in place.
func (p *ObjectPool[T, ID, P]) ConstructWith(init func(*T)) (ID, *T, error) {
	idx, slot, err := p.acquire()
	if err != nil {
		return 0, nil, err
	}
	if init != nil {
		init(slot)
	}
	p.publish(idx, slot)
	return ID(idx), slot, nil
}

// acquire picks the slot for the next construction: the free list first,
// then the slot at the high-water mark, growing the storage when every
// slot below the capacity has been used.
func (p *ObjectPool[T, ID, P]) acquire() (uint32, *T, error) {
	idx, ok := p.free.pop()
	if !ok {
		if p.used == p.objects.Size() {
			if err := p.grow(); err != nil {
				return 0, nil, err
			}
		}
		idx = p.used
		p.used++
	}
	for uint32(len(p.gens)) <= idx {
		p.gens = append(p.gens, 0)
	}
	return idx, p.objects.At(idx), nil
}

// publish marks a freshly constructed slot occupied.
func (p *ObjectPool[T, ID, P]) publish(idx uint32, slot *T) {
	if p.policy.StoreHandle() {
		p.policy.SetHandle(slot, ID(idx))
	}
	p.alive.Set(uint(idx))
	p.live++
}

// grow appends one chunk of the pool's growth step, clamped so the final
// chunk can land exactly on the maximum size.
func (p *ObjectPool[T, ID, P]) grow() error {
	step := p.step
	if room := p.maxSize - p.objects.Size(); room < step {
		step = room
	}
	if step == 0 {
		p.obs.Fault(p.label, "construct would grow the pool past its maximum size")
		return fmt.Errorf("ObjectPool: cannot grow past max size %d: %w", p.maxSize, ErrCapacityOverflow)
	}
	return p.objects.Allocate(step)
}

// Remove destroys the object the handle refers to, returning its slot to
// the free list. Removing a handle that does not map to an occupied slot
// fails with ErrNotOccupied.
func (p *ObjectPool[T, ID, P]) Remove(id ID) error {
	idx := uint32(id)
	if !p.occupied(idx) {
		p.obs.Fault(p.label, "remove of a handle that is not occupied")
		return fmt.Errorf("ObjectPool: Remove(%d): %w", idx, ErrNotOccupied)
	}
	var zero T
	*p.objects.At(idx) = zero // drop references held by the object
	p.alive.Clear(uint(idx))
	p.gens[idx]++
	p.free.push(idx)
	p.live--
	return nil
}

func (p *ObjectPool[T, ID, P]) occupied(idx uint32) bool {
	return idx < p.used && p.alive.Test(uint(idx))
}

// Count returns 1 if the handle maps to an occupied slot and 0 otherwise,
// an existence probe that does not expose the object.
func (p *ObjectPool[T, ID, P]) Count(id ID) int {
	if p.occupied(uint32(id)) {
		return 1
	}
	return 0
}

// Get returns the object the handle refers to, or false if the slot is
// not occupied.
func (p *ObjectPool[T, ID, P]) Get(id ID) (*T, bool) {
	idx := uint32(id)
	if !p.occupied(idx) {
		return nil, false
	}
	return p.objects.At(idx), true
}

// At resolves a handle without checking occupancy. It is the hot-path
// accessor; the handle must map to a slot below the capacity.
func (p *ObjectPool[T, ID, P]) At(id ID) *T {
	return p.objects.At(uint32(id))
}

// Clear destroys every occupied object and resets the pool to empty.
// When the policy's shrink flag is set, every chunk beyond the first is
// released and Capacity returns to the construction size; otherwise the
// grown storage is retained for reuse.
func (p *ObjectPool[T, ID, P]) Clear() {
	var zero T
	for i, e := p.alive.NextSet(0); e; i, e = p.alive.NextSet(i + 1) {
		*p.objects.At(uint32(i)) = zero
	}
	for i := uint32(0); i < p.used; i++ {
		p.gens[i]++
	}
	p.alive.ClearAll()
	p.free.reset()
	p.used = 0
	p.live = 0
	if p.policy.ShrinkAfterClear() {
		for p.objects.StorageCount() > 1 {
			p.objects.Deallocate()
		}
	}
}

// Size returns the number of live objects in the pool.
func (p *ObjectPool[T, ID, P]) Size() uint32 {
	return p.live
}

// Capacity returns the total slot count of the backing storage.
func (p *ObjectPool[T, ID, P]) Capacity() uint32 {
	return p.objects.Size()
}

// MaxSize returns the pool's slot count ceiling.
func (p *ObjectPool[T, ID, P]) MaxSize() uint32 {
	return p.maxSize
}

// Objects returns the backing storage pool, exposed for introspection and
// tests.
func (p *ObjectPool[T, ID, P]) Objects() *StoragePool[T] {
	return p.objects
}

// All yields the occupied, policy-visible objects in ascending handle
// order. Each call starts a fresh pass, so the sequence is restartable.
func (p *ObjectPool[T, ID, P]) All() iter.Seq2[ID, *T] {
	return func(yield func(ID, *T) bool) {
		for i, e := p.alive.NextSet(0); e && uint32(i) < p.used; i, e = p.alive.NextSet(i + 1) {
			slot := p.objects.At(uint32(i))
			if !p.policy.IsVisible(slot) {
				continue
			}
			if !yield(ID(i), slot) {
				return
			}
		}
	}
}

// Front returns the first object iteration would yield, or false when no
// object is visible.
func (p *ObjectPool[T, ID, P]) Front() (*T, bool) {
	for _, slot := range p.All() {
		return slot, true
	}
	return nil, false
}

// Back returns the last object iteration would yield, or false when no
// object is visible.
func (p *ObjectPool[T, ID, P]) Back() (*T, bool) {
	for i := p.used; i > 0; i-- {
		idx := i - 1
		if !p.alive.Test(uint(idx)) {
			continue
		}
		slot := p.objects.At(idx)
		if p.policy.IsVisible(slot) {
			return slot, true
		}
	}
	return nil, false
}

// String renders the visible objects in iteration order, in the form
// "object_pool [a, b, c]".
func (p *ObjectPool[T, ID, P]) String() string {
	var b strings.Builder
	b.WriteString("object_pool [")
	first := true
	for _, slot := range p.All() {
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%v", *slot)
	}
	b.WriteString("]")
	return b.String()
}

// DebugCheckInternalConsistency walks the free list and the occupied set
// and verifies that they partition [0, high-water mark) exactly: no index
// is in both, no index is in neither, no free index sits at or above the
// mark and no occupied index survives above it. It is meant for
// fuzz-style tests interleaving Construct and Remove, not for production
// paths.
func (p *ObjectPool[T, ID, P]) DebugCheckInternalConsistency() error {
	seen := bitset.New(uint(p.used))
	for _, idx := range p.free {
		if idx >= p.used {
			return fmt.Errorf("free index %d at or above the high-water mark %d", idx, p.used)
		}
		if p.alive.Test(uint(idx)) {
			return fmt.Errorf("index %d is both free and occupied", idx)
		}
		if seen.Test(uint(idx)) {
			return fmt.Errorf("index %d appears twice in the free list", idx)
		}
		seen.Set(uint(idx))
	}
	for i := uint32(0); i < p.used; i++ {
		if !seen.Test(uint(i)) && !p.alive.Test(uint(i)) {
			return fmt.Errorf("index %d below the high-water mark %d is neither free nor occupied", i, p.used)
		}
	}
	if i, e := p.alive.NextSet(uint(p.used)); e {
		return fmt.Errorf("index %d above the high-water mark %d is occupied", i, p.used)
	}
	if uint32(p.free.len())+p.live != p.used {
		return fmt.Errorf("free count %d plus live count %d does not cover the high-water mark %d", p.free.len(), p.live, p.used)
	}
	return nil
}
