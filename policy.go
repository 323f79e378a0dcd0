package gop

// Policy is the per-element-type customization contract of an ObjectPool.
// It is supplied as a type parameter and held by value, so a stateless
// policy struct resolves statically and its methods inline on the
// construct and iterate paths.
type Policy[T any, ID ~uint32] interface {
	// StoreHandle reports whether the pool should mirror a slot's handle
	// into the object via SetHandle whenever it constructs into the slot.
	StoreHandle() bool

	// ShrinkAfterClear reports whether Clear should release every storage
	// chunk beyond the first, restoring the pool's construction capacity.
	ShrinkAfterClear() bool

	// IsVisible reports whether an occupied slot's object should be
	// yielded by iteration. It must be a pure function of the object.
	IsVisible(*T) bool

	SetHandle(*T, ID)
	GetHandle(*T) ID
}

// DefaultPolicy is the policy used when the element type's owner supplies
// none: no handle mirroring, no shrink on clear, every object visible.
type DefaultPolicy[T any, ID ~uint32] struct{}

func (DefaultPolicy[T, ID]) StoreHandle() bool      { return false }
func (DefaultPolicy[T, ID]) ShrinkAfterClear() bool { return false }
func (DefaultPolicy[T, ID]) IsVisible(*T) bool      { return true }
func (DefaultPolicy[T, ID]) SetHandle(*T, ID)       {}
func (DefaultPolicy[T, ID]) GetHandle(*T) ID        { return 0 }
