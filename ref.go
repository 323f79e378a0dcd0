package gop

import "math"

// Ref is a generation-checked reference to a pooled object. Plain handles
// are reused verbatim when a freed slot is recycled, so a handle captured
// before a Remove can silently point at an unrelated object afterwards.
// A Ref additionally captures the slot's generation at the time it was
// taken and goes dead the moment the slot is removed, cleared or reused.
type Ref[ID ~uint32] struct {
	id  ID
	gen uint32
}

// ID returns the plain handle the reference was taken for.
func (r Ref[ID]) ID() ID {
	return r.id
}

// Ref captures a generation-checked reference to the slot the handle maps
// to. Taking a Ref for a handle outside the pool yields a dead reference.
func (p *ObjectPool[T, ID, P]) Ref(id ID) Ref[ID] {
	idx := uint32(id)
	if idx >= uint32(len(p.gens)) {
		return Ref[ID]{id: id, gen: math.MaxUint32}
	}
	return Ref[ID]{id: id, gen: p.gens[idx]}
}

// Deref resolves a reference to its object. It returns false when the
// slot is not occupied or has been recycled since the reference was
// taken.
func (p *ObjectPool[T, ID, P]) Deref(r Ref[ID]) (*T, bool) {
	idx := uint32(r.id)
	if !p.occupied(idx) || p.gens[idx] != r.gen {
		return nil, false
	}
	return p.objects.At(idx), true
}
