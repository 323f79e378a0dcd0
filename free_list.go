package gop

// freeList tracks vacated slot indices offered for reuse before the pool's
// high-water mark is advanced. It pops in LIFO order: the most recently
// freed slot is the most likely to still be cache-resident.
type freeList []uint32

func (f *freeList) push(i uint32) {
	*f = append(*f, i)
}

// pop returns a reusable slot index.
// The second returned value indicates whether the list had one.
func (f *freeList) pop() (uint32, bool) {
	old := *f
	if len(old) == 0 {
		return 0, false
	}
	i := old[len(old)-1]
	*f = old[:len(old)-1]
	return i, true
}

func (f *freeList) reset() {
	*f = (*f)[:0]
}

func (f freeList) len() int {
	return len(f)
}
