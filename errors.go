package gop

import "errors"

// ErrCapacityOverflow is returned when a requested or resulting size would
// exceed the representable range of the index or handle type: growing a
// storage pool past the uint32 index space or its byte-size limit, growing
// an object pool past its maximum size, or exceeding a fixed storage pool's
// page ceiling.
var ErrCapacityOverflow = errors.New("capacity overflow")

// ErrNotOccupied is returned by operations that require a handle to map to
// a currently occupied slot, such as removing a handle twice.
var ErrNotOccupied = errors.New("slot not occupied")
