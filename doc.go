// Package gop implements a generic object pool backed by chunked storage.
//
// The pool hands out stable uint32 handles for constructed objects. Storage
// grows by appending additional chunks, never by relocating existing slots,
// so handles and pointers obtained from the pool stay valid across growth.
// Freed slots are recycled through a free list before new storage is used,
// and iteration skips slots that the element type's policy marks invisible.
//
// Neither the pool nor the storage arenas are safe for concurrent use.
// Callers sharing a pool across goroutines must synchronize externally.
package gop
