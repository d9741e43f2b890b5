// Package structs implements generic containers shared by the other packages.
package structs

import "sync"

// BufferPool is an interface for pools of scratch buffers.
// Implementations must be safe for concurrent use.
type BufferPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool is a typed wrapper around [sync.Pool].
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a new SyncPool allocating new objects with f
// whenever the pool is empty.
func NewSyncPool[T any](f func() T) *SyncPool[T] {
	return &SyncPool[T]{
		pool: &sync.Pool{
			New: func() any {
				return f()
			},
		},
	}
}

// Get returns an object of type T from the pool. The caller must not
// assume anything about its content.
func (spool *SyncPool[T]) Get() T {
	return spool.pool.Get().(T)
}

// Put returns buff to the pool.
func (spool *SyncPool[T]) Put(buff T) {
	spool.pool.Put(buff)
}
