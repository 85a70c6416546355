package pool

import (
	"sync"
)

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified size
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer from the pool or creates a new one if none are available
func (bp *BufferPool) Get() *[]byte {
	return bp.pool.Get().(*[]byte)
}

// Put returns a buffer to the pool for reuse
func (bp *BufferPool) Put(buffer *[]byte) {
	// Reset buffer length but keep capacity
	*buffer = (*buffer)[:0]
	bp.pool.Put(buffer)
}

// RuneBufferPool implements a pool of rune slices
type RuneBufferPool struct {
	pool sync.Pool
	size int
}

// NewRuneBufferPool creates a new pool of rune slices with the specified size
func NewRuneBufferPool(size int) *RuneBufferPool {
	return &RuneBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]rune, 0, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a rune buffer from the pool
func (rbp *RuneBufferPool) Get() *[]rune {
	return rbp.pool.Get().(*[]rune)
}

// Put returns a rune buffer to the pool
func (rbp *RuneBufferPool) Put(buffer *[]rune) {
	*buffer = (*buffer)[:0]
	rbp.pool.Put(buffer)
}

// IntBufferPool implements a pool of int slices, used for dynamic programming tables
type IntBufferPool struct {
	pool sync.Pool
}

// NewIntBufferPool creates a new pool of int slices with the specified initial capacity
func NewIntBufferPool(size int) *IntBufferPool {
	return &IntBufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]int, 0, size)
				return &buffer
			},
		},
	}
}

// Get retrieves an int buffer of exactly n zeroed elements
func (ibp *IntBufferPool) Get(n int) *[]int {
	buffer := ibp.pool.Get().(*[]int)
	if cap(*buffer) < n {
		*buffer = make([]int, n)
		return buffer
	}
	*buffer = (*buffer)[:n]
	clear(*buffer)
	return buffer
}

// Put returns an int buffer to the pool
func (ibp *IntBufferPool) Put(buffer *[]int) {
	*buffer = (*buffer)[:0]
	ibp.pool.Put(buffer)
}
