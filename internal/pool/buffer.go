// Package pool provides reusable copy buffers for streaming object
// bodies to disk without per-download allocations.
package pool

import (
	"sync"
)

// CopyBufferSize is the chunk size used when streaming an object body
// to disk (1MB).
const CopyBufferSize = 1024 * 1024

// BufferPool manages reusable copy buffers.
type BufferPool struct {
	buffers *sync.Pool
}

// NewBufferPool creates a new buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		buffers: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, CopyBufferSize)
				return &buf
			},
		},
	}
}

// Get returns a full-length buffer suitable for io.CopyBuffer, which
// rejects zero-length buffers. The caller is responsible for calling
// Put to return the buffer to the pool.
func (bp *BufferPool) Get() []byte {
	bufPtr := bp.buffers.Get().(*[]byte)
	return (*bufPtr)[:CopyBufferSize]
}

// Put returns a buffer to the pool. Buffers of foreign capacity are
// dropped. The buffer should not be used after calling Put.
func (bp *BufferPool) Put(buf []byte) {
	if cap(buf) != CopyBufferSize {
		return
	}
	buf = buf[:CopyBufferSize]
	bp.buffers.Put(&buf)
}

// Global buffer pool instance for use throughout the module.
var globalBufferPool = NewBufferPool()

// GetCopyBuffer returns a copy buffer from the global pool.
func GetCopyBuffer() []byte {
	return globalBufferPool.Get()
}

// PutCopyBuffer returns a copy buffer to the global pool.
func PutCopyBuffer(buf []byte) {
	globalBufferPool.Put(buf)
}
