// Package pool provides typed object pools for the parser's hot paths:
// token buffers, log line buffers and request records.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic, type-safe wrapper around sync.Pool.
type Pool[T any] struct {
	pool    sync.Pool
	reset   func(*T) // called before an object is handed out again
	maxSize int64    // 0 = unlimited
	count   atomic.Int64
}

// NewPool creates a new generic pool with the given factory function
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return factory()
			},
		},
	}
}

// NewPoolWithReset creates a pool with a reset function called before reuse
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := NewPool(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	return obj
}

// Put returns an object to the pool. Objects beyond the configured maximum
// are dropped for the garbage collector.
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}
	if limit := atomic.LoadInt64(&p.maxSize); limit > 0 {
		if p.count.Add(1) > limit {
			p.count.Add(-1)
			return
		}
	}
	p.pool.Put(obj)
}

// SetMaxSize sets the maximum number of objects accepted back by Put.
func (p *Pool[T]) SetMaxSize(size int) {
	atomic.StoreInt64(&p.maxSize, int64(size))
}

// Stats returns approximate pool statistics
func (p *Pool[T]) Stats() (count int64, maxSize int) {
	return p.count.Load(), int(atomic.LoadInt64(&p.maxSize))
}

// BufferPool hands out byte slices from capacity buckets.
type BufferPool struct {
	buckets []int
	pools   []*Pool[[]byte]
}

// NewBufferPool creates a buffer pool with power-of-two buckets from 64 to
// 4096 bytes.
func NewBufferPool() *BufferPool {
	bp := &BufferPool{buckets: []int{64, 128, 256, 512, 1024, 2048, 4096}}
	for _, c := range bp.buckets {
		capacity := c
		bp.pools = append(bp.pools, NewPoolWithReset(
			func() *[]byte {
				buf := make([]byte, 0, capacity)
				return &buf
			},
			func(buf *[]byte) {
				*buf = (*buf)[:0]
			},
		))
	}
	return bp
}

// Get retrieves an empty buffer with at least minCap capacity.
func (bp *BufferPool) Get(minCap int) *[]byte {
	i := bp.bucket(minCap)
	if i < 0 {
		buf := make([]byte, 0, minCap)
		return &buf
	}
	return bp.pools[i].Get()
}

// Put returns buf to the largest bucket it can serve. Buffers that grew
// past the largest bucket are discarded.
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}
	c := cap(*buf)
	if c < bp.buckets[0] || c > bp.buckets[len(bp.buckets)-1] {
		return
	}
	i := len(bp.buckets) - 1
	for i > 0 && bp.buckets[i] > c {
		i--
	}
	bp.pools[i].Put(buf)
}

func (bp *BufferPool) bucket(minCap int) int {
	for i, b := range bp.buckets {
		if b >= minCap {
			return i
		}
	}
	return -1
}

var globalBufferPool = NewBufferPool()

// GetBuffer retrieves a buffer for log and help rendering.
func GetBuffer(minCap int) *[]byte {
	return globalBufferPool.Get(minCap)
}

// PutBuffer returns a buffer to the global pool
func PutBuffer(buf *[]byte) {
	globalBufferPool.Put(buf)
}
