package devices

import "sync"

// framebufPool provides pooled scratch buffers for the VGA device's window
// scaling pass, avoiding a fresh allocation on every frame. Adapted from
// the size-bucketed sync.Pool pattern used for I/O buffers elsewhere in the
// corpus; here there is exactly one size bucket since the framebuffer
// dimensions are fixed for the life of a run.
var framebufPool = sync.Pool{
	New: func() any { return new([]byte) },
}

// getFramebuf returns a scratch buffer of exactly size bytes, reusing a
// pooled one when its capacity is sufficient.
func getFramebuf(size int) []byte {
	bp := framebufPool.Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
	} else {
		b = b[:size]
	}
	return b
}

// putFramebuf returns a scratch buffer to the pool.
func putFramebuf(b []byte) {
	framebufPool.Put(&b)
}
