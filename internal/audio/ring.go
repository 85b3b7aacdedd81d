package audio

import "sync"

// Ring is a thread-safe circular buffer of mono float32 samples. The
// capture callback writes into it and the analysis tick reads the most
// recent window.
type Ring struct {
	buf  []float32
	size int
	w    int // write position
	len  int // current fill level
	mu   sync.Mutex
}

// NewRing creates a ring holding up to size samples.
func NewRing(size int) *Ring {
	if size < 1 {
		size = 1
	}
	return &Ring{
		buf:  make([]float32, size),
		size: size,
	}
}

// Write appends samples, overwriting the oldest data if full.
func (r *Ring) Write(p []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range p {
		r.buf[r.w] = s
		r.w = (r.w + 1) % r.size
	}
	r.len += len(p)
	if r.len > r.size {
		r.len = r.size
	}
}

// Latest copies the n most recent samples into dst, oldest first, and
// returns how many were available. When fewer than n samples have been
// written the tail of dst is filled and the head zeroed.
func (r *Ring) Latest(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	have := min(n, r.len)
	pad := n - have
	for i := range pad {
		dst[i] = 0
	}
	start := (r.w - have + r.size) % r.size
	for i := range have {
		dst[pad+i] = r.buf[(start+i)%r.size]
	}
	return have
}

// Len reports the current fill level.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.len
}

// Clear resets the buffer.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w = 0
	r.len = 0
}
