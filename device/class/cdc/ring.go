package cdc

// ring is a fixed-size byte FIFO.
type ring struct {
	buf  []byte
	head int
	n    int
}

func (r *ring) Len() int  { return r.n }
func (r *ring) Free() int { return len(r.buf) - r.n }

// Write appends as much of p as fits and returns the count.
func (r *ring) Write(p []byte) int {
	n := min(len(p), r.Free())
	for i := 0; i < n; i++ {
		r.buf[(r.head+r.n+i)%len(r.buf)] = p[i]
	}
	r.n += n
	return n
}

// Read removes up to len(p) bytes into p and returns the count.
func (r *ring) Read(p []byte) int {
	n := min(len(p), r.n)
	for i := 0; i < n; i++ {
		p[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	r.head = (r.head + n) % len(r.buf)
	r.n -= n
	return n
}
