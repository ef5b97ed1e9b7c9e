package ringbuf

// New creates a ring buffer that retains the newest sz elements.
func New[T any](sz int) *Buffer[T] {
	return &Buffer[T]{
		buf: make([]T, sz),
	}
}

// Buffer is a fixed-size ring that overwrites the oldest elements on
// overflow. It is used to hold the most recent window of a continuously
// produced sample stream.
type Buffer[T any] struct {
	buf   []T
	write int
	full  bool
}

// Size returns underlying size of the buffer.
func (b *Buffer[T]) Size() int {
	return len(b.buf)
}

// Len returns the number of elements currently in the buffer.
func (b *Buffer[T]) Len() int {
	if b.full {
		return len(b.buf)
	}
	return b.write
}

// Push adds one element, discarding the oldest if the buffer is full.
func (b *Buffer[T]) Push(v T) {
	if len(b.buf) == 0 {
		return
	}
	b.buf[b.write] = v
	b.write = (b.write + 1) % len(b.buf)
	if b.write == 0 {
		b.full = true
	}
}

// Write appends all elements of p, discarding the oldest elements as needed.
func (b *Buffer[T]) Write(p []T) (int, error) {
	n := len(p)
	if len(b.buf) == 0 {
		return n, nil
	}
	// Only the newest len(buf) elements can survive anyway.
	if len(p) > len(b.buf) {
		p = p[len(p)-len(b.buf):]
	}
	dn := copy(b.buf[b.write:], p)
	b.write = (b.write + dn) % len(b.buf)
	if b.write == 0 {
		b.full = true
	}
	if dn == len(p) {
		return n, nil
	}
	b.full = true
	b.write = copy(b.buf, p[dn:]) % len(b.buf)
	return n, nil
}

// Tail copies the most recent len(dst) elements into dst, oldest first.
// If fewer elements are buffered, the head of dst keeps its zero values and
// the available elements fill the end. It returns the number copied.
func (b *Buffer[T]) Tail(dst []T) int {
	want := len(dst)
	have := b.Len()
	if want > have {
		dst = dst[want-have:]
		want = have
	}
	if want == 0 {
		return 0
	}
	// Newest element is just before the write cursor.
	start := b.write - want
	if start >= 0 {
		return copy(dst, b.buf[start:b.write])
	}
	start += len(b.buf)
	n := copy(dst, b.buf[start:])
	n += copy(dst[n:], b.buf[:b.write])
	return n
}

// Reset discards all buffered elements.
func (b *Buffer[T]) Reset() {
	b.write = 0
	b.full = false
}
