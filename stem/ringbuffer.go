package stem

// RingBuffer is a generic ring buffer with buffer and a cursor. Cursor is the
// index of the oldest value, i.e. the one written next.
type RingBuffer[T any] struct {
	Buffer []T
	Cursor int
}

func (r *RingBuffer[T]) WriteWrap(values []T) {
	if len(r.Buffer) == 0 {
		return
	}
	if len(values) > len(r.Buffer) {
		values = values[len(values)-len(r.Buffer):]
	}
	r.Cursor = (r.Cursor + len(values)) % len(r.Buffer)
	a := min(len(values), r.Cursor)                 // how many values to copy before the cursor
	b := min(len(values)-a, len(r.Buffer)-r.Cursor) // how many values to copy to the end of the buffer
	copy(r.Buffer[r.Cursor-a:r.Cursor], values[len(values)-a:])
	copy(r.Buffer[len(r.Buffer)-b:], values[len(values)-a-b:])
}

// ReadOrdered copies the contents into dst from the oldest to the newest
// value and returns the number of values copied.
func (r *RingBuffer[T]) ReadOrdered(dst []T) int {
	n := min(len(dst), len(r.Buffer))
	start := r.Cursor + len(r.Buffer) - n // skip the oldest values if dst is short
	for i := range n {
		dst[i] = r.Buffer[(start+i)%len(r.Buffer)]
	}
	return n
}

func (r *RingBuffer[T]) Clear() {
	clear(r.Buffer)
	r.Cursor = 0
}
