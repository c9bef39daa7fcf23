package bridge

// fifo is a bounded circular byte queue between the host reader and the
// simulated receiver. One slot stays free to tell full from empty.
type fifo struct {
	buf   []byte
	read  int
	write int
	size  int
}

func newFifo(capacity int) *fifo {
	return &fifo{
		buf:  make([]byte, capacity+1),
		size: capacity + 1,
	}
}

// push appends data and returns how many bytes fit
func (f *fifo) push(data []byte) int {
	n := 0
	for _, b := range data {
		next := (f.write + 1) % f.size
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		n++
	}
	return n
}

// pop removes up to max bytes from the front
func (f *fifo) pop(max int) []byte {
	n := f.available()
	if n > max {
		n = max
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = f.buf[f.read]
		f.read = (f.read + 1) % f.size
	}
	return out
}

func (f *fifo) available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return f.size - f.read + f.write
}
