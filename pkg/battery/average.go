package battery

// window is a fixed-size moving average. Copies share the backing array, so
// Tick clones every window before it pushes anything.
type window struct {
	buf  []int
	sum  int
	next int
}

func newWindow(size int, seed int) window {
	if size < 1 {
		size = 1
	}
	w := window{buf: make([]int, size)}
	w.fill(seed)
	return w
}

func (w window) clone() window {
	buf := make([]int, len(w.buf))
	copy(buf, w.buf)
	return window{buf: buf, sum: w.sum, next: w.next}
}

func (w *window) fill(v int) {
	for i := range w.buf {
		w.buf[i] = v
	}
	w.sum = v * len(w.buf)
	w.next = 0
}

// push records v and returns the new average.
func (w *window) push(v int) int {
	w.sum -= w.buf[w.next]
	w.buf[w.next] = v
	w.sum += v
	w.next = (w.next + 1) % len(w.buf)
	return w.avg()
}

func (w window) avg() int {
	if len(w.buf) == 0 {
		return 0
	}
	return w.sum / len(w.buf)
}

func (w window) size() int {
	return len(w.buf)
}
