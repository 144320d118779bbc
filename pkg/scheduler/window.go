package scheduler

// Window is a fixed capacity FIFO of recently assigned member names.
// The oldest names are evicted once the capacity is reached.
type Window struct {
	buf    []string
	start  int
	size   int
	counts map[string]int
}

// NewWindow creates a window of the given capacity seeded with names.
// Only the last capacity names of seed are kept.
func NewWindow(capacity int, seed []string) *Window {
	if capacity < 0 {
		capacity = 0
	}
	w := &Window{
		buf:    make([]string, capacity),
		counts: make(map[string]int, capacity),
	}
	w.Record(seed...)
	return w
}

// Contains reports whether name is in the window
func (w *Window) Contains(name string) bool {
	return w.counts[name] > 0
}

// Record appends names in order, evicting the oldest on overflow
func (w *Window) Record(names ...string) {
	if len(w.buf) == 0 {
		return
	}
	for _, n := range names {
		if w.size == len(w.buf) {
			old := w.buf[w.start]
			if w.counts[old]--; w.counts[old] == 0 {
				delete(w.counts, old)
			}
			w.buf[w.start] = n
			w.start = (w.start + 1) % len(w.buf)
		} else {
			w.buf[(w.start+w.size)%len(w.buf)] = n
			w.size++
		}
		w.counts[n]++
	}
}

// Cap returns the capacity
func (w *Window) Cap() int { return len(w.buf) }

// Names returns a copy of the window, oldest first
func (w *Window) Names() []string {
	out := make([]string, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}
