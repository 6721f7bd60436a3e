package model

// MaxWindow is the number of samples the dashboard keeps in memory.
const MaxWindow = 500

// Window is the bounded, ordered sequence of samples currently displayed.
// It is a fixed-size ring buffer: appending to a full window drops the oldest
// entry. Samples are kept in insertion order and never re-sorted.
type Window struct {
	buf  []Sample
	head int // index of the next write position
	size int // number of valid entries
}

// NewWindow creates a Window with the given capacity.
// If capacity <= 0, MaxWindow is used.
func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = MaxWindow
	}
	return &Window{
		buf: make([]Sample, capacity),
	}
}

// Append adds s to the tail, evicting the oldest entry if the window is full.
func (w *Window) Append(s Sample) {
	w.buf[w.head] = s
	w.head = (w.head + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
}

// Replace sets the window to exactly samples, discarding the previous
// contents. When samples is longer than the capacity only the most recent
// entries are kept.
func (w *Window) Replace(samples []Sample) {
	w.Clear()
	if len(samples) > len(w.buf) {
		samples = samples[len(samples)-len(w.buf):]
	}
	n := copy(w.buf, samples)
	w.size = n
	w.head = n % len(w.buf)
}

// Len returns the number of valid entries in the window.
func (w *Window) Len() int {
	return w.size
}

// Cap returns the window capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Clear resets the window to empty.
func (w *Window) Clear() {
	clear(w.buf)
	w.head = 0
	w.size = 0
}

// Samples returns a copy of the window in chronological order (oldest first).
func (w *Window) Samples() []Sample {
	out := make([]Sample, w.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (w.head - w.size + len(w.buf)) % len(w.buf)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(start+i)%len(w.buf)]
	}
	return out
}

// Latest returns the most recently appended sample.
func (w *Window) Latest() (Sample, bool) {
	if w.size == 0 {
		return Sample{}, false
	}
	return w.buf[(w.head-1+len(w.buf))%len(w.buf)], true
}

// Latencies returns the latency series (oldest first) for charting.
// Absent latencies are reported as 0.
func (w *Window) Latencies() []float64 {
	samples := w.Samples()
	out := make([]float64, len(samples))
	for i, s := range samples {
		if s.HasLatency() {
			out[i] = float64(s.LatencyMs)
		}
	}
	return out
}
