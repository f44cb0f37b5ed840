package telemetry

// Sample is one tick of population history.
type Sample struct {
	Tick       int32   `csv:"tick" json:"tick"`
	TimeSec    float64 `csv:"time_sec" json:"time_sec"`
	Herbivores int     `csv:"herbivores" json:"herbivores"`
	Carnivores int     `csv:"carnivores" json:"carnivores"`
	Omnivores  int     `csv:"omnivores" json:"omnivores"`
	Plants     int     `csv:"plants" json:"plants"`
	Generation int     `csv:"generation" json:"generation"`
}

// Animals returns the total animal count in the sample.
func (s Sample) Animals() int {
	return s.Herbivores + s.Carnivores + s.Omnivores
}

// History is the append-only population series. With a positive cap the oldest
// samples are discarded first; order is always preserved.
type History struct {
	cap     int
	samples []Sample
	dropped int
}

// NewHistory creates a history holding at most capacity samples (0 = unbounded).
func NewHistory(capacity int) *History {
	return &History{cap: capacity}
}

// Append records a sample.
func (h *History) Append(s Sample) {
	if h.cap > 0 && len(h.samples) >= h.cap {
		// Shift in place to keep the backing array bounded.
		copy(h.samples, h.samples[1:])
		h.samples[len(h.samples)-1] = s
		h.dropped++
		return
	}
	h.samples = append(h.samples, s)
}

// Samples returns the retained samples, oldest first. The slice must not be modified.
func (h *History) Samples() []Sample {
	return h.samples
}

// Len returns the number of retained samples.
func (h *History) Len() int {
	return len(h.samples)
}

// Dropped returns how many samples were discarded by the cap.
func (h *History) Dropped() int {
	return h.dropped
}

// Last returns the newest sample.
func (h *History) Last() (Sample, bool) {
	if len(h.samples) == 0 {
		return Sample{}, false
	}
	return h.samples[len(h.samples)-1], true
}

// Reset discards every sample.
func (h *History) Reset() {
	h.samples = nil
	h.dropped = 0
}
