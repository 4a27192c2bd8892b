package indicators

// SMA is a trailing simple average over a fixed window kept in a ring buffer.
type SMA struct {
	period int
	window []float64
	next   int
	count  int
	sum    float64
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	if period < 1 {
		period = 1
	}
	return &SMA{
		period: period,
		window: make([]float64, period),
	}
}

// UpdateSingle pushes a value and returns the average of what the window holds.
func (s *SMA) UpdateSingle(value float64) float64 {
	if s.count == s.period {
		s.sum -= s.window[s.next]
	} else {
		s.count++
	}
	s.window[s.next] = value
	s.sum += value
	s.next = (s.next + 1) % s.period

	// Recompute from the buffer once per lap so float drift cannot accumulate.
	if s.next == 0 {
		s.sum = 0
		for i := 0; i < s.count; i++ {
			s.sum += s.window[i]
		}
	}
	return s.sum / float64(s.count)
}

// Full reports whether the window holds period values.
func (s *SMA) Full() bool {
	return s.count == s.period
}

// ResetState resets the SMA state for a fresh calculation
func (s *SMA) ResetState() {
	for i := range s.window {
		s.window[i] = 0
	}
	s.next, s.count, s.sum = 0, 0, 0
}

// GetRequiredPeriods returns the minimum number of periods needed
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
