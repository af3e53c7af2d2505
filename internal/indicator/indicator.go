// Package indicator holds the moving averages used by strategies.
package indicator

// EMA is an exponential moving average seeded with the SMA of its first period values.
type EMA struct {
	period     int
	multiplier float64
	seed       []float64
	value      float64
	ready      bool
}

// NewEMA builds an EMA; periods below 1 are treated as 1.
func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}
	return &EMA{
		period:     period,
		multiplier: 2 / float64(period+1),
		seed:       make([]float64, 0, period),
	}
}

// Update folds price in and returns the current value and whether it is initialized.
func (e *EMA) Update(price float64) (float64, bool) {
	if !e.ready {
		e.seed = append(e.seed, price)
		if len(e.seed) == e.period {
			e.value = Mean(e.seed)
			e.ready = true
			e.seed = nil
		}
		return e.value, e.ready
	}
	e.value = (price-e.value)*e.multiplier + e.value
	return e.value, true
}

// Value returns the last computed value.
func (e *EMA) Value() (float64, bool) { return e.value, e.ready }

// WindowEMA computes an EMA over prices from scratch, seeded with the first element.
func WindowEMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	alpha := 2 / float64(period+1)
	ema := prices[0]
	for _, p := range prices[1:] {
		ema = alpha*p + (1-alpha)*ema
	}
	return ema
}

// Mean returns the arithmetic mean, zero for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Window is a fixed-capacity trailing buffer of prices.
type Window struct {
	size   int
	values []float64
}

// NewWindow keeps at most size values.
func NewWindow(size int) *Window {
	if size < 1 {
		size = 1
	}
	return &Window{size: size, values: make([]float64, 0, size)}
}

// Push appends v, dropping the oldest value when full.
func (w *Window) Push(v float64) {
	if len(w.values) == w.size {
		copy(w.values, w.values[1:])
		w.values = w.values[:w.size-1]
	}
	w.values = append(w.values, v)
}

// Full reports whether the window holds size values.
func (w *Window) Full() bool { return len(w.values) == w.size }

// Len returns the number of values held.
func (w *Window) Len() int { return len(w.values) }

// Tail returns the last n values (fewer if not available). The slice aliases the window.
func (w *Window) Tail(n int) []float64 {
	if n > len(w.values) {
		n = len(w.values)
	}
	return w.values[len(w.values)-n:]
}

// Mean returns the mean of the held values.
func (w *Window) Mean() float64 { return Mean(w.values) }
