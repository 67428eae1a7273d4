package util

// Throttle gates work behind an elapsed time accumulator.
//
// The accumulator is reset to zero when it fires, not decremented by the
// timeout, so any time past the threshold is dropped.
type Throttle struct {
	timer   float64
	timeout float64
}

// NewThrottle returns a throttle that fires once timeout seconds have
// accumulated.
func NewThrottle(timeout float64) *Throttle {
	return &Throttle{timeout: timeout}
}

// Advance adds dt seconds to the accumulator.
func (t *Throttle) Advance(dt float64) {
	t.timer += dt
}

// Ready reports whether enough time has accumulated.
func (t *Throttle) Ready() bool {
	return t.timer >= t.timeout
}

// Fire resets the accumulator.
func (t *Throttle) Fire() {
	t.timer = 0
}

// Tick is Advance followed by a Ready check that fires on success.
func (t *Throttle) Tick(dt float64) bool {
	t.Advance(dt)

	if !t.Ready() {
		return false
	}

	t.Fire()
	return true
}

// SetTimeout changes the firing threshold. The accumulated time is kept.
func (t *Throttle) SetTimeout(timeout float64) {
	t.timeout = timeout
}

// Timeout returns the firing threshold in seconds.
func (t *Throttle) Timeout() float64 {
	return t.timeout
}

// Elapsed returns the accumulated time in seconds.
func (t *Throttle) Elapsed() float64 {
	return t.timer
}
