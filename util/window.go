package util

import "gonum.org/v1/gonum/floats"

// MovingWindow is a moving window
//
// values live in a fixed slice used as a ring. head points at the oldest
// value. once the window is full, the oldest value is evicted before the
// new one is written, so the window never holds more than capacity values.
type MovingWindow struct {
	values []float64

	head     int
	length   int
	capacity int

	average float64
}

// NewMovingWindow returns a new moving window.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		values:   make([]float64, size),
		capacity: size,
	}
}

func (mw *MovingWindow) calcFinal() float64 {
	if mw.length > 0 {
		// sum over the live region only. the slice is a ring, so the live
		// values are contiguous unless they wrap around the end.
		end := mw.head + mw.length
		if end <= mw.capacity {
			mw.average = floats.Sum(mw.values[mw.head:end]) / float64(mw.length)
		} else {
			sum := floats.Sum(mw.values[mw.head:]) + floats.Sum(mw.values[:end-mw.capacity])
			mw.average = sum / float64(mw.length)
		}
	} else {
		mw.average = 0
	}

	return mw.average
}

// Update pushes value into the window and returns the new mean.
func (mw *MovingWindow) Update(value float64) float64 {
	if mw.length == mw.capacity {
		mw.head = (mw.head + 1) % mw.capacity
		mw.length--
	}

	mw.values[(mw.head+mw.length)%mw.capacity] = value
	mw.length++

	return mw.calcFinal()
}

// Drop removes count of the oldest items from the window
func (mw *MovingWindow) Drop(count int) float64 {
	for ; count > 0 && mw.length > 0; count-- {
		mw.head = (mw.head + 1) % mw.capacity
		mw.length--
	}

	if mw.length == 0 {
		mw.head = 0
	}

	return mw.calcFinal()
}

// Resize changes the capacity of the window. If the window holds more values
// than the new size, the oldest are dropped.
func (mw *MovingWindow) Resize(size int) {
	if size < 1 {
		size = 1
	}

	if size == mw.capacity {
		return
	}

	if mw.length > size {
		mw.Drop(mw.length - size)
	}

	values := make([]float64, size)
	for i := 0; i < mw.length; i++ {
		values[i] = mw.values[(mw.head+i)%mw.capacity]
	}

	mw.values = values
	mw.head = 0
	mw.capacity = size

	mw.calcFinal()
}

// Reset empties the window
func (mw *MovingWindow) Reset() {
	mw.head = 0
	mw.length = 0
	mw.average = 0
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns max size of window
func (mw *MovingWindow) Cap() int {
	return mw.capacity
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}
