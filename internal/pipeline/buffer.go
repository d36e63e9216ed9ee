// Package pipeline provides the buffering used between grain synthesis and
// render pulls in the stretch engine.
package pipeline

// FrameRing is a circular buffer of planar multi-channel frames.
// All channels share the same read and write positions, so a frame is
// always written and read as a unit.
//
// FrameRing is not safe for concurrent use; the owning node serialises access.
type FrameRing struct {
	data     [][]float64
	capacity int
	size     int
	readPos  int
	writePos int
}

// NewFrameRing creates a ring holding up to capacity frames of the given
// channel count before it has to grow.
func NewFrameRing(channels, capacity int) *FrameRing {
	if channels < 1 {
		channels = 1
	}
	if capacity < minRingCapacity {
		capacity = minRingCapacity
	}

	data := make([][]float64, channels)
	for ch := range data {
		data[ch] = make([]float64, capacity)
	}

	return &FrameRing{
		data:     data,
		capacity: capacity,
	}
}

// Write appends n frames taken from frames[ch][0:n].
// The ring grows when there is not enough space.
func (r *FrameRing) Write(frames [][]float64, n int) {
	if n <= 0 {
		return
	}

	if r.size+n > r.capacity {
		r.grow(r.size + n)
	}

	for i := 0; i < n; i++ {
		for ch := range r.data {
			r.data[ch][r.writePos] = frames[ch][i]
		}
		r.writePos = (r.writePos + 1) % r.capacity
	}
	r.size += n
}

// ReadInto moves up to len(dst[0]) frames into dst and returns the count.
// dst must have one slice per ring channel.
func (r *FrameRing) ReadInto(dst [][]float64) int {
	if len(dst) == 0 {
		return 0
	}

	n := len(dst[0])
	if n > r.size {
		n = r.size
	}

	for i := 0; i < n; i++ {
		for ch := range r.data {
			dst[ch][i] = r.data[ch][r.readPos]
		}
		r.readPos = (r.readPos + 1) % r.capacity
	}
	r.size -= n

	return n
}

// Available returns the number of frames ready for reading.
func (r *FrameRing) Available() int {
	return r.size
}

// Capacity returns the current per-channel capacity in frames.
func (r *FrameRing) Capacity() int {
	return r.capacity
}

// Clear drops all buffered frames.
func (r *FrameRing) Clear() {
	r.size = 0
	r.readPos = 0
	r.writePos = 0
}

// grow increases the capacity to at least minCapacity, preserving frame order.
func (r *FrameRing) grow(minCapacity int) {
	newCapacity := r.capacity
	for newCapacity < minCapacity {
		newCapacity *= bufferGrowthFactor
	}

	for ch, old := range r.data {
		fresh := make([]float64, newCapacity)
		if r.size > 0 {
			if r.readPos < r.writePos {
				copy(fresh, old[r.readPos:r.writePos])
			} else {
				n1 := copy(fresh, old[r.readPos:])
				copy(fresh[n1:], old[:r.writePos])
			}
		}
		r.data[ch] = fresh
	}

	r.capacity = newCapacity
	r.readPos = 0
	r.writePos = r.size
}
