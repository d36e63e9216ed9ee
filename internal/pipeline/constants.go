package pipeline

// Ring buffer sizing
const (
	// minRingCapacity is the smallest per-channel capacity a ring is created with.
	minRingCapacity = 1

	// bufferGrowthFactor is the factor the capacity grows by when a write overflows.
	bufferGrowthFactor = 2
)
