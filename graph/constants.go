package graph

const (
	// BlockFrames is the number of frames a context pulls per processing cycle.
	BlockFrames = 1024

	// stereoChannels is the channel count of live device output.
	stereoChannels = 2
)
