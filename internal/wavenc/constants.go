package wavenc

// WAV container constants
const (
	// HeaderSize is the size of the canonical PCM WAV header in bytes.
	HeaderSize = 44

	// BitsPerSample is the fixed output sample width.
	BitsPerSample = 16

	bytesPerSample   = BitsPerSample / 8
	pcmSubchunkSize  = 16
	pcmAudioFormat   = 1
	riffSizeOverhead = 36 // RIFF chunk size excluding the data bytes

	// MaxDataSize is the largest data chunk whose RIFF size still fits in
	// 32 bits.
	MaxDataSize uint64 = 1<<32 - 1 - riffSizeOverhead
)

// Quantization scales. Positive and negative halves of the range are
// scaled separately so that -1 maps to the int16 minimum.
const (
	positiveScale = 0x7FFF
	negativeScale = 0x8000
)

// Supported channel layouts
const (
	monoChannels   = 1
	stereoChannels = 2
)
