package player

// Parameter defaults
const (
	// DefaultTempo leaves the playback speed unchanged.
	DefaultTempo = 1.0

	// DefaultPitch leaves the pitch unchanged.
	DefaultPitch = 0.0

	// DefaultVolume is the initial live playback level.
	DefaultVolume = 0.2
)

// Common sample rates.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// DefaultSampleRate is the live context rate used when Config leaves it unset.
	DefaultSampleRate = RateCD
)

// Export naming
const (
	// MIMEType tags exported blobs.
	MIMEType = "audio/wav"

	// ExportSuffix is appended to the source name of an export.
	ExportSuffix = "_edited"

	// ExportExtension is the extension of exported files.
	ExportExtension = ".wav"

	// DefaultSourceName is used for sources imported without a name.
	DefaultSourceName = "audio.wav"
)

// exportFrameGuard absorbs float error in sourceFrames/tempo before flooring,
// so that e.g. 88200/1.0000000000000002 still yields 88200 frames.
const exportFrameGuard = 1e-9

// Decoder full-scale values by bit depth. Signed PCM is divided by
// 2^(bits-1); 8-bit PCM is unsigned and centred on 128.
const (
	bitsPerSample8  = 8
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	fullScale8  = 128.0
	fullScale16 = 32768.0
	fullScale24 = 8388608.0
	fullScale32 = 2147483648.0

	unsigned8Offset = 128
)
