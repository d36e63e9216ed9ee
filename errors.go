package player

import (
	"errors"

	"github.com/tphakala/go-audio-player/internal/wavenc"
)

// Errors returned by the player.
var (
	// ErrUnsupportedChannelLayout indicates audio that is neither mono nor
	// stereo, or whose channels differ in length.
	ErrUnsupportedChannelLayout = wavenc.ErrUnsupportedChannelLayout

	// ErrModuleLoadFailed indicates the processing module could not be
	// registered on the live context. Playback is unavailable; export is not
	// affected.
	ErrModuleLoadFailed = errors.New("processing module load failed")

	// ErrExportFailed wraps every export failure together with its cause.
	ErrExportFailed = errors.New("export failed")

	// ErrExportTooLong indicates an export whose length at the current tempo
	// does not fit in a single WAV file.
	ErrExportTooLong = wavenc.ErrDataTooLarge

	// ErrInvalidTempo indicates a tempo ratio that is not positive and finite.
	ErrInvalidTempo = errors.New("tempo ratio must be positive and finite")

	// ErrInvalidParameter indicates a non-finite pitch, volume or position.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotReady indicates a transport call with no ready live node.
	ErrNotReady = errors.New("audio not ready")

	// ErrDecode indicates imported bytes could not be decoded.
	ErrDecode = errors.New("cannot decode audio")

	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid player configuration")
)
