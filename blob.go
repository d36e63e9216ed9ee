package player

import (
	"bytes"
	"io"

	"github.com/tphakala/go-audio-player/internal/wavenc"
)

// EncodeWAV encodes mono or stereo planar samples as a 16-bit PCM WAV file.
// Samples are clamped to [-1, 1].
func EncodeWAV(channels [][]float32, sampleRate int) ([]byte, error) {
	return wavenc.Encode(channels, sampleRate)
}

// WavBlob is an encoded WAV file. Its contents never change.
type WavBlob struct {
	data []byte
	name string
}

func newWavBlob(data []byte, name string) *WavBlob {
	return &WavBlob{data: data, name: name}
}

// Bytes returns a copy of the encoded file.
func (b *WavBlob) Bytes() []byte {
	return bytes.Clone(b.data)
}

// Len returns the encoded size in bytes.
func (b *WavBlob) Len() int {
	return len(b.data)
}

// MIMEType returns "audio/wav".
func (b *WavBlob) MIMEType() string {
	return MIMEType
}

// Name returns the suggested file name.
func (b *WavBlob) Name() string {
	return b.name
}

// WriteTo writes the encoded file to w.
func (b *WavBlob) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}
