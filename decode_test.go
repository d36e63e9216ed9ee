package player

import (
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-player/internal/testutil"
)

func TestDecodeWAV_Stereo16(t *testing.T) {
	const frames = 480
	data := testutil.EncodeSine16(t, 2, frames, RateDAT, 1000)

	src, err := DecodeWAV(data)
	require.NoError(t, err)
	assert.Equal(t, RateDAT, src.SampleRate)
	assert.Equal(t, 2, src.NumberOfChannels())
	assert.Equal(t, frames, src.Length())

	want := testutil.Sine(frames, RateDAT, 1000, 0.5)
	for i := range want {
		assert.InDelta(t, want[i], src.Channels[0][i], 2*testutil.PCM16Tolerance)
		assert.Equal(t, src.Channels[0][i], src.Channels[1][i])
	}
}

func TestDecodeWAV_Mono24(t *testing.T) {
	data := testutil.EncodePCM(t, []int{0, 4194304, -8388608}, 1, RateCD, 24)

	src, err := DecodeWAV(data)
	require.NoError(t, err)
	require.Equal(t, 3, src.Length())
	assert.InDeltaSlice(t, []float32{0, 0.5, -1}, src.Channels[0], 1e-6)
}

func TestDecodeWAV_Invalid(t *testing.T) {
	_, err := DecodeWAV([]byte("definitely not RIFF"))
	require.ErrorIs(t, err, ErrDecode)

	_, err = DecodeWAV(nil)
	require.ErrorIs(t, err, ErrDecode)
}

func TestFromIntBuffer(t *testing.T) {
	t.Run("unsigned 8 bit", func(t *testing.T) {
		buf := &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 1, SampleRate: 8000},
			Data:   []int{128, 255, 0},
		}
		src, err := fromIntBuffer(buf, 8)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0, 127.0 / 128, -1}, src.Channels[0], 1e-6)
	})

	t.Run("deinterleaves stereo", func(t *testing.T) {
		buf := &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 2, SampleRate: 8000},
			Data:   []int{16384, -16384, 0, 32767},
		}
		src, err := fromIntBuffer(buf, 16)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0.5, 0}, src.Channels[0], 1e-6)
		assert.InDeltaSlice(t, []float32{-0.5, 32767.0 / 32768}, src.Channels[1], 1e-6)
	})

	t.Run("too many channels", func(t *testing.T) {
		buf := &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 6, SampleRate: 8000},
			Data:   make([]int, 12),
		}
		_, err := fromIntBuffer(buf, 16)
		require.ErrorIs(t, err, ErrUnsupportedChannelLayout)
	})

	t.Run("unsupported bit depth", func(t *testing.T) {
		buf := &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 1, SampleRate: 8000},
			Data:   []int{0},
		}
		_, err := fromIntBuffer(buf, 12)
		require.ErrorIs(t, err, ErrDecode)
	})

	t.Run("missing format", func(t *testing.T) {
		_, err := fromIntBuffer(&audio.IntBuffer{}, 16)
		require.ErrorIs(t, err, ErrDecode)
	})
}
