package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScale(t *testing.T) {
	src := []float32{1, -1, 0.5, -0.25, 0, 2, -2, 0.125, 0.75}
	dst := make([]float32, len(src))

	For[float32]().Scale(dst, src, 0.5)

	for i := range src {
		assert.InDelta(t, src[i]*0.5, dst[i], 1e-7, "dst[%d]", i)
	}
}

func TestScaleInPlace(t *testing.T) {
	buf := []float64{1, 2, 3, 4, 5}
	Float64Ops().Scale(buf, buf, 0.2)
	assert.InDeltaSlice(t, []float64{0.2, 0.4, 0.6, 0.8, 1.0}, buf, 1e-12)
}

func TestInterleave2(t *testing.T) {
	left := []float32{1, 2, 3, 4, 5}
	right := []float32{-1, -2, -3, -4, -5}
	dst := make([]float32, len(left)+len(right))

	Float32Ops().Interleave2(dst, left, right)

	assert.Equal(t, []float32{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}, dst)
}

func TestSum(t *testing.T) {
	assert.InDelta(t, 4.5, For[float32]().Sum([]float32{1, 2, 3, -1.5}), 1e-6)
	assert.InDelta(t, 4.5, For[float64]().Sum([]float64{1, 2, 3, -1.5}), 1e-12)
}

// BenchmarkIndirectF32Scale measures the indirect call through the Ops struct
// on a typical render block.
func BenchmarkIndirectF32Scale(b *testing.B) {
	ops := For[float32]()
	a := make([]float32, 1024)
	for i := range a {
		a[i] = float32(i) * 0.001
	}
	dst := make([]float32, len(a))

	b.ReportAllocs()
	for b.Loop() {
		ops.Scale(dst, a, 0.2)
	}
}
