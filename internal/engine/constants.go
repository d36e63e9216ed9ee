package engine

// Cubic (Hermite) interpolation constants
const (
	// Hermite interpolation coefficients for smooth C1 continuity
	// Formula: y = ((a*x + b)*x + c)*x + d
	hermiteCoeff0_5 = 0.5
	hermiteCoeff1_5 = 1.5
	hermiteCoeff2_5 = 2.5
)

// Grain synthesis constants
const (
	// grainSeconds is the target grain length; the frame count is rounded
	// down to an even number so that the hop is exactly half a grain.
	grainSeconds = 0.0232

	// minGrainFrames bounds the grain length for very low sample rates.
	minGrainFrames = 64

	// hopDivisor gives a 50% overlap between successive grains.
	hopDivisor = 2

	// normEpsilon guards the overlap normalisation against a zero window sum.
	normEpsilon = 1e-9

	// semitonesPerOctave converts semitones to a frequency ratio.
	semitonesPerOctave = 12.0
)

// Rate limits accepted by the module.
const (
	minSampleRate = 1000
	maxSampleRate = 768000
)

// Node constants
const (
	// ModuleName is the name the stretch processor registers under.
	ModuleName = "stretch-processor"
)
