// Package wave holds the waveform lookup tables shared by all oscillators.
package wave

import "math"

// Table geometry. The top LenBits of a 32-bit phase select the table index;
// the remaining bits interpolate between adjacent entries.
const (
	LenBits   = 11
	Len       = 1 << LenBits // 2048
	LenMask   = Len - 1
	ScaleBits = 32 - LenBits
	Scale     = 1 << ScaleBits
	ScaleMask = Scale - 1
)

// Type selects a waveform table.
type Type uint8

const (
	Sine Type = iota
	HalfSine
	Triangle
	Square
	Saw
	NumTypes
)

// Names lists the script-language names for each Type, index-aligned.
var Names = [NumTypes]string{
	"sin",
	"hsi",
	"tri",
	"sqr",
	"saw",
}

// TypeByName returns the Type for a script-language name.
func TypeByName(name string) (Type, bool) {
	for i, n := range Names {
		if n == name {
			return Type(i), true
		}
	}
	return 0, false
}

// LUT is one waveform period sampled at Len points, values in [-1, 1].
type LUT [Len]float32

var luts [NumTypes]LUT

func init() {
	const halfLen = Len >> 1
	sin := &luts[Sine]
	hsi := &luts[HalfSine]
	tri := &luts[Triangle]
	sqr := &luts[Square]
	saw := &luts[Saw]
	for i := 0; i < halfLen; i++ {
		x := float64(i) / halfLen
		xRev := float64(halfLen-i) / halfLen

		s := math.Sin(math.Pi * x)
		sin[i] = float32(s)
		hsi[i] = float32(s)
		sqr[i] = 1
		saw[i] = float32(xRev)
		if i < halfLen>>1 {
			tri[i] = float32(2 * x)
		} else {
			tri[i] = float32(2 * xRev)
		}
	}
	for i := halfLen; i < Len; i++ {
		sin[i] = -sin[i-halfLen]
		hsi[i] = 0
		sqr[i] = -1
		saw[i] = -saw[(Len-1)-i]
		tri[i] = -tri[i-halfLen]
	}
}

// Get returns the table for a waveform type; out-of-range types fall back
// to the sine table.
func Get(t Type) *LUT {
	if t >= NumTypes {
		t = Sine
	}
	return &luts[t]
}

// Lerp looks up the value for a 32-bit phase with linear interpolation
// between adjacent table entries.
func (lut *LUT) Lerp(phase uint32) float32 {
	ind := phase >> ScaleBits
	s := lut[ind]
	s += (lut[(ind+1)&LenMask] - s) *
		(float32(phase&ScaleMask) * (1.0 / Scale))
	return s
}
