// Package osc implements the fixed-point table-lookup oscillator.
//
// Phase is a 32-bit unsigned accumulator; one full wrap is one waveform
// cycle. The per-sample increment is frequency times a coefficient fixed
// at construction, so all stepping happens in integer arithmetic and
// phase modulation is a plain integer addition.
package osc

import (
	"math"

	"github.com/hyphop/saugns/internal/wave"
)

// Coeff returns the factor converting a frequency in Hz to a per-sample
// 32-bit phase increment at the given sample rate.
func Coeff(sampleRate int) float64 {
	return 4294967296.0 / float64(sampleRate)
}

// Phase converts a normalized phase in [0,1) to the 32-bit accumulator domain.
func Phase(p float64) uint32 {
	return uint32(int64(math.Round(p * 4294967296.0)))
}

// Osc is one oscillator's persistent state.
type Osc struct {
	phase uint32
	coeff float64
	lut   *wave.LUT
}

func New(sampleRate int) Osc {
	return Osc{coeff: Coeff(sampleRate), lut: wave.Get(wave.Sine)}
}

func (o *Osc) SetWave(t wave.Type)   { o.lut = wave.Get(t) }
func (o *Osc) SetPhase(phase uint32) { o.phase = phase }
func (o *Osc) PhaseValue() uint32    { return o.phase }

func (o *Osc) inc(freq float32) uint32 {
	return uint32(int32(math.Round(o.coeff * float64(freq))))
}

// Run produces one sample in [-1,1] and steps the phase. The pm offset is
// added to the read phase only; it does not accumulate.
func (o *Osc) Run(freq float32, pm int32) float32 {
	phase := o.phase + uint32(pm)
	s := o.lut.Lerp(phase)
	o.phase += o.inc(freq)
	return s
}

// RunEnv is Run rescaled to [0,1], for modulation-envelope output.
func (o *Osc) RunEnv(freq float32, pm int32) float32 {
	return o.Run(freq, pm)*0.5 + 0.5
}

// CycleOffs returns the number of samples between position pos and the
// nearest cycle boundary at or before it, for the given frequency. A pos
// landing within rounding distance of a boundary yields 0. Used to trim a
// note's end back to a phase-zero crossing.
func (o *Osc) CycleOffs(freq float32, pos uint32) uint32 {
	inc := o.inc(freq)
	if inc == 0 {
		return 0
	}
	phs := inc * pos // wraps mod 2^32; remaining phase into current cycle
	offs := uint32(math.Round(float64(phs) / float64(inc)))
	cycle := uint32(math.Round(4294967296.0 / float64(inc)))
	if cycle > 0 {
		offs %= cycle
	}
	return offs
}
