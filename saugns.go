// Package saugns compiles textual audio scores and renders them to
// stereo PCM, offline or straight to the audio device.
//
// A score describes oscillator graphs with nested frequency, phase and
// amplitude modulation, parameter sweeps and timed updates; see the
// internal/script package for the syntax. Typical use:
//
//	prg, err := saugns.Compile("Wsin f440 a0.6 t2")
//	samples, err := saugns.RenderSamples(prg, 44100)
//	wav := saugns.EncodeWAVPCM16(samples, 44100, 2)
package saugns

import (
	"github.com/hyphop/saugns/internal/program"
	"github.com/hyphop/saugns/internal/script"
)

// Compile parses a score into a runnable program.
func Compile(src string) (*program.Program, error) {
	return script.Parse(src)
}
