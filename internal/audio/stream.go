// Package audio plays a running generator on the system audio device.
// The default backend streams through ebiten's audio context; building
// with the portaudio tag swaps in a portaudio-backed player with the
// same surface.
package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
)

// Source produces interleaved stereo samples block by block. Run fills
// up to len(dst)/2 frames and reports how many frames carry signal and
// whether more remain; after it returns false the source is exhausted.
type Source interface {
	Run(dst []int16) (int, bool)
}

// StreamReader adapts a Source to the 32-bit float little-endian byte
// stream the device player consumes. It returns io.EOF once the source
// reports completion.
type StreamReader struct {
	mu     sync.Mutex
	source Source
	buf    []int16
	done   bool
}

func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

const sampleScale = 1.0 / 32768.0

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if r.done {
		return 0, io.EOF
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]int16, need)
	}
	r.buf = r.buf[:need]
	_, more := r.source.Run(r.buf)
	for i, s := range r.buf {
		u := math.Float32bits(float32(s) * sampleScale)
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	if !more {
		r.done = true
		return frames * 8, io.EOF
	}
	return frames * 8, nil
}

func (r *StreamReader) Close() error { return nil }
