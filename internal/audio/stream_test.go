package audio

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
)

// rampSource emits an incrementing sample pattern and finishes after a
// fixed number of frames.
type rampSource struct {
	emitted int
	total   int
}

func (s *rampSource) Run(dst []int16) (int, bool) {
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		v := int16(s.emitted + i)
		dst[2*i] = v
		dst[2*i+1] = -v
	}
	s.emitted += frames
	return frames, s.emitted < s.total
}

func TestStreamReaderConvertsToFloat32(t *testing.T) {
	r := NewStreamReader(&rampSource{total: 1 << 20})
	p := make([]byte, 8*16)
	n, err := r.Read(p)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(p) {
		t.Fatalf("read %d bytes, want %d", n, len(p))
	}
	for i := 0; i < 16; i++ {
		left := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8:]))
		right := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8+4:]))
		want := float32(i) / 32768
		if left != want || right != -want {
			t.Fatalf("frame %d: got (%g, %g), want (%g, %g)", i, left, right, want, -want)
		}
	}
}

func TestStreamReaderEOFOnCompletion(t *testing.T) {
	r := NewStreamReader(&rampSource{total: 16})
	p := make([]byte, 8*16)
	n, err := r.Read(p)
	if n != len(p) || err != io.EOF {
		t.Fatalf("first read: n=%d err=%v, want full read with EOF", n, err)
	}
	if n, err := r.Read(p); n != 0 || err != io.EOF {
		t.Fatalf("read after EOF: n=%d err=%v", n, err)
	}
}

func TestStreamReaderZeroLength(t *testing.T) {
	r := NewStreamReader(&rampSource{total: 16})
	if n, err := r.Read(nil); n != 0 || err != nil {
		t.Fatalf("nil read: n=%d err=%v", n, err)
	}
}
