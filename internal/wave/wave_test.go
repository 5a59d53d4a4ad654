package wave

import (
	"math"
	"testing"
)

func TestSineTableProperties(t *testing.T) {
	lut := Get(Sine)
	if lut[0] != 0 {
		t.Errorf("sin[0] = %f, want 0", lut[0])
	}
	peak := lut[Len/4]
	if math.Abs(float64(peak)-1) > 1e-4 {
		t.Errorf("sin[Len/4] = %f, want ~1", peak)
	}
	// Second half mirrors the first.
	for i := 0; i < Len/2; i += 17 {
		if lut[i] != -lut[i+Len/2] {
			t.Fatalf("sin[%d] = %f not mirrored at %d (%f)", i, lut[i], i+Len/2, lut[i+Len/2])
		}
	}
	var sum float64
	for i := 0; i < Len; i++ {
		sum += float64(lut[i])
	}
	if math.Abs(sum/Len) > 1e-6 {
		t.Errorf("sine DC bias %g too large", sum/Len)
	}
}

func TestAllTablesBounded(t *testing.T) {
	for typ := Type(0); typ < NumTypes; typ++ {
		lut := Get(typ)
		for i := 0; i < Len; i++ {
			v := float64(lut[i])
			if v < -1 || v > 1 {
				t.Fatalf("%s[%d] = %f out of [-1,1]", Names[typ], i, v)
			}
		}
	}
}

func TestHalfSineSecondHalfSilent(t *testing.T) {
	lut := Get(HalfSine)
	for i := Len / 2; i < Len; i++ {
		if lut[i] != 0 {
			t.Fatalf("hsi[%d] = %f, want 0", i, lut[i])
		}
	}
}

func TestLerpInterpolatesBetweenEntries(t *testing.T) {
	lut := Get(Saw)
	// Halfway between entries 0 and 1.
	phase := uint32(Scale / 2)
	want := (lut[0] + lut[1]) / 2
	got := lut.Lerp(phase)
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("Lerp(mid) = %f, want %f", got, want)
	}
	// Exact entry positions pass through.
	if got := lut.Lerp(3 * Scale); got != lut[3] {
		t.Errorf("Lerp(entry 3) = %f, want %f", got, lut[3])
	}
}

func TestTypeByName(t *testing.T) {
	for typ := Type(0); typ < NumTypes; typ++ {
		got, ok := TypeByName(Names[typ])
		if !ok || got != typ {
			t.Errorf("TypeByName(%q) = %v, %v", Names[typ], got, ok)
		}
	}
	if _, ok := TypeByName("nope"); ok {
		t.Error("TypeByName accepted unknown name")
	}
}
