package ramp

import (
	"math"
	"testing"
)

func runAll(r *Ramp, total int, blockLen int) []float32 {
	out := make([]float32, 0, total)
	buf := make([]float32, blockLen)
	for len(out) < total {
		n := blockLen
		if rem := total - len(out); rem < n {
			n = rem
		}
		r.Run(buf[:n], nil)
		out = append(out, buf[:n]...)
	}
	return out
}

func TestEndpoints(t *testing.T) {
	for law := Law(0); law < NumLaws; law++ {
		r := &Ramp{V0: 100, Goal: 700, Time: 1000, Law: law}
		out := runAll(r, 1001, 256)
		if math.Abs(float64(out[0])-100) > 1e-3 {
			t.Errorf("%s: value at start = %g, want 100", Names[law], out[0])
		}
		if math.Abs(float64(out[1000])-700) > 1e-3 {
			t.Errorf("%s: value at end = %g, want 700", Names[law], out[1000])
		}
	}
}

func TestLinearMonotonic(t *testing.T) {
	r := &Ramp{V0: 0, Goal: 1, Time: 500, Law: Linear}
	out := runAll(r, 500, 64)
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Fatalf("linear ramp not monotonic at %d: %g < %g", i, out[i], out[i-1])
		}
	}
	if math.Abs(float64(out[250])-0.5) > 1e-3 {
		t.Errorf("linear midpoint = %g, want 0.5", out[250])
	}
}

func TestExpLogComplementary(t *testing.T) {
	// Rising log and falling exp use the same shape; a rising exp at
	// position p should mirror a rising log at time-p.
	e := &Ramp{V0: 0, Goal: 1, Time: 1000, Law: Exponential}
	l := &Ramp{V0: 0, Goal: 1, Time: 1000, Law: Logarithmic}
	eo := runAll(e, 1000, 128)
	lo := runAll(l, 1000, 128)
	for i := 1; i < 1000; i++ {
		sum := float64(eo[i]) + float64(lo[1000-i])
		if math.Abs(sum-1) > 1e-3 {
			t.Fatalf("exp(%d)+log(%d) = %g, want 1", i, 1000-i, sum)
		}
	}
}

func TestTailFilledWithGoal(t *testing.T) {
	r := &Ramp{V0: 2, Goal: 8, Time: 10, Law: Linear}
	buf := make([]float32, 64)
	done := r.Run(buf, nil)
	if !done {
		t.Fatal("ramp shorter than buffer did not report done")
	}
	for i := 10; i < 64; i++ {
		if buf[i] != 8 {
			t.Fatalf("tail sample %d = %g, want goal 8", i, buf[i])
		}
	}
	if r.V0 != 8 {
		t.Errorf("V0 after completion = %g, want goal 8", r.V0)
	}
}

func TestDonePropagation(t *testing.T) {
	r := &Ramp{V0: 0, Goal: 1, Time: 300, Law: Linear}
	buf := make([]float32, 128)
	if r.Run(buf, nil) {
		t.Error("done after 128 of 300")
	}
	if r.Run(buf, nil) {
		t.Error("done after 256 of 300")
	}
	if !r.Run(buf, nil) {
		t.Error("not done after 384 of 300")
	}
	if !r.Run(buf, nil) {
		t.Error("completed ramp no longer reports done")
	}
}

func TestMulBuf(t *testing.T) {
	r := &Ramp{V0: 0, Goal: 1, Time: 100, Law: Linear}
	mul := make([]float32, 100)
	for i := range mul {
		mul[i] = 2
	}
	buf := make([]float32, 100)
	r.Run(buf, mul)
	if math.Abs(float64(buf[50])-1) > 1e-3 {
		t.Errorf("scaled midpoint = %g, want 1", buf[50])
	}
}

func TestFillConst(t *testing.T) {
	buf := make([]float32, 8)
	FillConst(buf, 3, nil)
	for _, v := range buf {
		if v != 3 {
			t.Fatalf("got %g, want 3", v)
		}
	}
	mul := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	FillConst(buf, 2, mul)
	if buf[3] != 8 {
		t.Errorf("scaled fill = %g, want 8", buf[3])
	}
}

func TestLawByName(t *testing.T) {
	for i, name := range Names {
		law, ok := LawByName(name)
		if !ok || law != Law(i) {
			t.Errorf("LawByName(%q) = %v, %v", name, law, ok)
		}
	}
	if _, ok := LawByName("nope"); ok {
		t.Error("LawByName accepted unknown name")
	}
}
