package osc

import (
	"math"
	"testing"

	"github.com/hyphop/saugns/internal/wave"
)

const testRate = 44100

func TestSineFrequency(t *testing.T) {
	// Count zero crossings over one second of 440 Hz sine; expect 2*440
	// give or take the partial cycle at each end.
	o := New(testRate)
	o.SetWave(wave.Sine)
	crossings := 0
	prev := o.Run(440, 0)
	for i := 1; i < testRate; i++ {
		s := o.Run(440, 0)
		if (prev < 0 && s >= 0) || (prev >= 0 && s < 0) {
			crossings++
		}
		prev = s
	}
	if crossings < 878 || crossings > 882 {
		t.Errorf("440 Hz sine: got %d zero crossings in 1 s, want ~880", crossings)
	}
}

func TestRunBounded(t *testing.T) {
	for w := wave.Type(0); w < wave.NumTypes; w++ {
		o := New(testRate)
		o.SetWave(w)
		for i := 0; i < 5000; i++ {
			s := o.Run(523.25, 0)
			if s < -1.0001 || s > 1.0001 {
				t.Fatalf("%s: sample %d out of range: %g", wave.Names[w], i, s)
			}
		}
	}
}

func TestRunEnvRange(t *testing.T) {
	o := New(testRate)
	o.SetWave(wave.Saw)
	for i := 0; i < 5000; i++ {
		s := o.RunEnv(100, 0)
		if s < -0.0001 || s > 1.0001 {
			t.Fatalf("sample %d out of [0,1]: %g", i, s)
		}
	}
}

func TestPhaseModulationOffsetsReadOnly(t *testing.T) {
	// PM shifts the read position but must not accumulate into phase.
	a := New(testRate)
	b := New(testRate)
	for i := 0; i < 1000; i++ {
		a.Run(440, 0)
		b.Run(440, 1<<28)
	}
	if a.PhaseValue() != b.PhaseValue() {
		t.Errorf("phase diverged under PM: %d vs %d", a.PhaseValue(), b.PhaseValue())
	}
}

func TestSetPhase(t *testing.T) {
	o := New(testRate)
	o.SetWave(wave.Sine)
	o.SetPhase(Phase(0.25))
	s := o.Run(440, 0)
	if math.Abs(float64(s)-1) > 1e-3 {
		t.Errorf("sine at phase 0.25: got %g, want ~1", s)
	}
}

func TestCycleOffsAtExactBoundary(t *testing.T) {
	// 4410 samples of 440 Hz at 44100 Hz is 44 cycles to within rounding;
	// no trim should be needed.
	o := New(testRate)
	if offs := o.CycleOffs(440, 4410); offs != 0 {
		t.Errorf("CycleOffs(440, 4410) = %d, want 0", offs)
	}
}

func TestCycleOffsMidCycle(t *testing.T) {
	// 441 Hz has an exactly 100-sample cycle at 44100 Hz, so position 150
	// sits 50 samples past a boundary.
	o := New(testRate)
	if offs := o.CycleOffs(441, 150); offs != 50 {
		t.Errorf("CycleOffs(441, 150) = %d, want 50", offs)
	}
	if offs := o.CycleOffs(441, 200); offs != 0 {
		t.Errorf("CycleOffs(441, 200) = %d, want 0", offs)
	}
}
