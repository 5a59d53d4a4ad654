// Package ramp implements timed parameter sweeps between two values.
//
// A Ramp fills sample buffers with the swept value, advancing an internal
// position; when the sweep's duration elapses mid-buffer the remainder of
// the buffer is filled with the goal value and the run reports done.
package ramp

// Law selects the curve a sweep follows.
type Law uint8

const (
	Linear Law = iota
	Exponential
	Logarithmic
	NumLaws
)

var Names = [NumLaws]string{
	"lin",
	"exp",
	"log",
}

// LawByName returns the Law named by s.
func LawByName(s string) (Law, bool) {
	for i, name := range Names {
		if s == name {
			return Law(i), true
		}
	}
	return 0, false
}

// FillConst fills buf with v, scaled by mulbuf when non-nil.
func FillConst(buf []float32, v float32, mulbuf []float32) {
	if mulbuf != nil {
		for i := range buf {
			buf[i] = v * mulbuf[i]
		}
		return
	}
	for i := range buf {
		buf[i] = v
	}
}

func fillLinear(buf []float32, v0, goal float32, pos, time uint32, mulbuf []float32) {
	inv := 1 / float32(time)
	for i := range buf {
		v := v0 + (goal-v0)*(float32(pos+uint32(i))*inv)
		if mulbuf != nil {
			v *= mulbuf[i]
		}
		buf[i] = v
	}
}

// expShape is the shared polynomial for the exponential and logarithmic
// curves, an ear-tuned approximation chosen over a true exponential to
// avoid the sharp attack of the real curve.
func expShape(mod float32) float32 {
	mod2 := mod * mod
	mod3 := mod2 * mod
	return mod3 + (mod2*mod3-mod2)*(mod*(629.0/1792.0)+mod2*(1163.0/1792.0))
}

func fillExp(buf []float32, v0, goal float32, pos, time uint32, mulbuf []float32) {
	inv := 1 / float32(time)
	for i := range buf {
		mod := 1 - float32(pos+uint32(i))*inv
		v := goal + (v0-goal)*expShape(mod)
		if mulbuf != nil {
			v *= mulbuf[i]
		}
		buf[i] = v
	}
}

func fillLog(buf []float32, v0, goal float32, pos, time uint32, mulbuf []float32) {
	inv := 1 / float32(time)
	for i := range buf {
		mod := float32(pos+uint32(i)) * inv
		v := v0 + (goal-v0)*expShape(mod)
		if mulbuf != nil {
			v *= mulbuf[i]
		}
		buf[i] = v
	}
}

// Ramp is one sweep in progress. V0 is the start value, updated to Goal
// when the sweep completes.
type Ramp struct {
	V0   float32
	Goal float32
	Pos  uint32
	Time uint32
	Law  Law
}

// Run fills buf with swept values scaled by mulbuf (when non-nil) and
// advances Pos. It returns true once the sweep has completed, with the
// tail of buf past the end filled from the goal value.
func (r *Ramp) Run(buf []float32, mulbuf []float32) bool {
	if r.Pos >= r.Time {
		r.V0 = r.Goal
		FillConst(buf, r.Goal, mulbuf)
		return true
	}
	n := uint32(len(buf))
	if remaining := r.Time - r.Pos; n > remaining {
		n = remaining
	}
	seg := buf[:n]
	switch r.Law {
	case Exponential:
		fillExp(seg, r.V0, r.Goal, r.Pos, r.Time, mulbuf)
	case Logarithmic:
		fillLog(seg, r.V0, r.Goal, r.Pos, r.Time, mulbuf)
	default:
		fillLinear(seg, r.V0, r.Goal, r.Pos, r.Time, mulbuf)
	}
	r.Pos += n
	if r.Pos < r.Time {
		return false
	}
	r.V0 = r.Goal
	if int(n) < len(buf) {
		var mtail []float32
		if mulbuf != nil {
			mtail = mulbuf[n:]
		}
		FillConst(buf[n:], r.Goal, mtail)
	}
	return true
}
