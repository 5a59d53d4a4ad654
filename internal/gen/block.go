package gen

import (
	"math"

	"github.com/hyphop/saugns/internal/program"
	"github.com/hyphop/saugns/internal/ramp"
)

// runBlock generates length samples for a node chain into bufs[0],
// recursing through its modulation sub-graphs in the tail of bufs. With
// env set the output is the float envelope in [0,1] and chained siblings
// multiply; otherwise output is integer-scale audio and siblings add.
// acc marks continuation onto a prior sibling's output.
func runBlock(bufs []buf, length uint32, n *soundNode, parentFreq []float32, env, acc bool) {
	sbuf := bufs[0][:]
	for n != nil {
		blen := length
		out := sbuf
		if n.silence > 0 {
			z := n.silence
			if z > blen {
				z = blen
			}
			if !acc {
				for i := uint32(0); i < z; i++ {
					out[i] = 0
				}
			}
			n.silence -= z
			if n.kind == program.Nested && n.time != timeInfinite {
				n.time -= z
			}
			blen -= z
			out = out[z:]
		}
		// a finite nested node past its time leaves a zeroed tail
		var zerolen uint32
		if n.kind == program.Nested && n.time != timeInfinite && n.time < blen {
			zerolen = blen - n.time
			blen = n.time
		}
		if blen > 0 {
			n.genBlock(bufs, blen, out, parentFreq, env, acc)
		}
		if n.kind == program.Nested && n.time != timeInfinite {
			if !acc && zerolen > 0 {
				tail := out[blen : blen+zerolen]
				for i := range tail {
					tail[i] = 0
				}
			}
			n.time -= blen
		}
		n = n.link
		acc = true
	}
}

// genBlock fills out[:blen] for a single node: frequency (constant,
// ramped, or FM-blended), phase offsets from PM, amplitude from ramp or
// AM, then the oscillator step.
func (n *soundNode) genBlock(bufs []buf, blen uint32, out, parentFreq []float32, env, acc bool) {
	freq := bufs[1][:blen]
	var freqMul []float32
	if parentFreq != nil && n.attr&attrFreqRatio != 0 {
		freqMul = parentFreq[:blen]
	}
	if n.attr&attrFreqRamp != 0 {
		if n.attr&attrFreqRampRatio != 0 && parentFreq != nil {
			freqMul = parentFreq[:blen]
			if n.attr&attrFreqRatio == 0 {
				// ramping toward a ratio goal; convert now, once
				n.attr |= attrFreqRatio
				n.freq /= parentFreq[0]
				if n.freqRamp.Pos == 0 {
					n.freqRamp.V0 = n.freq
				}
			}
		} else {
			freqMul = nil
			if n.attr&attrFreqRatio != 0 && parentFreq != nil {
				n.attr &^= attrFreqRatio
				n.freq *= parentFreq[0]
				if n.freqRamp.Pos == 0 {
					n.freqRamp.V0 = n.freq
				}
			}
		}
		if n.freqRamp.Run(freq, freqMul) {
			n.freq = n.freqRamp.Goal
			n.attr &^= attrFreqRamp | attrFreqRampRatio
		}
	} else {
		ramp.FillConst(freq, n.freq, freqMul)
	}
	next := 2
	if n.fmods != nil {
		runBlock(bufs[next:], blen, n.fmods, freq, true, false)
		fm := bufs[next][:blen]
		if n.attr&attrFreqRatio != 0 && parentFreq != nil {
			for i := range freq {
				freq[i] += (n.dynfreq*parentFreq[i] - freq[i]) * fm[i]
			}
		} else {
			for i := range freq {
				freq[i] += (n.dynfreq - freq[i]) * fm[i]
			}
		}
	}
	var pm []float32
	if n.pmods != nil {
		runBlock(bufs[next:], blen, n.pmods, freq, false, false)
		pm = bufs[next][:blen]
		next++
	}
	if env {
		for i := uint32(0); i < blen; i++ {
			var spm int32
			if pm != nil {
				spm = int32(pm[i]) << 16
			}
			s := n.osc.RunEnv(freq[i], spm)
			if acc {
				s *= out[i]
			}
			out[i] = s
		}
		return
	}
	var amp []float32
	if n.amods != nil {
		runBlock(bufs[next:], blen, n.amods, freq, true, false)
		amp = bufs[next][:blen]
		dynampdiff := n.dynamp - n.amp
		for i := range amp {
			amp[i] = n.amp + amp[i]*dynampdiff
		}
	} else {
		amp = bufs[next][:blen]
		if n.attr&attrAmpRamp != 0 {
			if n.ampRamp.Run(amp, nil) {
				n.amp = n.ampRamp.Goal
				n.attr &^= attrAmpRamp
			}
		} else {
			ramp.FillConst(amp, n.amp, nil)
		}
	}
	for i := uint32(0); i < blen; i++ {
		var spm int32
		if pm != nil {
			spm = int32(pm[i]) << 16
		}
		s := float32(math.Round(float64(n.osc.Run(freq[i], spm) * amp[i] * 32767)))
		if acc {
			s += out[i]
		}
		out[i] = s
	}
}

// runNode renders up to length samples of voice n into the interleaved
// stereo buffer, mixing by addition, and returns how many samples of the
// node's remaining time were consumed. The mono block is split across
// channels by the panning value p: left gets s-round(s*p), right gets
// round(s*p), so the two channels always sum to the mono sample.
func (g *Generator) runNode(n *soundNode, out []int16, pos, length uint32) uint32 {
	time := n.time - pos
	if time > length {
		time = length
	}
	ret := time
	sp := out
	for time > 0 {
		blen := uint32(bufLen)
		if blen > time {
			blen = time
		}
		time -= blen
		runBlock(g.bufs, blen, n, nil, false, false)
		sbuf := g.bufs[0][:blen]
		pan := g.bufs[1][:blen] // scratch, free once the block is done
		if n.attr&attrPanRamp != 0 {
			if n.panRamp.Run(pan, nil) {
				n.pan = n.panRamp.Goal
				n.attr &^= attrPanRamp
			}
		} else {
			ramp.FillConst(pan, n.pan, nil)
		}
		for i := uint32(0); i < blen; i++ {
			s := int32(sbuf[i])
			p := int32(math.Round(float64(float32(s) * pan[i])))
			sp[2*i] += int16(s - p)
			sp[2*i+1] += int16(p)
		}
		sp = sp[2*blen:]
	}
	return ret
}
