// Package gen implements the audio generator: it interprets a compiled
// program of timed parameter updates into interleaved 16-bit stereo PCM,
// block by block, at a fixed sample rate.
package gen

import (
	"fmt"

	"github.com/hyphop/saugns/internal/osc"
	"github.com/hyphop/saugns/internal/program"
	"github.com/hyphop/saugns/internal/ramp"
)

// node attribute flags; internal, distinct from program.AttrMask
const (
	attrFreqRatio uint8 = 1 << iota
	attrFreqRamp
	attrFreqRampRatio
	attrAmpRamp
	attrPanRamp
)

const timeInfinite = ^uint32(0)

// soundNode is the persistent synthesis state for one operator. Nodes
// are allocated once at construction and mutated in place by updates.
type soundNode struct {
	time    uint32 // remaining samples, or timeInfinite
	silence uint32
	id      program.NodeID
	kind    program.Kind
	attr    uint8

	freq, dynfreq float32
	amp, dynamp   float32
	pan           float32 // top-level only

	osc      osc.Osc
	freqRamp ramp.Ramp
	ampRamp  ramp.Ramp
	panRamp  ramp.Ramp

	// modulation chain heads; siblings under one parent hang off link
	fmods, pmods, amods *soundNode
	link                *soundNode
	parent              *soundNode
}

type entryStatus uint8

const (
	statusPrepared entryStatus = 1 << iota
	statusActive
)

// scheduleEntry is one timeline slot. pos counts down while negative
// (remaining delay, relative to the previous entry), then counts rendered
// samples for an active node.
type scheduleEntry struct {
	pos    int32
	status entryStatus
	update *program.Update
	node   *soundNode
	prev   *scheduleEntry // earlier entry for the same node
}

// indexEntry maps a program node id to its live slot and owning voice.
type indexEntry struct {
	node *soundNode
	root program.NodeID
}

// Params configures generator behavior.
type Params struct {
	// ClickReduction shortens each note to end on an oscillator cycle
	// boundary, trading exact requested durations for click-free ends.
	ClickReduction bool
}

func DefaultParams() Params {
	return Params{ClickReduction: true}
}

// Generator renders a program. Create one per program run; it is not
// safe for concurrent use.
type Generator struct {
	srate   uint32
	params  Params
	bufs    []buf
	nodes   []soundNode
	index   []indexEntry
	entries []scheduleEntry
	cursor  uint32

	// carried click-reduction delay, merged from prepareEntry returns
	// and consumed once per pending delay
	delayOffs uint32
	haveOffs  bool
}

// New builds a generator for prg at the given sample rate. The program
// is validated up front; a corrupt program is the only error.
func New(prg *program.Program, srate uint32, params Params) (*Generator, error) {
	if srate == 0 {
		return nil, fmt.Errorf("gen: sample rate must be positive")
	}
	if err := prg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		srate:   srate,
		params:  params,
		nodes:   make([]soundNode, prg.NodeCount),
		index:   make([]indexEntry, prg.NodeCount),
		entries: make([]scheduleEntry, len(prg.Updates)),
	}
	for i := range g.nodes {
		n := &g.nodes[i]
		n.id = program.NodeID(i)
		n.osc = osc.New(int(srate))
		n.pan = 0.5
		g.index[i] = indexEntry{node: n}
	}
	lastEntry := make(map[*soundNode]*scheduleEntry, prg.NodeCount)
	for i := range prg.Updates {
		u := &prg.Updates[i]
		n := g.index[u.Target].node
		n.kind = u.Kind
		g.index[u.Target].root = u.Root
		e := &g.entries[i]
		e.pos = -int32(g.samples(u.WaitMS))
		e.update = u
		e.node = n
		e.prev = lastEntry[n]
		lastEntry[n] = e
	}
	return g, nil
}

// samples converts a millisecond duration to samples, passing the
// infinite sentinel through.
func (g *Generator) samples(ms uint32) uint32 {
	if ms == program.TimeInfinite {
		return timeInfinite
	}
	return uint32(uint64(ms) * uint64(g.srate) / 1000)
}

// wireChain links ids into a sibling chain under parent and returns its
// head. Referenced ids may be declared later in program order than their
// parent; resolution happens here, at merge time.
func (g *Generator) wireChain(ids []program.NodeID, parent *soundNode) *soundNode {
	if len(ids) == 0 {
		return nil
	}
	for i, id := range ids {
		n := g.index[id].node
		n.parent = parent
		if i+1 < len(ids) {
			n.link = g.index[ids[i+1]].node
		} else {
			n.link = nil
		}
	}
	return g.index[ids[0]].node
}

// adjustTime shortens n's duration so it ends at a wave cycle boundary,
// and returns the cut for the scheduler to carry as a delay adjustment.
func adjustTime(n *soundNode) uint32 {
	if n.time == timeInfinite || n.time == 0 {
		return 0
	}
	offs := n.osc.CycleOffs(n.freq, n.time)
	n.time -= offs
	return offs
}

// prepareEntry merges e's pending update into its node, in fixed field
// order, then resizes the buffer pool for the owning voice and
// deactivates any earlier entry for the same node. The returned offset
// is the click-reduction cut, zero when none applies.
func (g *Generator) prepareEntry(e *scheduleEntry) uint32 {
	u := e.update
	n := e.node
	var offs uint32
	adjtime := false
	if u.Params&program.PTime != 0 {
		n.time = g.samples(u.TimeMS)
		e.pos = 0
		if n.time != 0 {
			if n.kind == program.Top {
				e.status |= statusActive
			}
			adjtime = true
		} else {
			e.status &^= statusActive
		}
	}
	if u.Params&program.PSilence != 0 {
		n.silence = g.samples(u.SilenceMS)
	}
	if u.Params&program.PWave != 0 {
		n.osc.SetWave(u.Wave)
	}
	if u.Params&program.PFreq != 0 {
		n.freq = u.Freq
		adjtime = true
	}
	if u.Params&program.PDynFreq != 0 {
		n.dynfreq = u.DynFreq
	}
	if u.Params&program.PPhase != 0 {
		n.osc.SetPhase(u.Phase)
	}
	if u.Params&program.PAmp != 0 {
		n.amp = u.Amp
	}
	if u.Params&program.PDynAmp != 0 {
		n.dynamp = u.DynAmp
	}
	if u.Params&program.PPan != 0 {
		n.pan = u.Pan
	}
	if u.Params&program.PAttr != 0 {
		g.applyAttr(n, u.Attr)
	}
	if u.Params&program.PFreqRamp != 0 {
		n.freqRamp = ramp.Ramp{
			V0:   n.freq,
			Goal: u.FreqRamp.Goal,
			Time: g.samples(u.FreqRamp.TimeMS),
			Law:  u.FreqRamp.Law,
		}
		n.attr |= attrFreqRamp
	}
	if u.Params&program.PAmpRamp != 0 {
		n.ampRamp = ramp.Ramp{
			V0:   n.amp,
			Goal: u.AmpRamp.Goal,
			Time: g.samples(u.AmpRamp.TimeMS),
			Law:  u.AmpRamp.Law,
		}
		n.attr |= attrAmpRamp
	}
	if u.Params&program.PPanRamp != 0 {
		n.panRamp = ramp.Ramp{
			V0:   n.pan,
			Goal: u.PanRamp.Goal,
			Time: g.samples(u.PanRamp.TimeMS),
			Law:  u.PanRamp.Law,
		}
		n.attr |= attrPanRamp
	}
	if u.Params&program.PAMods != 0 {
		n.amods = g.wireChain(u.AMods, n)
	}
	if u.Params&program.PFMods != 0 {
		n.fmods = g.wireChain(u.FMods, n)
	}
	if u.Params&program.PPMods != 0 {
		n.pmods = g.wireChain(u.PMods, n)
	}
	if n.kind == program.Top {
		g.upsizeBufs(n)
		if adjtime && g.params.ClickReduction {
			// done after the merge so a new freq is in effect
			offs = adjustTime(n)
		}
	} else {
		g.upsizeBufs(g.index[g.index[n.id].root].node)
	}
	if e.prev != nil {
		// keep an aliased node from sounding through two entries at
		// once when timing is tweaked
		e.prev.status &^= statusActive
	}
	e.status |= statusPrepared
	return offs
}

// applyAttr merges attribute flags. Toggling ratio-frequency converts the
// stored value by the parent's current frequency, exactly once.
func (g *Generator) applyAttr(n *soundNode, a program.AttrMask) {
	ratio := a&program.AttrFreqRatio != 0
	wasRatio := n.attr&attrFreqRatio != 0
	if ratio != wasRatio && n.parent != nil {
		if ratio {
			n.freq /= n.parent.freq
		} else {
			n.freq *= n.parent.freq
		}
	}
	n.attr &^= attrFreqRatio | attrFreqRampRatio
	if ratio {
		n.attr |= attrFreqRatio
	}
	if a&program.AttrFreqRampRatio != 0 {
		n.attr |= attrFreqRampRatio
	}
}

// noteOffs merges a click-reduction cut into the carried delay for this
// block. The largest cut wins so no voice renders past another's
// shortened end.
func (g *Generator) noteOffs(offs uint32) {
	if offs == 0 {
		return
	}
	if !g.haveOffs || offs > g.delayOffs {
		g.delayOffs = offs
		g.haveOffs = true
	}
}

// Run renders up to len(out)/2 frames of interleaved stereo into out,
// which is zeroed first. It returns the number of frames carrying signal
// and whether further events or active nodes remain; callers loop until
// the second result is false.
func (g *Generator) Run(out []int16) (int, bool) {
	length := uint32(len(out) / 2)
	for i := range out[:2*length] {
		out[i] = 0
	}
	totlen := length
	genlen := uint32(0)
	bufOff := uint32(0) // frames consumed before the current segment
	for {
		var skiplen uint32
		// bound pass: never let rendering run past an unapplied event
		for i := g.cursor; i < uint32(len(g.entries)); i++ {
			e := &g.entries[i]
			if e.pos < 0 {
				delay := uint32(-e.pos)
				if g.haveOffs {
					// a cut can exceed the delay; the entry then
					// becomes due now rather than in the past
					if g.delayOffs < delay {
						delay -= g.delayOffs
					} else {
						delay = 0
					}
				}
				if delay <= length {
					skiplen = length - delay
					length = delay
				}
				break
			}
			if e.status&statusPrepared == 0 {
				// a disabling entry must merge before the entry it
				// disables gets to render
				g.noteOffs(g.prepareEntry(e))
			}
		}
		// render pass
		off := bufOff
		for i := g.cursor; i < uint32(len(g.entries)); i++ {
			e := &g.entries[i]
			if e.pos < 0 {
				delay := uint32(-e.pos)
				if g.haveOffs {
					offs := g.delayOffs
					if offs > delay {
						offs = delay
					}
					e.pos += int32(offs)
					delay -= offs
					g.delayOffs = 0
					g.haveOffs = false
				}
				if delay >= length {
					e.pos += int32(length)
					break // delays accumulate across entries
				}
				off += delay
				length -= delay
				e.pos = 0
			} else if e.status&statusPrepared == 0 {
				g.noteOffs(g.prepareEntry(e))
			}
			if e.status&statusActive != 0 {
				n := e.node
				ret := g.runNode(n, out[2*off:], uint32(e.pos), length)
				e.pos += int32(ret)
				if end := off + ret; end > genlen {
					genlen = end
				}
				if uint32(e.pos) == n.time {
					e.status &^= statusActive
				}
			}
		}
		if skiplen == 0 {
			break
		}
		bufOff += length
		length = skiplen
	}
	more := false
	for g.cursor < uint32(len(g.entries)) {
		st := g.entries[g.cursor].status
		if st&statusPrepared == 0 || st&statusActive != 0 {
			more = true
			break
		}
		g.cursor++
	}
	if more {
		genlen = totlen
	}
	return int(genlen), more
}
