// Package script compiles the textual score language into a program.
//
// A score is a sequence of operator statements and timing marks:
//
//	Wsin f440 a0.6 t2     a sine carrier, 440 Hz, amplitude 0.6, 2 s
//	\1 Wtri f220 t1       after a 1 s wait, a triangle carrier
//	Q                     end of score
//
// Operator parameters: f frequency (number or note name such as A4), r
// ratio frequency (modulators only), a amplitude, t duration in seconds
// (t* for unbounded), s silence in seconds, p phase, b panning
// (carriers only), w waveform. Sweeps use brackets, as in
// f[cexp v880 t2]; modulator chains nest in braces: f!<depth>{...} for
// FM, a!<depth>{...} for AM, p{...} for PM. 'name labels an operator
// and :name retriggers it later, keeping its previous duration unless
// the step sets t. # comments to end of line.
package script

import (
	"fmt"
	"math"

	"github.com/hyphop/saugns/internal/osc"
	"github.com/hyphop/saugns/internal/program"
	"github.com/hyphop/saugns/internal/ramp"
	"github.com/hyphop/saugns/internal/wave"
)

// Options adjust score interpretation.
type Options struct {
	A4Tuning float64 // concert pitch for note names
}

func DefaultOptions() Options {
	return Options{A4Tuning: 440}
}

// Parse compiles src with default options.
func Parse(src string) (*program.Program, error) {
	return ParseOptions(src, DefaultOptions())
}

func ParseOptions(src string, opts Options) (*program.Program, error) {
	c := &compiler{
		src:       src,
		line:      1,
		a4:        opts.A4Tuning,
		ampMult:   1,
		defFreq:   440,
		defRatio:  1,
		defTimeMS: 1000,
		labels:    make(map[string]labelInfo),
		timesMS:   make(map[program.NodeID]uint32),
	}
	if c.a4 <= 0 {
		c.a4 = 440
	}
	if _, err := c.parseLevel(program.Top, 0); err != nil {
		return nil, err
	}
	updates := make([]program.Update, len(c.updates))
	for i, u := range c.updates {
		updates[i] = *u
	}
	prg := &program.Program{Updates: updates, NodeCount: c.nodeCount}
	if err := prg.Validate(); err != nil {
		return nil, err
	}
	return prg, nil
}

type labelInfo struct {
	id   program.NodeID
	kind program.Kind
	root program.NodeID
}

type compiler struct {
	src  string
	pos  int
	line int
	done bool // Q seen

	updates   []*program.Update
	nodeCount uint32

	a4        float64
	ampMult   float64
	defFreq   float64
	defRatio  float64
	defTimeMS uint32

	pendingWaitMS uint32
	pendingLabel  string
	labels        map[string]labelInfo
	timesMS       map[program.NodeID]uint32
}

func (c *compiler) errf(format string, args ...any) error {
	return fmt.Errorf("script:%d: "+format, append([]any{c.line}, args...)...)
}

func (c *compiler) eof() bool { return c.done || c.pos >= len(c.src) }

func (c *compiler) next() byte {
	b := c.src[c.pos]
	c.pos++
	if b == '\n' {
		c.line++
	}
	return b
}

func (c *compiler) peek() byte {
	if c.pos >= len(c.src) {
		return 0
	}
	return c.src[c.pos]
}

// accept consumes the next byte if it equals b.
func (c *compiler) accept(b byte) bool {
	if c.pos < len(c.src) && c.src[c.pos] == b {
		c.next()
		return true
	}
	return false
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// skipSpace eats whitespace and # comments, reporting whether a newline
// was crossed.
func (c *compiler) skipSpace() bool {
	nl := false
	for c.pos < len(c.src) {
		b := c.src[c.pos]
		if b == '#' {
			for c.pos < len(c.src) && c.src[c.pos] != '\n' {
				c.pos++
			}
			continue
		}
		if !isSpace(b) {
			break
		}
		if b == '\n' {
			nl = true
		}
		c.next()
	}
	return nl
}

// parseLevel reads one scope: the score top level, or a brace-enclosed
// modulator chain. It returns the ids of operators begun directly at
// this level, which form the enclosing chain.
func (c *compiler) parseLevel(kind program.Kind, root program.NodeID) ([]program.NodeID, error) {
	var ids []program.NodeID
	for {
		c.skipSpace()
		if c.eof() {
			if kind == program.Nested {
				return nil, c.errf("unterminated modulator scope")
			}
			return ids, nil
		}
		b := c.next()
		switch b {
		case 'W':
			u, err := c.newOperator(kind, root)
			if err != nil {
				return nil, err
			}
			ids = append(ids, u.Target)
			r := root
			if kind == program.Top {
				r = u.Target
			}
			if err := c.parseStep(u, kind, r); err != nil {
				return nil, err
			}
		case '\'':
			name, err := c.readName(b)
			if err != nil {
				return nil, err
			}
			c.pendingLabel = name
		case ':':
			name, err := c.readName(b)
			if err != nil {
				return nil, err
			}
			li, ok := c.labels[name]
			if !ok {
				return nil, c.errf("reference to undefined label %q", name)
			}
			u := c.addUpdate(li.id, li.root, li.kind)
			// restart with the node's previous duration; a t in the
			// step overrides it
			u.TimeMS = c.timesMS[li.id]
			u.Params |= program.PTime
			if err := c.parseStep(u, li.kind, li.root); err != nil {
				return nil, err
			}
		case '\\':
			if kind == program.Nested {
				return nil, c.errf("wait time not allowed inside modulator scope")
			}
			sec, err := c.readNum(false)
			if err != nil {
				return nil, err
			}
			if sec < 0 {
				return nil, c.errf("negative wait time")
			}
			c.pendingWaitMS += uint32(math.Round(sec * 1000))
		case 'S':
			if err := c.parseSettings(); err != nil {
				return nil, err
			}
		case 'Q':
			c.done = true
		case '}':
			if kind == program.Nested {
				return ids, nil
			}
			return nil, c.errf("closing brace without open modulator scope")
		default:
			return nil, c.errf("unexpected character %q", b)
		}
	}
}

// addUpdate appends a record for target, consuming any pending wait.
func (c *compiler) addUpdate(target, root program.NodeID, kind program.Kind) *program.Update {
	u := &program.Update{
		Target: target,
		Root:   root,
		Kind:   kind,
		WaitMS: c.pendingWaitMS,
	}
	c.pendingWaitMS = 0
	c.updates = append(c.updates, u)
	return u
}

// newOperator begins a W statement: allocates a node id, reads the wave
// type and emits the first update with scope defaults filled in.
func (c *compiler) newOperator(kind program.Kind, root program.NodeID) (*program.Update, error) {
	w, err := c.readWave()
	if err != nil {
		return nil, err
	}
	id := program.NodeID(c.nodeCount)
	c.nodeCount++
	if kind == program.Top {
		root = id
	}
	u := c.addUpdate(id, root, kind)
	u.Params = program.PTime | program.PWave | program.PFreq | program.PAmp
	u.Wave = w
	if kind == program.Top {
		u.TimeMS = c.defTimeMS
		u.Freq = float32(c.defFreq)
		u.Amp = float32(c.ampMult)
	} else {
		u.TimeMS = program.TimeInfinite
		u.Freq = float32(c.defRatio)
		u.Amp = 1
		u.Params |= program.PAttr
		u.Attr = program.AttrFreqRatio
	}
	c.timesMS[id] = u.TimeMS
	if c.pendingLabel != "" {
		c.labels[c.pendingLabel] = labelInfo{id: id, kind: kind, root: root}
		c.pendingLabel = ""
	}
	return u, nil
}

// parseStep reads the parameter list following an operator statement or
// label reference, mutating u. It stops at the first character belonging
// to the enclosing level, or at a newline when at the score top level.
func (c *compiler) parseStep(u *program.Update, kind program.Kind, root program.NodeID) error {
	for {
		if nl := c.skipSpace(); nl && kind == program.Top {
			return nil
		}
		if c.eof() {
			return nil
		}
		b := c.peek()
		switch b {
		case 'f':
			c.next()
			if err := c.parseFreq(u, kind, root, false); err != nil {
				return err
			}
		case 'r':
			if kind != program.Nested {
				return c.errf("ratio frequency only applies to modulators")
			}
			c.next()
			if err := c.parseFreq(u, kind, root, true); err != nil {
				return err
			}
		case 'a':
			c.next()
			if err := c.parseAmp(u, kind, root); err != nil {
				return err
			}
		case 'b':
			if kind != program.Top {
				return c.errf("panning only applies to carriers")
			}
			c.next()
			if c.accept('[') {
				rd, err := c.readRamp(false)
				if err != nil {
					return err
				}
				u.PanRamp = rd
				u.Params |= program.PPanRamp
				break
			}
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			if v < 0 || v > 1 {
				return c.errf("panning %g outside [0,1]", v)
			}
			u.Pan = float32(v)
			u.Params |= program.PPan
		case 't':
			c.next()
			if c.accept('*') {
				u.TimeMS = program.TimeInfinite
			} else {
				sec, err := c.readNum(false)
				if err != nil {
					return err
				}
				if sec < 0 {
					return c.errf("negative duration")
				}
				u.TimeMS = uint32(math.Round(sec * 1000))
			}
			u.Params |= program.PTime
			c.timesMS[u.Target] = u.TimeMS
		case 's':
			c.next()
			sec, err := c.readNum(false)
			if err != nil {
				return err
			}
			if sec < 0 {
				return c.errf("negative silence")
			}
			u.SilenceMS = uint32(math.Round(sec * 1000))
			u.Params |= program.PSilence
		case 'p':
			c.next()
			if c.accept('{') {
				ids, err := c.parseLevel(program.Nested, root)
				if err != nil {
					return err
				}
				u.PMods = ids
				u.Params |= program.PPMods
				break
			}
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			v = math.Mod(v, 1)
			if v < 0 {
				v++
			}
			u.Phase = osc.Phase(v)
			u.Params |= program.PPhase
		case 'w':
			c.next()
			w, err := c.readWave()
			if err != nil {
				return err
			}
			u.Wave = w
			u.Params |= program.PWave
		default:
			return nil
		}
	}
}

// parseFreq handles f and r parameter forms: plain value, ramp
// brackets, and the dynamic-value/FM-chain form with !.
func (c *compiler) parseFreq(u *program.Update, kind program.Kind, root program.NodeID, ratio bool) error {
	noteOK := !ratio
	if c.accept('!') {
		if c.peek() != '{' {
			v, err := c.readNum(noteOK)
			if err != nil {
				return err
			}
			if ratio {
				v = 1 / v
			}
			u.DynFreq = float32(v)
			u.Params |= program.PDynFreq
		}
		if c.accept('{') {
			ids, err := c.parseLevel(program.Nested, root)
			if err != nil {
				return err
			}
			u.FMods = ids
			u.Params |= program.PFMods
		}
		return nil
	}
	if c.accept('[') {
		rd, err := c.readRamp(noteOK)
		if err != nil {
			return err
		}
		if ratio {
			rd.Goal = 1 / rd.Goal
		}
		u.FreqRamp = rd
		u.Params |= program.PFreqRamp | program.PAttr
		u.Attr &^= program.AttrFreqRampRatio
		if ratio {
			u.Attr |= program.AttrFreqRampRatio
		}
		return nil
	}
	v, err := c.readNum(noteOK)
	if err != nil {
		return err
	}
	if ratio {
		v = 1 / v
	}
	u.Freq = float32(v)
	u.Params |= program.PFreq | program.PAttr
	u.Attr &^= program.AttrFreqRatio
	if ratio {
		u.Attr |= program.AttrFreqRatio
	}
	return nil
}

func (c *compiler) parseAmp(u *program.Update, kind program.Kind, root program.NodeID) error {
	if c.accept('!') {
		if c.peek() != '{' {
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			if kind == program.Top {
				v *= c.ampMult
			}
			u.DynAmp = float32(v)
			u.Params |= program.PDynAmp
		}
		if c.accept('{') {
			ids, err := c.parseLevel(program.Nested, root)
			if err != nil {
				return err
			}
			u.AMods = ids
			u.Params |= program.PAMods
		}
		return nil
	}
	if c.accept('[') {
		rd, err := c.readRamp(false)
		if err != nil {
			return err
		}
		if kind == program.Top {
			rd.Goal *= float32(c.ampMult)
		}
		u.AmpRamp = rd
		u.Params |= program.PAmpRamp
		return nil
	}
	v, err := c.readNum(false)
	if err != nil {
		return err
	}
	if kind == program.Top {
		v *= c.ampMult
	}
	u.Amp = float32(v)
	u.Params |= program.PAmp
	return nil
}

// parseSettings handles the S statement: score-wide defaults that apply
// to operators begun after it.
func (c *compiler) parseSettings() error {
	for {
		if nl := c.skipSpace(); nl {
			return nil
		}
		if c.eof() {
			return nil
		}
		switch c.peek() {
		case 'a':
			c.next()
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			c.ampMult = v
		case 'f':
			c.next()
			v, err := c.readNum(true)
			if err != nil {
				return err
			}
			c.defFreq = v
		case 'n':
			c.next()
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			if v <= 0 {
				return c.errf("tuning must be positive")
			}
			c.a4 = v
		case 'r':
			c.next()
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			c.defRatio = v
		case 't':
			c.next()
			v, err := c.readNum(false)
			if err != nil {
				return err
			}
			if v < 0 {
				return c.errf("negative default duration")
			}
			c.defTimeMS = uint32(math.Round(v * 1000))
		default:
			return nil
		}
	}
}

// readRamp reads a bracketed sweep: c<law>, v<goal>, t<seconds>, in any
// order, up to the closing bracket.
func (c *compiler) readRamp(noteOK bool) (program.RampDesc, error) {
	rd := program.RampDesc{Law: ramp.Linear, TimeMS: c.defTimeMS}
	haveGoal := false
	for {
		c.skipSpace()
		if c.eof() {
			return rd, c.errf("unterminated sweep")
		}
		switch b := c.next(); b {
		case ']':
			if !haveGoal {
				return rd, c.errf("sweep needs a goal value (v)")
			}
			return rd, nil
		case 'c':
			name := c.readAlpha()
			law, ok := ramp.LawByName(name)
			if !ok {
				return rd, c.errf("unknown sweep curve %q", name)
			}
			rd.Law = law
		case 'v':
			v, err := c.readNum(noteOK)
			if err != nil {
				return rd, err
			}
			rd.Goal = float32(v)
			haveGoal = true
		case 't':
			sec, err := c.readNum(false)
			if err != nil {
				return rd, err
			}
			if sec < 0 {
				return rd, c.errf("negative sweep duration")
			}
			rd.TimeMS = uint32(math.Round(sec * 1000))
		default:
			return rd, c.errf("unexpected %q in sweep", b)
		}
	}
}

func (c *compiler) readWave() (wave.Type, error) {
	name := c.readAlpha()
	w, ok := wave.TypeByName(name)
	if !ok {
		return 0, c.errf("unknown wave type %q", name)
	}
	return w, nil
}

func (c *compiler) readAlpha() string {
	start := c.pos
	for c.pos < len(c.src) {
		b := c.src[c.pos]
		if b < 'a' || b > 'z' {
			break
		}
		c.pos++
	}
	return c.src[start:c.pos]
}

func (c *compiler) readName(op byte) (string, error) {
	start := c.pos
	for c.pos < len(c.src) && !isSpace(c.src[c.pos]) {
		c.pos++
	}
	if c.pos == start {
		return "", c.errf("%q without a name", op)
	}
	return c.src[start:c.pos], nil
}
