// Package program defines the compiled form a generator runs: a flat list
// of timed update records addressing sound nodes by numeric id.
package program

import (
	"errors"
	"fmt"

	"github.com/hyphop/saugns/internal/ramp"
	"github.com/hyphop/saugns/internal/wave"
)

// ErrProgramCorrupt reports a program that fails validation and must not
// be run.
var ErrProgramCorrupt = errors.New("program corrupt")

// NodeID identifies a sound node within a program. Ids are dense,
// starting at zero.
type NodeID uint32

// ParamMask flags which fields of an Update carry a value.
type ParamMask uint32

const (
	PTime ParamMask = 1 << iota
	PWave
	PFreq
	PDynFreq
	PPhase
	PAmp
	PDynAmp
	PPan
	PAttr
	PAMods
	PFMods
	PPMods
	PFreqRamp
	PAmpRamp
	PPanRamp
	PSilence
)

// AttrMask carries boolean node attributes.
type AttrMask uint8

const (
	// AttrFreqRatio marks Freq and DynFreq as ratios relative to the
	// parent carrier's frequency rather than absolute Hz.
	AttrFreqRatio AttrMask = 1 << iota
	// AttrFreqRampRatio marks the frequency ramp goal as such a ratio.
	AttrFreqRampRatio
)

// Kind distinguishes top-level voice nodes from nested modulators.
type Kind uint8

const (
	Top Kind = iota
	Nested
)

// TimeInfinite makes a node sound until the program ends.
const TimeInfinite = ^uint32(0)

// MaxGraphDepth bounds modulator nesting below any voice.
const MaxGraphDepth = 32

// RampDesc describes a parameter sweep requested by an update.
type RampDesc struct {
	Goal   float32
	TimeMS uint32
	Law    ramp.Law
}

// Update is one timed change to a node's parameters. WaitMS delays it
// relative to the previous update in program order. Params says which of
// the remaining fields are meaningful.
type Update struct {
	Target NodeID
	Root   NodeID // voice node whose graph Target belongs to
	Kind   Kind
	WaitMS uint32
	Params ParamMask

	TimeMS    uint32
	SilenceMS uint32
	Wave      wave.Type
	Freq      float32
	DynFreq   float32
	Phase     uint32
	Amp       float32
	DynAmp    float32
	Pan       float32
	Attr      AttrMask

	FMods []NodeID
	PMods []NodeID
	AMods []NodeID

	FreqRamp RampDesc
	AmpRamp  RampDesc
	PanRamp  RampDesc
}

// Program is a complete compiled score. NodeCount is the number of
// distinct node ids; every id referenced by Updates must be below it.
type Program struct {
	Updates   []Update
	NodeCount uint32
}

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrProgramCorrupt}, args...)...)
}

// Validate checks structural soundness: ids in range, top/nested
// consistency, no modulator cycles, nesting within MaxGraphDepth and
// parameter values in range. A program that passes may be handed to a
// generator without further checks.
func (p *Program) Validate() error {
	kind := make(map[NodeID]Kind, p.NodeCount)
	mods := make(map[NodeID][]NodeID, p.NodeCount)
	for i := range p.Updates {
		u := &p.Updates[i]
		if uint32(u.Target) >= p.NodeCount {
			return corruptf("update %d: target id %d out of range (%d nodes)",
				i, u.Target, p.NodeCount)
		}
		if uint32(u.Root) >= p.NodeCount {
			return corruptf("update %d: root id %d out of range", i, u.Root)
		}
		if u.Kind == Top && u.Root != u.Target {
			return corruptf("update %d: top-level node %d with root %d",
				i, u.Target, u.Root)
		}
		if k, seen := kind[u.Target]; seen {
			if k != u.Kind {
				return corruptf("node %d addressed as both top-level and nested",
					u.Target)
			}
		} else {
			kind[u.Target] = u.Kind
		}
		if u.Params&PPan != 0 && (u.Pan < 0 || u.Pan > 1) {
			return corruptf("update %d: pan %g outside [0,1]", i, u.Pan)
		}
		if u.Params&PPanRamp != 0 && (u.PanRamp.Goal < 0 || u.PanRamp.Goal > 1) {
			return corruptf("update %d: pan ramp goal %g outside [0,1]",
				i, u.PanRamp.Goal)
		}
		var children []NodeID
		if u.Params&PFMods != 0 {
			children = append(children, u.FMods...)
		}
		if u.Params&PPMods != 0 {
			children = append(children, u.PMods...)
		}
		if u.Params&PAMods != 0 {
			children = append(children, u.AMods...)
		}
		for _, id := range children {
			if uint32(id) >= p.NodeCount {
				return corruptf("update %d: modulator id %d out of range", i, id)
			}
			if id == u.Target {
				return corruptf("node %d modulates itself", id)
			}
		}
		if len(children) > 0 {
			mods[u.Target] = children
		}
	}
	// depth check doubles as cycle detection: a cycle would exceed any
	// finite depth
	for id, k := range kind {
		if k != Top {
			continue
		}
		if err := checkDepth(mods, id, 1); err != nil {
			return err
		}
	}
	return nil
}

func checkDepth(mods map[NodeID][]NodeID, id NodeID, depth int) error {
	if depth > MaxGraphDepth {
		return corruptf("modulator graph under node %d exceeds depth %d (or is cyclic)",
			id, MaxGraphDepth)
	}
	for _, child := range mods[id] {
		if err := checkDepth(mods, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}
