package program

import (
	"errors"
	"testing"
)

func simpleTone() *Program {
	return &Program{
		NodeCount: 1,
		Updates: []Update{{
			Target: 0, Root: 0, Kind: Top,
			Params: PTime | PFreq | PAmp,
			TimeMS: 100, Freq: 440, Amp: 0.5,
		}},
	}
}

func TestValidateOK(t *testing.T) {
	if err := simpleTone().Validate(); err != nil {
		t.Fatalf("valid program rejected: %v", err)
	}
}

func TestValidateTargetOutOfRange(t *testing.T) {
	p := simpleTone()
	p.Updates[0].Target = 5
	p.Updates[0].Root = 5
	if err := p.Validate(); !errors.Is(err, ErrProgramCorrupt) {
		t.Fatalf("got %v, want ErrProgramCorrupt", err)
	}
}

func TestValidateTopRootMismatch(t *testing.T) {
	p := &Program{
		NodeCount: 2,
		Updates: []Update{{
			Target: 0, Root: 1, Kind: Top,
			Params: PTime, TimeMS: 100,
		}},
	}
	if err := p.Validate(); !errors.Is(err, ErrProgramCorrupt) {
		t.Fatalf("got %v, want ErrProgramCorrupt", err)
	}
}

func TestValidateKindConflict(t *testing.T) {
	p := &Program{
		NodeCount: 1,
		Updates: []Update{
			{Target: 0, Root: 0, Kind: Top, Params: PTime, TimeMS: 100},
			{Target: 0, Root: 0, Kind: Nested, Params: PAmp, Amp: 1},
		},
	}
	if err := p.Validate(); !errors.Is(err, ErrProgramCorrupt) {
		t.Fatalf("got %v, want ErrProgramCorrupt", err)
	}
}

func TestValidateSelfModulation(t *testing.T) {
	p := simpleTone()
	p.Updates[0].Params |= PPMods
	p.Updates[0].PMods = []NodeID{0}
	if err := p.Validate(); !errors.Is(err, ErrProgramCorrupt) {
		t.Fatalf("got %v, want ErrProgramCorrupt", err)
	}
}

func TestValidateModulatorCycle(t *testing.T) {
	p := &Program{
		NodeCount: 3,
		Updates: []Update{
			{Target: 0, Root: 0, Kind: Top, Params: PTime | PPMods,
				TimeMS: 100, PMods: []NodeID{1}},
			{Target: 1, Root: 0, Kind: Nested, Params: PFMods,
				FMods: []NodeID{2}},
			{Target: 2, Root: 0, Kind: Nested, Params: PFMods,
				FMods: []NodeID{1}},
		},
	}
	if err := p.Validate(); !errors.Is(err, ErrProgramCorrupt) {
		t.Fatalf("got %v, want ErrProgramCorrupt", err)
	}
}

func TestValidatePanRange(t *testing.T) {
	p := simpleTone()
	p.Updates[0].Params |= PPan
	p.Updates[0].Pan = 1.5
	if err := p.Validate(); !errors.Is(err, ErrProgramCorrupt) {
		t.Fatalf("got %v, want ErrProgramCorrupt", err)
	}
}

func TestValidateDeepChainWithinLimit(t *testing.T) {
	p := &Program{NodeCount: uint32(MaxGraphDepth)}
	p.Updates = append(p.Updates, Update{
		Target: 0, Root: 0, Kind: Top,
		Params: PTime | PFMods, TimeMS: 100, FMods: []NodeID{1},
	})
	for i := 1; i < MaxGraphDepth-1; i++ {
		p.Updates = append(p.Updates, Update{
			Target: NodeID(i), Root: 0, Kind: Nested,
			Params: PFMods, FMods: []NodeID{NodeID(i + 1)},
		})
	}
	p.Updates = append(p.Updates, Update{
		Target: NodeID(MaxGraphDepth - 1), Root: 0, Kind: Nested,
		Params: PFreq, Freq: 100,
	})
	if err := p.Validate(); err != nil {
		t.Fatalf("chain at depth limit rejected: %v", err)
	}
}
