package saugns

import (
	"encoding/binary"
	"testing"

	"github.com/hyphop/saugns/internal/gen"
)

func TestRenderScriptDuration(t *testing.T) {
	samples, err := RenderScript("Wsin f440 a0.8 t0.1", 44100)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if got, want := len(samples), 2*4410; got != want {
		t.Fatalf("sample count = %d, want %d", got, want)
	}
	var peak int16
	for _, s := range samples {
		if s > peak {
			peak = s
		}
	}
	if peak < 20000 {
		t.Errorf("peak %d, want a loud sine", peak)
	}
}

func TestRenderSamplesParamsClickReduction(t *testing.T) {
	prg, err := Compile("Wsin f443 a0.5 t0.1")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	exact, err := RenderSamplesParams(prg, 44100, gen.Params{})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	trimmed, err := RenderSamplesParams(prg, 44100, gen.Params{ClickReduction: true})
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if len(exact) != 2*4410 {
		t.Errorf("exact length = %d frames, want 4410", len(exact)/2)
	}
	if len(trimmed) >= len(exact) {
		t.Errorf("click reduction did not shorten the note: %d >= %d",
			len(trimmed)/2, len(exact)/2)
	}
}

func TestRenderScriptParseError(t *testing.T) {
	if _, err := RenderScript("Wnope f440", 44100); err == nil {
		t.Fatal("expected error for unknown wave type")
	}
}

func TestEncodeWAVPCM16Header(t *testing.T) {
	samples := []int16{0, 0, 1000, -1000, 32767, -32768}
	wav := EncodeWAVPCM16(samples, 44100, 2)

	if got, want := len(wav), 44+len(samples)*2; got != want {
		t.Fatalf("wav size = %d, want %d", got, want)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[4:8]); got != uint32(36+len(samples)*2) {
		t.Errorf("riff size = %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[20:22]); got != 1 {
		t.Errorf("format tag = %d, want 1 (PCM)", got)
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 2 {
		t.Errorf("channels = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != 44100 {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != 44100*4 {
		t.Errorf("byte rate = %d", got)
	}
	if got := binary.LittleEndian.Uint16(wav[34:36]); got != 16 {
		t.Errorf("bits per sample = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(samples)*2) {
		t.Errorf("data size = %d", got)
	}
	if got := int16(binary.LittleEndian.Uint16(wav[44+4*2:])); got != 32767 {
		t.Errorf("sample round trip = %d, want 32767", got)
	}
	if got := int16(binary.LittleEndian.Uint16(wav[44+5*2:])); got != -32768 {
		t.Errorf("sample round trip = %d, want -32768", got)
	}
}
