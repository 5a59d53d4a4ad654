package saugns

import (
	"encoding/binary"

	"github.com/hyphop/saugns/internal/gen"
	"github.com/hyphop/saugns/internal/program"
)

const renderBlock = 1024 // frames per render call

// RenderSamples runs a program to completion and returns interleaved
// stereo 16-bit samples at the given rate.
func RenderSamples(prg *program.Program, sampleRate int) ([]int16, error) {
	return RenderSamplesParams(prg, sampleRate, gen.DefaultParams())
}

// RenderSamplesParams is RenderSamples with explicit generator parameters.
func RenderSamplesParams(prg *program.Program, sampleRate int, params gen.Params) ([]int16, error) {
	g, err := gen.New(prg, uint32(sampleRate), params)
	if err != nil {
		return nil, err
	}
	var out []int16
	buf := make([]int16, 2*renderBlock)
	for {
		n, more := g.Run(buf)
		out = append(out, buf[:2*n]...)
		if !more {
			return out, nil
		}
	}
}

// RenderScript compiles a score and renders it in one call.
func RenderScript(src string, sampleRate int) ([]int16, error) {
	prg, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return RenderSamples(prg, sampleRate)
}

// EncodeWAVPCM16 wraps interleaved 16-bit samples in a WAV container.
func EncodeWAVPCM16(samples []int16, sampleRate, channels int) []byte {
	dataSize := len(samples) * 2
	buf := make([]byte, 44+dataSize)

	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")

	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	byteRate := sampleRate * channels * 2
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(channels*2))
	binary.LittleEndian.PutUint16(buf[34:36], 16)

	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[44+i*2:], uint16(s))
	}
	return buf
}
