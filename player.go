package saugns

import (
	"errors"
	"sync"

	intaudio "github.com/hyphop/saugns/internal/audio"
	"github.com/hyphop/saugns/internal/gen"
	"github.com/hyphop/saugns/internal/program"
)

// PlayerOption configures a Player.
type PlayerOption func(*playerConfig)

type playerConfig struct {
	clickReduction bool
	sampleTap      func([]int16)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{clickReduction: true}
}

// WithClickReduction toggles note end alignment to oscillator cycle
// boundaries. On by default.
func WithClickReduction(on bool) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.clickReduction = on
	}
}

// WithSampleTap registers a callback receiving each rendered block of
// interleaved stereo samples before it reaches the audio device. The
// callback runs on the audio pump goroutine and must not block.
func WithSampleTap(tap func([]int16)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// Player renders programs to the default audio output device.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	cfg        playerConfig
	audio      *intaudio.Player
	src        *tapSource
	done       chan struct{}
}

// NewPlayer creates a player rendering at the given sample rate.
func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("saugns: sample rate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Player{sampleRate: sampleRate, cfg: cfg}, nil
}

// tapSource feeds generator output to the device, copying each block to
// the tap and signaling done when the program completes.
type tapSource struct {
	gen      *gen.Generator
	tap      func([]int16)
	done     chan struct{}
	doneOnce sync.Once
}

func (s *tapSource) Run(dst []int16) (int, bool) {
	n, more := s.gen.Run(dst)
	if s.tap != nil && n > 0 {
		s.tap(dst[:2*n])
	}
	if !more {
		s.signalDone()
	}
	return n, more
}

func (s *tapSource) signalDone() {
	s.doneOnce.Do(func() { close(s.done) })
}

// PlayScript compiles a score and starts playing it.
func (p *Player) PlayScript(src string) error {
	prg, err := Compile(src)
	if err != nil {
		return err
	}
	return p.Play(prg)
}

// Play starts playing a program, stopping any previous playback.
func (p *Player) Play(prg *program.Program) error {
	g, err := gen.New(prg, uint32(p.sampleRate), gen.Params{
		ClickReduction: p.cfg.clickReduction,
	})
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Stop()
		p.audio = nil
	}
	if p.src != nil {
		// release anyone waiting on the replaced playback
		p.src.signalDone()
		p.src = nil
	}

	src := &tapSource{gen: g, tap: p.cfg.sampleTap, done: make(chan struct{})}
	ap, err := intaudio.NewPlayer(p.sampleRate, src)
	if err != nil {
		return err
	}
	p.audio = ap
	p.src = src
	p.done = src.done
	ap.Play()
	return nil
}

// Pause suspends playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

// Resume continues paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
	}
}

// IsPlaying reports whether audio is currently being produced.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.audio != nil && p.audio.IsPlaying()
}

// Stop ends playback, releases the device stream and unblocks Wait.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src != nil {
		p.src.signalDone()
		p.src = nil
	}
	if p.audio == nil {
		return nil
	}
	err := p.audio.Stop()
	p.audio = nil
	return err
}

// Wait blocks until the current program finishes rendering. It returns
// immediately if nothing is playing.
func (p *Player) Wait() {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}
