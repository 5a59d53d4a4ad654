//go:build portaudio

package audio

import (
	"sync"
	"time"

	pa "github.com/gordonklaus/portaudio"
)

const paFramesPerBuffer = 1024

// Player streams a Source to the default output device via portaudio.
// A pump goroutine writes blocking buffers; Pause parks it.
type Player struct {
	mu       sync.Mutex
	source   Source
	stream   *pa.Stream
	buf      []int16
	rate     int
	frames   int64
	playing  bool
	finished bool
	stopped  bool
	wake     chan struct{}
	quit     chan struct{}
	pumpDone chan struct{}
}

func NewPlayer(sampleRate int, source Source) (*Player, error) {
	if err := pa.Initialize(); err != nil {
		return nil, err
	}
	p := &Player{
		source:   source,
		buf:      make([]int16, paFramesPerBuffer*2),
		rate:     sampleRate,
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
	stream, err := pa.OpenDefaultStream(
		0, 2, float64(sampleRate), paFramesPerBuffer, &p.buf,
	)
	if err != nil {
		pa.Terminate()
		return nil, err
	}
	p.stream = stream
	go p.pump()
	return p, nil
}

func (p *Player) pump() {
	defer close(p.pumpDone)
	for {
		p.mu.Lock()
		for !p.playing || p.finished {
			p.mu.Unlock()
			select {
			case <-p.quit:
				return
			case <-p.wake:
			}
			p.mu.Lock()
		}
		_, more := p.source.Run(p.buf)
		p.frames += paFramesPerBuffer
		if !more {
			p.finished = true
		}
		p.mu.Unlock()
		if err := p.stream.Write(); err != nil {
			// a write can lose a race with Pause stopping the stream;
			// only give up if the stream failed while live
			p.mu.Lock()
			playing := p.playing
			p.mu.Unlock()
			if playing {
				return
			}
		}
	}
}

func (p *Player) Play() {
	p.mu.Lock()
	if !p.playing && !p.stopped {
		p.playing = true
		p.stream.Start()
	}
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Player) Pause() {
	p.mu.Lock()
	if p.playing {
		p.playing = false
		// park the device too, or the stopped pump underflows it
		p.stream.Stop()
	}
	p.mu.Unlock()
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.finished
}

// Position returns the playback position in terms of frames written to
// the device.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(p.frames) * time.Second / time.Duration(p.rate)
}

// Finished reports whether the source has been fully consumed.
func (p *Player) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished
}

func (p *Player) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.playing = false
	p.mu.Unlock()
	close(p.quit)
	select {
	case p.wake <- struct{}{}:
	default:
	}
	<-p.pumpDone
	err := p.stream.Close()
	pa.Terminate()
	return err
}
