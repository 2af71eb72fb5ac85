package player

import (
	"io"
	"sync"
	"sync/atomic"
)

// AVPlayer implements the Player interface using FFmpeg
type AVPlayer struct {
	term Terminal

	bufferFrames int
	volume       float64

	playing atomic.Bool
	paused  atomic.Bool
	muted   atomic.Bool
	loop    atomic.Bool

	playMu   sync.Mutex
	configMu sync.Mutex

	sessionMu sync.Mutex
	session   *playSession
}

// NewAVPlayer creates a player writing to the controlling terminal
func NewAVPlayer() *AVPlayer {
	return &AVPlayer{
		term:   NewTTY(),
		volume: 1.0,
	}
}

func (p *AVPlayer) sessionConfig() sessionConfig {
	p.configMu.Lock()
	defer p.configMu.Unlock()

	return sessionConfig{
		term:         p.term,
		bufferFrames: p.bufferFrames,
		volume:       p.volume,
		muted:        p.muted.Load(),
		paused:       p.paused.Load(),
	}
}

func (p *AVPlayer) setSession(s *playSession) {
	p.sessionMu.Lock()
	defer p.sessionMu.Unlock()

	p.session = s
}

func (p *AVPlayer) clearSession(s *playSession) {
	p.sessionMu.Lock()
	defer p.sessionMu.Unlock()

	if p.session == s {
		p.session = nil
	}
}

func (p *AVPlayer) withSession(fn func(*playSession)) {
	p.sessionMu.Lock()
	s := p.session
	p.sessionMu.Unlock()

	if s != nil {
		fn(s)
	}
}

// SetOutput sets the writer for video frames
func (p *AVPlayer) SetOutput(w io.Writer) {
	p.configMu.Lock()
	defer p.configMu.Unlock()

	if tty, ok := p.term.(*TTY); ok {
		tty.SetOutput(w)
	}
}

// SetBufferFrames sets the frame buffer capacity for new sessions, 0
// falls back to the terminal height
func (p *AVPlayer) SetBufferFrames(n int) {
	p.configMu.Lock()
	defer p.configMu.Unlock()

	p.bufferFrames = n
}

// SetLoop makes Play restart the file until stopped
func (p *AVPlayer) SetLoop(loop bool) {
	p.loop.Store(loop)
}

// Play plays the media file at path, blocking until playback finishes
// or Stop is called. With looping enabled the file restarts until
// stopped.
func (p *AVPlayer) Play(path string) error {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	p.playing.Store(true)
	p.paused.Store(false)
	defer p.playing.Store(false)

	for {
		if err := p.playOnce(path); err != nil {
			return err
		}
		if !p.loop.Load() || !p.playing.Load() {
			return nil
		}
	}
}

// playOnce plays the media file once
func (p *AVPlayer) playOnce(path string) error {
	session, err := newPlaySession(path, p.sessionConfig())
	if err != nil {
		return err
	}

	p.setSession(session)
	defer func() {
		p.clearSession(session)
		session.cleanup()
	}()

	return session.run(p)
}

// Stop stops current playback
func (p *AVPlayer) Stop() {
	p.playing.Store(false)
	p.withSession(func(s *playSession) {
		s.stop()
	})
}

// Pause toggles pause state
func (p *AVPlayer) Pause() {
	p.paused.Store(!p.paused.Load())
	p.withSession(func(s *playSession) {
		if s.audio != nil {
			s.audio.Pause()
		}
	})
}

// IsPaused returns current pause state
func (p *AVPlayer) IsPaused() bool {
	return p.paused.Load()
}

// Mute toggles mute state
func (p *AVPlayer) Mute() {
	p.muted.Store(!p.muted.Load())
	p.withSession(func(s *playSession) {
		if s.audio != nil {
			s.audio.Mute()
		}
	})
}

// IsMuted returns current mute state
func (p *AVPlayer) IsMuted() bool {
	return p.muted.Load()
}

// IsPlaying returns true while a playback session is running
func (p *AVPlayer) IsPlaying() bool {
	return p.playing.Load()
}

// SetVolume sets audio volume, 1.0 is unity gain
func (p *AVPlayer) SetVolume(v float64) {
	p.configMu.Lock()
	p.volume = v
	p.configMu.Unlock()

	p.withSession(func(s *playSession) {
		if s.audio != nil {
			s.audio.SetVolume(v)
		}
	})
}

// Close releases all resources
func (p *AVPlayer) Close() {
	p.Stop()
}
