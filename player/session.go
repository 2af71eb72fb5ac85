package player

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"time"
)

// playSession owns a single playback run: a producer goroutine that
// decodes, fits and rasterizes frames, and the consumer loop that paces
// them onto the terminal. The frames channel is the only shared state
// between the two. The producer blocks on it when full and closes it
// when the source runs dry, the consumer drains it and stops when it is
// empty and closed.
type playSession struct {
	source Source
	audio  Audio
	term   Terminal

	fps      float64
	interval time.Duration
	total    time.Duration

	frames chan RasterFrame

	stopCh   chan struct{}
	stopOnce sync.Once
}

type sessionConfig struct {
	term         Terminal
	bufferFrames int
	volume       float64
	muted        bool
	paused       bool
}

func newPlaySession(path string, cfg sessionConfig) (*playSession, error) {
	source, err := NewFileSource(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open media: %w", err)
	}

	// Audio is optional, a file without a soundtrack plays silent
	var audio Audio
	if a, err := NewAudioPlayer(path); err == nil {
		a.SetVolume(cfg.volume)
		if cfg.muted {
			a.Mute()
		}
		if cfg.paused {
			// A pause landing between loop replays must carry into the
			// next session, its scheduler parks and the audio has to idle
			// with it
			a.Pause()
		}
		audio = a
	}

	term := cfg.term
	if term == nil {
		term = NewTTY()
	}

	capacity := cfg.bufferFrames
	if capacity <= 0 {
		// Default to one terminal-height worth of frames
		_, capacity = termSize(term)
	}

	fps := source.FrameRate()

	var total time.Duration
	if n := source.TotalFrames(); n > 0 {
		total = time.Duration(float64(n) / fps * float64(time.Second))
	}

	return &playSession{
		source:   source,
		audio:    audio,
		term:     term,
		fps:      fps,
		interval: time.Duration(float64(time.Second) / fps),
		total:    total,
		frames:   make(chan RasterFrame, capacity),
		stopCh:   make(chan struct{}),
	}, nil
}

// run drives the session to completion. The producer is the only extra
// goroutine, playback itself happens on the caller.
func (s *playSession) run(p *AVPlayer) error {
	// A failed device start leaves the audio player closed, its control
	// methods and the resync no-op from then on. The field itself stays
	// put, concurrent Mute and Pause calls may still reach it.
	if s.audio != nil {
		if err := s.audio.Start(); err != nil {
			s.audio.Close()
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.produceLoop()
	}()

	err := s.playLoop(p)

	s.stop()
	wg.Wait()

	return err
}

func (s *playSession) stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// cleanup closes the collaborators. The fields are never nilled out,
// a Pause or Mute arriving from another goroutine during teardown still
// dereferences them and lands on a closed, no-op player.
func (s *playSession) cleanup() {
	if s.audio != nil {
		s.audio.Close()
	}
	s.source.Close()
}

// produceLoop decodes, fits and rasterizes frames until the source runs
// dry, closing the frames channel on the way out. Any read failure
// after a successful open ends the stream the same way a clean EOF
// does, naturally ending files must not look like errors.
func (s *playSession) produceLoop() {
	defer close(s.frames)

	srcW, srcH := s.source.SourceSize()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		// Each pixel renders two characters wide and the bottom row is
		// reserved for the status line
		cols, rows := termSize(s.term)
		fitW, fitH := fitSize(srcW, srcH, cols/2, rows-1)
		s.source.SetSize(fitW, fitH)

		frame, err := s.source.ReadFrame()
		if err != nil {
			return
		}

		select {
		case s.frames <- Rasterize(frame):
		case <-s.stopCh:
			return
		}
	}
}

// playLoop paces rasterized frames onto the terminal. It owns every
// terminal write and the audio position. Redraw bookkeeping lives in
// its locals, nothing else reads it.
func (s *playSession) playLoop(p *AVPlayer) error {
	var (
		lastCols, lastRows int
		lastW, lastH       int
		drawn              bool
		shown              int
		buf                bytes.Buffer
	)

	for {
		// Park while paused, the audio streamer idles in silence at the
		// same time
		for p.paused.Load() {
			select {
			case <-s.stopCh:
				return nil
			case <-time.After(50 * time.Millisecond):
			}
		}

		target := time.Now().Add(s.interval)

		var frame RasterFrame
		var ok bool
		select {
		case <-s.stopCh:
			return nil
		case frame, ok = <-s.frames:
			if !ok {
				// Buffer empty and producer finished
				return nil
			}
		}

		cols, rows := termSize(s.term)

		// Empty frames are skipped on screen but still advance pacing
		// and the status line
		if len(frame.Rows) > 0 {
			redraw := !drawn || cols != lastCols || rows != lastRows ||
				frame.Width != lastW || frame.Height != lastH

			buf.Reset()
			buf.WriteString(escSyncBegin)
			if redraw {
				buf.WriteString(escClear)
			}
			buf.WriteString(escHome)
			for i, row := range frame.Rows {
				if i > 0 {
					buf.WriteString("\r\n")
				}
				buf.WriteString(row)
			}
			buf.WriteString(escReset)
			buf.WriteString(escSyncEnd)

			if _, err := s.term.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("failed to write frame: %w", err)
			}

			drawn = true
			lastCols, lastRows = cols, rows
			lastW, lastH = frame.Width, frame.Height
		}

		shown++

		delay := time.Until(target)

		elapsed := time.Duration(float64(shown) / s.fps * float64(time.Second))
		status := moveTo(rows, 1) + statusLine(elapsed, s.total, delay)
		if _, err := s.term.Write([]byte(status)); err != nil {
			return fmt.Errorf("failed to write status: %w", err)
		}

		if delay > 0 {
			select {
			case <-s.stopCh:
				return nil
			case <-time.After(delay):
			}
		} else if s.audio != nil {
			// Fallen behind, drag the audio back to what is actually on
			// screen: frames decoded minus frames still buffered
			displayed := s.source.Position() - len(s.frames)
			s.audio.SetPosition(float64(displayed) / s.fps)
		}
	}
}

// termSize queries the terminal, falling back to a conventional 80x24
// when the query fails
func termSize(t Terminal) (cols, rows int) {
	cols, rows, err := t.Size()
	if err != nil || cols <= 0 || rows <= 0 {
		return DefaultCols, DefaultRows
	}
	return cols, rows
}

// fitSize computes aspect-preserving dimensions fitting srcW x srcH
// into maxW x maxH, truncated to whole pixels. Degenerate inputs fit to
// 0x0 rather than erroring, callers must cope with a blank frame.
func fitSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}

	ratio := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	return int(float64(srcW) * ratio), int(float64(srcH) * ratio)
}
