package player

import (
	"io"

	"github.com/asticode/go-astiav"
)

func init() {
	// Suppress FFmpeg log messages, they would tear up the drawing area
	astiav.SetLogLevel(astiav.LogLevelQuiet)
}

// Player defines the interface for video playback
type Player interface {
	// Play plays a local media file, blocks until stopped or finished
	Play(path string) error

	// Stop stops current playback
	Stop()

	// Pause toggles pause state
	Pause()

	// IsPaused returns current pause state
	IsPaused() bool

	// Mute toggles audio mute
	Mute()

	// IsMuted returns current mute state
	IsMuted() bool

	// IsPlaying returns true while a playback session is running
	IsPlaying() bool

	// SetVolume sets audio volume, 1.0 is unity gain
	SetVolume(v float64)

	// Close releases all resources
	Close()

	// SetOutput sets the writer for video frames (terminal output)
	SetOutput(w io.Writer)
}

// Source supplies decoded RGB frames from a media file
type Source interface {
	// ReadFrame returns the next frame in presentation order, io.EOF when exhausted
	ReadFrame() (*Frame, error)

	// SetSize sets the pixel dimensions of subsequently read frames
	SetSize(width, height int)

	// SourceSize returns the native video dimensions
	SourceSize() (width, height int)

	// Position returns the number of frames read so far, safe to call
	// from any goroutine
	Position() int

	// TotalFrames returns the total frame count, 0 when unknown
	TotalFrames() int

	// FrameRate returns frames per second
	FrameRate() float64

	// Close releases decoder resources
	Close()
}

// Audio plays the soundtrack of a media file
type Audio interface {
	// Start begins playback on the output device
	Start() error

	// Pause toggles pause state
	Pause()

	// IsPaused returns current pause state
	IsPaused() bool

	// Mute toggles mute without losing the volume setting
	Mute()

	// IsMuted returns current mute state
	IsMuted() bool

	// SetVolume sets volume, 1.0 is unity gain
	SetVolume(v float64)

	// Position returns the current playback position in seconds
	Position() float64

	// SetPosition moves playback to a position in seconds, clamped to
	// the range decoded so far
	SetPosition(seconds float64)

	// Close stops playback and releases decoder resources
	Close()
}

// Terminal is the drawing surface for rendered frames
type Terminal interface {
	io.Writer

	// Size returns the terminal dimensions in character cells
	Size() (cols, rows int, err error)
}

// Frame represents a decoded video frame
type Frame struct {
	RGB    []byte // RGB24 pixel data
	Width  int    // Frame width in pixels
	Height int    // Frame height in pixels
}

// RasterFrame is a frame rendered to terminal escape sequences
type RasterFrame struct {
	Rows   []string // One string per frame row, top to bottom
	Width  int      // Source frame width in pixels
	Height int      // Source frame height in pixels
}

const (
	// AudioSampleRate for resampling
	AudioSampleRate = 44100

	// DefaultFrameRate is assumed when the container reports no rate
	DefaultFrameRate = 30.0

	// Fallback terminal size when the ioctl fails (not a tty)
	DefaultCols = 80
	DefaultRows = 24
)
