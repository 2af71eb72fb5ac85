package player

import (
	"fmt"
	"sync"

	"github.com/asticode/go-astiav"
)

// Demuxer handles opening media and reading packets
type Demuxer struct {
	formatCtx   *astiav.FormatContext
	videoStream *astiav.Stream
	audioStream *astiav.Stream
	videoIdx    int
	audioIdx    int

	mu     sync.Mutex
	closed bool
}

// NewDemuxer opens the media file at path
func NewDemuxer(path string) (*Demuxer, error) {
	d := &Demuxer{
		videoIdx: -1,
		audioIdx: -1,
	}

	// Allocate format context
	d.formatCtx = astiav.AllocFormatContext()
	if d.formatCtx == nil {
		return nil, fmt.Errorf("failed to allocate format context")
	}

	// Open input
	if err := d.formatCtx.OpenInput(path, nil, nil); err != nil {
		d.formatCtx.Free()
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	// Find stream info
	if err := d.formatCtx.FindStreamInfo(nil); err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to find stream info: %w", err)
	}

	// Find video and audio streams
	for _, stream := range d.formatCtx.Streams() {
		switch stream.CodecParameters().MediaType() {
		case astiav.MediaTypeVideo:
			if d.videoIdx == -1 {
				d.videoIdx = stream.Index()
				d.videoStream = stream
			}
		case astiav.MediaTypeAudio:
			if d.audioIdx == -1 {
				d.audioIdx = stream.Index()
				d.audioStream = stream
			}
		}
	}

	if d.videoIdx == -1 {
		d.Close()
		return nil, fmt.Errorf("no video stream found")
	}

	return d, nil
}

// VideoCodecParameters returns the video codec parameters
func (d *Demuxer) VideoCodecParameters() *astiav.CodecParameters {
	if d.videoStream == nil {
		return nil
	}
	return d.videoStream.CodecParameters()
}

// AudioCodecParameters returns the audio codec parameters
func (d *Demuxer) AudioCodecParameters() *astiav.CodecParameters {
	if d.audioStream == nil {
		return nil
	}
	return d.audioStream.CodecParameters()
}

// HasAudio returns true if there's an audio stream
func (d *Demuxer) HasAudio() bool {
	return d.audioIdx != -1
}

// FrameRate returns the video frame rate, falling back to a default
// when the container does not report one
func (d *Demuxer) FrameRate() float64 {
	if d.videoStream == nil {
		return DefaultFrameRate
	}
	r := d.formatCtx.GuessFrameRate(d.videoStream, nil)
	if r.Num() <= 0 || r.Den() <= 0 {
		return DefaultFrameRate
	}
	return float64(r.Num()) / float64(r.Den())
}

// TotalFrames returns the video frame count, 0 when unknown. Some
// containers omit nb_frames, in which case it is estimated from the
// container duration.
func (d *Demuxer) TotalFrames() int {
	if d.videoStream == nil {
		return 0
	}
	if n := d.videoStream.NbFrames(); n > 0 {
		return int(n)
	}
	if dur := d.formatCtx.Duration(); dur > 0 {
		// Container duration is in AV_TIME_BASE (microsecond) units
		return int(float64(dur) / 1e6 * d.FrameRate())
	}
	return 0
}

// ReadPacket reads the next packet from the stream
// Returns the packet and whether it's a video packet (true) or audio packet (false)
// Returns astiav.ErrEof when the stream ends
func (d *Demuxer) ReadPacket() (*astiav.Packet, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, false, fmt.Errorf("demuxer closed")
	}

	pkt := astiav.AllocPacket()
	if pkt == nil {
		return nil, false, fmt.Errorf("failed to allocate packet")
	}

	if err := d.formatCtx.ReadFrame(pkt); err != nil {
		pkt.Free()
		return nil, false, err
	}

	isVideo := pkt.StreamIndex() == d.videoIdx
	return pkt, isVideo, nil
}

// Close releases all resources
func (d *Demuxer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	if d.formatCtx != nil {
		d.formatCtx.CloseInput()
		d.formatCtx.Free()
		d.formatCtx = nil
	}
}
