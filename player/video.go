package player

import (
	"fmt"
	"io"
	"sync"

	"github.com/asticode/go-astiav"
)

// VideoDecoder decodes video frames and scales to target size
type VideoDecoder struct {
	codecCtx *astiav.CodecContext
	swsCtx   *astiav.SoftwareScaleContext
	frame    *astiav.Frame
	rgbFrame *astiav.Frame

	srcWidth  int
	srcHeight int
	dstWidth  int
	dstHeight int

	// Frames decoded ahead of the caller, a packet can carry more than
	// one. Served strictly in decode order.
	queued []*Frame

	mu       sync.Mutex
	closed   bool
	draining bool
}

// NewVideoDecoder creates a video decoder from codec parameters
func NewVideoDecoder(codecParams *astiav.CodecParameters) (*VideoDecoder, error) {
	v := &VideoDecoder{
		srcWidth:  codecParams.Width(),
		srcHeight: codecParams.Height(),
		dstWidth:  codecParams.Width(),
		dstHeight: codecParams.Height(),
	}

	// Find decoder
	codec := astiav.FindDecoder(codecParams.CodecID())
	if codec == nil {
		return nil, fmt.Errorf("video codec not found: %s", codecParams.CodecID())
	}

	// Allocate codec context
	v.codecCtx = astiav.AllocCodecContext(codec)
	if v.codecCtx == nil {
		return nil, fmt.Errorf("failed to allocate video codec context")
	}

	// Copy parameters
	if err := codecParams.ToCodecContext(v.codecCtx); err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to copy video codec params: %w", err)
	}

	// Open codec
	if err := v.codecCtx.Open(codec, nil); err != nil {
		v.Close()
		return nil, fmt.Errorf("failed to open video codec: %w", err)
	}

	// Allocate frames
	v.frame = astiav.AllocFrame()
	v.rgbFrame = astiav.AllocFrame()

	return v, nil
}

// SetSize sets the output dimensions for scaling. The scale context is
// recreated lazily on the next decode.
func (v *VideoDecoder) SetSize(width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if width == v.dstWidth && height == v.dstHeight {
		return
	}

	v.dstWidth = width
	v.dstHeight = height

	if v.swsCtx != nil {
		v.swsCtx.Free()
		v.swsCtx = nil
	}
}

func (v *VideoDecoder) initSwsContext() error {
	// Create scaling context: source format -> RGB24 at target size
	var err error
	v.swsCtx, err = astiav.CreateSoftwareScaleContext(
		v.srcWidth, v.srcHeight, v.codecCtx.PixelFormat(),
		v.dstWidth, v.dstHeight, astiav.PixelFormatRgb24,
		astiav.NewSoftwareScaleContextFlags(astiav.SoftwareScaleContextFlagBilinear),
	)
	if err != nil {
		return fmt.Errorf("failed to create sws context: %w", err)
	}

	// The RGB frame is reused across decodes and must be clean before
	// AllocBuffer can size it again
	v.rgbFrame.Unref()
	v.rgbFrame.SetWidth(v.dstWidth)
	v.rgbFrame.SetHeight(v.dstHeight)
	v.rgbFrame.SetPixelFormat(astiav.PixelFormatRgb24)

	if err := v.rgbFrame.AllocBuffer(1); err != nil {
		return fmt.Errorf("failed to allocate RGB frame buffer: %w", err)
	}

	return nil
}

// DecodePacket decodes a video packet and returns an RGB frame, or nil
// when the decoder needs more input
func (v *VideoDecoder) DecodePacket(pkt *astiav.Packet) (*Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, fmt.Errorf("video decoder closed")
	}

	// Send packet to decoder. The receive below always empties the
	// decoder, so the send cannot be rejected for a full output queue.
	if err := v.codecCtx.SendPacket(pkt); err != nil {
		return nil, fmt.Errorf("failed to send video packet: %w", err)
	}

	// Receive every frame the decoder has ready, extras wait their turn
	for {
		if err := v.codecCtx.ReceiveFrame(v.frame); err != nil {
			if err == astiav.ErrEof || err == astiav.ErrEagain {
				break
			}
			return nil, fmt.Errorf("failed to receive video frame: %w", err)
		}

		frame, err := v.scaleCurrent()
		if err != nil {
			return nil, err
		}
		v.queued = append(v.queued, frame)
	}

	return v.popQueued(), nil
}

// popQueued returns the oldest queued frame, nil when none are waiting.
// Callers hold v.mu.
func (v *VideoDecoder) popQueued() *Frame {
	if len(v.queued) == 0 {
		return nil
	}
	frame := v.queued[0]
	v.queued = v.queued[1:]
	return frame
}

// Drain flushes frames still buffered in the decoder after the demuxer
// reaches end of stream. Returns io.EOF once the decoder is empty.
func (v *VideoDecoder) Drain() (*Frame, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, fmt.Errorf("video decoder closed")
	}

	if !v.draining {
		v.draining = true
		if err := v.codecCtx.SendPacket(nil); err != nil && err != astiav.ErrEof {
			return nil, fmt.Errorf("failed to flush video decoder: %w", err)
		}
	}

	if frame := v.popQueued(); frame != nil {
		return frame, nil
	}

	if err := v.codecCtx.ReceiveFrame(v.frame); err != nil {
		if err == astiav.ErrEof || err == astiav.ErrEagain {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to receive video frame: %w", err)
	}

	return v.scaleCurrent()
}

// scaleCurrent converts the frame just received into packed RGB at the
// target size. Degenerate target dimensions yield an empty frame, not
// an error. Callers hold v.mu.
func (v *VideoDecoder) scaleCurrent() (*Frame, error) {
	defer v.frame.Unref()

	if v.dstWidth <= 0 || v.dstHeight <= 0 {
		return &Frame{Width: v.dstWidth, Height: v.dstHeight}, nil
	}

	// Initialize sws context if needed
	if v.swsCtx == nil {
		if err := v.initSwsContext(); err != nil {
			return nil, err
		}
	}

	if err := v.swsCtx.ScaleFrame(v.frame, v.rgbFrame); err != nil {
		return nil, fmt.Errorf("failed to scale frame: %w", err)
	}

	data := v.rgbFrame.Data()
	rgbBytes, err := data.Bytes(1)
	if err != nil {
		return nil, fmt.Errorf("failed to get RGB bytes: %w", err)
	}

	// Copy the data since the frame buffer will be reused
	rgb := make([]byte, len(rgbBytes))
	copy(rgb, rgbBytes)

	return &Frame{
		RGB:    rgb,
		Width:  v.dstWidth,
		Height: v.dstHeight,
	}, nil
}

// SourceSize returns the original video dimensions
func (v *VideoDecoder) SourceSize() (int, int) {
	return v.srcWidth, v.srcHeight
}

// Close releases all resources
func (v *VideoDecoder) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	v.closed = true

	if v.frame != nil {
		v.frame.Free()
		v.frame = nil
	}
	if v.rgbFrame != nil {
		v.rgbFrame.Free()
		v.rgbFrame = nil
	}
	if v.swsCtx != nil {
		v.swsCtx.Free()
		v.swsCtx = nil
	}
	if v.codecCtx != nil {
		v.codecCtx.Free()
		v.codecCtx = nil
	}
}
