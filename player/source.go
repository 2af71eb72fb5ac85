package player

import (
	"io"
	"sync/atomic"
)

// FileSource reads decoded video frames from a local media file,
// composing the demuxer and video decoder behind the Source interface.
// Audio packets in the container are skipped here, the soundtrack is
// decoded separately by AudioPlayer.
//
// ReadFrame and SetSize belong to the producing goroutine. Position is
// safe to read from anywhere.
type FileSource struct {
	demuxer *Demuxer
	video   *VideoDecoder

	frames   atomic.Int64 // frames read so far
	draining bool         // demuxer exhausted, decoder flushing
}

// NewFileSource opens the media file at path
func NewFileSource(path string) (*FileSource, error) {
	demuxer, err := NewDemuxer(path)
	if err != nil {
		return nil, err
	}

	video, err := NewVideoDecoder(demuxer.VideoCodecParameters())
	if err != nil {
		demuxer.Close()
		return nil, err
	}

	return &FileSource{demuxer: demuxer, video: video}, nil
}

// ReadFrame returns the next frame in presentation order, io.EOF once
// demuxer and decoder are both exhausted
func (s *FileSource) ReadFrame() (*Frame, error) {
	for {
		if s.draining {
			frame, err := s.video.Drain()
			if err != nil {
				return nil, io.EOF
			}
			s.frames.Add(1)
			return frame, nil
		}

		pkt, isVideo, err := s.demuxer.ReadPacket()
		if err != nil {
			// Usually astiav.ErrEof, flush whatever the decoder holds
			s.draining = true
			continue
		}

		if !isVideo {
			pkt.Free()
			continue
		}

		frame, err := s.video.DecodePacket(pkt)
		pkt.Free()
		if err != nil {
			// A decode failure mid stream ends playback instead of crashing it
			return nil, io.EOF
		}
		if frame == nil {
			continue // Decoder needs more input
		}

		s.frames.Add(1)
		return frame, nil
	}
}

// SetSize sets the pixel dimensions of subsequently read frames
func (s *FileSource) SetSize(width, height int) {
	s.video.SetSize(width, height)
}

// SourceSize returns the native video dimensions
func (s *FileSource) SourceSize() (int, int) {
	return s.video.SourceSize()
}

// Position returns the number of frames read so far
func (s *FileSource) Position() int {
	return int(s.frames.Load())
}

// TotalFrames returns the container frame count, 0 when unknown
func (s *FileSource) TotalFrames() int {
	return s.demuxer.TotalFrames()
}

// FrameRate returns frames per second
func (s *FileSource) FrameRate() float64 {
	return s.demuxer.FrameRate()
}

// Close releases decoder and demuxer resources
func (s *FileSource) Close() {
	s.video.Close()
	s.demuxer.Close()
}
