package player

import (
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/asticode/go-astiav"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// The speaker is opened on first playback rather than at import time so
// that importing the package never touches the audio device
var (
	speakerOnce sync.Once
	speakerErr  error
)

// AudioPlayer decodes and plays the soundtrack of a media file. It owns
// an independent demuxer so audio decoding never contends with the
// video pipeline. Decoded PCM is retained rather than consumed, a
// cursor marks the next byte handed to the speaker, which lets the
// playback position move backwards for resync.
type AudioPlayer struct {
	demuxer  *Demuxer
	codecCtx *astiav.CodecContext
	swrCtx   *astiav.SoftwareResampleContext
	frame    *astiav.Frame

	// Retained PCM buffer (s16le stereo), guarded by buffMu together
	// with cursor and srcDone
	sampleBuf []byte
	cursor    int
	srcDone   bool
	buffMu    sync.Mutex

	// Beep chain: streamer wrapped in a volume effect
	streamer *audioStreamer
	volume   *effects.Volume
	level    float64 // configured gain, guarded by the speaker lock

	paused atomic.Bool
	muted  atomic.Bool

	mu     sync.Mutex
	closed bool
}

// audioStreamer implements beep.Streamer over the retained PCM buffer
type audioStreamer struct {
	player *AudioPlayer
}

func (s *audioStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	a := s.player

	a.buffMu.Lock()
	defer a.buffMu.Unlock()

	// When paused, fill with silence without advancing the cursor
	if a.paused.Load() {
		for i := range samples {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		return len(samples), true
	}

	const bytesPerSample = 4 // s16le stereo, 4 bytes = 1 sample
	a.fillLocked(len(samples) * bytesPerSample)

	for i := range samples {
		if a.cursor+bytesPerSample > len(a.sampleBuf) {
			// Out of data, keep streaming silence so the speaker holds
			// on to us until Close
			for j := i; j < len(samples); j++ {
				samples[j][0] = 0
				samples[j][1] = 0
			}
			break
		}

		// Convert s16le to the [-1, 1] floats beep expects
		left := int16(a.sampleBuf[a.cursor]) | int16(a.sampleBuf[a.cursor+1])<<8
		right := int16(a.sampleBuf[a.cursor+2]) | int16(a.sampleBuf[a.cursor+3])<<8
		samples[i][0] = float64(left) / 32767
		samples[i][1] = float64(right) / 32767

		a.cursor += bytesPerSample
	}

	return len(samples), true
}

func (s *audioStreamer) Err() error {
	return nil
}

// NewAudioPlayer opens the soundtrack of the media file at path.
// Returns an error when the file carries no audio stream.
func NewAudioPlayer(path string) (*AudioPlayer, error) {
	demuxer, err := NewDemuxer(path)
	if err != nil {
		return nil, err
	}

	if !demuxer.HasAudio() {
		demuxer.Close()
		return nil, fmt.Errorf("no audio stream found")
	}

	a := &AudioPlayer{
		demuxer:   demuxer,
		level:     1.0,
		sampleBuf: make([]byte, 0, 192000), // ~1 second
	}

	codecParams := demuxer.AudioCodecParameters()

	// Find decoder
	codec := astiav.FindDecoder(codecParams.CodecID())
	if codec == nil {
		a.Close()
		return nil, fmt.Errorf("audio codec not found: %s", codecParams.CodecID())
	}

	// Allocate codec context
	a.codecCtx = astiav.AllocCodecContext(codec)
	if a.codecCtx == nil {
		a.Close()
		return nil, fmt.Errorf("failed to allocate audio codec context")
	}

	// Copy parameters
	if err := codecParams.ToCodecContext(a.codecCtx); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to copy audio codec params: %w", err)
	}

	// Open codec
	if err := a.codecCtx.Open(codec, nil); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open audio codec: %w", err)
	}

	// Allocate decode frame
	a.frame = astiav.AllocFrame()

	// Resampler converts whatever the file carries to s16le stereo
	a.swrCtx = astiav.AllocSoftwareResampleContext()
	if a.swrCtx == nil {
		a.Close()
		return nil, fmt.Errorf("failed to allocate swr context")
	}

	a.streamer = &audioStreamer{player: a}
	a.volume = &effects.Volume{Streamer: a.streamer, Base: 2}

	return a, nil
}

// Start begins audio playback, initializing the speaker on first use
func (a *AudioPlayer) Start() error {
	speakerOnce.Do(func() {
		sr := beep.SampleRate(AudioSampleRate)
		speakerErr = speaker.Init(sr, sr.N(50*time.Millisecond))
	})
	if speakerErr != nil {
		return fmt.Errorf("failed to initialize speaker: %w", speakerErr)
	}

	speaker.Play(a.volume)
	return nil
}

// fillLocked decodes packets until the buffer can serve want bytes past
// the cursor or the source runs dry. Callers hold buffMu.
func (a *AudioPlayer) fillLocked(want int) {
	for !a.srcDone && len(a.sampleBuf)-a.cursor < want {
		if err := a.decodeNext(); err != nil {
			a.srcDone = true
		}
	}
}

// decodeNext reads one audio packet and appends its resampled PCM to
// the buffer. Returns io.EOF when the demuxer is exhausted.
func (a *AudioPlayer) decodeNext() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("audio player closed")
	}

	for {
		pkt, isVideo, err := a.demuxer.ReadPacket()
		if err != nil {
			// Demuxer is dry, flush whatever the decoder still holds
			a.codecCtx.SendPacket(nil)
			a.receiveFrames()
			return io.EOF
		}

		if isVideo {
			pkt.Free()
			continue
		}

		err = a.codecCtx.SendPacket(pkt)
		pkt.Free()
		if err != nil {
			return fmt.Errorf("failed to send audio packet: %w", err)
		}

		return a.receiveFrames()
	}
}

// receiveFrames drains decoded frames out of the codec, resampling each
// to s16le stereo and appending to the retained buffer
func (a *AudioPlayer) receiveFrames() error {
	for {
		if err := a.codecCtx.ReceiveFrame(a.frame); err != nil {
			if err == astiav.ErrEof || err == astiav.ErrEagain {
				return nil
			}
			return fmt.Errorf("failed to receive audio frame: %w", err)
		}

		// Output capacity scales the input count by the rate ratio,
		// with slack for samples buffered inside swr
		outNb := a.frame.NbSamples()
		if r := a.codecCtx.SampleRate(); r > 0 {
			outNb = outNb*AudioSampleRate/r + 64
		}

		outFrame := astiav.AllocFrame()
		outFrame.SetSampleFormat(astiav.SampleFormatS16)
		outFrame.SetSampleRate(AudioSampleRate)
		outFrame.SetChannelLayout(astiav.ChannelLayoutStereo)
		outFrame.SetNbSamples(outNb)

		// Allocate buffer for output frame
		if err := outFrame.AllocBuffer(0); err != nil {
			a.frame.Unref()
			outFrame.Free()
			continue
		}

		// Resample frame
		if err := a.swrCtx.ConvertFrame(a.frame, outFrame); err != nil {
			a.frame.Unref()
			outFrame.Free()
			// Skip frames that fail to resample instead of erroring
			continue
		}

		// Interleaved S16 lives in plane 0
		data := outFrame.Data()
		if data != nil {
			numSamples := outFrame.NbSamples()
			byteSize := numSamples * 2 * 2 // 2 channels * 2 bytes per sample
			plane, err := data.Bytes(0)
			if err == nil && len(plane) >= byteSize {
				a.sampleBuf = append(a.sampleBuf, plane[:byteSize]...)
			}
		}

		a.frame.Unref()
		outFrame.Free()
	}
}

// Position returns the current playback position in seconds
func (a *AudioPlayer) Position() float64 {
	a.buffMu.Lock()
	defer a.buffMu.Unlock()
	return float64(a.cursor/4) / AudioSampleRate
}

// SetPosition moves playback to the given position in seconds, clamped
// to the range decoded so far
func (a *AudioPlayer) SetPosition(seconds float64) {
	a.buffMu.Lock()
	defer a.buffMu.Unlock()

	if seconds < 0 {
		seconds = 0
	}
	cursor := int(seconds*AudioSampleRate) * 4
	if cursor > len(a.sampleBuf) {
		cursor = len(a.sampleBuf)
	}
	a.cursor = cursor
}

// Pause toggles pause state
func (a *AudioPlayer) Pause() {
	a.paused.Store(!a.paused.Load())
}

// IsPaused returns current pause state
func (a *AudioPlayer) IsPaused() bool {
	return a.paused.Load()
}

// Mute toggles mute without losing the configured volume
func (a *AudioPlayer) Mute() {
	speaker.Lock()
	a.muted.Store(!a.muted.Load())
	a.applyVolume()
	speaker.Unlock()
}

// IsMuted returns current mute state
func (a *AudioPlayer) IsMuted() bool {
	return a.muted.Load()
}

// SetVolume sets the playback volume, 1.0 is unity gain
func (a *AudioPlayer) SetVolume(v float64) {
	speaker.Lock()
	a.level = v
	a.applyVolume()
	speaker.Unlock()
}

// applyVolume pushes level and mute state into the speaker chain.
// Callers hold the speaker lock.
func (a *AudioPlayer) applyVolume() {
	if a.muted.Load() || a.level <= 0 {
		a.volume.Silent = true
		return
	}
	a.volume.Silent = false
	a.volume.Volume = math.Log2(a.level)
}

// Close stops playback and releases all resources
func (a *AudioPlayer) Close() {
	// Clear blocks until an in-flight Stream call returns, decoder
	// state can be freed safely after it
	speaker.Clear()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return
	}
	a.closed = true

	if a.frame != nil {
		a.frame.Free()
		a.frame = nil
	}
	if a.swrCtx != nil {
		a.swrCtx.Free()
		a.swrCtx = nil
	}
	if a.codecCtx != nil {
		a.codecCtx.Free()
		a.codecCtx = nil
	}
	if a.demuxer != nil {
		a.demuxer.Close()
		a.demuxer = nil
	}
}
