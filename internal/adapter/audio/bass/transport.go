package bass

import (
	"log/slog"
	"sync"
	"time"
	"unsafe"

	"github.com/dustin/go-humanize"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// DefaultProgressInterval is how often position is polled while playing.
const DefaultProgressInterval = 333 * time.Millisecond

// endTolerance absorbs rounding between the reported position and length at end of media.
const endTolerance = 250 * time.Millisecond

// Config selects the output device.
type Config struct {
	Device           int // -1 is the system default, NoSoundDevice plays silently
	SampleRate       int
	Flags            InitFlags
	ProgressInterval time.Duration
}

// Transport is the BASS implementation of ports.Transport. It plays one
// in-memory buffer at a time and reports progress and end of media on the bus.
//
// Thread-safety: This implementation is thread-safe via sync.Mutex. Events are
// published from the polling goroutine without the lock held.
type Transport struct {
	logger *slog.Logger
	bus    ports.EventBus
	cfg    Config

	mu          sync.Mutex
	initialized bool
	stream      int64
	mem         unsafe.Pointer
	volume      int
	playing     bool

	stop chan struct{}
	done chan struct{}
}

// NewTransport creates an uninitialized transport.
func NewTransport(logger *slog.Logger, bus ports.EventBus, cfg Config) *Transport {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	return &Transport{
		logger: logger.With(slog.String("adapter", "bass"), slog.String("platform", platformName)),
		bus:    bus,
		cfg:    cfg,
		volume: 100,
	}
}

// Initialize opens the output device and starts the progress loop.
func (t *Transport) Initialize() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.initialized {
		return domain.ErrAlreadyInitialized
	}
	if err := bassInit(t.cfg.Device, t.cfg.SampleRate, t.cfg.Flags); err != nil {
		return err
	}

	t.initialized = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.poll(t.stop, t.done)

	t.logger.Info("audio device initialized",
		slog.Int("device", t.cfg.Device),
		slog.Int("sample_rate", t.cfg.SampleRate),
		slog.String("library", libraryName))
	return nil
}

// Load replaces the current buffer. The previous stream is released first.
func (t *Transport) Load(audio []byte) error {
	if len(audio) == 0 {
		return domain.NewTransportError("load", -1, "empty buffer", domain.ErrNoTrackLoaded)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return domain.ErrNotInitialized
	}

	t.releaseLocked()

	stream, mem, err := bassStreamCreateMemory(audio, streamPreScan)
	if err != nil {
		return err
	}
	t.stream, t.mem = stream, mem

	if err := bassChannelSetVolume(stream, float32(t.volume)/100); err != nil {
		t.logger.Warn("failed to apply volume", slog.Any("error", err))
	}

	t.logger.Debug("buffer loaded",
		slog.String("size", humanize.IBytes(uint64(len(audio)))),
		slog.Duration("length", bassChannelBytes2Seconds(stream, bassChannelGetLength(stream))))
	return nil
}

// Play starts the loaded buffer, from the beginning if it had stopped.
func (t *Transport) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream == 0 {
		return domain.ErrNoTrackLoaded
	}

	restart := bassChannelIsActive(t.stream) == channelStopped
	if err := bassChannelPlay(t.stream, restart); err != nil {
		return err
	}
	t.playing = true
	return nil
}

// Pause pauses playback.
func (t *Transport) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream == 0 {
		return domain.ErrNoTrackLoaded
	}
	if err := bassChannelPause(t.stream); err != nil {
		return err
	}
	t.playing = false
	return nil
}

// Seek moves to fraction (0..1) of the buffer.
func (t *Transport) Seek(fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return domain.NewValidationError("fraction", fraction, "must be between 0 and 1", domain.ErrInvalidPosition)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream == 0 {
		return domain.ErrNoTrackLoaded
	}
	length := bassChannelGetLength(t.stream)
	return bassChannelSetPosition(t.stream, uint64(fraction*float64(length)))
}

// SetVolume sets the volume (0..100). It applies to later buffers too.
func (t *Transport) SetVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return domain.NewValidationError("volume", volume, "must be between 0 and 100", domain.ErrInvalidVolume)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.volume = volume
	if t.stream == 0 {
		return nil
	}
	return bassChannelSetVolume(t.stream, float32(volume)/100)
}

// Close stops the progress loop, releases the buffer and the device.
func (t *Transport) Close() error {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return domain.ErrNotInitialized
	}
	t.initialized = false
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done

	t.mu.Lock()
	defer t.mu.Unlock()
	t.releaseLocked()
	return bassFree()
}

func (t *Transport) releaseLocked() {
	if t.stream == 0 && t.mem == nil {
		return
	}
	bassStreamRelease(t.stream, t.mem)
	t.stream, t.mem = 0, nil
	t.playing = false
}

// poll reports progress while playing and detects the end of the buffer.
func (t *Transport) poll(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.cfg.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if event := t.sample(); event != nil {
				t.bus.Publish(event)
			}
		}
	}
}

// sample inspects the channel and returns the event to publish, if any.
func (t *Transport) sample() domain.Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stream == 0 || !t.playing {
		return nil
	}

	state := bassChannelIsActive(t.stream)
	position := bassChannelBytes2Seconds(t.stream, bassChannelGetPosition(t.stream))
	length := bassChannelBytes2Seconds(t.stream, bassChannelGetLength(t.stream))

	switch state {
	case channelPlaying, channelStalled:
		return domain.NewTrackProgressEvent(position, length)
	case channelStopped:
		t.playing = false
		if length-position <= endTolerance {
			return domain.NewTrackEndedEvent()
		}
		t.logger.Warn("channel stopped early",
			slog.Duration("position", position),
			slog.Duration("length", length))
		return domain.NewTransportLoadErrorEvent(
			domain.NewTransportError("decode", -1, "playback stopped before the end of the buffer", nil))
	default:
		return nil
	}
}

// Verify that Transport implements the Transport interface
var _ ports.Transport = (*Transport)(nil)
