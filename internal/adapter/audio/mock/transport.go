// Package mock provides a mock implementation of the Transport interface.
// This is used for testing services without requiring the real BASS library.
package mock

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// DefaultDuration is the simulated length of every loaded buffer.
const DefaultDuration = 3 * time.Minute

// Transport is a mock implementation of the Transport interface.
// It keeps playback state in memory and publishes transport events only
// when a test asks it to via the Simulate methods.
//
// Thread-safety: This implementation is thread-safe.
type Transport struct {
	logger *slog.Logger
	bus    ports.EventBus

	mu sync.RWMutex

	loaded   []byte
	history  [][]byte
	playing  bool
	position time.Duration
	duration time.Duration
	volume   int
	closed   bool

	// Behavior configuration (for testing error scenarios)
	failLoad bool
	failPlay bool
}

// NewTransport creates a new mock transport publishing on bus.
func NewTransport(logger *slog.Logger, bus ports.EventBus) *Transport {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Transport{
		logger:   logger.With(slog.String("adapter", "mock-transport")),
		bus:      bus,
		duration: DefaultDuration,
		volume:   100,
	}
}

// SetFailLoad configures the mock to fail loading buffers.
func (m *Transport) SetFailLoad(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLoad = fail
}

// SetFailPlay configures the mock to fail playback.
func (m *Transport) SetFailPlay(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPlay = fail
}

// Load replaces the loaded buffer.
func (m *Transport) Load(audio []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return domain.ErrNotInitialized
	}
	if m.failLoad {
		return domain.NewTransportError("load", -1, "mock load failed", nil)
	}
	if len(audio) == 0 {
		return domain.NewTransportError("load", -1, "empty buffer", domain.ErrNoTrackLoaded)
	}

	m.loaded = slices.Clone(audio)
	m.history = append(m.history, m.loaded)
	m.playing = false
	m.position = 0
	m.logger.Debug("buffer loaded", slog.Int("size", len(audio)))
	return nil
}

// Play starts playback of the loaded buffer.
func (m *Transport) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded == nil {
		return domain.ErrNoTrackLoaded
	}
	if m.failPlay {
		return domain.NewTransportError("play", -1, "mock play failed", nil)
	}
	m.playing = true
	return nil
}

// Pause pauses playback.
func (m *Transport) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded == nil {
		return domain.ErrNoTrackLoaded
	}
	m.playing = false
	return nil
}

// Seek moves to a fraction of the simulated duration.
func (m *Transport) Seek(fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return domain.NewValidationError("fraction", fraction, "must be between 0 and 1", domain.ErrInvalidPosition)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded == nil {
		return domain.ErrNoTrackLoaded
	}
	m.position = time.Duration(fraction * float64(m.duration))
	return nil
}

// SetVolume records the volume.
func (m *Transport) SetVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return domain.NewValidationError("volume", volume, "must be between 0 and 100", domain.ErrInvalidVolume)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = volume
	return nil
}

// Close releases the loaded buffer.
func (m *Transport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.loaded = nil
	m.playing = false
	return nil
}

// SimulateProgress sets the position and publishes a progress event,
// as the real transport does from its polling loop.
func (m *Transport) SimulateProgress(current time.Duration) {
	m.mu.Lock()
	m.position = current
	total := m.duration
	m.mu.Unlock()

	m.bus.Publish(domain.NewTrackProgressEvent(current, total))
}

// SimulateEnded stops playback and publishes the end-of-track event.
func (m *Transport) SimulateEnded() {
	m.mu.Lock()
	m.playing = false
	m.position = m.duration
	m.mu.Unlock()

	m.bus.Publish(domain.NewTrackEndedEvent())
}

// SimulateLoadError publishes a decode failure for the loaded buffer.
func (m *Transport) SimulateLoadError(err error) {
	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()

	m.bus.Publish(domain.NewTransportLoadErrorEvent(err))
}

// Loaded returns a copy of the currently loaded buffer (nil if none).
func (m *Transport) Loaded() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.loaded)
}

// LoadHistory returns every buffer loaded so far, oldest first.
func (m *Transport) LoadHistory() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.history)
}

// IsPlaying reports whether the mock is playing.
func (m *Transport) IsPlaying() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playing
}

// Position returns the simulated position.
func (m *Transport) Position() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.position
}

// Volume returns the last volume set.
func (m *Transport) Volume() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// Verify that Transport implements the Transport interface
var _ ports.Transport = (*Transport)(nil)
