package service

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// PreferenceService caches device-local preferences and keeps them in sync
// with the session: volume and shuffle mode changes published on the bus are
// persisted as they happen.
// All operations are thread-safe via sync.RWMutex.
type PreferenceService struct {
	// Dependencies (injected)
	logger     *slog.Logger
	repository ports.PreferencesRepository
	bus        ports.EventBus

	// Cached preferences
	volume    int
	mode      domain.ShuffleMode
	lastQuery string

	subs []domain.SubscriptionID

	mu sync.RWMutex
}

// NewPreferenceService creates a new preference service and loads the saved values.
func NewPreferenceService(
	logger *slog.Logger,
	repository ports.PreferencesRepository,
	bus ports.EventBus,
) *PreferenceService {
	s := &PreferenceService{
		logger:     logger.With(slog.String("service", "preferences")),
		repository: repository,
		bus:        bus,
		volume:     DefaultVolume,
		mode:       domain.ShuffleOff,
	}

	s.loadPreferences()
	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventVolumeChanged, s.onVolumeChanged),
		bus.Subscribe(domain.EventShuffleModeChanged, s.onShuffleModeChanged),
	}

	s.logger.Debug("preference service initialized",
		slog.Int("volume", s.volume),
		slog.String("shuffle_mode", s.mode.String()))
	return s
}

func (s *PreferenceService) loadPreferences() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vol, err := s.repository.LoadVolume(); err == nil {
		s.volume = vol
	} else {
		s.logger.Warn("failed to load volume", slog.Any("error", err))
	}

	if mode, err := s.repository.LoadShuffleMode(); err == nil {
		s.mode = mode
	} else {
		s.logger.Warn("failed to load shuffle mode", slog.Any("error", err))
	}

	if q, err := s.repository.LoadLastQuery(); err == nil {
		s.lastQuery = q
	}
}

// GetVolume returns the saved volume (0..100).
func (s *PreferenceService) GetVolume() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// SetVolume saves the volume (0..100).
func (s *PreferenceService) SetVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return domain.NewValidationError("volume", volume, "must be between 0 and 100", domain.ErrInvalidVolume)
	}

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	return s.repository.SaveVolume(volume)
}

// GetShuffleMode returns the saved shuffle mode.
func (s *PreferenceService) GetShuffleMode() domain.ShuffleMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetShuffleMode saves the shuffle mode.
func (s *PreferenceService) SetShuffleMode(mode domain.ShuffleMode) error {
	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	return s.repository.SaveShuffleMode(mode)
}

// GetLastQuery returns the last search query.
func (s *PreferenceService) GetLastQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastQuery
}

// SetLastQuery saves the last search query. Blank queries are ignored.
func (s *PreferenceService) SetLastQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	s.mu.Lock()
	s.lastQuery = query
	s.mu.Unlock()

	return s.repository.SaveLastQuery(query)
}

// ResetToDefaults resets all preferences to default values.
func (s *PreferenceService) ResetToDefaults() error {
	s.mu.Lock()
	s.volume = DefaultVolume
	s.mode = domain.ShuffleOff
	s.lastQuery = ""
	s.mu.Unlock()

	return s.repository.Clear()
}

func (s *PreferenceService) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}
	if err := s.SetVolume(e.Volume); err != nil {
		s.logger.Warn("failed to persist volume", slog.Any("error", err))
	}
}

func (s *PreferenceService) onShuffleModeChanged(event domain.Event) {
	e, ok := event.(domain.ShuffleModeChangedEvent)
	if !ok {
		return
	}
	if err := s.SetShuffleMode(e.Mode); err != nil {
		s.logger.Warn("failed to persist shuffle mode", slog.Any("error", err))
	}
}

// Shutdown stops following bus events.
func (s *PreferenceService) Shutdown() error {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	return nil
}
