package memory

import (
	"sync"

	"fyne.io/fyne/v2"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

const (
	keyVolume      = "preferences.volume"
	keyShuffleMode = "preferences.shuffle_mode"
	keyLastQuery   = "preferences.last_query"

	fallbackVolume = 80
)

// PreferencesRepository implements ports.PreferencesRepository using Fyne preferences.
//
// Thread-safe: All operations protected by sync.RWMutex.
type PreferencesRepository struct {
	prefs         fyne.Preferences
	defaultVolume int
	mu            sync.RWMutex
}

// NewPreferencesRepository creates a new preferences' repository.
// The preferences parameter should be obtained from fyne.CurrentApp().Preferences().
func NewPreferencesRepository(prefs fyne.Preferences) *PreferencesRepository {
	return &PreferencesRepository{
		prefs:         prefs,
		defaultVolume: fallbackVolume,
	}
}

// SetDefaultVolume changes the volume reported while none has been saved.
func (r *PreferencesRepository) SetDefaultVolume(volume int) {
	if volume < 0 || volume > 100 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultVolume = volume
}

// SaveVolume persists the volume level.
func (r *PreferencesRepository) SaveVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return domain.NewRepositoryError("save", "preferences", "volume out of range", domain.ErrInvalidVolume)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetInt(keyVolume, volume)
	return nil
}

// LoadVolume retrieves the saved volume level. Out-of-range values left by
// older builds fall back to the default.
func (r *PreferencesRepository) LoadVolume() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	volume := r.prefs.IntWithFallback(keyVolume, r.defaultVolume)
	if volume < 0 || volume > 100 {
		return r.defaultVolume, nil
	}
	return volume, nil
}

// SaveShuffleMode persists the shuffle mode by name.
func (r *PreferencesRepository) SaveShuffleMode(mode domain.ShuffleMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyShuffleMode, mode.String())
	return nil
}

// LoadShuffleMode retrieves the saved shuffle mode.
func (r *PreferencesRepository) LoadShuffleMode() (domain.ShuffleMode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	raw := r.prefs.String(keyShuffleMode)
	if raw == "" {
		return domain.ShuffleOff, nil
	}

	mode, err := domain.ParseShuffleMode(raw)
	if err != nil {
		return domain.ShuffleOff, domain.NewRepositoryError("load", "preferences", "unknown shuffle mode", err)
	}
	return mode, nil
}

func (r *PreferencesRepository) SaveLastQuery(query string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.SetString(keyLastQuery, query)
	return nil
}

func (r *PreferencesRepository) LoadLastQuery() (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.prefs.String(keyLastQuery), nil
}

// Clear removes all saved preferences.
func (r *PreferencesRepository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs.RemoveValue(keyVolume)
	r.prefs.RemoveValue(keyShuffleMode)
	r.prefs.RemoveValue(keyLastQuery)

	return nil
}

// Verify interface implementation
var _ ports.PreferencesRepository = (*PreferencesRepository)(nil)
