// Package ports define repository interfaces for data persistence abstraction.
package ports

import (
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// PreferencesRepository handles the persistence of device-local user preferences.
// This abstracts the Fyne preferences storage.
//
// Thread-safety: Implementations must be thread-safe.
type PreferencesRepository interface {
	// SaveVolume persists the volume level (0..100).
	SaveVolume(volume int) error

	// LoadVolume retrieves the saved volume level.
	// If no volume was saved, returns 80.
	LoadVolume() (int, error)

	// SaveShuffleMode persists the shuffle mode.
	SaveShuffleMode(mode domain.ShuffleMode) error

	// LoadShuffleMode retrieves the saved shuffle mode.
	// If no mode was saved, returns domain.ShuffleOff.
	LoadShuffleMode() (domain.ShuffleMode, error)

	// SaveLastQuery persists the last search query typed by the user.
	SaveLastQuery(query string) error

	// LoadLastQuery retrieves the last search query ("" if none).
	LoadLastQuery() (string, error)

	// Clear removes all saved preferences.
	Clear() error
}
