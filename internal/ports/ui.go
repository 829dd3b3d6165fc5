// Package ports define the UI interface for view abstraction.
// This interface allows the presenter to update the UI without depending on Fyne directly.
package ports

import (
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// PlayerView is the "dumb" view driven by the UI presenter.
// It abstracts the Fyne window and allows presenter tests without a real UI.
//
// Thread-safety: implementations marshal calls onto the UI thread themselves;
// the presenter calls these methods from event bus goroutines.
type PlayerView interface {
	// SetTrackInfo updates the displayed title and artist.
	SetTrackInfo(track domain.Track)

	// ClearTrackInfo resets the track display.
	ClearTrackInfo()

	// SetPlayState updates the play/pause button.
	SetPlayState(playing bool)

	// SetLoading shows or hides the loading indicator.
	SetLoading(loading bool)

	// SetProgress updates the progress slider and time labels (seconds).
	SetProgress(position, duration float64)

	// SetVolume updates the volume slider (0..100).
	SetVolume(volume int)

	// SetShuffleMode updates the shuffle button label.
	SetShuffleMode(mode domain.ShuffleMode)

	// ShowPlaylist replaces the visible track list.
	ShowPlaylist(playlist *domain.Playlist)

	// SelectIndex highlights the current track in the list (-1 clears).
	SelectIndex(index int)

	// ShowNotification displays a temporary notification to the user.
	ShowNotification(title, message string)
}
