package fyne

import (
	"fmt"
	"math"
	"sync"
	"time"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/ui/fyne/widgets"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/res"
)

const (
	APPNAME = "TuneStream"
	WIDTH   = 520
	HEIGHT  = 640

	seekSteps = 1000

	// songInfoRunes is how much of the song label is visible before it scrolls
	songInfoRunes = 42
	marqueeTick   = 300 * time.Millisecond
)

// MainWindow is the main UI window implementing ports.PlayerView.
//
// The MainWindow follows the MVP pattern:
// - It's a "dumb view" that just displays data
// - All business logic is in the Presenter
// - User interactions are forwarded to the Presenter
//
// View methods may be called from any goroutine; they hop onto the UI thread with fyne.Do.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	// UI components
	searchEntry    *widget.Entry
	recommendBtn   *widget.Button
	trackList      *widget.List
	loading        *widget.ProgressBarInfinite
	prevButton     *widget.Button
	playButton     *widget.Button
	nextButton     *widget.Button
	shuffleButton  *widget.Button
	songInfo       *widget.Label
	currentTime    *widget.Label
	endTime        *widget.Label
	progressSlider *widget.Slider
	volumeSlider   *widget.Slider

	// UI-thread state
	tracks      []domain.Track
	selecting   bool // set while the list is selected programmatically
	songMarquee *widgets.Marquee

	// Lifecycle management
	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates a new main window.
func NewMainWindow(app fyneapp.App) *MainWindow {
	w := &MainWindow{
		app: app,
	}

	w.window = app.NewWindow(APPNAME)
	w.buildUI()
	w.window.Resize(fyneapp.Size{
		Width:  WIDTH,
		Height: HEIGHT,
	})

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter
	w.wirePresenterHandlers()
	w.addShortcuts()
	w.searchEntry.SetText(presenter.LastQuery())
}

func (w *MainWindow) buildUI() {
	w.searchEntry = widget.NewEntry()
	w.searchEntry.SetPlaceHolder("Search tracks")
	w.recommendBtn = widget.NewButtonWithIcon("", theme.HomeIcon(), nil)
	searchBar := container.NewBorder(nil, nil, nil, w.recommendBtn, w.searchEntry)

	w.trackList = widget.NewList(
		func() int { return len(w.tracks) },
		func() fyneapp.CanvasObject {
			return widgets.NewTrackRow(w.trackList.Select, w.showTrackMenu)
		},
		func(id widget.ListItemID, item fyneapp.CanvasObject) {
			if id >= len(w.tracks) {
				return
			}
			item.(*widgets.TrackRow).Bind(id, w.tracks[id])
		},
	)

	w.loading = widget.NewProgressBarInfinite()
	w.loading.Hide()

	w.prevButton = widget.NewButtonWithIcon("", theme.MediaSkipPreviousIcon(), nil)
	w.playButton = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), nil)
	w.nextButton = widget.NewButtonWithIcon("", theme.MediaSkipNextIcon(), nil)
	w.shuffleButton = widget.NewButtonWithIcon(domain.ShuffleOff.Label(), theme.MediaReplayIcon(), nil)

	w.songInfo = widget.NewLabel("")
	w.songInfo.Truncation = fyneapp.TextTruncateClip
	w.songMarquee = widgets.NewMarquee("", songInfoRunes)
	w.songInfo.TextStyle = fyneapp.TextStyle{
		Bold:   true,
		Italic: true,
	}

	w.volumeSlider = widget.NewSlider(0, 100)
	w.volumeSlider.Orientation = widget.Horizontal
	volumeHolder := container.NewBorder(nil, nil, widget.NewIcon(theme.VolumeUpIcon()), nil, w.volumeSlider)

	buttonsHBox := container.NewHBox(w.prevButton, w.playButton, w.nextButton, w.shuffleButton)
	buttonsHolder := container.NewBorder(nil, nil, buttonsHBox, nil, w.songInfo)

	w.progressSlider = widget.NewSlider(0, seekSteps)
	w.currentTime = widget.NewLabel("00:00")
	w.endTime = widget.NewLabel("00:00")
	sliderHolder := container.NewBorder(nil, nil, w.currentTime, w.endTime, w.progressSlider)

	controls := container.NewVBox(w.loading, buttonsHolder, sliderHolder, volumeHolder)
	w.window.SetContent(container.NewPadded(container.NewBorder(searchBar, controls, nil, nil, w.trackList)))
	w.window.SetMainMenu(fyneapp.NewMainMenu(w.createMenu()...))
}

// wirePresenterHandlers connects UI events to presenter handlers.
func (w *MainWindow) wirePresenterHandlers() {
	if w.presenter == nil {
		return
	}

	w.searchEntry.OnSubmitted = func(query string) {
		w.presenter.OnSearch(query)
	}
	w.recommendBtn.OnTapped = func() {
		w.presenter.OnRecommendationsClicked()
	}
	w.trackList.OnSelected = func(id widget.ListItemID) {
		if w.selecting {
			return
		}
		w.presenter.OnTrackSelected(id)
	}

	w.playButton.OnTapped = func() {
		w.presenter.OnPlayClicked()
	}
	w.nextButton.OnTapped = func() {
		w.presenter.OnNextClicked()
	}
	w.prevButton.OnTapped = func() {
		w.presenter.OnPreviousClicked()
	}
	w.shuffleButton.OnTapped = func() {
		w.presenter.OnShuffleClicked()
	}

	// change-ended only fires on user drags, not on programmatic updates
	w.volumeSlider.OnChangeEnded = func(value float64) {
		w.presenter.OnVolumeChanged(int(math.Round(value)))
	}
	w.progressSlider.OnChangeEnded = func(value float64) {
		w.presenter.OnSeekRequested(value / seekSteps)
	}
}

// showTrackMenu pops up the per-track actions at pos.
func (w *MainWindow) showTrackMenu(index int, pos fyneapp.Position) {
	if w.presenter == nil || index < 0 || index >= len(w.tracks) {
		return
	}
	track := w.tracks[index]

	play := fyneapp.NewMenuItem("Play", func() {
		w.presenter.OnTrackSelected(index)
	})
	save := fyneapp.NewMenuItem("Save as...", func() {
		w.showSaveDialog(index, track)
	})
	widget.ShowPopUpMenuAtPosition(fyneapp.NewMenu("", play, save), w.window.Canvas(), pos)
}

func (w *MainWindow) showSaveDialog(index int, track domain.Track) {
	d := dialog.NewFileSave(func(writer fyneapp.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if writer == nil {
			return // canceled
		}
		w.presenter.OnSaveRequested(index, writer)
	}, w.window)
	d.SetFileName(track.DisplayName() + ".mp3")
	d.Show()
}

func (w *MainWindow) createMenu() []*fyneapp.Menu {
	recommendations := fyneapp.NewMenuItem("Recommendations", func() {
		if w.presenter != nil {
			w.presenter.OnRecommendationsClicked()
		}
	})
	about := fyneapp.NewMenuItem("About", func() {
		dialog.ShowCustom("About "+APPNAME, "Close", widget.NewRichTextFromMarkdown(res.AboutContent), w.window)
	})
	exitMenu := fyneapp.NewMenuItem("Exit", func() {
		w.window.Close()
	})

	return []*fyneapp.Menu{
		fyneapp.NewMenu("File", recommendations, fyneapp.NewMenuItemSeparator(), exitMenu),
		fyneapp.NewMenu("Help", about),
	}
}

// addShortcuts adds keyboard shortcuts.
func (w *MainWindow) addShortcuts() {
	step := func(delta float64) func(fyneapp.Shortcut) {
		return func(fyneapp.Shortcut) {
			v := math.Max(0, math.Min(100, w.volumeSlider.Value+delta))
			w.presenter.OnVolumeChanged(int(v))
		}
	}

	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyUp,
		Modifier: fyneapp.KeyModifierAlt,
	}, step(5))
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyDown,
		Modifier: fyneapp.KeyModifierAlt,
	}, step(-5))
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyRight,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) { w.presenter.OnNextClicked() })
	w.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyneapp.KeyLeft,
		Modifier: fyneapp.KeyModifierAlt,
	}, func(fyneapp.Shortcut) { w.presenter.OnPreviousClicked() })
}

// ShowAndRun shows the window and runs the application.
func (w *MainWindow) ShowAndRun() {
	stop := make(chan struct{})
	defer close(stop)
	go w.scrollSongInfo(stop)

	w.window.ShowAndRun()
}

// scrollSongInfo advances the song label marquee until stop is closed.
func (w *MainWindow) scrollSongInfo(stop <-chan struct{}) {
	ticker := time.NewTicker(marqueeTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fyneapp.Do(func() {
				if !w.songMarquee.Fits() {
					w.songInfo.SetText(w.songMarquee.Step())
				}
			})
		}
	}
}

// SetOnClosed registers fn to run when the window closes.
func (w *MainWindow) SetOnClosed(fn func()) {
	w.window.SetOnClosed(fn)
}

// Close closes the window.
// It's safe to call multiple times (idempotent).
func (w *MainWindow) Close() {
	w.closeOnce.Do(func() {
		fyneapp.Do(w.window.Close)
	})
}

// GetWindow returns the underlying Fyne window.
func (w *MainWindow) GetWindow() fyneapp.Window {
	return w.window
}

// PlayerView interface implementation

func (w *MainWindow) SetTrackInfo(track domain.Track) {
	fyneapp.Do(func() {
		w.songMarquee.SetText(track.DisplayName())
		w.songInfo.SetText(w.songMarquee.Text())
		w.window.SetTitle(fmt.Sprintf("%s - %s", track.DisplayName(), APPNAME))
	})
}

func (w *MainWindow) ClearTrackInfo() {
	fyneapp.Do(func() {
		w.songMarquee.SetText("")
		w.songInfo.SetText("")
		w.window.SetTitle(APPNAME)
	})
}

// SetPlayState updates the play/pause button state.
func (w *MainWindow) SetPlayState(playing bool) {
	fyneapp.Do(func() {
		if playing {
			w.playButton.SetIcon(theme.MediaPauseIcon())
		} else {
			w.playButton.SetIcon(theme.MediaPlayIcon())
		}
	})
}

func (w *MainWindow) SetLoading(loading bool) {
	fyneapp.Do(func() {
		if loading {
			w.loading.Show()
			w.loading.Start()
		} else {
			w.loading.Stop()
			w.loading.Hide()
		}
	})
}

// SetProgress updates the progress slider and both time labels.
func (w *MainWindow) SetProgress(position, duration float64) {
	fyneapp.Do(func() {
		w.currentTime.SetText(formatClock(position))
		w.endTime.SetText(formatClock(duration))
		if duration > 0 {
			w.progressSlider.Value = math.Min(seekSteps, position/duration*seekSteps)
		} else {
			w.progressSlider.Value = 0
		}
		w.progressSlider.Refresh()
	})
}

// SetVolume updates the volume slider.
func (w *MainWindow) SetVolume(volume int) {
	fyneapp.Do(func() {
		w.volumeSlider.Value = float64(volume)
		w.volumeSlider.Refresh()
	})
}

func (w *MainWindow) SetShuffleMode(mode domain.ShuffleMode) {
	fyneapp.Do(func() {
		if mode.IsShuffled() {
			w.shuffleButton.SetIcon(theme.MediaSkipNextIcon())
		} else {
			w.shuffleButton.SetIcon(theme.MediaReplayIcon())
		}
		w.shuffleButton.SetText(mode.Label())
	})
}

func (w *MainWindow) ShowPlaylist(playlist *domain.Playlist) {
	var tracks []domain.Track
	if playlist != nil {
		tracks = playlist.Clone().Tracks
	}
	fyneapp.Do(func() {
		w.tracks = tracks
		w.selecting = true
		w.trackList.UnselectAll()
		w.selecting = false
		w.trackList.Refresh()
		w.trackList.ScrollToTop()
	})
}

// SelectIndex highlights the playing track without triggering playback.
func (w *MainWindow) SelectIndex(index int) {
	fyneapp.Do(func() {
		w.selecting = true
		defer func() { w.selecting = false }()

		if index < 0 || index >= len(w.tracks) {
			w.trackList.UnselectAll()
			return
		}
		w.trackList.Select(index)
		w.trackList.ScrollTo(index)
	})
}

// ShowNotification displays a system notification.
func (w *MainWindow) ShowNotification(title, message string) {
	w.app.SendNotification(fyneapp.NewNotification(title, message))
}

func formatClock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	return fmt.Sprintf("%.2d:%.2d", int(seconds/60), int(math.Mod(seconds, 60)))
}

// Verify PlayerView implementation
var _ ports.PlayerView = (*MainWindow)(nil)
