// Package fyne provides Fyne UI adapter implementations.
// This package implements the UI layer using the Fyne toolkit.
package fyne

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

// Presenter implements the Presenter pattern (MVP architecture).
// It coordinates between services and the UI, handling all event-driven updates.
//
// Responsibilities:
// - Subscribe to events from the event bus
// - Map domain events to view updates
// - Translate UI commands to session calls off the UI thread
//
// Thread-safety: All operations are thread-safe via sync.Mutex.
type Presenter struct {
	// Dependencies
	logger *slog.Logger

	// Services (injected)
	session           *service.SessionService
	source            ports.PlaylistSource
	resolver          ports.TrackResolver
	preferenceService *service.PreferenceService

	bus  ports.EventBus
	view ports.PlayerView

	// Presentation state: the list on screen, which is not necessarily the
	// session's playlist until a track from it is chosen
	displayed *domain.Playlist

	subs   []domain.SubscriptionID
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Concurrency control
	mu           sync.Mutex
	shutdownOnce sync.Once
}

// NewPresenter creates a new presenter.
func NewPresenter(
	logger *slog.Logger,
	session *service.SessionService,
	source ports.PlaylistSource,
	resolver ports.TrackResolver,
	preferenceService *service.PreferenceService,
	eventBus ports.EventBus,
	view ports.PlayerView,
) *Presenter {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Presenter{
		logger:            logger.With(slog.String("component", "presenter")),
		session:           session,
		source:            source,
		resolver:          resolver,
		preferenceService: preferenceService,
		bus:               eventBus,
		view:              view,
		ctx:               ctx,
		cancel:            cancel,
	}

	p.subscribeToEvents()
	p.syncInitialState()

	return p
}

func (p *Presenter) subscribeToEvents() {
	handlers := []struct {
		eventType domain.EventType
		handler   domain.EventHandler
	}{
		{domain.EventTrackLoading, p.onTrackLoading},
		{domain.EventTrackStarted, p.onTrackStarted},
		{domain.EventTrackPaused, p.onTrackPaused},
		{domain.EventTrackError, p.onTrackError},
		{domain.EventTrackProgress, p.onProgress},
		{domain.EventVolumeChanged, p.onVolumeChanged},
		{domain.EventShuffleModeChanged, p.onShuffleModeChanged},
		{domain.EventPlaylistChanged, p.onPlaylistChanged},
		{domain.EventSessionReset, p.onSessionReset},
	}

	for _, h := range handlers {
		p.subs = append(p.subs, p.bus.Subscribe(h.eventType, h.handler))
	}
}

// syncInitialState makes the view reflect the session as it is now.
func (p *Presenter) syncInitialState() {
	snap := p.session.Snapshot()

	p.view.SetVolume(snap.Volume)
	p.view.SetShuffleMode(snap.ShuffleMode)
	p.view.SetPlayState(snap.IsPlaying)
	p.view.SetLoading(snap.Status == domain.StatusLoading)

	if snap.Playlist != nil {
		p.mu.Lock()
		p.displayed = snap.Playlist
		p.mu.Unlock()
		p.view.ShowPlaylist(snap.Playlist)
	}
	if snap.CurrentSong != nil {
		p.view.SetTrackInfo(*snap.CurrentSong)
		p.view.SelectIndex(snap.CurrentIndex)
	} else {
		p.view.ClearTrackInfo()
	}
}

// Event handlers

func (p *Presenter) onTrackLoading(event domain.Event) {
	e, ok := event.(domain.TrackLoadingEvent)
	if !ok {
		return
	}

	p.view.SetTrackInfo(e.Track)
	p.view.SetLoading(true)
	p.view.SetProgress(0, 0)
	p.selectIfDisplayed(e.Track, e.Index)
}

func (p *Presenter) onTrackStarted(event domain.Event) {
	p.view.SetLoading(false)
	p.view.SetPlayState(true)
}

func (p *Presenter) onTrackPaused(event domain.Event) {
	p.view.SetPlayState(false)
}

func (p *Presenter) onTrackError(event domain.Event) {
	e, ok := event.(domain.TrackErrorEvent)
	if !ok {
		return
	}

	p.view.SetLoading(false)
	p.view.SetPlayState(false)
	p.view.ShowNotification("Playback Error",
		fmt.Sprintf("Could not play %s: %v", e.Track.DisplayName(), e.Err))
}

func (p *Presenter) onProgress(event domain.Event) {
	e, ok := event.(domain.TrackProgressEvent)
	if !ok {
		return
	}

	p.view.SetProgress(e.Current.Seconds(), e.Total.Seconds())
}

func (p *Presenter) onVolumeChanged(event domain.Event) {
	e, ok := event.(domain.VolumeChangedEvent)
	if !ok {
		return
	}

	p.view.SetVolume(e.Volume)
}

func (p *Presenter) onShuffleModeChanged(event domain.Event) {
	e, ok := event.(domain.ShuffleModeChangedEvent)
	if !ok {
		return
	}

	p.view.SetShuffleMode(e.Mode)
}

func (p *Presenter) onPlaylistChanged(event domain.Event) {
	e, ok := event.(domain.PlaylistChangedEvent)
	if !ok {
		return
	}

	p.mu.Lock()
	same := p.displayed.SameAs(e.Playlist)
	p.displayed = e.Playlist
	p.mu.Unlock()

	if !same {
		p.view.ShowPlaylist(e.Playlist)
	}
}

func (p *Presenter) onSessionReset(event domain.Event) {
	p.view.ClearTrackInfo()
	p.view.SetPlayState(false)
	p.view.SetLoading(false)
	p.view.SetProgress(0, 0)
	p.view.SelectIndex(-1)
}

func (p *Presenter) selectIfDisplayed(track domain.Track, index int) {
	p.mu.Lock()
	shown, ok := p.displayed.At(index)
	p.mu.Unlock()

	if ok && shown.SameAs(track) {
		p.view.SelectIndex(index)
	} else {
		p.view.SelectIndex(-1)
	}
}

// UI Command handlers (called by UI)

// OnSearch fetches the tracks matching query and shows them.
func (p *Presenter) OnSearch(query string) {
	if err := p.preferenceService.SetLastQuery(query); err != nil {
		p.logger.Warn("failed to save last query", slog.Any("error", err))
	}

	p.async("search", func(ctx context.Context) error {
		pl, err := p.source.Search(ctx, query)
		if err != nil {
			return err
		}
		p.display(pl)
		return nil
	})
}

// OnRecommendationsClicked fetches and shows the recommended tracks.
func (p *Presenter) OnRecommendationsClicked() {
	p.async("recommendations", func(ctx context.Context) error {
		pl, err := p.source.Recommendations(ctx)
		if err != nil {
			return err
		}
		p.display(pl)
		return nil
	})
}

// OnTrackSelected plays the track at index of the displayed list, which
// becomes the session's playlist.
func (p *Presenter) OnTrackSelected(index int) {
	p.mu.Lock()
	pl := p.displayed
	p.mu.Unlock()

	track, ok := pl.At(index)
	if !ok {
		return
	}

	p.async("select", func(ctx context.Context) error {
		p.session.ResetForContext(pl)
		return p.session.PlayTrack(ctx, track, index, pl)
	})
}

// OnPlayClicked toggles between play and pause.
func (p *Presenter) OnPlayClicked() {
	p.async("play/pause", p.session.TogglePlayback)
}

// OnNextClicked handles the next button click.
func (p *Presenter) OnNextClicked() {
	p.async("next", p.session.Next)
}

// OnPreviousClicked handles the previous button click.
func (p *Presenter) OnPreviousClicked() {
	p.async("previous", p.session.Prev)
}

// OnShuffleClicked cycles the shuffle mode.
func (p *Presenter) OnShuffleClicked() {
	mode := p.session.ToggleShuffleMode()
	p.logger.Debug("shuffle toggled", slog.String("mode", mode.String()))
}

// OnSeekRequested seeks to fraction (0..1) of the current track.
func (p *Presenter) OnSeekRequested(fraction float64) {
	if err := p.session.Seek(fraction); err != nil && !errors.Is(err, domain.ErrNoTrackLoaded) {
		p.logger.Error("seek failed", slog.Any("error", err))
		p.view.ShowNotification("Seek Error", fmt.Sprintf("Failed to seek: %v", err))
	}
}

// OnVolumeChanged handles volume slider changes (0..100).
func (p *Presenter) OnVolumeChanged(volume int) {
	if err := p.session.SetVolume(volume); err != nil {
		p.logger.Error("volume change failed", slog.Any("error", err))
		p.view.ShowNotification("Volume Error",
			fmt.Sprintf("Failed to change volume: %v", err))
	}
}

// OnSaveRequested fetches the displayed track at index for download and
// writes it to dest, which is always closed. The outcome is reported as a
// notification.
func (p *Presenter) OnSaveRequested(index int, dest io.WriteCloser) {
	p.mu.Lock()
	pl := p.displayed
	p.mu.Unlock()

	track, ok := pl.At(index)
	if !ok {
		_ = dest.Close()
		return
	}

	p.async("save", func(ctx context.Context) error {
		n, err := p.save(ctx, track, dest)
		if err != nil {
			p.logger.Warn("save failed", slog.String("reference", track.Reference), slog.Any("error", err))
			p.view.ShowNotification("Download Error", fmt.Sprintf("%s: %v", track.DisplayName(), err))
			return nil
		}
		p.view.ShowNotification("Saved", fmt.Sprintf("%s (%s)", track.DisplayName(), humanize.IBytes(uint64(n))))
		return nil
	})
}

func (p *Presenter) save(ctx context.Context, track domain.Track, dest io.WriteCloser) (int, error) {
	audio, err := service.FetchForDownload(ctx, p.resolver, track)
	if err != nil {
		_ = dest.Close()
		return 0, err
	}
	n, err := dest.Write(audio)
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// LastQuery returns the last search the user ran, for prefilling the search box.
func (p *Presenter) LastQuery() string {
	return p.preferenceService.GetLastQuery()
}

func (p *Presenter) display(pl *domain.Playlist) {
	p.mu.Lock()
	p.displayed = pl
	p.mu.Unlock()

	p.view.ShowPlaylist(pl)

	snap := p.session.Snapshot()
	if snap.CurrentSong != nil {
		p.selectIfDisplayed(*snap.CurrentSong, snap.CurrentIndex)
	}
	if pl.Len() == 0 {
		p.view.ShowNotification("No Results", "Nothing matched")
	}
}

// async runs a command off the UI thread and reports its failure.
func (p *Presenter) async(name string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	if p.ctx.Err() != nil {
		p.mu.Unlock()
		return
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		err := fn(p.ctx)
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrSessionClosed) {
			return
		}

		p.logger.Error("command failed", slog.String("command", name), slog.Any("error", err))

		// load failures already reached the view through TrackError
		var resErr *domain.ResolutionError
		var trErr *domain.TransportError
		if errors.As(err, &resErr) || errors.As(err, &trErr) {
			return
		}
		p.view.ShowNotification("Error", fmt.Sprintf("%s failed: %v", name, err))
	}()
}

// Shutdown cleans up resources.
// It's safe to call multiple times (idempotent).
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		for _, id := range p.subs {
			p.bus.Unsubscribe(id)
		}

		p.mu.Lock()
		p.cancel()
		p.mu.Unlock()
		p.wg.Wait()
	})
}
