// Package service provides business logic for TuneStream.
package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/shuffle"
)

const (
	// DefaultPreloadThreshold is the elapsed time after which the next track is preloaded.
	DefaultPreloadThreshold = 5 * time.Second

	// DefaultVolume is used when no volume is configured.
	DefaultVolume = 80
)

// SessionOptions tune a SessionService. Zero values select the defaults.
type SessionOptions struct {
	PreloadThreshold time.Duration
	InitialVolume    int

	// Engine supplies shuffle randomness; tests pass a seeded one
	Engine *shuffle.Engine
}

type direction int

const (
	forward direction = iota
	backward
)

// SessionService is the playback session: the single owner of the playlist,
// the position in it, the shuffle state and the preload slot.
//
// Transitions (PlayTrack, Next, Prev, OnTrackEnded) are mutually exclusive.
// A transition requested while another is in flight is dropped without error.
// The session mutex is never held across a resolver or transport call, and
// events are published only after it is released.
type SessionService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	transport ports.Transport
	resolver  ports.TrackResolver
	bus       ports.EventBus
	engine    *shuffle.Engine

	// Playlist state
	playlist     *domain.Playlist
	currentIndex int
	currentSong  *domain.Track
	mode         domain.ShuffleMode
	played       map[int]struct{}
	order        []int

	// Transport state
	status   domain.SessionStatus
	loaded   bool // transport holds the buffer of currentSong
	position time.Duration
	duration time.Duration
	volume   int

	// epoch changes whenever index, mode or playlist change; preload results
	// from an older epoch are stale
	epoch uint64

	// resets changes on Reset and Shutdown; transitions started before are abandoned
	resets uint64

	transitioning bool

	// Preload scheduler state
	preload          *domain.PreloadEntry
	preloadThreshold time.Duration
	preloadAttempted bool
	preloadInFlight  bool

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	subs   []domain.SubscriptionID
	closed bool

	mu sync.Mutex
}

// NewSessionService creates a session and subscribes it to the transport's events.
func NewSessionService(
	logger *slog.Logger,
	transport ports.Transport,
	resolver ports.TrackResolver,
	bus ports.EventBus,
	opts SessionOptions,
) *SessionService {
	if opts.PreloadThreshold <= 0 {
		opts.PreloadThreshold = DefaultPreloadThreshold
	}
	if opts.InitialVolume <= 0 || opts.InitialVolume > 100 {
		opts.InitialVolume = DefaultVolume
	}
	if opts.Engine == nil {
		opts.Engine = shuffle.NewEngine(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SessionService{
		logger:           logger.With(slog.String("service", "session")),
		transport:        transport,
		resolver:         resolver,
		bus:              bus,
		engine:           opts.Engine,
		currentIndex:     -1,
		played:           make(map[int]struct{}),
		volume:           opts.InitialVolume,
		preloadThreshold: opts.PreloadThreshold,
		ctx:              ctx,
		cancel:           cancel,
	}

	s.subs = []domain.SubscriptionID{
		bus.Subscribe(domain.EventTrackProgress, s.onProgress),
		bus.Subscribe(domain.EventTrackEnded, s.onEnded),
		bus.Subscribe(domain.EventTransportLoadError, s.onLoadError),
	}

	s.logger.Debug("session initialized",
		slog.Duration("preload_threshold", opts.PreloadThreshold),
		slog.Int("volume", opts.InitialVolume))
	return s
}

// PlayTrack plays track at index, adopting playlist when one is supplied.
// index may be -1 for a track played outside any playlist.
//
// It returns once playback has started or failed. On failure the track stays
// current with playback stopped, so the same action can be retried.
func (s *SessionService) PlayTrack(ctx context.Context, track domain.Track, index int, playlist *domain.Playlist) error {
	if !s.beginTransition("play") {
		return nil
	}
	defer s.endTransition()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}

	target := s.playlist
	if playlist != nil {
		target = playlist
	}
	if index < -1 || index >= target.Len() {
		s.mu.Unlock()
		return domain.NewValidationError("index", index, "out of playlist range", domain.ErrInvalidIndex)
	}

	var changed *domain.Playlist
	if playlist != nil && !s.playlist.SameAs(playlist) {
		if s.playlist == nil || s.playlist.SourceTag != playlist.SourceTag {
			clear(s.played)
		}
		s.playlist = playlist.Clone()
		if s.mode.IsShuffled() {
			s.order = s.engine.Order(s.playlist.Len(), index)
		} else {
			s.order = nil
		}
		changed = s.playlist.Clone()
	}

	s.preload = nil
	s.enterLoadingLocked(track, index)
	resets := s.resets
	s.mu.Unlock()

	if changed != nil {
		s.bus.Publish(domain.NewPlaylistChangedEvent(changed))
	}
	s.bus.Publish(domain.NewTrackLoadingEvent(track, index))

	s.logger.Info("playing track",
		slog.String("reference", track.Reference),
		slog.Int("index", index))

	return s.load(ctx, track, index, nil, resets)
}

// Next advances according to the shuffle mode.
// An empty playlist or an in-flight transition makes it a no-op.
func (s *SessionService) Next(ctx context.Context) error {
	return s.step(ctx, forward, "next")
}

// Prev goes back to the track played before the current one.
func (s *SessionService) Prev(ctx context.Context) error {
	return s.step(ctx, backward, "prev")
}

// OnTrackEnded advances after the transport reports end of media.
// It shares the transition guard with Next so an end event racing a click
// produces a single transition.
func (s *SessionService) OnTrackEnded(ctx context.Context) error {
	return s.step(ctx, forward, "ended")
}

func (s *SessionService) step(ctx context.Context, dir direction, cause string) error {
	if !s.beginTransition(cause) {
		return nil
	}
	defer s.endTransition()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}

	n := s.playlist.Len()
	if n == 0 {
		s.mu.Unlock()
		s.logger.Debug("navigation ignored: empty playlist", slog.String("cause", cause))
		return nil
	}

	st := s.shuffleStateLocked()
	var target int
	var ok bool
	if dir == forward {
		target, ok = s.engine.Next(st)
	} else {
		target, ok = s.engine.Prev(st)
	}
	if !ok {
		// only a finished no-repeat cycle gets here
		start, order := s.engine.Restart(n, s.currentIndex)
		clear(s.played)
		s.order = order
		target = start
		s.logger.Debug("no-repeat cycle restarted", slog.Int("start", start))
	}

	track := s.playlist.Tracks[target]
	var cached []byte
	if s.preload != nil && s.preload.ForReference == track.Reference {
		cached = s.preload.Audio
	}
	s.preload = nil
	s.enterLoadingLocked(track, target)
	resets := s.resets
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackLoadingEvent(track, target))
	s.logger.Debug("transition",
		slog.String("cause", cause),
		slog.Int("index", target),
		slog.Bool("preloaded", cached != nil))

	return s.load(ctx, track, target, cached, resets)
}

// enterLoadingLocked makes index current and starts a new leg.
func (s *SessionService) enterLoadingLocked(track domain.Track, index int) {
	s.currentIndex = index
	s.currentSong = &track
	s.status = domain.StatusLoading
	s.loaded = false
	s.position = 0
	s.duration = 0
	if s.mode == domain.ShuffleNoRepeat && index >= 0 {
		s.played[index] = struct{}{}
	}
	s.epoch++
	s.preloadAttempted = false
}

// load resolves (unless audio is already at hand) and starts playback.
func (s *SessionService) load(ctx context.Context, track domain.Track, index int, audio []byte, resets uint64) error {
	ctx, stop := s.bind(ctx)
	defer stop()

	fromPreload := audio != nil
	if !fromPreload {
		var err error
		audio, err = resolveAudio(ctx, s.resolver, track, domain.PurposePlayback)
		if err != nil {
			return s.fail(track, index, err, resets)
		}
	}

	if s.abandoned(resets) {
		s.logger.Debug("transition abandoned after reset", slog.String("reference", track.Reference))
		return nil
	}

	if err := s.transport.Load(audio); err != nil {
		return s.fail(track, index, err, resets)
	}
	if err := s.transport.Play(); err != nil {
		return s.fail(track, index, err, resets)
	}

	s.mu.Lock()
	if s.resets == resets {
		s.status = domain.StatusPlaying
		s.loaded = true
	}
	s.mu.Unlock()

	s.bus.Publish(domain.NewTrackStartedEvent(track, index, fromPreload))
	return nil
}

// fail leaves the target current but stopped, and reports err.
// The previous buffer is paused so it cannot end and advance past the target.
func (s *SessionService) fail(track domain.Track, index int, err error, resets uint64) error {
	s.mu.Lock()
	current := s.resets == resets
	if current {
		s.status = domain.StatusPaused
		s.loaded = false
	}
	s.mu.Unlock()

	if current {
		if perr := s.transport.Pause(); perr != nil {
			s.logger.Debug("pause after failed load", slog.Any("error", perr))
		}
	}

	s.logger.Warn("track failed to start",
		slog.String("reference", track.Reference),
		slog.Int("index", index),
		slog.Any("error", err))
	s.bus.Publish(domain.NewTrackErrorEvent(track, index, err))
	return err
}

func (s *SessionService) abandoned(resets uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets != resets
}

func (s *SessionService) beginTransition(cause string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transitioning {
		s.logger.Debug("transition dropped",
			slog.String("cause", cause),
			slog.Any("reason", domain.ErrTransitionInProgress))
		return false
	}
	s.transitioning = true
	return true
}

func (s *SessionService) endTransition() {
	s.mu.Lock()
	s.transitioning = false
	s.mu.Unlock()
}

// bind derives a context that is also cancelled when the session shuts down.
func (s *SessionService) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (s *SessionService) shuffleStateLocked() shuffle.State {
	return shuffle.State{
		Length:  s.playlist.Len(),
		Current: s.currentIndex,
		Mode:    s.mode,
		Played:  s.played,
		Order:   s.order,
	}
}

// ToggleShuffleMode cycles Off -> NoRepeat -> RepeatShuffle -> Off and returns the new mode.
func (s *SessionService) ToggleShuffleMode() domain.ShuffleMode {
	s.mu.Lock()
	next := s.mode.Next()
	s.mu.Unlock()

	s.SetShuffleMode(next)
	return next
}

// SetShuffleMode switches policy. Entering NoRepeat seeds the played set with the
// current index; entering any shuffled mode regenerates the order from the current
// index; Off clears both. The preload slot is always dropped.
func (s *SessionService) SetShuffleMode(mode domain.ShuffleMode) {
	s.mu.Lock()
	if s.mode == mode {
		s.mu.Unlock()
		return
	}

	s.mode = mode
	clear(s.played)
	switch mode {
	case domain.ShuffleNoRepeat:
		if s.currentIndex >= 0 {
			s.played[s.currentIndex] = struct{}{}
		}
		s.order = s.engine.Order(s.playlist.Len(), s.currentIndex)
	case domain.ShuffleRepeat:
		s.order = s.engine.Order(s.playlist.Len(), s.currentIndex)
	default:
		s.order = nil
	}
	s.preload = nil
	s.epoch++
	s.preloadAttempted = false
	s.mu.Unlock()

	s.logger.Info("shuffle mode changed", slog.String("mode", mode.String()))
	s.bus.Publish(domain.NewShuffleModeChangedEvent(mode))
}

// TogglePlayback pauses while playing and resumes while paused. When the current
// track failed to load it retries the resolution instead.
func (s *SessionService) TogglePlayback(ctx context.Context) error {
	s.mu.Lock()
	status, loaded, song, index := s.status, s.loaded, s.currentSong, s.currentIndex
	s.mu.Unlock()

	switch {
	case status == domain.StatusPlaying:
		if err := s.transport.Pause(); err != nil {
			return err
		}
		s.mu.Lock()
		s.status = domain.StatusPaused
		pos := s.position
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackPausedEvent(*song, pos))
		return nil

	case status == domain.StatusPaused && loaded:
		if err := s.transport.Play(); err != nil {
			return err
		}
		s.mu.Lock()
		s.status = domain.StatusPlaying
		s.mu.Unlock()
		s.bus.Publish(domain.NewTrackStartedEvent(*song, index, false))
		return nil

	case status == domain.StatusPaused && song != nil:
		return s.PlayTrack(ctx, *song, index, nil)

	default:
		return nil
	}
}

// Seek moves playback to fraction (0..1) of the current track.
func (s *SessionService) Seek(fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return domain.NewValidationError("fraction", fraction, "must be between 0 and 1", domain.ErrInvalidPosition)
	}
	if err := s.transport.Seek(fraction); err != nil {
		return err
	}

	s.mu.Lock()
	s.position = time.Duration(fraction * float64(s.duration))
	s.mu.Unlock()
	return nil
}

// SetVolume sets the output volume (0..100).
func (s *SessionService) SetVolume(volume int) error {
	if volume < 0 || volume > 100 {
		return domain.NewValidationError("volume", volume, "must be between 0 and 100", domain.ErrInvalidVolume)
	}
	if err := s.transport.SetVolume(volume); err != nil {
		return err
	}

	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()

	s.bus.Publish(domain.NewVolumeChangedEvent(volume))
	return nil
}

// Reset returns the session to Idle for a brand-new playlist context.
// The shuffle mode and volume are kept.
func (s *SessionService) Reset() {
	s.mu.Lock()
	s.playlist = nil
	s.currentIndex = -1
	s.currentSong = nil
	clear(s.played)
	s.order = nil
	s.preload = nil
	s.status = domain.StatusIdle
	s.loaded = false
	s.position = 0
	s.duration = 0
	s.epoch++
	s.resets++
	s.preloadAttempted = false
	s.mu.Unlock()

	if err := s.transport.Pause(); err != nil {
		s.logger.Debug("pause on reset", slog.Any("error", err))
	}
	s.logger.Info("session reset")
	s.bus.Publish(domain.NewSessionResetEvent())
}

// ResetForContext resets the session when playlist comes from a different
// context (source tag) than the one being played, and reports whether it did.
// An idle session, or a playlist from the same context, is left alone.
func (s *SessionService) ResetForContext(playlist *domain.Playlist) bool {
	if playlist == nil {
		return false
	}
	s.mu.Lock()
	var from string
	fresh := s.playlist != nil && s.playlist.SourceTag != playlist.SourceTag
	if fresh {
		from = s.playlist.SourceTag
	}
	s.mu.Unlock()

	if fresh {
		s.logger.Debug("new playlist context",
			slog.String("from", from),
			slog.String("to", playlist.SourceTag))
		s.Reset()
	}
	return fresh
}

// Snapshot returns a copy of the session state.
func (s *SessionService) Snapshot() domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := domain.SessionSnapshot{
		CurrentIndex:  s.currentIndex,
		Playlist:      s.playlist.Clone(),
		ShuffleMode:   s.mode,
		PlayedIndices: lo.Keys(s.played),
		ShuffleOrder:  slices.Clone(s.order),
		Status:        s.status,
		IsPlaying:     s.status == domain.StatusPlaying,
		Position:      s.position,
		Duration:      s.duration,
		Volume:        s.volume,
		Transitioning: s.transitioning,
	}
	slices.Sort(snap.PlayedIndices)
	if s.currentSong != nil {
		song := *s.currentSong
		snap.CurrentSong = &song
	}
	if s.preload != nil {
		snap.PreloadedReference = s.preload.ForReference
	}
	return snap
}

// Shutdown detaches from the bus, cancels in-flight resolutions and waits for
// background work to finish.
func (s *SessionService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.resets++
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, id := range subs {
		s.bus.Unsubscribe(id)
	}
	s.cancel()
	s.wg.Wait()

	s.logger.Debug("session shut down")
	return nil
}

// onProgress records the transport position and feeds the preload scheduler.
func (s *SessionService) onProgress(event domain.Event) {
	e, ok := event.(domain.TrackProgressEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	// ticks from a buffer that is not the current song's
	if s.status == domain.StatusLoading || !s.loaded {
		s.mu.Unlock()
		return
	}
	s.position = e.Current
	s.duration = e.Total
	job := s.schedulePreloadLocked(e.Current)
	s.mu.Unlock()

	if job != nil {
		go s.runPreload(job)
	}
}

func (s *SessionService) onEnded(domain.Event) {
	s.mu.Lock()
	if s.closed || s.status == domain.StatusLoading || !s.loaded {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	// the bus is synchronous; advancing waits on the resolver
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("auto-advance panicked", slog.Any("panic", r))
			}
		}()
		if err := s.OnTrackEnded(s.ctx); err != nil {
			s.logger.Warn("auto-advance failed", slog.Any("error", err))
		}
	}()
}

func (s *SessionService) onLoadError(event domain.Event) {
	e, ok := event.(domain.TransportLoadErrorEvent)
	if !ok {
		return
	}

	s.mu.Lock()
	if s.currentSong == nil || s.status == domain.StatusLoading || !s.loaded {
		s.mu.Unlock()
		return
	}
	s.status = domain.StatusPaused
	s.loaded = false
	track, index := *s.currentSong, s.currentIndex
	s.mu.Unlock()

	err := domain.NewTransportError("decode", -1, "transport could not play buffer", e.Err)
	s.logger.Warn("transport load error", slog.String("reference", track.Reference), slog.Any("error", e.Err))
	s.bus.Publish(domain.NewTrackErrorEvent(track, index, err))
}
