package fyne

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	audiomock "github.com/tejashwikalptaru/tunestream/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/repository/memory"
	resolvermock "github.com/tejashwikalptaru/tunestream/internal/adapter/resolver/mock"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/service"
	"github.com/tejashwikalptaru/tunestream/internal/shuffle"
	"github.com/tejashwikalptaru/tunestream/internal/testutil"
)

// fakeView records what the presenter shows.
type fakeView struct {
	mu            sync.Mutex
	track         *domain.Track
	playing       bool
	loading       bool
	position      float64
	duration      float64
	volume        int
	mode          domain.ShuffleMode
	playlist      *domain.Playlist
	selected      int
	notifications []string
}

func (v *fakeView) SetTrackInfo(track domain.Track) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.track = &track
}

func (v *fakeView) ClearTrackInfo() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.track = nil
}

func (v *fakeView) SetPlayState(playing bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = playing
}

func (v *fakeView) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = loading
}

func (v *fakeView) SetProgress(position, duration float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.position, v.duration = position, duration
}

func (v *fakeView) SetVolume(volume int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = volume
}

func (v *fakeView) SetShuffleMode(mode domain.ShuffleMode) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mode = mode
}

func (v *fakeView) ShowPlaylist(playlist *domain.Playlist) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playlist = playlist
}

func (v *fakeView) SelectIndex(index int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = index
}

func (v *fakeView) ShowNotification(title, _ string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notifications = append(v.notifications, title)
}

func (v *fakeView) snapshot() fakeView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return fakeView{
		track:         v.track,
		playing:       v.playing,
		loading:       v.loading,
		position:      v.position,
		duration:      v.duration,
		volume:        v.volume,
		mode:          v.mode,
		playlist:      v.playlist,
		selected:      v.selected,
		notifications: append([]string(nil), v.notifications...),
	}
}

type fakeSource struct {
	search *domain.Playlist
	err    error
}

func (s *fakeSource) Search(_ context.Context, query string) (*domain.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewPlaylist("search:"+query, s.search.Tracks), nil
}

func (s *fakeSource) Recommendations(context.Context) (*domain.Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewPlaylist("recommendations", s.search.Tracks), nil
}

type presenterHarness struct {
	view      *fakeView
	source    *fakeSource
	transport *audiomock.Transport
	resolver  *resolvermock.Resolver
	session   *service.SessionService
	prefs     *service.PreferenceService
	presenter *Presenter
	events    *testutil.EventRecorder
}

func newPresenterHarness(t *testing.T) *presenterHarness {
	t.Helper()

	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	h := &presenterHarness{
		view: &fakeView{selected: -1},
		source: &fakeSource{search: domain.NewPlaylist("", []domain.Track{
			{Reference: "a", Title: "Alpha"},
			{Reference: "b", Title: "Bravo"},
			{Reference: "c", Title: "Charlie"},
		})},
		transport: audiomock.NewTransport(logger.NewTestLogger(), bus),
		resolver:  resolvermock.NewResolver(),
		events:    testutil.RecordEvents(bus),
	}
	h.session = service.NewSessionService(logger.NewTestLogger(), h.transport, h.resolver, bus, service.SessionOptions{
		InitialVolume: 40,
		Engine:        shuffle.NewSeededEngine(7),
	})
	h.prefs = service.NewPreferenceService(logger.NewTestLogger(),
		memory.NewPreferencesRepository(test.NewApp().Preferences()), bus)
	h.presenter = NewPresenter(logger.NewTestLogger(), h.session, h.source, h.resolver, h.prefs, bus, h.view)

	t.Cleanup(func() {
		h.resolver.ReleaseAll()
		h.presenter.Shutdown()
		_ = h.session.Shutdown()
		_ = h.prefs.Shutdown()
		_ = bus.Close()
	})
	return h
}

func (h *presenterHarness) eventually(t *testing.T, cond func(v fakeView) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(h.view.snapshot()) }, time.Second, 2*time.Millisecond)
}

func TestPresenter_InitialState(t *testing.T) {
	h := newPresenterHarness(t)

	v := h.view.snapshot()
	assert.Equal(t, 40, v.volume)
	assert.Equal(t, domain.ShuffleOff, v.mode)
	assert.False(t, v.playing)
	assert.Nil(t, v.track)
}

func TestPresenter_SearchThenSelect(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnSearch("rock")
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })
	assert.Equal(t, "search:rock", h.view.snapshot().playlist.SourceTag)
	assert.Equal(t, "rock", h.presenter.LastQuery())

	h.presenter.OnTrackSelected(1)
	h.eventually(t, func(v fakeView) bool { return v.playing })

	v := h.view.snapshot()
	require.NotNil(t, v.track)
	assert.Equal(t, "b", v.track.Reference)
	assert.Equal(t, 1, v.selected)
	assert.False(t, v.loading)
	assert.Equal(t, "search:rock", h.session.Snapshot().Playlist.SourceTag)
}

func TestPresenter_SelectOutOfRangeIgnored(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnTrackSelected(0)
	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })

	h.presenter.OnTrackSelected(9)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.resolver.CallCount())
}

func TestPresenter_NavigationAndProgress(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })
	h.presenter.OnTrackSelected(0)
	h.eventually(t, func(v fakeView) bool { return v.playing })

	h.presenter.OnNextClicked()
	h.eventually(t, func(v fakeView) bool { return v.track != nil && v.track.Reference == "b" && v.playing })
	assert.Equal(t, 1, h.view.snapshot().selected)

	h.transport.SimulateProgress(30 * time.Second)
	v := h.view.snapshot()
	assert.Equal(t, 30.0, v.position)
	assert.Equal(t, audiomock.DefaultDuration.Seconds(), v.duration)

	h.presenter.OnPreviousClicked()
	require.Eventually(t, func() bool {
		snap := h.session.Snapshot()
		return snap.CurrentIndex == 0 && snap.IsPlaying
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, "a", h.view.snapshot().track.Reference)

	h.presenter.OnPlayClicked()
	h.eventually(t, func(v fakeView) bool { return !v.playing })
}

func TestPresenter_ResolutionFailureNotifiesOnce(t *testing.T) {
	h := newPresenterHarness(t)
	h.resolver.SetRefuse("a", true)

	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })
	h.presenter.OnTrackSelected(0)
	h.eventually(t, func(v fakeView) bool { return len(v.notifications) > 0 })

	time.Sleep(20 * time.Millisecond)
	v := h.view.snapshot()
	assert.Equal(t, []string{"Playback Error"}, v.notifications)
	assert.False(t, v.playing)
	assert.False(t, v.loading)
}

func TestPresenter_SourceFailureNotifies(t *testing.T) {
	h := newPresenterHarness(t)
	h.source.err = errors.New("catalogue down")

	h.presenter.OnSearch("x")
	h.eventually(t, func(v fakeView) bool { return len(v.notifications) == 1 })
	assert.Nil(t, h.view.snapshot().playlist)
}

func TestPresenter_ShuffleAndVolume(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnShuffleClicked()
	assert.Equal(t, domain.ShuffleNoRepeat, h.view.snapshot().mode)
	assert.Equal(t, domain.ShuffleNoRepeat, h.prefs.GetShuffleMode())

	h.presenter.OnVolumeChanged(65)
	assert.Equal(t, 65, h.view.snapshot().volume)
	assert.Equal(t, 65, h.transport.Volume())
	assert.Equal(t, 65, h.prefs.GetVolume())

	h.presenter.OnVolumeChanged(150)
	assert.Equal(t, []string{"Volume Error"}, h.view.snapshot().notifications)
}

func TestPresenter_SessionReset(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })
	h.presenter.OnTrackSelected(2)
	h.eventually(t, func(v fakeView) bool { return v.playing })

	h.session.Reset()

	v := h.view.snapshot()
	assert.Nil(t, v.track)
	assert.False(t, v.playing)
	assert.Equal(t, -1, v.selected)
}

func TestPresenter_NewContextResetsSession(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.OnSearch("x")
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil && v.playlist.SourceTag == "search:x" })
	h.presenter.OnTrackSelected(0)
	require.Eventually(t, func() bool {
		snap := h.session.Snapshot()
		return snap.IsPlaying && !snap.Transitioning
	}, time.Second, 2*time.Millisecond)

	// another track from the same list keeps the context
	h.presenter.OnTrackSelected(1)
	require.Eventually(t, func() bool {
		snap := h.session.Snapshot()
		return snap.CurrentIndex == 1 && snap.IsPlaying && !snap.Transitioning
	}, time.Second, 2*time.Millisecond)
	assert.Zero(t, h.events.Count(domain.EventSessionReset))

	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil && v.playlist.SourceTag == "recommendations" })
	assert.Zero(t, h.events.Count(domain.EventSessionReset), "showing a list does not reset")

	h.presenter.OnTrackSelected(2)
	require.Eventually(t, func() bool {
		snap := h.session.Snapshot()
		return snap.IsPlaying && snap.Playlist != nil && snap.Playlist.SourceTag == "recommendations"
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, 1, h.events.Count(domain.EventSessionReset))
	assert.Equal(t, 2, h.session.Snapshot().CurrentIndex)
}

func TestPresenter_ShutdownIsIdempotent(t *testing.T) {
	h := newPresenterHarness(t)

	h.presenter.Shutdown()
	h.presenter.Shutdown()

	// commands after shutdown are ignored
	h.presenter.OnNextClicked()
	assert.Zero(t, h.resolver.CallCount())
}

// sink is an io.WriteCloser that remembers what it got.
type sink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *sink) state() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String(), s.closed
}

func TestPresenter_SaveWritesAudio(t *testing.T) {
	h := newPresenterHarness(t)
	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })

	dest := &sink{}
	h.presenter.OnSaveRequested(1, dest)
	h.eventually(t, func(v fakeView) bool { return len(v.notifications) == 1 })

	data, closed := dest.state()
	assert.Equal(t, string(resolvermock.AudioFor("b")), data)
	assert.True(t, closed)
	assert.Equal(t, []string{"Saved"}, h.view.snapshot().notifications)

	// saving does not touch playback
	assert.Equal(t, -1, h.session.Snapshot().CurrentIndex)
}

func TestPresenter_SaveFailureNotifies(t *testing.T) {
	h := newPresenterHarness(t)
	h.resolver.SetRefuse("c", true)
	h.presenter.OnRecommendationsClicked()
	h.eventually(t, func(v fakeView) bool { return v.playlist != nil })

	dest := &sink{}
	h.presenter.OnSaveRequested(2, dest)
	h.eventually(t, func(v fakeView) bool { return len(v.notifications) == 1 })

	data, closed := dest.state()
	assert.Empty(t, data)
	assert.True(t, closed)
	assert.Equal(t, []string{"Download Error"}, h.view.snapshot().notifications)
}

func TestPresenter_SaveOutOfRangeClosesDest(t *testing.T) {
	h := newPresenterHarness(t)

	dest := &sink{}
	h.presenter.OnSaveRequested(5, dest)

	_, closed := dest.state()
	assert.True(t, closed)
	assert.Zero(t, h.resolver.CallCount())
}

func TestPresenter_ShutdownLeavesNoGoroutines(t *testing.T) {
	// the fyne test app may start its own goroutines; only ours are checked
	prefs := test.NewApp().Preferences()
	opts := append(testutil.IgnoreFyneGoroutines(), goleak.IgnoreCurrent())

	bus := eventbus.NewSyncEventBus(logger.NewTestLogger())
	transport := audiomock.NewTransport(logger.NewTestLogger(), bus)
	resolver := resolvermock.NewResolver()
	session := service.NewSessionService(logger.NewTestLogger(), transport, resolver, bus, service.SessionOptions{
		Engine: shuffle.NewSeededEngine(1),
	})
	prefService := service.NewPreferenceService(logger.NewTestLogger(), memory.NewPreferencesRepository(prefs), bus)
	view := &fakeView{selected: -1}
	source := &fakeSource{search: domain.NewPlaylist("", []domain.Track{{Reference: "a"}, {Reference: "b"}})}
	presenter := NewPresenter(logger.NewTestLogger(), session, source, resolver, prefService, bus, view)

	presenter.OnRecommendationsClicked()
	require.Eventually(t, func() bool { return view.snapshot().playlist != nil }, time.Second, 2*time.Millisecond)
	presenter.OnTrackSelected(0)
	require.Eventually(t, func() bool { return view.snapshot().playing }, time.Second, 2*time.Millisecond)
	presenter.OnSaveRequested(1, &sink{})

	presenter.Shutdown()
	require.NoError(t, session.Shutdown())
	require.NoError(t, prefService.Shutdown())
	require.NoError(t, bus.Close())

	testutil.VerifyNoLeaks(t, opts...)
}
