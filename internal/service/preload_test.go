package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	resolvermock "github.com/tejashwikalptaru/tunestream/internal/adapter/resolver/mock"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

func TestPreload_WaitsForThreshold(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C")
	h.start(pl, 0)

	h.transport.SimulateProgress(time.Second)
	h.transport.SimulateProgress(4900 * time.Millisecond)

	assert.Zero(t, h.events.Count(domain.EventPreloadStarted))
	assert.Equal(t, 1, h.resolver.CallCount())
}

func TestPreload_StoredThenConsumedByNext(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C")
	h.start(pl, 0)

	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadStored, 1)

	snap := h.session.Snapshot()
	assert.Equal(t, "B", snap.PreloadedReference)
	assert.NotEqual(t, snap.CurrentSong.Reference, snap.PreloadedReference)
	assert.Equal(t, 1, h.resolver.CallsFor("B"))

	h.next()

	assert.Equal(t, 1, h.index())
	assert.Equal(t, 1, h.resolver.CallsFor("B"), "cached audio must be played without resolving")
	assert.Equal(t, resolvermock.AudioFor("B"), h.transport.Loaded())
	assert.Empty(t, h.session.Snapshot().PreloadedReference)

	started := h.events.Of(domain.EventTrackStarted)
	last := started[len(started)-1].(domain.TrackStartedEvent)
	assert.True(t, last.FromPreload)
	assert.Equal(t, "B", last.Track.Reference)
}

func TestPreload_OncePerLeg(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C")
	h.start(pl, 0)

	h.resolver.SetError("B", errors.New("flaky"))
	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadFailed, 1)

	h.transport.SimulateProgress(6 * time.Second)
	h.transport.SimulateProgress(7 * time.Second)
	assert.Equal(t, 1, h.resolver.CallsFor("B"), "a failed preload is not retried within the leg")
	assert.Empty(t, h.session.Snapshot().PreloadedReference)

	// the next leg gets its own attempt
	h.resolver.SetError("B", nil)
	h.next()
	assert.Equal(t, 2, h.resolver.CallsFor("B"))

	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadStored, 1)
	h.transport.SimulateProgress(8 * time.Second)
	assert.Equal(t, 1, h.resolver.CallsFor("C"))
	assert.Equal(t, "C", h.session.Snapshot().PreloadedReference)
}

func TestPreload_DiscardedWhenPrevWinsTheRace(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C")
	h.start(pl, 0)
	h.drainEntered()

	h.resolver.Hold("B")
	h.transport.SimulateProgress(5 * time.Second)
	h.waitEntered("B")

	require.NoError(t, h.session.Prev(context.Background()))
	assert.Equal(t, 2, h.index())

	h.resolver.Release("B")
	h.waitForEvent(domain.EventPreloadDiscarded, 1)

	snap := h.session.Snapshot()
	assert.Empty(t, snap.PreloadedReference)
	assert.Equal(t, 2, snap.CurrentIndex)
	assert.Equal(t, resolvermock.AudioFor("C"), h.transport.Loaded())
	assert.Equal(t, 1, h.resolver.CallsFor("B"))
	assert.Zero(t, h.events.Count(domain.EventPreloadStored))
}

func TestPreload_DiscardedWhenPlayTrackMovesOn(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C", "D")
	h.start(pl, 0)
	h.drainEntered()

	h.resolver.Hold("B")
	h.transport.SimulateProgress(5 * time.Second)
	h.waitEntered("B")

	require.NoError(t, h.session.PlayTrack(context.Background(), pl.Tracks[3], 3, nil))
	h.resolver.Release("B")
	h.waitForEvent(domain.EventPreloadDiscarded, 1)

	assert.Empty(t, h.session.Snapshot().PreloadedReference)
}

func TestPreload_DiscardedWhenModeToggles(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C", "D")
	h.start(pl, 0)
	h.drainEntered()

	h.resolver.Hold("B")
	h.transport.SimulateProgress(5 * time.Second)
	h.waitEntered("B")

	h.session.ToggleShuffleMode()
	h.resolver.Release("B")
	h.waitForEvent(domain.EventPreloadDiscarded, 1)

	assert.Empty(t, h.session.Snapshot().PreloadedReference)
}

func TestPreload_ClearedByModeToggleAndPlayTrack(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C")
	h.start(pl, 0)

	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadStored, 1)
	require.Equal(t, "B", h.session.Snapshot().PreloadedReference)

	h.session.ToggleShuffleMode()
	assert.Empty(t, h.session.Snapshot().PreloadedReference)

	// toggling starts a fresh attempt for the new policy
	h.transport.SimulateProgress(6 * time.Second)
	h.waitForEvent(domain.EventPreloadStored, 2)
	require.NotEmpty(t, h.session.Snapshot().PreloadedReference)

	require.NoError(t, h.session.PlayTrack(context.Background(), pl.Tracks[0], 0, nil))
	assert.Empty(t, h.session.Snapshot().PreloadedReference)
}

func TestPreload_PlayTrackIgnoresMatchingCache(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C")
	h.start(pl, 0)

	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadStored, 1)

	require.NoError(t, h.session.PlayTrack(context.Background(), pl.Tracks[1], 1, nil))
	assert.Equal(t, 2, h.resolver.CallsFor("B"))
}

func TestPreload_SkippedWithoutDistinctNext(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:solo", "A")
	h.start(pl, 0)

	h.transport.SimulateProgress(10 * time.Second)

	assert.Zero(t, h.events.Count(domain.EventPreloadStarted))
	assert.Equal(t, 1, h.resolver.CallCount())
}

func TestPreload_SkippedOutsidePlaylist(t *testing.T) {
	h := newSessionHarness(t)
	require.NoError(t, h.session.PlayTrack(context.Background(), domain.Track{Reference: "X"}, -1, nil))

	h.transport.SimulateProgress(10 * time.Second)
	assert.Zero(t, h.events.Count(domain.EventPreloadStarted))
}

func TestPreload_FollowsShufflePreview(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B", "C", "D", "E")
	h.session.SetShuffleMode(domain.ShuffleRepeat)
	h.start(pl, 0)

	order := h.session.Snapshot().ShuffleOrder
	expected := pl.Tracks[order[1]].Reference

	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadStored, 1)
	assert.Equal(t, expected, h.session.Snapshot().PreloadedReference)

	// previewing did not move anything
	snap := h.session.Snapshot()
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Equal(t, order, snap.ShuffleOrder)

	h.next()
	assert.Equal(t, order[1], h.index())
	assert.Equal(t, 1, h.resolver.CallsFor(expected))
}

func TestPreload_ResolverPanicCountsAsFailure(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B")
	h.start(pl, 0)

	h.resolver.SetPanic("B", true)
	h.transport.SimulateProgress(5 * time.Second)
	h.waitForEvent(domain.EventPreloadFailed, 1)

	failed := h.events.Of(domain.EventPreloadFailed)[0].(domain.PreloadFailedEvent)
	assert.ErrorIs(t, failed.Err, domain.ErrResolutionFailed)
}

func TestPreload_ShutdownCancelsInFlight(t *testing.T) {
	h := newSessionHarness(t)
	pl := testPlaylist("search:x", "A", "B")
	h.start(pl, 0)
	h.drainEntered()

	h.resolver.Hold("B")
	h.transport.SimulateProgress(5 * time.Second)
	h.waitEntered("B")

	// returns only once the held preload has observed cancellation
	require.NoError(t, h.session.Shutdown())
	assert.Equal(t, 1, h.events.Count(domain.EventPreloadFailed))
}
