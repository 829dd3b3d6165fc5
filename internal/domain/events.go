// Package domain defines events for the event-driven architecture.
// Events decouple the transport, the session and the UI from one another.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
// All events must implement this interface to be published via the event bus.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Session events
	EventTrackLoading EventType = "track.loading"
	EventTrackStarted EventType = "track.started"
	EventTrackPaused  EventType = "track.paused"
	EventTrackError   EventType = "track.error"

	// Transport events
	EventTrackProgress      EventType = "transport.progress"
	EventTrackEnded         EventType = "transport.ended"
	EventTransportLoadError EventType = "transport.load_error"

	// Volume events
	EventVolumeChanged EventType = "volume.changed"

	// Playback mode events
	EventShuffleModeChanged EventType = "shuffle.mode_changed"

	// Playlist events
	EventPlaylistChanged EventType = "playlist.changed"
	EventSessionReset    EventType = "session.reset"

	// Preload events
	EventPreloadStarted   EventType = "preload.started"
	EventPreloadStored    EventType = "preload.stored"
	EventPreloadDiscarded EventType = "preload.discarded"
	EventPreloadFailed    EventType = "preload.failed"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
// All concrete events should embed this struct.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackLoadingEvent is published when the session starts resolving a track.
type TrackLoadingEvent struct {
	baseEvent
	Track Track
	Index int
}

// Type returns the event type.
func (e TrackLoadingEvent) Type() EventType { return EventTrackLoading }

// NewTrackLoadingEvent creates a new TrackLoadingEvent.
func NewTrackLoadingEvent(track Track, index int) TrackLoadingEvent {
	return TrackLoadingEvent{baseEvent: newBaseEvent(), Track: track, Index: index}
}

// TrackStartedEvent is published when playback of a track starts.
type TrackStartedEvent struct {
	baseEvent
	Track Track
	Index int

	// FromPreload is true when the audio came from the preload cache
	FromPreload bool
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType { return EventTrackStarted }

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(track Track, index int, fromPreload bool) TrackStartedEvent {
	return TrackStartedEvent{baseEvent: newBaseEvent(), Track: track, Index: index, FromPreload: fromPreload}
}

// TrackPausedEvent is published when playback is paused.
type TrackPausedEvent struct {
	baseEvent
	Track    Track
	Position time.Duration
}

// Type returns the event type.
func (e TrackPausedEvent) Type() EventType { return EventTrackPaused }

// NewTrackPausedEvent creates a new TrackPausedEvent.
func NewTrackPausedEvent(track Track, position time.Duration) TrackPausedEvent {
	return TrackPausedEvent{baseEvent: newBaseEvent(), Track: track, Position: position}
}

// TrackErrorEvent is published when a track cannot be resolved or played.
type TrackErrorEvent struct {
	baseEvent
	Track Track
	Index int
	Err   error
}

// Type returns the event type.
func (e TrackErrorEvent) Type() EventType { return EventTrackError }

// NewTrackErrorEvent creates a new TrackErrorEvent.
func NewTrackErrorEvent(track Track, index int, err error) TrackErrorEvent {
	return TrackErrorEvent{baseEvent: newBaseEvent(), Track: track, Index: index, Err: err}
}

// TrackProgressEvent is published periodically by the transport during playback.
type TrackProgressEvent struct {
	baseEvent
	Current time.Duration
	Total   time.Duration
}

// Type returns the event type.
func (e TrackProgressEvent) Type() EventType { return EventTrackProgress }

// NewTrackProgressEvent creates a new TrackProgressEvent.
func NewTrackProgressEvent(current, total time.Duration) TrackProgressEvent {
	return TrackProgressEvent{baseEvent: newBaseEvent(), Current: current, Total: total}
}

// TrackEndedEvent is published by the transport when the loaded audio finishes.
type TrackEndedEvent struct {
	baseEvent
}

// Type returns the event type.
func (e TrackEndedEvent) Type() EventType { return EventTrackEnded }

// NewTrackEndedEvent creates a new TrackEndedEvent.
func NewTrackEndedEvent() TrackEndedEvent {
	return TrackEndedEvent{baseEvent: newBaseEvent()}
}

// TransportLoadErrorEvent is published when the transport cannot decode loaded audio.
type TransportLoadErrorEvent struct {
	baseEvent
	Err error
}

// Type returns the event type.
func (e TransportLoadErrorEvent) Type() EventType { return EventTransportLoadError }

// NewTransportLoadErrorEvent creates a new TransportLoadErrorEvent.
func NewTransportLoadErrorEvent(err error) TransportLoadErrorEvent {
	return TransportLoadErrorEvent{baseEvent: newBaseEvent(), Err: err}
}

// VolumeChangedEvent is published when the volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume int
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType { return EventVolumeChanged }

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume int) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// ShuffleModeChangedEvent is published when the shuffle mode changes.
type ShuffleModeChangedEvent struct {
	baseEvent
	Mode ShuffleMode
}

// Type returns the event type.
func (e ShuffleModeChangedEvent) Type() EventType { return EventShuffleModeChanged }

// NewShuffleModeChangedEvent creates a new ShuffleModeChangedEvent.
func NewShuffleModeChangedEvent(mode ShuffleMode) ShuffleModeChangedEvent {
	return ShuffleModeChangedEvent{baseEvent: newBaseEvent(), Mode: mode}
}

// PlaylistChangedEvent is published when the session adopts a new playlist.
type PlaylistChangedEvent struct {
	baseEvent
	Playlist *Playlist
}

// Type returns the event type.
func (e PlaylistChangedEvent) Type() EventType { return EventPlaylistChanged }

// NewPlaylistChangedEvent creates a new PlaylistChangedEvent.
func NewPlaylistChangedEvent(playlist *Playlist) PlaylistChangedEvent {
	return PlaylistChangedEvent{baseEvent: newBaseEvent(), Playlist: playlist}
}

// SessionResetEvent is published when the session returns to idle.
type SessionResetEvent struct {
	baseEvent
}

// Type returns the event type.
func (e SessionResetEvent) Type() EventType { return EventSessionReset }

// NewSessionResetEvent creates a new SessionResetEvent.
func NewSessionResetEvent() SessionResetEvent {
	return SessionResetEvent{baseEvent: newBaseEvent()}
}

// PreloadStartedEvent is published when the scheduler starts resolving the next track.
type PreloadStartedEvent struct {
	baseEvent
	Track Track
	Index int
}

// Type returns the event type.
func (e PreloadStartedEvent) Type() EventType { return EventPreloadStarted }

// NewPreloadStartedEvent creates a new PreloadStartedEvent.
func NewPreloadStartedEvent(track Track, index int) PreloadStartedEvent {
	return PreloadStartedEvent{baseEvent: newBaseEvent(), Track: track, Index: index}
}

// PreloadStoredEvent is published when resolved audio lands in the preload cache.
type PreloadStoredEvent struct {
	baseEvent
	Track Track
	Size  int
}

// Type returns the event type.
func (e PreloadStoredEvent) Type() EventType { return EventPreloadStored }

// NewPreloadStoredEvent creates a new PreloadStoredEvent.
func NewPreloadStoredEvent(track Track, size int) PreloadStoredEvent {
	return PreloadStoredEvent{baseEvent: newBaseEvent(), Track: track, Size: size}
}

// PreloadDiscardedEvent is published when a finished preload is stale and dropped.
type PreloadDiscardedEvent struct {
	baseEvent
	Track  Track
	Reason string
}

// Type returns the event type.
func (e PreloadDiscardedEvent) Type() EventType { return EventPreloadDiscarded }

// NewPreloadDiscardedEvent creates a new PreloadDiscardedEvent.
func NewPreloadDiscardedEvent(track Track, reason string) PreloadDiscardedEvent {
	return PreloadDiscardedEvent{baseEvent: newBaseEvent(), Track: track, Reason: reason}
}

// PreloadFailedEvent is published when the preload resolution fails.
type PreloadFailedEvent struct {
	baseEvent
	Track Track
	Err   error
}

// Type returns the event type.
func (e PreloadFailedEvent) Type() EventType { return EventPreloadFailed }

// NewPreloadFailedEvent creates a new PreloadFailedEvent.
func NewPreloadFailedEvent(track Track, err error) PreloadFailedEvent {
	return PreloadFailedEvent{baseEvent: newBaseEvent(), Track: track, Err: err}
}
