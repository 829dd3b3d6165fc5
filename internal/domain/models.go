// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the TuneStream player.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Track is a playable item as returned by a playlist source.
// Tracks are immutable values; Reference is the identity.
type Track struct {
	// Reference is the opaque identifier understood by the track resolver
	Reference string

	// Title is the song title
	Title string

	// Artist is the performing artist name
	Artist string

	// CoverURL points at the artwork (may be empty)
	CoverURL string

	// DurationLabel is the display duration supplied by the source (e.g. "3:45")
	DurationLabel string
}

// SameAs reports whether both tracks refer to the same resolvable item.
func (t Track) SameAs(other Track) bool {
	return t.Reference == other.Reference
}

// DisplayName returns "Artist - Title", falling back to whichever is set.
func (t Track) DisplayName() string {
	switch {
	case t.Artist != "" && t.Title != "":
		return t.Artist + " - " + t.Title
	case t.Title != "":
		return t.Title
	case t.Artist != "":
		return t.Artist
	default:
		return t.Reference
	}
}

// Playlist is an ordered list of tracks plus the tag of the context it came from.
type Playlist struct {
	// SourceTag identifies the originating context (e.g. "search:foo", "recommendations")
	SourceTag string

	// Tracks is the ordered list of tracks
	Tracks []Track
}

// NewPlaylist creates a playlist, copying the given tracks.
func NewPlaylist(sourceTag string, tracks []Track) *Playlist {
	return &Playlist{
		SourceTag: sourceTag,
		Tracks:    slices.Clone(tracks),
	}
}

// Len returns the number of tracks. A nil playlist has length zero.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Tracks)
}

// At returns the track at index i.
func (p *Playlist) At(i int) (Track, bool) {
	if i < 0 || i >= p.Len() {
		return Track{}, false
	}
	return p.Tracks[i], true
}

// IndexOf returns the index of the first track with the given reference, or -1.
func (p *Playlist) IndexOf(reference string) int {
	if p == nil {
		return -1
	}
	return slices.IndexFunc(p.Tracks, func(t Track) bool { return t.Reference == reference })
}

// SameAs reports whether both playlists share the tag and the same references in order.
func (p *Playlist) SameAs(other *Playlist) bool {
	if p == nil || other == nil {
		return p == other
	}
	if p.SourceTag != other.SourceTag || len(p.Tracks) != len(other.Tracks) {
		return false
	}
	for i := range p.Tracks {
		if !p.Tracks[i].SameAs(other.Tracks[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the playlist.
func (p *Playlist) Clone() *Playlist {
	if p == nil {
		return nil
	}
	return NewPlaylist(p.SourceTag, p.Tracks)
}

// ShuffleMode selects the next-track policy.
type ShuffleMode int

const (
	// ShuffleOff plays the playlist in order and wraps around
	ShuffleOff ShuffleMode = iota

	// ShuffleNoRepeat plays every track once per cycle, in random order
	ShuffleNoRepeat

	// ShuffleRepeat walks a fixed random permutation forever
	ShuffleRepeat
)

// String returns the canonical name of the mode.
func (m ShuffleMode) String() string {
	switch m {
	case ShuffleOff:
		return "off"
	case ShuffleNoRepeat:
		return "no_repeat"
	case ShuffleRepeat:
		return "repeat"
	default:
		return "unknown"
	}
}

// Label returns a short human-readable label for the UI.
func (m ShuffleMode) Label() string {
	switch m {
	case ShuffleNoRepeat:
		return "No Repeat"
	case ShuffleRepeat:
		return "Repeat"
	default:
		return "Off"
	}
}

// Next cycles Off -> NoRepeat -> RepeatShuffle -> Off.
func (m ShuffleMode) Next() ShuffleMode {
	switch m {
	case ShuffleOff:
		return ShuffleNoRepeat
	case ShuffleNoRepeat:
		return ShuffleRepeat
	default:
		return ShuffleOff
	}
}

// IsShuffled reports whether the mode uses a random order.
func (m ShuffleMode) IsShuffled() bool {
	return m == ShuffleNoRepeat || m == ShuffleRepeat
}

// ParseShuffleMode parses the output of ShuffleMode.String.
func ParseShuffleMode(s string) (ShuffleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return ShuffleOff, nil
	case "no_repeat", "norepeat":
		return ShuffleNoRepeat, nil
	case "repeat", "repeat_shuffle":
		return ShuffleRepeat, nil
	default:
		return ShuffleOff, fmt.Errorf("unknown shuffle mode %q", s)
	}
}

// SessionStatus is the lifecycle state of the playback session.
type SessionStatus int

const (
	// StatusIdle means nothing has been played in the current context
	StatusIdle SessionStatus = iota

	// StatusLoading means a track is being resolved
	StatusLoading

	// StatusPlaying indicates playback is active
	StatusPlaying

	// StatusPaused indicates playback is paused
	StatusPaused
)

// String returns a human-readable representation of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "unknown"
	}
}

// ResolvePurpose tells the resolver what the audio will be used for.
type ResolvePurpose string

const (
	PurposePlayback ResolvePurpose = "playback"
	PurposeDownload ResolvePurpose = "download"
)

// ResolveRequest asks the resolver for the audio of one reference.
type ResolveRequest struct {
	Reference string
	Purpose   ResolvePurpose
}

// ResolveResult is the resolver's answer. Audio is only meaningful when Success is true.
type ResolveResult struct {
	Success bool
	Audio   []byte
}

// PreloadEntry is the single-slot preload cache content.
type PreloadEntry struct {
	// ForReference is the reference of the track whose audio is held
	ForReference string

	// Audio is the resolved payload
	Audio []byte
}

// SessionSnapshot is a read-only copy of the playback session state.
type SessionSnapshot struct {
	// CurrentSong is the optimistic current track (nil if none)
	CurrentSong *Track

	// CurrentIndex is the index into Playlist (-1 if none)
	CurrentIndex int

	// Playlist is a copy of the active playlist (nil if none)
	Playlist *Playlist

	ShuffleMode   ShuffleMode
	PlayedIndices []int
	ShuffleOrder  []int

	Status    SessionStatus
	IsPlaying bool

	Position time.Duration
	Duration time.Duration

	// Volume is 0..100
	Volume int

	// PreloadedReference is the reference held by the preload cache, empty if none
	PreloadedReference string

	// Transitioning is true while a next/prev/play transition is in flight
	Transitioning bool
}

// Progress returns the elapsed fraction in [0,1], or 0 when the duration is unknown.
func (s SessionSnapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	f := float64(s.Position) / float64(s.Duration)
	if f > 1 {
		return 1
	}
	return f
}
