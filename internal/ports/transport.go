// Package ports define interfaces for dependency inversion.
// These interfaces allow the core business logic to remain independent of external frameworks.
package ports

// Transport is the audio output surface.
// It abstracts the underlying audio library (BASS) and allows for testing with mocks.
//
// A transport holds at most one loaded buffer. It reports back to the session only
// through the event bus:
//   - domain.TrackProgressEvent while audio plays
//   - domain.TrackEndedEvent once the loaded audio finishes
//   - domain.TransportLoadErrorEvent when a loaded buffer cannot be decoded
//
// Implementations must be thread-safe as they may be called from multiple goroutines.
type Transport interface {
	// Load replaces the current audio with the given encoded buffer.
	// Playback does not start until Play is called.
	Load(audio []byte) error

	// Play starts or resumes playback of the loaded audio.
	//
	// Returns domain.ErrNoTrackLoaded if nothing is loaded.
	Play() error

	// Pause pauses playback, keeping the position.
	Pause() error

	// Seek moves to a fraction (0..1) of the loaded audio's duration.
	Seek(fraction float64) error

	// SetVolume sets the output volume (0..100).
	SetVolume(volume int) error

	// Close releases all transport resources.
	Close() error
}
