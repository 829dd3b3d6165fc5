package ports

import (
	"context"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// TrackResolver turns a track reference into playable audio.
//
// Latency is unbounded and failures are expected. A resolver reports a
// well-formed negative answer as ResolveResult{Success: false} with a nil error;
// transport or protocol failures are returned as errors.
//
// Implementations must honour ctx cancellation and be safe for concurrent use.
type TrackResolver interface {
	Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolveResult, error)
}

// PlaylistSource produces playlists for the session to play.
type PlaylistSource interface {
	// Search returns the tracks matching query, tagged "search:<query>".
	Search(ctx context.Context, query string) (*domain.Playlist, error)

	// Recommendations returns the recommended tracks, tagged "recommendations".
	Recommendations(ctx context.Context) (*domain.Playlist, error)
}
