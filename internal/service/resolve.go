package service

import (
	"context"
	"errors"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

var errEmptyAudio = errors.New("resolver returned no audio")

// resolveAudio runs one resolution attempt. Every failure, including a
// well-formed negative answer, comes back as a *domain.ResolutionError.
// There is no retry.
func resolveAudio(ctx context.Context, resolver ports.TrackResolver, track domain.Track, purpose domain.ResolvePurpose) ([]byte, error) {
	res, err := resolver.Resolve(ctx, domain.ResolveRequest{
		Reference: track.Reference,
		Purpose:   purpose,
	})
	if err != nil {
		return nil, domain.NewResolutionError(track.Reference, purpose, err)
	}
	if !res.Success {
		return nil, domain.NewResolutionError(track.Reference, purpose, nil)
	}
	if len(res.Audio) == 0 {
		return nil, domain.NewResolutionError(track.Reference, purpose, errEmptyAudio)
	}
	return res.Audio, nil
}

// FetchForDownload resolves a track for saving rather than playback.
// It shares the error mapping of playback resolution but never touches a session.
func FetchForDownload(ctx context.Context, resolver ports.TrackResolver, track domain.Track) ([]byte, error) {
	return resolveAudio(ctx, resolver, track, domain.PurposeDownload)
}
