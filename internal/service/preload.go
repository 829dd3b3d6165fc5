package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
)

// preloadJob is one speculative resolution, tied to the epoch it was planned in.
type preloadJob struct {
	track domain.Track
	index int
	epoch uint64
}

// schedulePreloadLocked decides whether this progress tick starts a preload.
// At most one attempt is made per leg, successful or not.
func (s *SessionService) schedulePreloadLocked(elapsed time.Duration) *preloadJob {
	if s.closed ||
		s.transitioning ||
		s.status != domain.StatusPlaying ||
		elapsed < s.preloadThreshold ||
		s.preload != nil ||
		s.preloadInFlight ||
		s.preloadAttempted ||
		s.playlist.Len() == 0 {
		return nil
	}

	s.preloadAttempted = true

	// the same choice Next would make, computed without touching any state
	target, ok := s.engine.Next(s.shuffleStateLocked())
	if !ok || target == s.currentIndex {
		s.logger.Debug("preload skipped: no distinct next track", slog.Int("index", s.currentIndex))
		return nil
	}

	s.preloadInFlight = true
	s.wg.Add(1)
	return &preloadJob{
		track: s.playlist.Tracks[target],
		index: target,
		epoch: s.epoch,
	}
}

// runPreload resolves job.track and stores the audio if the session has not
// moved on in the meantime.
func (s *SessionService) runPreload(job *preloadJob) {
	defer s.wg.Done()

	s.bus.Publish(domain.NewPreloadStartedEvent(job.track, job.index))
	s.logger.Debug("preload started",
		slog.String("reference", job.track.Reference),
		slog.Int("index", job.index))

	audio, err := s.resolveForPreload(job.track)

	s.mu.Lock()
	s.preloadInFlight = false
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("preload failed",
			slog.String("reference", job.track.Reference),
			slog.Any("error", err))
		s.bus.Publish(domain.NewPreloadFailedEvent(job.track, err))
		return
	}
	if s.closed || s.epoch != job.epoch {
		s.mu.Unlock()
		s.logger.Debug("preload discarded: session moved on",
			slog.String("reference", job.track.Reference))
		s.bus.Publish(domain.NewPreloadDiscardedEvent(job.track, "session changed while resolving"))
		return
	}
	s.preload = &domain.PreloadEntry{
		ForReference: job.track.Reference,
		Audio:        audio,
	}
	s.mu.Unlock()

	s.logger.Debug("preload stored",
		slog.String("reference", job.track.Reference),
		slog.Int("size", len(audio)))
	s.bus.Publish(domain.NewPreloadStoredEvent(job.track, len(audio)))
}

// resolveForPreload runs the resolution on the session context. A panicking
// resolver only costs this leg its preload.
func (s *SessionService) resolveForPreload(track domain.Track) (audio []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewResolutionError(track.Reference, domain.PurposePlayback, fmt.Errorf("resolver panic: %v", r))
		}
	}()
	return resolveAudio(s.ctx, s.resolver, track, domain.PurposePlayback)
}
