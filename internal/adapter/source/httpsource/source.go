// Package httpsource implements PlaylistSource against the catalogue service.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

const (
	// DefaultTimeout bounds one catalogue request.
	DefaultTimeout = 15 * time.Second

	// RecommendationsTag identifies the recommendations playlist.
	RecommendationsTag = "recommendations"

	maxBodyBytes = 4 << 20
)

// SearchTag returns the source tag of a search playlist.
func SearchTag(query string) string {
	return "search:" + query
}

// Config configures the catalogue client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Source fetches playlists over HTTP.
//
// Thread-safety: This implementation is thread-safe.
type Source struct {
	logger *slog.Logger
	client *http.Client
	base   *url.URL
}

type trackDTO struct {
	Reference string `json:"reference"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	CoverURL  string `json:"cover_url"`
	Duration  string `json:"duration"`
}

type listing struct {
	Tracks []trackDTO `json:"tracks"`
}

// New creates a Source. A nil client gets a fresh client with cfg.Timeout.
func New(logger *slog.Logger, cfg Config, client *http.Client) (*Source, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, domain.NewValidationError("source.base_url", cfg.BaseURL, "must be an absolute URL", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Source{
		logger: logger.With(slog.String("adapter", "http-source")),
		client: client,
		base:   base,
	}, nil
}

// Search returns the tracks matching query.
func (s *Source) Search(ctx context.Context, query string) (*domain.Playlist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("query", query, "must not be empty", nil)
	}
	tracks, err := s.list(ctx, "search", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return domain.NewPlaylist(SearchTag(query), tracks), nil
}

// Recommendations returns the service's suggested tracks.
func (s *Source) Recommendations(ctx context.Context) (*domain.Playlist, error) {
	tracks, err := s.list(ctx, "recommendations", nil)
	if err != nil {
		return nil, err
	}
	return domain.NewPlaylist(RecommendationsTag, tracks), nil
}

func (s *Source) list(ctx context.Context, path string, params url.Values) ([]domain.Track, error) {
	u := s.base.JoinPath(path)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.NewRepositoryError(path, "catalogue", "request failed", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, domain.NewRepositoryError(path, "catalogue", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewRepositoryError(path, "catalogue", fmt.Sprintf("unexpected status %s", resp.Status), nil)
	}

	var body listing
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, domain.NewRepositoryError(path, "catalogue", "malformed listing", err)
	}

	valid := lo.Filter(body.Tracks, func(t trackDTO, _ int) bool {
		return strings.TrimSpace(t.Reference) != ""
	})
	if dropped := len(body.Tracks) - len(valid); dropped > 0 {
		s.logger.Warn("dropped tracks without reference", slog.String("path", path), slog.Int("count", dropped))
	}

	tracks := lo.Map(valid, func(t trackDTO, _ int) domain.Track {
		return domain.Track{
			Reference:     t.Reference,
			Title:         t.Title,
			Artist:        t.Artist,
			CoverURL:      t.CoverURL,
			DurationLabel: t.Duration,
		}
	})
	s.logger.Debug("listing fetched", slog.String("path", path), slog.Int("tracks", len(tracks)))
	return tracks, nil
}

// Verify that Source implements the PlaylistSource interface
var _ ports.PlaylistSource = (*Source)(nil)
