// Package httpresolver implements TrackResolver against the audio-resolution
// HTTP service.
//
// Protocol: GET {base}/resolve?reference=<ref>&purpose=<playback|download>.
// A successful answer is the raw audio body (any non-JSON content type).
// A JSON body is a structured answer: {"success": false, "error": "..."} for a
// refusal, or {"success": true, "audio": "<base64>"}.
package httpresolver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

const (
	// DefaultTimeout bounds one resolution request.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxAudioBytes caps the accepted payload.
	DefaultMaxAudioBytes int64 = 64 << 20

	requestIDHeader = "X-Request-ID"
)

// Config configures the resolver client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	MaxAudioBytes int64
	UserAgent     string
}

// Resolver is an HTTP TrackResolver. Concurrent requests for the same
// reference and purpose share one upstream call.
//
// Thread-safety: This implementation is thread-safe.
type Resolver struct {
	logger  *slog.Logger
	client  *http.Client
	base    *url.URL
	cfg     Config
	flights singleflight.Group
}

type answer struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Audio   []byte `json:"audio,omitempty"`
}

// New creates a resolver. A nil client gets http.DefaultClient's transport.
func New(logger *slog.Logger, cfg Config, client *http.Client) (*Resolver, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, domain.NewValidationError("resolver.base_url", cfg.BaseURL, "must be an absolute URL", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = DefaultMaxAudioBytes
	}
	if client == nil {
		client = &http.Client{}
	}

	return &Resolver{
		logger: logger.With(slog.String("adapter", "http-resolver"), slog.String("base_url", base.String())),
		client: client,
		base:   base,
		cfg:    cfg,
	}, nil
}

// Resolve implements ports.TrackResolver.
// The returned audio may be shared between coalesced callers and must not be modified.
func (r *Resolver) Resolve(ctx context.Context, req domain.ResolveRequest) (domain.ResolveResult, error) {
	key := string(req.Purpose) + "|" + req.Reference

	// the shared call must outlive any single caller's cancellation
	flightCtx := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(key, func() (any, error) {
		return r.fetch(flightCtx, req)
	})

	select {
	case <-ctx.Done():
		return domain.ResolveResult{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.ResolveResult{}, res.Err
		}
		if res.Shared {
			r.logger.Debug("resolution shared", slog.String("reference", req.Reference))
		}
		return res.Val.(domain.ResolveResult), nil
	}
}

func (r *Resolver) fetch(ctx context.Context, req domain.ResolveRequest) (domain.ResolveResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	u := r.base.JoinPath("resolve")
	q := u.Query()
	q.Set("reference", req.Reference)
	q.Set("purpose", string(req.Purpose))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.ResolveResult{}, fmt.Errorf("build resolve request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(requestIDHeader, requestID)
	httpReq.Header.Set("Accept", "audio/*, application/json")
	if r.cfg.UserAgent != "" {
		httpReq.Header.Set("User-Agent", r.cfg.UserAgent)
	}

	log := r.logger.With(
		slog.String("request_id", requestID),
		slog.String("reference", req.Reference),
		slog.String("purpose", string(req.Purpose)))

	start := time.Now()
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return domain.ResolveResult{}, fmt.Errorf("resolve request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxAudioBytes+1))
	if err != nil {
		return domain.ResolveResult{}, fmt.Errorf("read resolve response: %w", err)
	}
	if int64(len(body)) > r.cfg.MaxAudioBytes {
		return domain.ResolveResult{}, fmt.Errorf("resolve response exceeds %s", humanize.IBytes(uint64(r.cfg.MaxAudioBytes)))
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if isJSON(resp.Header.Get("Content-Type")) {
		var a answer
		if err := json.Unmarshal(body, &a); err != nil {
			return domain.ResolveResult{}, fmt.Errorf("decode resolve answer: %w", err)
		}
		if !a.Success {
			log.Info("resolver refused", slog.Int("status", resp.StatusCode), slog.String("reason", a.Error))
			return domain.ResolveResult{Success: false}, nil
		}
		// a success answer only counts on a success status
		if !ok {
			return domain.ResolveResult{}, fmt.Errorf("resolver responded %s with a success answer", resp.Status)
		}
		body = a.Audio
	} else if !ok {
		return domain.ResolveResult{}, fmt.Errorf("resolver responded %s", resp.Status)
	}

	if len(body) == 0 {
		log.Warn("resolver returned an empty payload")
		return domain.ResolveResult{Success: false}, nil
	}

	log.Debug("audio resolved",
		slog.String("size", humanize.Bytes(uint64(len(body)))),
		slog.String("container", sniff(body)),
		slog.Duration("elapsed", time.Since(start)))
	return domain.ResolveResult{Success: true, Audio: body}, nil
}

// sniff names the audio container for diagnostics.
func sniff(audio []byte) string {
	format, fileType, err := tag.Identify(bytes.NewReader(audio))
	switch {
	case errors.Is(err, tag.ErrNoTagsFound):
		return "untagged"
	case err != nil:
		return "unknown"
	case fileType != tag.UnknownFileType:
		return string(fileType)
	default:
		return string(format)
	}
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

// Verify that Resolver implements the TrackResolver interface
var _ ports.TrackResolver = (*Resolver)(nil)
