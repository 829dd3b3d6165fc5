package httpsource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
)

const listingBody = `{"tracks": [
	{"reference": "r1", "title": "One", "artist": "A", "cover_url": "http://img/1", "duration": "3:01"},
	{"reference": "", "title": "Broken"},
	{"reference": "r2", "title": "Two", "artist": "B", "duration": "4:20"}
]}`

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	src, err := New(logger.NewTestLogger(), Config{BaseURL: srv.URL}, srv.Client())
	require.NoError(t, err)
	return src
}

func TestSearch(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "lofi beats", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingBody))
	})

	pl, err := src.Search(context.Background(), "  lofi beats ")
	require.NoError(t, err)

	assert.Equal(t, "search:lofi beats", pl.SourceTag)
	require.Equal(t, 2, pl.Len())
	assert.Equal(t, domain.Track{
		Reference:     "r1",
		Title:         "One",
		Artist:        "A",
		CoverURL:      "http://img/1",
		DurationLabel: "3:01",
	}, pl.Tracks[0])
	assert.Equal(t, "r2", pl.Tracks[1].Reference)
}

func TestSearch_EmptyQuery(t *testing.T) {
	src := newTestSource(t, func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected")
	})

	_, err := src.Search(context.Background(), "   ")
	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestRecommendations(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recommendations", r.URL.Path)
		_, _ = w.Write([]byte(listingBody))
	})

	pl, err := src.Recommendations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, RecommendationsTag, pl.SourceTag)
	assert.Equal(t, 2, pl.Len())
}

func TestList_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"tracks": [`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newTestSource(t, tt.handler)
			_, err := src.Recommendations(context.Background())
			var rErr *domain.RepositoryError
			require.ErrorAs(t, err, &rErr)
			assert.Equal(t, "recommendations", rErr.Op)
		})
	}
}
