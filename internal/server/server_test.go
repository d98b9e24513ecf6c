package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/metrics"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/repositories"
	"github.com/desertthunder/linkreel/internal/services"
	"github.com/desertthunder/linkreel/internal/shared"
	"github.com/desertthunder/linkreel/internal/tasks"
	tu "github.com/desertthunder/linkreel/internal/testing"
)

type harness struct {
	router    chi.Router
	library   *services.Library
	container *handoff.Container
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	store := repositories.NewPlaylistStore(tu.NewTestDB(t))
	container := handoff.NewContainer(filepath.Join(t.TempDir(), "group"))
	pipeline := tasks.NewPipeline(container, store, shared.DeliveryAtMostOnce, logger)
	library := services.NewLibrary(store, pipeline, logger)

	srv := NewServer(library, container, handoff.NewEnqueuer(container, logger), logger)
	return &harness{router: srv.Router(), library: library, container: container}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rr := h.do(t, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[map[string]any](t, rr)["status"]; got != "ok" {
		t.Errorf("expected status ok, got %v", got)
	}
}

func TestPlaylists(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	t.Run("empty list", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/playlists", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if strings.TrimSpace(rr.Body.String()) != "[]" {
			t.Errorf("expected empty array, got %q", rr.Body.String())
		}
	})

	p, err := h.library.CreatePlaylist(ctx, "Talks")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}
	for _, label := range []string{"one", "two"} {
		if _, err := h.library.AddItem(ctx, p.ID, label, "https://example.com/"+label); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
	}

	t.Run("list", func(t *testing.T) {
		got := decode[[]models.Playlist](t, h.do(t, http.MethodGet, "/playlists", nil))
		if len(got) != 1 || got[0].ID != p.ID {
			t.Fatalf("unexpected playlists %+v", got)
		}
	})

	t.Run("get by id and title", func(t *testing.T) {
		for _, key := range []string{p.ID, strings.ToUpper(p.ID), "talks"} {
			rr := h.do(t, http.MethodGet, "/playlists/"+key, nil)
			if rr.Code != http.StatusOK {
				t.Fatalf("GET %s: expected 200, got %d", key, rr.Code)
			}
			got := decode[models.Playlist](t, rr)
			if len(got.Items) != 2 || got.Items[0].Label != "one" || got.Items[1].OrderIndex != 1 {
				t.Errorf("GET %s: unexpected items %+v", key, got.Items)
			}
		}
	})

	t.Run("not found", func(t *testing.T) {
		rr := h.do(t, http.MethodGet, "/playlists/nope", nil)
		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})
}

func TestIndex(t *testing.T) {
	h := newHarness(t)

	t.Run("missing snapshot", func(t *testing.T) {
		if rr := h.do(t, http.MethodGet, "/index", nil); rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("published", func(t *testing.T) {
		if _, err := h.library.CreatePlaylist(context.Background(), "Talks"); err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}
		got := decode[[]models.IndexEntry](t, h.do(t, http.MethodGet, "/index", nil))
		if len(got) != 1 || got[0].Title != "Talks" {
			t.Errorf("unexpected index %+v", got)
		}
	})
}

func TestShareAndForeground(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	p, err := h.library.CreatePlaylist(ctx, "Talks")
	if err != nil {
		t.Fatalf("CreatePlaylist failed: %v", err)
	}

	t.Run("share queues a record", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/share", shareRequest{Playlist: "Talks", Label: "  Keynote ", URL: "example.com/keynote"})
		if rr.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rr.Code, rr.Body.String())
		}
		record := decode[models.InboxRecord](t, rr)
		if record.PlaylistID != p.ID || record.Label != "Keynote" || record.URL != "https://example.com/keynote" {
			t.Errorf("unexpected record %+v", record)
		}

		queued, err := h.container.ReadQueue()
		if err != nil {
			t.Fatalf("ReadQueue failed: %v", err)
		}
		if len(queued) != 1 {
			t.Fatalf("expected 1 queued record, got %d", len(queued))
		}
	})

	t.Run("share rejects bad input", func(t *testing.T) {
		cases := []struct {
			name   string
			body   any
			status int
		}{
			{"unknown playlist", shareRequest{Playlist: "Music", URL: "https://example.com"}, http.StatusNotFound},
			{"missing playlist", shareRequest{URL: "https://example.com"}, http.StatusBadRequest},
			{"bad url", shareRequest{Playlist: "Talks", URL: "   "}, http.StatusBadRequest},
			{"bad json", "not an object", http.StatusBadRequest},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if rr := h.do(t, http.MethodPost, "/share", tc.body); rr.Code != tc.status {
					t.Errorf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
				}
			})
		}
	})

	t.Run("foreground drains", func(t *testing.T) {
		rr := h.do(t, http.MethodPost, "/foreground", nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		got := decode[foregroundResponse](t, rr)
		if got.Applied != 1 || got.Entries != 1 || got.Remaining != 0 {
			t.Errorf("unexpected foreground result %+v", got)
		}

		reloaded, err := h.library.GetPlaylist(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetPlaylist failed: %v", err)
		}
		if len(reloaded.Items) != 1 || reloaded.Items[0].Label != "Keynote" {
			t.Errorf("expected drained item, got %+v", reloaded.Items)
		}
	})
}

func TestMetricsMiddleware(t *testing.T) {
	h := newHarness(t)

	before := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/playlists/{id}", "404"))
	h.do(t, http.MethodGet, "/playlists/missing", nil)
	after := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/playlists/{id}", "404"))
	if after != before+1 {
		t.Errorf("expected route-labelled counter to increase, got %v -> %v", before, after)
	}

	rr := h.do(t, http.MethodGet, "/metrics", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "linkreel_http_requests_total") {
		t.Error("expected exposition to include request counter")
	}
}

func TestSanitizeLogField(t *testing.T) {
	if got := sanitizeLogField("/a\nb\x1b[31m\x00"); got != "/a b[31m" {
		t.Errorf("unexpected sanitized value %q", got)
	}
}
