package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/models"
	"github.com/desertthunder/linkreel/internal/shared"
)

// shareRequest is the body of POST /share. Playlist is an id or a title from the index.
type shareRequest struct {
	Playlist string `json:"playlist"`
	Label    string `json:"label"`
	URL      string `json:"url"`
}

type foregroundResponse struct {
	Delivery   string `json:"delivery"`
	Applied    int    `json:"applied"`
	Malformed  int    `json:"malformed"`
	Dangling   int    `json:"dangling"`
	Duplicate  int    `json:"duplicate"`
	Failed     int    `json:"failed"`
	Remaining  int    `json:"remaining"`
	Entries    int    `json:"entries"`
	CommitErr  string `json:"commit_error,omitempty"`
	QueueErr   string `json:"queue_error,omitempty"`
	PublishErr string `json:"publish_error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "linkreel",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := s.library.ListPlaylists(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if playlists == nil {
		playlists = []*models.Playlist{}
	}
	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := s.library.FindPlaylist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	type view struct {
		*models.Playlist
		Items []*models.Item `json:"items"`
	}
	writeJSON(w, http.StatusOK, view{Playlist: p, Items: p.SortedItems()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entries, err := s.container.ReadIndex()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.IndexEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleShare resolves the destination from the index snapshot and enqueues the link.
func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	var body shareRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	u, err := models.SanitizeURL(body.URL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	entries, err := s.container.ReadIndex()
	if err != nil {
		s.writeError(w, err)
		return
	}
	entry, err := handoff.ResolveEntry(entries, body.Playlist)
	if err != nil {
		s.writeError(w, err)
		return
	}

	record, err := s.enqueuer.Share(entry.ID, body.Label, u.String())
	if err != nil {
		s.logger.Error("enqueue failed", "playlist", entry.ID, "error", err)
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, record)
}

func (s *Server) handleForeground(w http.ResponseWriter, r *http.Request) {
	result, err := s.library.Foreground(r.Context(), nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := foregroundResponse{}
	if d := result.Drain; d != nil {
		resp.Delivery = d.Delivery
		resp.Applied = d.Applied
		resp.Malformed = d.Malformed
		resp.Dangling = d.Dangling
		resp.Duplicate = d.Duplicate
		resp.Failed = d.Failed
		resp.Remaining = d.Remaining
		resp.CommitErr = errString(d.CommitErr)
		resp.QueueErr = errString(d.QueueErr)
	}
	if result.Publish != nil {
		resp.Entries = len(result.Publish.Entries)
	}
	resp.PublishErr = errString(result.PublishErr)

	writeJSON(w, http.StatusOK, resp)
}

// writeError maps sentinel errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrPlaylistNotFound), errors.Is(err, shared.ErrItemNotFound), errors.Is(err, shared.ErrNoIndex):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrAmbiguousMatch):
		status = http.StatusConflict
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidURL),
		errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidPosition):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
