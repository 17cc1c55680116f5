// Package api provides HTTP API handlers for the beyondbrush painter.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/beyondbrush/internal/store"
)

// PaintingHandler handles HTTP requests for saved paintings.
type PaintingHandler struct {
	store *store.Store
}

// NewPaintingHandler creates a new PaintingHandler with the given store.
func NewPaintingHandler(s *store.Store) *PaintingHandler {
	return &PaintingHandler{store: s}
}

// ServeHTTP routes /api/paintings, /api/paintings/{id} and /api/paintings/{id}/image.
func (h *PaintingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/paintings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	if id, ok := strings.CutSuffix(path, "/image"); ok {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.image(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type paintingResponse struct {
	ID        string `json:"id"`
	Path      string `json:"path"`
	Format    string `json:"format"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	TextCount int    `json:"text_count"`
	SizeBytes int64  `json:"size_bytes"`
	CreatedAt string `json:"created_at"`
}

type listPaintingsResponse struct {
	Paintings []paintingResponse `json:"paintings"`
	Total     int                `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toPaintingResponse converts a store.Painting to a paintingResponse.
func toPaintingResponse(p *store.Painting) paintingResponse {
	return paintingResponse{
		ID:        p.ID,
		Path:      p.Path,
		Format:    p.Format,
		Width:     p.Width,
		Height:    p.Height,
		TextCount: p.TextCount,
		SizeBytes: p.SizeBytes,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/paintings?limit=N, newest first.
func (h *PaintingHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	paintings, err := h.store.Paintings().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list paintings")
		return
	}
	total, err := h.store.Paintings().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count paintings")
		return
	}

	response := listPaintingsResponse{
		Paintings: make([]paintingResponse, 0, len(paintings)),
		Total:     total,
	}
	for _, p := range paintings {
		response.Paintings = append(response.Paintings, toPaintingResponse(p))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *PaintingHandler) lookup(w http.ResponseWriter, id string) (*store.Painting, bool) {
	p, err := h.store.Paintings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Painting not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get painting")
		return nil, false
	}
	return p, true
}

// get handles GET /api/paintings/{id}.
func (h *PaintingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toPaintingResponse(p))
}

// image handles GET /api/paintings/{id}/image and serves the saved file.
func (h *PaintingHandler) image(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := h.lookup(w, id)
	if !ok {
		return
	}
	if _, err := os.Stat(p.Path); err != nil {
		writeError(w, http.StatusGone, "Painting file is missing")
		return
	}
	http.ServeFile(w, r, p.Path)
}

// delete handles DELETE /api/paintings/{id}. The file is removed with the record.
func (h *PaintingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	p, ok := h.lookup(w, id)
	if !ok {
		return
	}
	if err := h.store.Paintings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Painting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete painting")
		return
	}
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		writeError(w, http.StatusInternalServerError, "Failed to delete painting file")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
