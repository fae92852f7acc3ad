package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/philipparndt/goslice/internal/transport"
	"github.com/philipparndt/goslice/internal/viewport"
)

//go:embed static/*
var staticFS embed.FS

// errUnknownEvent is returned for events the controller does not handle
var errUnknownEvent = errors.New("unknown event")

func staticHandler() http.Handler {
	fsys, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(fsys)))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	id := viewport.ID(strings.TrimSuffix(chi.URLParam(r, "viewer"), ".png"))
	surface, ok := s.ctrl.Surface(id)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown viewer %q", id), http.StatusNotFound)
		return
	}

	data, err := surface.PNG()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	fields, err := s.ctrl.Fields(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}

type loadResponse struct {
	Source     string `json:"source"`
	Generation uint64 `json:"generation"`
}

// handleLoad accepts a dropped file as the request body, or a URL in the
// "url" query parameter
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if u := r.URL.Query().Get("url"); u != "" {
		if !transport.IsURL(u) {
			http.Error(w, "url must be http or https", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusAccepted, loadResponse{Source: u, Generation: s.ctrl.Load(u)})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty body", http.StatusBadRequest)
		return
	}

	name := r.Header.Get("X-Filename")
	if name == "" {
		name = r.URL.Query().Get("name")
	}
	if name == "" {
		name = "upload.stl"
	}
	name = path.Base(name)

	writeJSON(w, http.StatusAccepted, loadResponse{Source: name, Generation: s.ctrl.LoadBytes(name, data)})
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev Event
	if err := json.NewDecoder(io.LimitReader(r.Body, maxInbound)).Decode(&ev); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.dispatch(r.Context(), ev); err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, errUnknownEvent) || errors.Is(err, viewport.ErrUnknownViewport) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dispatch applies an event from the page
func (s *Server) dispatch(ctx context.Context, ev Event) error {
	switch ev.Type {
	case "position":
		return s.ctrl.PositionInput(ctx, ev.Value)
	case "layer":
		return s.ctrl.LayerInput(ctx, ev.Value)
	case "orbit":
		return s.ctrl.Orbit(ctx, viewport.ID(ev.Viewer), ev.Elevation, ev.Azimuth, ev.Zoom)
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, ev.Type)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
