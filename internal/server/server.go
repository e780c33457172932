package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/go-scripts/extract/internal/extractor"
	"github.com/go-scripts/extract/internal/types"
)

// Server is the thin HTTP boundary between the browser control page and the
// extraction pipeline. Every route maps one-to-one onto a controller call.
type Server struct {
	ctrl   *extractor.Controller
	router *mux.Router
}

// New creates a Server wired to the given controller.
func New(ctrl *extractor.Controller) *Server {
	s := &Server{
		ctrl:   ctrl,
		router: mux.NewRouter(),
	}

	s.router.HandleFunc("/start", s.handleStart).Methods(http.MethodPost)
	s.router.HandleFunc("/pause", s.handlePause).Methods(http.MethodPost)
	s.router.HandleFunc("/resume", s.handleResume).Methods(http.MethodPost)
	s.router.HandleFunc("/stop", s.handleStop).Methods(http.MethodPost)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/children", s.handleChildren).Methods(http.MethodGet)
	s.router.HandleFunc("/download", s.handleDownload).Methods(http.MethodGet)

	return s
}

// Router exposes the handler for mounting or testing.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks serving the control API on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Info("control API listening", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

type startRequest struct {
	Sitemaps     []string `json:"sitemaps"`
	OutputFormat string   `json:"output_format"`
	OutputDir    string   `json:"output_dir"`
	Workers      int      `json:"workers"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	cfg := types.RunConfig{
		SitemapURLs:  req.Sitemaps,
		OutputFormat: req.OutputFormat,
		OutputDir:    req.OutputDir,
		WorkerCount:  req.Workers,
	}

	if err := s.ctrl.Start(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Pause()
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Resume()
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	parent := r.URL.Query().Get("url")
	if parent == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no url provided"))
		return
	}

	children, err := s.ctrl.ListChildSitemaps(parent)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"parent":   parent,
		"children": children,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("file")

	data, err := s.ctrl.ProducedFile(name)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, fmt.Errorf("file %q not found", name))
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Error("request failed", "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
