// Package web provides the HTTP API for uploading throw videos and
// retrieving their pose artifacts.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"goji.io"
	"goji.io/pat"

	"github.com/posetrace/posetrace/analysis"
	"github.com/posetrace/posetrace/config"
	"github.com/posetrace/posetrace/history"
	"github.com/posetrace/posetrace/pose"
	"github.com/posetrace/posetrace/utils"
)

// PoseDetector finds poses in a video on disk.
type PoseDetector interface {
	DetectVideo(ctx context.Context, path string) (*pose.Document, error)
}

// VideoRenderer writes a copy of a video with pose overlays burned in.
type VideoRenderer interface {
	RenderVideo(ctx context.Context, srcPath string, doc *pose.Document, outDir string) (string, error)
}

// Server serves the annotation API plus the static tree of uploaded and
// rendered videos.
type Server struct {
	cfg      *config.Config
	detector PoseDetector
	renderer VideoRenderer
	history  *history.Store
	logger   golog.Logger
}

// New returns a server wired to the given collaborators.
func New(
	cfg *config.Config,
	detector PoseDetector,
	renderer VideoRenderer,
	hist *history.Store,
	logger golog.Logger,
) *Server {
	return &Server{
		cfg:      cfg,
		detector: detector,
		renderer: renderer,
		history:  hist,
		logger:   logger,
	}
}

// Handler returns the root HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Post("/upload"), s.handleUpload)
	mux.HandleFunc(pat.Get("/history"), s.handleHistory)
	mux.HandleFunc(pat.Get("/analysis/:video_id"), s.handleAnalysis)
	mux.HandleFunc(pat.Get("/predict/:video_id"), s.handlePredict)
	mux.Handle(pat.Get("/static/*"), http.StripPrefix("/static", http.FileServer(http.Dir(s.cfg.StaticDir))))
	return cors.AllowAll().Handler(mux)
}

type historyResponse struct {
	History []history.Entry `json:"history"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List()
	if err != nil {
		s.logger.Errorw("cannot read history", "error", err)
		s.writeError(w, http.StatusInternalServerError, "cannot read history")
		return
	}
	s.writeJSON(w, http.StatusOK, historyResponse{History: entries})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.documentFor(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, analysis.Analyze(doc))
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.documentFor(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, analysis.Predict(analysis.Analyze(doc)))
}

// documentFor loads the stored pose document for the request's video id,
// writing a 404 if there is none.
func (s *Server) documentFor(w http.ResponseWriter, r *http.Request) (*pose.Document, bool) {
	videoID := pat.Param(r, "video_id")
	doc, err := s.loadDocument(videoID)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Errorw("cannot load pose document", "video_id", videoID, "error", err)
		}
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("no pose data for video %q", videoID))
		return nil, false
	}
	return doc, true
}

func (s *Server) loadDocument(videoID string) (*pose.Document, error) {
	// The id comes straight from the URL, so it has to be path-checked.
	docPath, err := utils.SafeJoinDir(s.cfg.PoseDir(), videoID+".json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(docPath)
	if err != nil {
		return nil, err
	}
	doc := &pose.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.Wrapf(err, "parsing pose document for %q", videoID)
	}
	return doc, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Debugw("cannot write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]interface{}{"error": true, "message": msg})
}
