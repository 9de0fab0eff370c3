package web

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"github.com/posetrace/posetrace/analysis"
	"github.com/posetrace/posetrace/pose"
	"github.com/posetrace/posetrace/utils"
)

// maxUploadBytes caps uploads at 512MiB, enough for several minutes of
// phone video.
const maxUploadBytes = 512 << 20

type uploadResponse struct {
	VideoID           string         `json:"video_id"`
	OriginalVideoURL  string         `json:"original_video_url"`
	ProcessedVideoURL string         `json:"processed_video_url"`
	PoseData          *pose.Document `json:"pose_data"`
}

// handleUpload runs the whole pipeline for one uploaded video: save it,
// send it out for pose detection, burn the overlay into a rendered copy,
// and record the outcome. Detection and render failures degrade the
// response rather than failing the upload.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("video")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "video exceeds the upload size limit")
			return
		}
		s.writeError(w, http.StatusBadRequest, "request has no video file")
		return
	}
	defer viamutils.UncheckedErrorFunc(file.Close)

	videoID := utils.ShortID()
	ext := filepath.Ext(header.Filename)
	if ext == "" {
		ext = ".mp4"
	}
	name := videoID + ext
	savedPath := filepath.Join(s.cfg.UploadDir(), name)
	if err := saveStream(savedPath, file); err != nil {
		s.logger.Errorw("cannot save upload", "filename", header.Filename, "error", err)
		s.writeError(w, http.StatusInternalServerError, "cannot save uploaded video")
		return
	}
	s.logger.Infow("video uploaded", "video_id", videoID, "filename", header.Filename)

	doc, err := s.detector.DetectVideo(ctx, savedPath)
	if err != nil {
		s.logger.Errorw("pose detection failed", "video_id", videoID, "error", err)
		doc = pose.ErrorDocument(err)
	}

	// Stored next to the video so analysis and prediction can be served
	// later without holding anything in memory.
	if err := s.storeDocument(videoID, doc); err != nil {
		s.logger.Errorw("cannot store pose document", "video_id", videoID, "error", err)
	}

	originalURL := s.cfg.UploadURL(name)
	processedURL := originalURL
	if outPath, err := s.renderer.RenderVideo(ctx, savedPath, doc, s.cfg.ProcessedDir()); err != nil {
		// The dashboard still gets a playable video, just without the overlay.
		s.logger.Errorw("render failed, falling back to original video", "video_id", videoID, "error", err)
	} else {
		processedURL = s.cfg.ProcessedURL(filepath.Base(outPath))
	}

	verdict := analysis.Predict(analysis.Analyze(doc))
	if err := s.history.Append(name, verdict.Result); err != nil {
		s.logger.Errorw("cannot append history", "video_id", videoID, "error", err)
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		VideoID:           videoID,
		OriginalVideoURL:  originalURL,
		ProcessedVideoURL: processedURL,
		PoseData:          doc,
	})
}

func (s *Server) storeDocument(videoID string, doc *pose.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.cfg.PoseDir(), videoID+".json"), data, 0o644)
}

func saveStream(path string, src io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", path)
	}
	if _, err := io.Copy(f, src); err != nil {
		viamutils.UncheckedErrorFunc(f.Close)
		utils.RemoveFileNoError(path)
		return errors.Wrapf(err, "cannot write %q", path)
	}
	return f.Close()
}
