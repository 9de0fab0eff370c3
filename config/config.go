// Package config defines the structures to configure the annotation service.
package config

import (
	"net"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/posetrace/posetrace/overlay"
)

// Defaults applied by Ensure when the corresponding fields are unset.
const (
	DefaultBindAddress        = ":8000"
	DefaultStaticDir          = "static"
	DefaultHistoryFile        = "history.json"
	DefaultPoseTimeoutSeconds = 300
)

// Subdirectories of the static tree. Uploads, rendered videos, and stored
// pose documents each get their own so the static file server can expose
// all three without name collisions.
const (
	uploadSubdir    = "videos"
	processedSubdir = "processed_videos"
	poseSubdir      = "pose"
)

// Config describes the complete configuration for the service.
type Config struct {
	BindAddress string  `json:"bind_address"`
	StaticDir   string  `json:"static_dir"`
	HistoryFile string  `json:"history_file"`
	PoseAPI     PoseAPI `json:"pose_api"`
	Render      Render  `json:"render"`
}

// PoseAPI describes how to reach the external pose detection API.
type PoseAPI struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout returns the request timeout for detection calls. Detection runs
// inference over a whole video, so this is minutes rather than seconds.
func (p PoseAPI) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// Render holds the overlay drawing knobs.
type Render struct {
	MinScore      float64 `json:"min_score"`
	PointRadius   float64 `json:"point_radius"`
	LineThickness float64 `json:"line_thickness"`
	Labels        bool    `json:"labels"`
}

// Options converts the render block into overlay options, substituting
// defaults for unset values.
func (r Render) Options() overlay.Options {
	opts := overlay.DefaultOptions()
	if r.MinScore > 0 {
		opts.MinScore = r.MinScore
	}
	if r.PointRadius > 0 {
		opts.PointRadius = r.PointRadius
	}
	if r.LineThickness > 0 {
		opts.LineThickness = r.LineThickness
	}
	opts.Labels = r.Labels
	return opts
}

// Ensure ensures all parts of the config are valid, filling in defaults
// where fields were left unset.
func (c *Config) Ensure() error {
	if c.BindAddress == "" {
		c.BindAddress = DefaultBindAddress
	}
	if _, _, err := net.SplitHostPort(c.BindAddress); err != nil {
		return utils.NewConfigValidationError("bind_address", err)
	}
	if c.StaticDir == "" {
		c.StaticDir = DefaultStaticDir
	}
	if c.HistoryFile == "" {
		c.HistoryFile = DefaultHistoryFile
	}
	if c.PoseAPI.URL == "" {
		return utils.NewConfigValidationFieldRequiredError("pose_api", "url")
	}
	if c.PoseAPI.TimeoutSeconds < 0 {
		return utils.NewConfigValidationError("pose_api", errors.New("timeout_seconds must not be negative"))
	}
	if c.PoseAPI.TimeoutSeconds == 0 {
		c.PoseAPI.TimeoutSeconds = DefaultPoseTimeoutSeconds
	}
	if c.Render.MinScore < 0 || c.Render.MinScore > 1 {
		return utils.NewConfigValidationError("render", errors.New("min_score must be between 0 and 1"))
	}
	if c.Render.PointRadius < 0 {
		return utils.NewConfigValidationError("render", errors.New("point_radius must not be negative"))
	}
	if c.Render.LineThickness < 0 {
		return utils.NewConfigValidationError("render", errors.New("line_thickness must not be negative"))
	}
	return nil
}

// UploadDir returns the directory uploaded videos are saved to.
func (c *Config) UploadDir() string {
	return filepath.Join(c.StaticDir, uploadSubdir)
}

// ProcessedDir returns the directory rendered videos are written to.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.StaticDir, processedSubdir)
}

// PoseDir returns the directory pose documents are stored in.
func (c *Config) PoseDir() string {
	return filepath.Join(c.StaticDir, poseSubdir)
}

// UploadURL returns the URL path an uploaded video is served at. The
// static tree is always mounted under /static regardless of where
// StaticDir points on disk.
func (c *Config) UploadURL(name string) string {
	return "/static/" + path.Join(uploadSubdir, name)
}

// ProcessedURL returns the URL path a rendered video is served at.
func (c *Config) ProcessedURL(name string) string {
	return "/static/" + path.Join(processedSubdir, name)
}
