// Package render reassembles videos with pose overlays drawn onto their
// frames.
package render

import (
	"context"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/posetrace/posetrace/overlay"
	"github.com/posetrace/posetrace/pose"
	"github.com/posetrace/posetrace/utils"
	"github.com/posetrace/posetrace/videoio"
)

const (
	renderedSuffix = "_pose_rendered.mp4"
	posterWidth    = 320
)

// FrameSource yields decoded frames in stream order.
type FrameSource interface {
	Next(ctx context.Context) (*image.RGBA, error)
	Close() error
}

// FrameSink consumes frames in the order written.
type FrameSink interface {
	WriteFrame(ctx context.Context, img *image.RGBA) error
	Close() error
}

// Renderer draws pose overlays onto videos and re-encodes them.
type Renderer struct {
	painter *overlay.Painter
	logger  golog.Logger
}

// NewRenderer returns a renderer drawing the COCO skeleton with the
// given options.
func NewRenderer(opts overlay.Options, logger golog.Logger) *Renderer {
	return &Renderer{
		painter: overlay.NewPainter(pose.DefaultTopology(), opts),
		logger:  logger,
	}
}

// RenderStream copies frames from src to sink, drawing each frame's
// indexed predictions along the way, and returns the number of frames
// written. Frames without a record in doc pass through untouched. A
// clean end of the source stream stops the copy without error; any
// other source or sink failure stops it with one.
func (r *Renderer) RenderStream(ctx context.Context, src FrameSource, doc *pose.Document, sink FrameSink) (int, error) {
	byIdx := doc.FrameIndex()
	var idx int
	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return idx, nil
		}
		if err != nil {
			return idx, err
		}
		out := frame
		if fr, ok := byIdx[idx]; ok {
			out = videoio.AsRGBA(r.painter.Draw(frame, fr.Persons()))
		}
		if err := sink.WriteFrame(ctx, out); err != nil {
			return idx, err
		}
		idx++
	}
}

// RenderVideo renders the video at srcPath with doc's overlays into a
// new H.264 MP4 under outDir and returns its path. The output keeps the
// source dimensions and frame rate. On any failure the partial output
// is removed before the error returns.
func (r *Renderer) RenderVideo(ctx context.Context, srcPath string, doc *pose.Document, outDir string) (string, error) {
	src, err := videoio.NewReader(ctx, srcPath, r.logger)
	if err != nil {
		return "", err
	}
	outPath := filepath.Join(outDir, utils.ShortID()+renderedSuffix)
	dst, err := videoio.NewWriter(ctx, outPath, src.Info(), r.logger)
	if err != nil {
		return "", multierr.Combine(err, src.Close())
	}

	capture := &posterSink{FrameSink: dst}
	frames, streamErr := r.RenderStream(ctx, src, doc, capture)
	if err := multierr.Combine(streamErr, src.Close(), dst.Close()); err != nil {
		utils.RemoveFileNoError(outPath)
		return "", errors.Wrapf(err, "rendering %q", srcPath)
	}

	if capture.first != nil {
		r.writePoster(outPath, capture.first)
	}
	r.logger.Infow("rendered video with pose overlay", "source", srcPath, "output", outPath, "frames", frames)
	return outPath, nil
}

// posterSink keeps the first frame written so a thumbnail can be saved
// next to the finished video.
type posterSink struct {
	FrameSink
	first *image.RGBA
}

func (p *posterSink) WriteFrame(ctx context.Context, img *image.RGBA) error {
	if p.first == nil {
		p.first = img
	}
	return p.FrameSink.WriteFrame(ctx, img)
}

func (r *Renderer) writePoster(videoPath string, frame *image.RGBA) {
	posterPath := strings.TrimSuffix(videoPath, ".mp4") + ".jpg"
	poster := imaging.Resize(frame, posterWidth, 0, imaging.Lanczos)
	if err := imaging.Save(poster, posterPath); err != nil {
		r.logger.Debugw("could not write poster image", "path", posterPath, "error", err)
	}
}
