package videoio

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	viamutils "go.viam.com/utils"
)

// Writer encodes a sequence of RGBA frames into an H.264 MP4 file via an
// ffmpeg subprocess. Frames are encoded in the order written. It is not
// safe for concurrent use.
type Writer struct {
	path    string
	info    Info
	pipe    *io.PipeWriter
	runErr  atomic.Value
	started bool
	workers sync.WaitGroup
}

// NewWriter starts an encoder writing to path with the given stream
// parameters. Canceling ctx aborts the encode; Close must still be
// called.
func NewWriter(ctx context.Context, path string, info Info, logger golog.Logger) (*Writer, error) {
	if info.Width <= 0 || info.Height <= 0 || info.RateNum <= 0 || info.RateDen <= 0 {
		return nil, &EncoderOpenError{
			Path:  path,
			Cause: errors.Errorf("bad stream parameters %dx%d @ %s", info.Width, info.Height, info.Rate()),
		}
	}
	// make sure ffmpeg is in the path before doing anything else
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, &EncoderOpenError{Path: path, Cause: err}
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		return nil, &EncoderOpenError{Path: path, Cause: err}
	}
	logger.Debugw("starting video encoder", "path", path, "width", info.Width, "height", info.Height, "rate", info.Rate())

	cancelableCtx, cancel := context.WithCancel(ctx)
	w := &Writer{path: path, info: info}

	in, out := io.Pipe()
	w.pipe = out
	w.workers.Add(1)
	viamutils.ManagedGo(func() {
		stream := ffmpeg.Input("pipe:", ffmpeg.KwArgs{
			"format":    "rawvideo",
			"pix_fmt":   "rgba",
			"s":         fmt.Sprintf("%dx%d", info.Width, info.Height),
			"framerate": info.Rate(),
		})
		stream = stream.Output(path, ffmpeg.KwArgs{"vcodec": "libx264", "pix_fmt": "yuv420p"})
		stream.Context = cancelableCtx
		runErr := stream.OverWriteOutput().WithInput(in).Run()
		if runErr != nil {
			w.runErr.Store(runErr)
		}
		// unblock any pending write; a nil runErr surfaces as
		// io.ErrClosedPipe for writes after the encoder finished
		viamutils.UncheckedErrorFunc(func() error {
			return in.CloseWithError(runErr)
		})
	}, func() {
		cancel()
		w.workers.Done()
	})
	return w, nil
}

// Info returns the stream parameters the writer encodes with.
func (w *Writer) Info() Info {
	return w.info
}

// WriteFrame appends one frame to the stream. The frame must match the
// writer's dimensions exactly.
func (w *Writer) WriteFrame(ctx context.Context, img *image.RGBA) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bounds := img.Bounds()
	if bounds.Dx() != w.info.Width || bounds.Dy() != w.info.Height {
		return errors.Errorf("frame is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), w.info.Width, w.info.Height)
	}
	if img.Stride != bounds.Dx()*4 {
		return errors.Errorf("frame stride %d does not match width %d", img.Stride, bounds.Dx())
	}
	if _, err := w.pipe.Write(img.Pix[:w.info.Height*img.Stride]); err != nil {
		cause := err
		if runErr, ok := w.runErr.Load().(error); ok {
			cause = runErr
		}
		if !w.started {
			return &EncoderOpenError{Path: w.path, Cause: cause}
		}
		return errors.Wrapf(cause, "encoding %q", w.path)
	}
	w.started = true
	return nil
}

// Close flushes the stream and waits for the encoder to finalize the
// file. It must be called for the output to be playable.
func (w *Writer) Close() error {
	viamutils.UncheckedErrorFunc(w.pipe.Close)
	w.workers.Wait()
	if runErr, ok := w.runErr.Load().(error); ok {
		return errors.Wrapf(runErr, "finalizing %q", w.path)
	}
	return nil
}
