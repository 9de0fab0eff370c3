package videoio

import (
	"context"
	"image"
	"io"
	"os/exec"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	viamutils "go.viam.com/utils"
)

// Reader decodes a video file into a sequence of RGBA frames via an
// ffmpeg subprocess. It is not safe for concurrent use.
type Reader struct {
	path    string
	info    Info
	pipe    *io.PipeReader
	cancel  func()
	workers sync.WaitGroup
}

// NewReader probes the file at path and starts decoding it. Canceling
// ctx aborts the decode.
func NewReader(ctx context.Context, path string, logger golog.Logger) (*Reader, error) {
	// make sure ffmpeg is in the path before doing anything else
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, &SourceOpenError{Path: path, Cause: err}
	}
	info, err := Probe(path)
	if err != nil {
		return nil, &SourceOpenError{Path: path, Cause: err}
	}
	logger.Debugw("starting video decoder", "path", path, "width", info.Width, "height", info.Height, "rate", info.Rate())

	cancelableCtx, cancel := context.WithCancel(ctx)
	r := &Reader{path: path, info: info, cancel: cancel}

	in, out := io.Pipe()
	r.pipe = in
	r.workers.Add(1)
	viamutils.ManagedGo(func() {
		stream := ffmpeg.Input(path)
		stream = stream.Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgba"})
		stream.Context = cancelableCtx
		runErr := stream.WithOutput(out).Run()
		// a nil runErr closes the pipe cleanly so Next sees io.EOF at
		// the final frame boundary
		viamutils.UncheckedErrorFunc(func() error {
			return out.CloseWithError(runErr)
		})
	}, func() {
		cancel()
		r.workers.Done()
	})
	return r, nil
}

// Info returns the probed stream parameters.
func (r *Reader) Info() Info {
	return r.info
}

// Next returns the next decoded frame. io.EOF marks the clean end of the
// stream; any other error means the decode failed partway.
func (r *Reader) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.info.Width, r.info.Height))
	if _, err := io.ReadFull(r.pipe, img.Pix); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, errors.Wrapf(err, "decoding %q", r.path)
	}
	return img, nil
}

// Close aborts the decode and releases the subprocess.
func (r *Reader) Close() error {
	r.cancel()
	viamutils.UncheckedErrorFunc(r.pipe.Close)
	r.workers.Wait()
	return nil
}
