// Package detector calls the external pose detection API with uploaded
// videos and decodes its prediction documents.
package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"github.com/posetrace/posetrace/pose"
)

// Client talks to the pose detection API over HTTP.
type Client struct {
	url    string
	httpc  *http.Client
	logger golog.Logger
}

// NewClient returns a client for the API at url. The timeout bounds the
// whole request including the upload and the inference time.
func NewClient(url string, timeout time.Duration, logger golog.Logger) *Client {
	return &Client{
		url:    url,
		httpc:  &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// DetectVideo uploads the video at path as a multipart form and returns
// the decoded prediction document. The video streams from disk rather
// than loading into memory.
func (c *Client) DetectVideo(ctx context.Context, path string) (*pose.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read video for detection")
	}
	defer viamutils.UncheckedErrorFunc(f.Close)

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	viamutils.PanicCapturingGo(func() {
		formErr := func() error {
			header := textproto.MIMEHeader{}
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="video"; filename=%q`, filepath.Base(path)))
			header.Set("Content-Type", "video/mp4")
			part, err := mw.CreatePart(header)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			return mw.Close()
		}()
		viamutils.UncheckedErrorFunc(func() error {
			return pw.CloseWithError(formErr)
		})
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, pr)
	if err != nil {
		return nil, errors.Wrap(err, "building detection request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	c.logger.Infow("sending video to pose detection api", "url", c.url, "video", filepath.Base(path))
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "pose api request to %q failed", c.url)
	}
	defer viamutils.UncheckedErrorFunc(resp.Body.Close)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("pose api returned status %d", resp.StatusCode)
	}

	var doc pose.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "malformed pose api response")
	}
	return &doc, nil
}
