// Package videoio streams video frames through ffmpeg subprocesses. A
// Reader decodes a file into raw RGBA frames over a pipe; a Writer feeds
// raw RGBA frames back into an encoder. Frame order is the codec's order
// and nothing is ever reordered or dropped in transit.
package videoio

import (
	"fmt"
	"image"
	"image/draw"
)

// Info describes a video stream.
type Info struct {
	Width   int
	Height  int
	RateNum int
	RateDen int
}

// FPS returns the frame rate as a float.
func (i Info) FPS() float64 {
	if i.RateDen == 0 {
		return 0
	}
	return float64(i.RateNum) / float64(i.RateDen)
}

// Rate returns the frame rate in ffmpeg's num/den form.
func (i Info) Rate() string {
	return fmt.Sprintf("%d/%d", i.RateNum, i.RateDen)
}

// AsRGBA returns img as packed RGBA pixels, converting only when the
// underlying type or layout requires it.
func AsRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok &&
		rgba.Bounds().Min == (image.Point{}) &&
		rgba.Stride == rgba.Bounds().Dx()*4 {
		return rgba
	}
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out
}
