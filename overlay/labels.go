package overlay

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/posetrace/posetrace/pose"
)

var labelFont *truetype.Font

// init sets up the font used for joint labels.
func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

const labelSize = 12

var labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func (p *Painter) drawLabel(dc *gg.Context, name string, lm pose.Keypoint) {
	dc.SetFontFace(truetype.NewFace(labelFont, &truetype.Options{Size: labelSize}))
	dc.SetColor(labelColor)
	dc.DrawString(name, lm.X+p.opts.PointRadius+2, lm.Y)
}
