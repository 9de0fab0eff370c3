// Package overlay draws pose skeletons onto video frames.
package overlay

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/posetrace/posetrace/pose"
)

// Green joints, yellow bones; the look every downstream consumer of the
// processed videos expects.
var (
	jointColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	boneColor  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Options control how skeletons are drawn.
type Options struct {
	// MinScore is the strict lower bound a keypoint score must exceed to
	// be drawn. A bone needs both of its endpoints to pass.
	MinScore float64
	// PointRadius is the joint circle radius in pixels.
	PointRadius float64
	// LineThickness is the bone stroke width in pixels.
	LineThickness float64
	// Labels draws joint names next to passing keypoints.
	Labels bool
}

// DefaultOptions returns the service's standard drawing parameters.
func DefaultOptions() Options {
	return Options{
		MinScore:      0.5,
		PointRadius:   5,
		LineThickness: 2,
	}
}

// Painter draws skeletons for a fixed topology.
type Painter struct {
	topo pose.Topology
	opts Options
}

// NewPainter returns a painter using the given topology and options.
// Options are taken as given; see DefaultOptions for the usual values.
func NewPainter(topo pose.Topology, opts Options) *Painter {
	return &Painter{topo: topo, opts: opts}
}

// Draw renders every drawable person onto a copy of src and returns the
// copy. The source image is never mutated. When no person has anything
// drawable, src itself is returned untouched.
func (p *Painter) Draw(src image.Image, persons []pose.Person) image.Image {
	drawable := make([][]pose.Keypoint, 0, len(persons))
	for _, person := range persons {
		if lms := person.Landmarks(); len(lms) > 0 {
			drawable = append(drawable, lms)
		}
	}
	if len(drawable) == 0 {
		return src
	}

	dc := gg.NewContextForImage(src)
	for _, lms := range drawable {
		p.drawPerson(dc, lms)
	}
	return dc.Image()
}

func (p *Painter) drawPerson(dc *gg.Context, lms []pose.Keypoint) {
	for i, lm := range lms {
		if lm.Score <= p.opts.MinScore {
			continue
		}
		dc.SetColor(jointColor)
		dc.DrawCircle(lm.X, lm.Y, p.opts.PointRadius)
		dc.Fill()
		if p.opts.Labels && i < len(p.topo.Names) {
			p.drawLabel(dc, p.topo.Names[i], lm)
		}
	}
	for _, bone := range p.topo.Bones {
		a, b := bone[0], bone[1]
		if a >= len(lms) || b >= len(lms) {
			continue
		}
		if lms[a].Score <= p.opts.MinScore || lms[b].Score <= p.opts.MinScore {
			continue
		}
		dc.SetColor(boneColor)
		dc.DrawLine(lms[a].X, lms[a].Y, lms[b].X, lms[b].Y)
		dc.SetLineWidth(p.opts.LineThickness)
		dc.Stroke()
	}
}
