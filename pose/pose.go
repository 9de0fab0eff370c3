// Package pose defines the prediction document model emitted by the pose
// detection API, along with the COCO keypoint topology used to interpret it.
package pose

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Point is a 2D pixel coordinate. The detection API encodes points as
// two-element arrays, so decoding is positional rather than keyed.
type Point struct {
	X float64
	Y float64
}

// UnmarshalJSON decodes a point from its [x, y] wire form.
func (p *Point) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return err
	}
	if len(coords) != 2 {
		return errors.Errorf("expected 2 coordinates, got %d", len(coords))
	}
	p.X = coords[0]
	p.Y = coords[1]
	return nil
}

// MarshalJSON encodes the point back into its [x, y] wire form.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{p.X, p.Y})
}

// Keypoint is a located joint together with its detection confidence.
type Keypoint struct {
	X     float64
	Y     float64
	Score float64
}

// Person is one detected person within a frame.
type Person struct {
	Keypoints []Point   `json:"keypoints"`
	Scores    []float64 `json:"keypoint_scores"`
}

// Landmarks pairs each keypoint with its score. A person with no keypoints
// or no scores at all has nothing drawable and yields nil. A score list
// shorter than the keypoint list is padded with zeros; extra scores are
// ignored.
func (p Person) Landmarks() []Keypoint {
	if len(p.Keypoints) == 0 || len(p.Scores) == 0 {
		return nil
	}
	lms := make([]Keypoint, len(p.Keypoints))
	for i, pt := range p.Keypoints {
		var score float64
		if i < len(p.Scores) {
			score = p.Scores[i]
		}
		lms[i] = Keypoint{X: pt.X, Y: pt.Y, Score: score}
	}
	return lms
}
