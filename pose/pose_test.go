package pose

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"
)

func TestPointUnmarshal(t *testing.T) {
	var pt Point
	test.That(t, json.Unmarshal([]byte(`[12.5, 40]`), &pt), test.ShouldBeNil)
	test.That(t, pt.X, test.ShouldEqual, 12.5)
	test.That(t, pt.Y, test.ShouldEqual, 40.0)

	err := json.Unmarshal([]byte(`[1, 2, 3]`), &pt)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected 2 coordinates")

	test.That(t, json.Unmarshal([]byte(`{"x": 1}`), &pt), test.ShouldNotBeNil)
}

func TestPointMarshalRoundTrip(t *testing.T) {
	out, err := json.Marshal(Point{X: 3, Y: 7.25})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `[3,7.25]`)
}

func TestPersonDecode(t *testing.T) {
	var p Person
	data := []byte(`{"keypoints": [[100, 200], [110, 210]], "keypoint_scores": [0.9, 0.3]}`)
	test.That(t, json.Unmarshal(data, &p), test.ShouldBeNil)
	test.That(t, p.Keypoints, test.ShouldHaveLength, 2)
	test.That(t, p.Keypoints[1], test.ShouldResemble, Point{X: 110, Y: 210})
	test.That(t, p.Scores, test.ShouldResemble, []float64{0.9, 0.3})
}

func TestPersonLandmarks(t *testing.T) {
	t.Run("pairs keypoints with scores", func(t *testing.T) {
		p := Person{
			Keypoints: []Point{{X: 1, Y: 2}, {X: 3, Y: 4}},
			Scores:    []float64{0.8, 0.2},
		}
		test.That(t, p.Landmarks(), test.ShouldResemble, []Keypoint{
			{X: 1, Y: 2, Score: 0.8},
			{X: 3, Y: 4, Score: 0.2},
		})
	})

	t.Run("pads missing scores with zeros", func(t *testing.T) {
		p := Person{
			Keypoints: []Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}},
			Scores:    []float64{0.8},
		}
		lms := p.Landmarks()
		test.That(t, lms, test.ShouldHaveLength, 3)
		test.That(t, lms[1].Score, test.ShouldEqual, 0.0)
		test.That(t, lms[2].Score, test.ShouldEqual, 0.0)
	})

	t.Run("ignores extra scores", func(t *testing.T) {
		p := Person{
			Keypoints: []Point{{X: 1, Y: 2}},
			Scores:    []float64{0.8, 0.9, 0.7},
		}
		test.That(t, p.Landmarks(), test.ShouldHaveLength, 1)
	})

	t.Run("nothing drawable without keypoints or scores", func(t *testing.T) {
		test.That(t, Person{Scores: []float64{0.9}}.Landmarks(), test.ShouldBeNil)
		test.That(t, Person{Keypoints: []Point{{X: 1, Y: 2}}}.Landmarks(), test.ShouldBeNil)
		test.That(t, Person{}.Landmarks(), test.ShouldBeNil)
	})
}
