package analysis

import (
	"encoding/json"
	"testing"

	"go.viam.com/test"

	"github.com/posetrace/posetrace/pose"
)

// standingPerson has all 17 joints of a person standing upright facing
// the camera, scored well above threshold. Both arms hang straight, so
// both elbow angles are 180 degrees.
func standingPerson() pose.Person {
	pts := make([]pose.Point, pose.NumJoints)
	scores := make([]float64, pose.NumJoints)
	set := func(j int, x, y float64) {
		pts[j] = pose.Point{X: x, Y: y}
		scores[j] = 0.95
	}
	set(pose.Nose, 50, 10)
	set(pose.LeftEye, 48, 8)
	set(pose.RightEye, 52, 8)
	set(pose.LeftEar, 46, 9)
	set(pose.RightEar, 54, 9)
	set(pose.LeftShoulder, 40, 25)
	set(pose.RightShoulder, 60, 25)
	set(pose.LeftElbow, 38, 40)
	set(pose.RightElbow, 62, 40)
	set(pose.LeftWrist, 36, 55)
	set(pose.RightWrist, 64, 55)
	set(pose.LeftHip, 44, 55)
	set(pose.RightHip, 56, 55)
	set(pose.LeftKnee, 42, 75)
	set(pose.RightKnee, 58, 75)
	set(pose.LeftAnkle, 40, 95)
	set(pose.RightAnkle, 60, 95)
	return pose.Person{Keypoints: pts, Scores: scores}
}

func docWithFrames(t *testing.T, frames ...[]pose.Person) *pose.Document {
	t.Helper()
	doc := &pose.Document{}
	for i, persons := range frames {
		raw, err := json.Marshal(persons)
		test.That(t, err, test.ShouldBeNil)
		doc.Frames = append(doc.Frames, pose.FrameRecord{FrameIdx: i, Predictions: raw})
	}
	return doc
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	test.That(t, Analyze(nil), test.ShouldResemble, Metrics{})
	test.That(t, Analyze(&pose.Document{}), test.ShouldResemble, Metrics{})
}

func TestAnalyzeStandingPerson(t *testing.T) {
	doc := docWithFrames(t, []pose.Person{standingPerson()})
	m := Analyze(doc)

	test.That(t, m.Frames, test.ShouldEqual, 1)
	// hip center (50,55), ankles (40,95) and (60,95)
	test.That(t, m.StrideAngle, test.ShouldAlmostEqual, 28.07, 0.1)
	// straight arms
	test.That(t, m.ThrowingAngle, test.ShouldAlmostEqual, 180, 0.1)
	test.That(t, m.ArmSymmetry, test.ShouldAlmostEqual, 100, 0.1)
	// left elbow y at release
	test.That(t, m.ElbowHeight, test.ShouldEqual, 40.0)
	// a single frame sweeps no hip rotation
	test.That(t, m.HipRotation, test.ShouldEqual, 0.0)
}

func TestAnalyzeReleaseFrame(t *testing.T) {
	raised := standingPerson()
	raised.Keypoints[pose.RightWrist] = pose.Point{X: 64, Y: 5}

	doc := docWithFrames(t, []pose.Person{standingPerson()}, []pose.Person{raised})
	m := Analyze(doc)

	test.That(t, m.Frames, test.ShouldEqual, 2)
	// the raised right wrist marks release: shoulder (60,25), elbow
	// (62,40), wrist (64,5)
	test.That(t, m.ThrowingAngle, test.ShouldAlmostEqual, 10.87, 0.1)
	test.That(t, m.ElbowHeight, test.ShouldEqual, 40.0)
}

func TestAnalyzeHipRotation(t *testing.T) {
	rotated := standingPerson()
	rotated.Keypoints[pose.RightHip] = pose.Point{X: 56, Y: 65}

	doc := docWithFrames(t, []pose.Person{standingPerson()}, []pose.Person{rotated})
	m := Analyze(doc)
	// hip line goes from level to atan2(10, 12)
	test.That(t, m.HipRotation, test.ShouldAlmostEqual, 39.81, 0.1)
}

func TestAnalyzeArmAsymmetry(t *testing.T) {
	bent := standingPerson()
	bent.Keypoints[pose.RightWrist] = pose.Point{X: 77, Y: 40}

	doc := docWithFrames(t, []pose.Person{bent})
	m := Analyze(doc)
	// left arm straight at 180, right arm bent to ~97.6
	test.That(t, m.ArmSymmetry, test.ShouldAlmostEqual, 17.6, 0.2)
}

func TestAnalyzeSkipsLowConfidence(t *testing.T) {
	shaky := standingPerson()
	for i := range shaky.Scores {
		shaky.Scores[i] = 0.3
	}
	doc := docWithFrames(t, []pose.Person{shaky})
	test.That(t, Analyze(doc), test.ShouldResemble, Metrics{})
}

func TestAnalyzeSkipsPartialPersons(t *testing.T) {
	faceOnly := pose.Person{
		Keypoints: []pose.Point{{X: 50, Y: 10}, {X: 48, Y: 8}, {X: 52, Y: 8}},
		Scores:    []float64{0.9, 0.9, 0.9},
	}
	doc := docWithFrames(t, []pose.Person{faceOnly})
	test.That(t, Analyze(doc), test.ShouldResemble, Metrics{})
}

func TestAnalyzeFallsBackToFirstUsablePerson(t *testing.T) {
	doc := docWithFrames(t, []pose.Person{{}, standingPerson()})
	m := Analyze(doc)
	test.That(t, m.Frames, test.ShouldEqual, 1)
	test.That(t, m.ArmSymmetry, test.ShouldAlmostEqual, 100, 0.1)
}

func TestPredict(t *testing.T) {
	t.Run("unknown without frames", func(t *testing.T) {
		v := Predict(Metrics{})
		test.That(t, v.Result, test.ShouldEqual, "Unknown")
		test.That(t, v.Confidence, test.ShouldEqual, 0.0)
	})

	t.Run("good form", func(t *testing.T) {
		v := Predict(Metrics{
			StrideAngle:   45,
			ThrowingAngle: 100,
			ArmSymmetry:   85,
			HipRotation:   30,
			Frames:        10,
		})
		test.That(t, v.Result, test.ShouldEqual, "Good")
		test.That(t, v.Confidence, test.ShouldAlmostEqual, 0.99, 0.001)
	})

	t.Run("borderline leans good", func(t *testing.T) {
		v := Predict(Metrics{
			StrideAngle:   45,
			ThrowingAngle: 100,
			Frames:        5,
		})
		test.That(t, v.Result, test.ShouldEqual, "Good")
		test.That(t, v.Confidence, test.ShouldAlmostEqual, 0.5, 0.001)
	})

	t.Run("bad form", func(t *testing.T) {
		v := Predict(Metrics{Frames: 3})
		test.That(t, v.Result, test.ShouldEqual, "Bad")
		test.That(t, v.Confidence, test.ShouldAlmostEqual, 0.99, 0.001)
	})
}
