// Package analysis derives throwing-motion metrics from pose documents.
// All angles are in degrees and all positions in image pixels.
package analysis

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"

	"github.com/posetrace/posetrace/pose"
	"github.com/posetrace/posetrace/utils"
)

// minScore mirrors the overlay threshold: landmarks at or below it are
// too uncertain to measure.
const minScore = 0.5

// Metrics summarize the throwing motion seen across a document's frames.
type Metrics struct {
	// StrideAngle is the widest leg spread, measured between the two
	// hip-center-to-ankle vectors.
	StrideAngle float64 `json:"stride_angle"`
	// ThrowingAngle is the elbow angle of the throwing arm at release,
	// the frame where that wrist reaches its highest point.
	ThrowingAngle float64 `json:"throwing_angle"`
	// ArmSymmetry scores how closely the two elbow angle series track
	// each other, 100 meaning identical.
	ArmSymmetry float64 `json:"arm_symmetry"`
	// HipRotation is the range the hip line sweeps through.
	HipRotation float64 `json:"hip_rotation"`
	// ElbowHeight is the throwing elbow's position at release, in
	// pixels from the top of the frame.
	ElbowHeight float64 `json:"elbow_height"`
	// Frames counts the frames that contributed to any metric.
	Frames int `json:"frames"`
}

// Analyze measures one person per frame, the first with any landmarks,
// across the document. Landmarks below the confidence threshold are
// skipped, and a document with no usable frames yields zero metrics.
func Analyze(doc *pose.Document) Metrics {
	var m Metrics
	if doc == nil {
		return m
	}
	var (
		strides  []float64
		hipSpans []float64
		leftArm  []float64
		rightArm []float64
		release  releaseState
	)
	for _, fr := range doc.Frames {
		var lms []pose.Keypoint
		for _, person := range fr.Persons() {
			if cand := person.Landmarks(); len(cand) > 0 {
				lms = cand
				break
			}
		}
		if len(lms) == 0 {
			continue
		}
		var contributed bool

		if usable(lms, pose.LeftHip, pose.RightHip, pose.LeftAnkle, pose.RightAnkle) {
			hipX := (lms[pose.LeftHip].X + lms[pose.RightHip].X) / 2
			hipY := (lms[pose.LeftHip].Y + lms[pose.RightHip].Y) / 2
			strides = append(strides, angleBetween(
				lms[pose.LeftAnkle].X-hipX, lms[pose.LeftAnkle].Y-hipY,
				lms[pose.RightAnkle].X-hipX, lms[pose.RightAnkle].Y-hipY,
			))
			contributed = true
		}
		if usable(lms, pose.LeftHip, pose.RightHip) {
			span := utils.RadToDeg(math.Atan2(
				lms[pose.RightHip].Y-lms[pose.LeftHip].Y,
				lms[pose.RightHip].X-lms[pose.LeftHip].X,
			))
			hipSpans = append(hipSpans, span)
			contributed = true
		}
		if usable(lms, pose.LeftShoulder, pose.LeftElbow, pose.LeftWrist) {
			angle := jointAngle(lms[pose.LeftShoulder], lms[pose.LeftElbow], lms[pose.LeftWrist])
			leftArm = append(leftArm, angle)
			release.consider(lms[pose.LeftWrist].Y, angle, lms[pose.LeftElbow].Y)
			contributed = true
		}
		if usable(lms, pose.RightShoulder, pose.RightElbow, pose.RightWrist) {
			angle := jointAngle(lms[pose.RightShoulder], lms[pose.RightElbow], lms[pose.RightWrist])
			rightArm = append(rightArm, angle)
			release.consider(lms[pose.RightWrist].Y, angle, lms[pose.RightElbow].Y)
			contributed = true
		}

		if contributed {
			m.Frames++
		}
	}

	if len(strides) > 0 {
		m.StrideAngle = floats.Max(strides)
	}
	if len(hipSpans) > 0 {
		m.HipRotation = floats.Max(hipSpans) - floats.Min(hipSpans)
	}
	if release.found {
		m.ThrowingAngle = release.angle
		m.ElbowHeight = release.elbowY
	}
	m.ArmSymmetry = armSymmetry(leftArm, rightArm)
	return m
}

// releaseState tracks the highest wrist seen so far. Image y grows
// downward, so higher means smaller.
type releaseState struct {
	found  bool
	wristY float64
	angle  float64
	elbowY float64
}

func (r *releaseState) consider(wristY, angle, elbowY float64) {
	if !r.found || wristY < r.wristY {
		r.found = true
		r.wristY = wristY
		r.angle = angle
		r.elbowY = elbowY
	}
}

func usable(lms []pose.Keypoint, joints ...int) bool {
	for _, j := range joints {
		if j >= len(lms) || lms[j].Score <= minScore {
			return false
		}
	}
	return true
}

func armSymmetry(left, right []float64) float64 {
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	leftMean, err := stats.Mean(left)
	if err != nil {
		return 0
	}
	rightMean, err := stats.Mean(right)
	if err != nil {
		return 0
	}
	diff := math.Abs(leftMean - rightMean)
	if diff > 100 {
		diff = 100
	}
	return 100 - diff
}

// angleBetween returns the angle in degrees between two vectors.
func angleBetween(ax, ay, bx, by float64) float64 {
	la := math.Hypot(ax, ay)
	lb := math.Hypot(bx, by)
	if la == 0 || lb == 0 {
		return 0
	}
	cos := (ax*bx + ay*by) / (la * lb)
	cos = math.Max(-1, math.Min(1, cos))
	return utils.RadToDeg(math.Acos(cos))
}

// jointAngle returns the interior angle at b for the chain a-b-c.
func jointAngle(a, b, c pose.Keypoint) float64 {
	return angleBetween(a.X-b.X, a.Y-b.Y, c.X-b.X, c.Y-b.Y)
}
