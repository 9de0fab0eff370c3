package analysis

import "math"

// Verdict is the overall quality call for a throw.
type Verdict struct {
	Result     string  `json:"result"`
	Confidence float64 `json:"confidence"`
}

// Predict grades the metrics into a Good or Bad verdict with a
// confidence in [0.5, 0.99]. Without any usable frames the verdict is
// Unknown with no confidence.
func Predict(m Metrics) Verdict {
	if m.Frames == 0 {
		return Verdict{Result: "Unknown"}
	}
	var passed, total float64
	for _, ok := range []bool{
		m.StrideAngle > 30 && m.StrideAngle < 60,
		m.ThrowingAngle > 80 && m.ThrowingAngle < 140,
		m.ArmSymmetry >= 70,
		m.HipRotation >= 20,
	} {
		total++
		if ok {
			passed++
		}
	}
	ratio := passed / total
	label := "Bad"
	if ratio >= 0.5 {
		label = "Good"
	}
	// unanimous checks in either direction read as high confidence
	confidence := 0.5 + 0.49*math.Abs(ratio-0.5)*2
	return Verdict{Result: label, Confidence: confidence}
}
