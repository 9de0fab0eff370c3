package pose

// Joint indices in COCO keypoint order.
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
	NumJoints
)

// Topology names the joints of a skeleton and the bones connecting them,
// as index pairs into a person's keypoint list.
type Topology struct {
	Names []string
	Bones [][2]int
}

// DefaultTopology returns the 17-joint COCO skeleton.
func DefaultTopology() Topology {
	return Topology{
		Names: []string{
			"nose",
			"left_eye", "right_eye",
			"left_ear", "right_ear",
			"left_shoulder", "right_shoulder",
			"left_elbow", "right_elbow",
			"left_wrist", "right_wrist",
			"left_hip", "right_hip",
			"left_knee", "right_knee",
			"left_ankle", "right_ankle",
		},
		Bones: [][2]int{
			{0, 1}, {0, 2}, {1, 3}, {2, 4},
			{5, 6}, {5, 7}, {7, 9}, {6, 8}, {8, 10},
			{5, 11}, {6, 12}, {11, 12},
			{11, 13}, {13, 15}, {12, 14}, {14, 16},
		},
	}
}
