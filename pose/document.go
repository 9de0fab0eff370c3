package pose

import (
	"bytes"
	"encoding/json"
)

// FrameRecord holds the raw predictions for a single frame index.
type FrameRecord struct {
	FrameIdx    int             `json:"frame_idx"`
	Predictions json.RawMessage `json:"predictions,omitempty"`
}

// Persons normalizes the predictions payload into a flat person list.
// The API emits either a flat list of person objects or a list of lists
// with the persons in the first inner list. Any other shape, and any
// malformed payload, is treated as no detections rather than an error.
func (fr FrameRecord) Persons() []Person {
	var elems []json.RawMessage
	if err := json.Unmarshal(fr.Predictions, &elems); err != nil || len(elems) == 0 {
		return nil
	}
	switch firstJSONByte(elems[0]) {
	case '[':
		var nested [][]Person
		if err := json.Unmarshal(fr.Predictions, &nested); err != nil || len(nested) == 0 {
			return nil
		}
		return nested[0]
	case '{':
		var persons []Person
		if err := json.Unmarshal(fr.Predictions, &persons); err != nil {
			return nil
		}
		return persons
	default:
		return nil
	}
}

func firstJSONByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

// Document is the detection API response for one video.
type Document struct {
	Frames  []FrameRecord `json:"frames,omitempty"`
	Error   bool          `json:"error,omitempty"`
	Message string        `json:"message,omitempty"`
}

// ErrorDocument wraps a detection failure so that uploads can degrade to
// an unannotated response instead of failing outright.
func ErrorDocument(err error) *Document {
	return &Document{Error: true, Message: err.Error()}
}

// FrameIndex maps frame indices to their records. Later records win on
// duplicate indices. A nil document indexes nothing.
func (d *Document) FrameIndex() map[int]FrameRecord {
	if d == nil {
		return nil
	}
	byIdx := make(map[int]FrameRecord, len(d.Frames))
	for _, fr := range d.Frames {
		byIdx[fr.FrameIdx] = fr
	}
	return byIdx
}
