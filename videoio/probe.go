package videoio

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

// Probe inspects the first video stream of the file at path.
func Probe(path string) (Info, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return Info{}, errors.Wrapf(err, "cannot probe %q", path)
	}
	return parseProbe(out)
}

func parseProbe(data string) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return Info{}, errors.Wrap(err, "malformed probe output")
	}
	for _, strm := range out.Streams {
		if strm.CodecType != "video" {
			continue
		}
		if strm.Width <= 0 || strm.Height <= 0 {
			return Info{}, errors.New("video stream has no dimensions")
		}
		num, den, err := parseRate(strm.RFrameRate)
		if err != nil || num == 0 {
			num, den, err = parseRate(strm.AvgFrameRate)
		}
		if err != nil || num == 0 {
			return Info{}, errors.New("video stream has no usable frame rate")
		}
		return Info{Width: strm.Width, Height: strm.Height, RateNum: num, RateDen: den}, nil
	}
	return Info{}, errors.New("no video stream found")
}

func parseRate(rate string) (int, int, error) {
	numStr, denStr, found := strings.Cut(rate, "/")
	if !found {
		denStr = "1"
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, 0, errors.Errorf("bad frame rate %q", rate)
	}
	den, err := strconv.Atoi(denStr)
	if err != nil || den == 0 {
		return 0, 0, errors.Errorf("bad frame rate %q", rate)
	}
	return num, den, nil
}
