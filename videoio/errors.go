package videoio

import "fmt"

// SourceOpenError reports a video that could not be opened for decoding,
// whether because ffmpeg is unavailable or the file is not a readable
// video.
type SourceOpenError struct {
	Path  string
	Cause error
}

func (e *SourceOpenError) Error() string {
	return fmt.Sprintf("cannot open video source %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SourceOpenError) Unwrap() error { return e.Cause }

// EncoderOpenError reports an output video that could not be started,
// whether because ffmpeg is unavailable, the destination is unusable, or
// the encoder rejected its parameters.
type EncoderOpenError struct {
	Path  string
	Cause error
}

func (e *EncoderOpenError) Error() string {
	return fmt.Sprintf("cannot open video encoder for %q: %v", e.Path, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EncoderOpenError) Unwrap() error { return e.Cause }
