package utils

import "github.com/google/uuid"

// ShortID returns the first 8 characters of a fresh UUIDv4, the id form
// used for uploaded and rendered video file names.
func ShortID() string {
	return uuid.New().String()[:8]
}
