package util

import "time"

// SystemClock : системные часы в UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
