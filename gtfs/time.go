package gtfs

import (
	"strconv"
	"strings"
)

// ParseTime converts a GTFS HH:MM:SS string to seconds since midnight.
// GTFS uses hours beyond 24 for post-midnight service (25:30:00 is
// 1:30 AM the next calendar day). Returns -1 for missing or malformed
// values; callers treat that as "no timestamp".
func ParseTime(s string) int {
	if s == "" {
		return -1
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return -1
	}
	h, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	m, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	sec, err3 := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err1 != nil || err2 != nil || err3 != nil {
		return -1
	}
	if h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return -1
	}
	return h*3600 + m*60 + sec
}
