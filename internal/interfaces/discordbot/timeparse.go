package discordbot

import (
	"strings"
	"time"
	_ "time/tzdata"
)

const matchTimeInputLayout = "2006-01-02 15:04"

// parseMatchTime reads "YYYY-MM-DD HH:MM" with an optional IANA zone after
// it. Times without a zone are UTC.
func parseMatchTime(raw string) (time.Time, error) {
	parts := strings.Fields(raw)
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, usagef("time must look like 2026-03-03 20:00 [America/New_York]")
	}

	loc := time.UTC
	if len(parts) == 3 {
		zone, err := time.LoadLocation(parts[2])
		if err != nil {
			return time.Time{}, usagef("unknown time zone %q", parts[2])
		}
		loc = zone
	}

	at, err := time.ParseInLocation(matchTimeInputLayout, parts[0]+" "+parts[1], loc)
	if err != nil {
		return time.Time{}, usagef("time must look like 2026-03-03 20:00 [America/New_York]")
	}
	return at.UTC(), nil
}
