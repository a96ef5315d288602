// Package ids provides UTC-day arithmetic and stable identifier generation
// (C1: Time & Identifiers).
package ids

import (
	"time"

	"github.com/google/uuid"
)

// eventNamespace anchors deterministic, name-based UUIDs (RFC 4122 v5) so
// the same logical event always produces the same id, letting callers
// synthesize a clientEventId for retries without a round trip.
var eventNamespace = uuid.MustParse("8f14e45f-ceea-4e83-9be3-3a8a4b8e1f3c")

// New returns a random UUID, used for entities with no natural dedupe key
// (SessionRun ids, FluencyGateTest ids, server-generated event ids).
func New() string {
	return uuid.New().String()
}

// DeterministicEventID derives a stable UUID from a tuple of strings, so
// that repeated submissions of the same logical step produce the same
// client_event_id and dedupe at the Event Store's unique index. Used by the
// Session Protocol (§4.7) to synthesize clientEventId from
// (sessionId, ayahId, stepType, attemptNumber).
func DeterministicEventID(parts ...string) string {
	name := parts[0]
	for _, p := range parts[1:] {
		name += "\x1f" + p
	}
	return uuid.NewSHA1(eventNamespace, []byte(name)).String()
}

// UTCDay formats t as a UTC calendar day string, e.g. "2026-02-03". Used
// throughout the reducer and queue planner wherever a value is compared or
// grouped "by day" rather than by instant.
func UTCDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// StartOfUTCDay returns midnight UTC of the day containing t.
func StartOfUTCDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetweenUTCDays returns the number of whole UTC calendar days between
// two day-strings produced by UTCDay (b - a). Only the YYYY-MM-DD form is
// accepted. Returns an error-free 0 on parse failure so callers
// treat malformed input as "no gap" rather than panicking.
func DaysBetweenUTCDays(a, b string) int {
	ta, err1 := time.Parse("2006-01-02", a)
	tb, err2 := time.Parse("2006-01-02", b)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// FloorDays returns the number of whole 24h days in d, never negative.
func FloorDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
