package domain

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Timestamp is a point in time persisted as an ISO-8601 string.
// Documents written by older versions of the tool carry naive local
// timestamps without an offset; those are read back in the local zone.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, dropping the monotonic clock reading.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.Round(0)}
}

// MarshalJSON encodes the timestamp as RFC 3339 with nanoseconds
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

// UnmarshalJSON accepts RFC 3339 and the naive ISO formats
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}

	parsed, err := dateparse.ParseLocal(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
