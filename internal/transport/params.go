package transport

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"stock-ledger/internal/domain"

	"github.com/araddon/dateparse"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cast"
)

var decimalDigits = regexp.MustCompile(`^[0-9]+$`)

// openEnd bounds ranges that have no "to"
var openEnd = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// parseDecimal reads a base-10 integer. Leading zeros are ignored, so "010"
// is ten; signs, prefixes and separators are rejected.
func parseDecimal(raw string) (int, error) {
	if !decimalDigits.MatchString(raw) {
		return 0, errors.New("not a decimal integer")
	}
	digits := strings.TrimLeft(raw, "0")
	if digits == "" {
		return 0, nil
	}
	return cast.ToIntE(digits)
}

// pathID reads a positive integer id from the named URL parameter
func pathID(r *http.Request, name string) (int, error) {
	id, err := parseDecimal(strings.TrimSpace(chi.URLParam(r, name)))
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

// queryTime parses a query value in loc. A bare date is taken as midnight,
// or as the last instant of that day when endOfDay is set.
func queryTime(r *http.Request, name string, loc *time.Location, endOfDay bool) (time.Time, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, false, nil
	}

	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, false, domain.NewValidationError(name, "unrecognized date")
	}
	if endOfDay && isDateOnly(raw) {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, true, nil
}

// queryRange reads ?from= and ?to=. ok is false when neither is set; a
// missing "to" leaves the range open-ended.
func queryRange(r *http.Request, loc *time.Location) (from, to time.Time, ok bool, err error) {
	from, hasFrom, err := queryTime(r, "from", loc, false)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	to, hasTo, err := queryTime(r, "to", loc, true)
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !hasFrom && !hasTo {
		return time.Time{}, time.Time{}, false, nil
	}
	if !hasTo {
		to = openEnd
	}
	if hasFrom && hasTo && to.Before(from) {
		return time.Time{}, time.Time{}, false, domain.NewValidationError("to", "must not be before from")
	}
	return from, to, true, nil
}

func queryInt(r *http.Request, name string) (int, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	n, err := parseDecimal(raw)
	if err != nil {
		return 0, false, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, true, nil
}

func isDateOnly(raw string) bool {
	_, err := time.Parse(time.DateOnly, raw)
	return err == nil
}
