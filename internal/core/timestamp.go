package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Timestamp is a calendar timestamp without a timezone offset. Values are
// always held as UTC wall-clock time with microsecond precision.
type Timestamp struct {
	time.Time
}

const (
	naiveLayout      = "2006-01-02T15:04:05"
	naiveMicroLayout = "2006-01-02T15:04:05.000000"
)

// Accepted input layouts. Layouts without an offset are taken as already
// being UTC wall-clock time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

var ErrInvalidDate = errors.New("invalid date")

// NewTimestamp converts t to UTC and drops the offset.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: NormalizeTime(t)}
}

// NormalizeTime converts an offset-aware time to UTC and strips the offset,
// keeping microsecond precision.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// FromStored rebuilds a Timestamp from a value read back from the database.
// Drivers disagree on the location they attach to offset-less columns, so
// only the wall-clock fields are kept.
func FromStored(t time.Time) Timestamp {
	return Timestamp{Time: time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).Truncate(time.Microsecond)}
}

// ParseTimestamp parses an ISO-8601 date or datetime. Offsets are converted
// to UTC before being dropped.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTimestamp(t), nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// String renders the timestamp as naive ISO-8601.
func (t Timestamp) String() string {
	if t.Nanosecond() == 0 {
		return t.Format(naiveLayout)
	}
	return t.Format(naiveMicroLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: expected a string", ErrInvalidDate)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
