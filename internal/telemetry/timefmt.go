package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
)

// TimePlaceholder is shown where a timestamp cannot be parsed.
const TimePlaceholder = "--:--"

const (
	layout12h = "03:04 PM"
	layout24h = "15:04"
)

// zoneless layouts are interpreted in the formatter's location.
var zonelessLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// TimeFormatter renders backend timestamps as hour:minute labels.
type TimeFormatter struct {
	loc    *time.Location
	layout string
}

// NewTimeFormatter returns a formatter for loc using a 12h ("10:00 AM") or
// 24h ("10:00") clock. A nil loc means time.Local.
func NewTimeFormatter(loc *time.Location, clock24 bool) *TimeFormatter {
	if loc == nil {
		loc = time.Local
	}
	layout := layout12h
	if clock24 {
		layout = layout24h
	}
	return &TimeFormatter{loc: loc, layout: layout}
}

// Location returns the zone labels are rendered in.
func (f *TimeFormatter) Location() *time.Location { return f.loc }

// Parse reads an ISO-8601 timestamp. Timestamps without a zone designator are
// taken to be in the formatter's location.
func (f *TimeFormatter) Parse(ts string) (time.Time, error) {
	s := strings.TrimSpace(ts)
	if s == "" {
		return time.Time{}, errors.New(errors.ErrParse, "empty timestamp", "")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range zonelessLayouts {
		if t, err := time.ParseInLocation(layout, s, f.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(errors.ErrParse, fmt.Sprintf("invalid timestamp %q", ts), "")
}

// Format renders ts as an hour:minute label.
func (f *TimeFormatter) Format(ts string) (string, error) {
	t, err := f.Parse(ts)
	if err != nil {
		return "", err
	}
	return t.In(f.loc).Format(f.layout), nil
}

// Label is Format with the placeholder substituted on error.
func (f *TimeFormatter) Label(ts string) string {
	s, err := f.Format(ts)
	if err != nil {
		return TimePlaceholder
	}
	return s
}
