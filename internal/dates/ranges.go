package dates

import (
	"fmt"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
)

// Trailing returns the n days ending today.
func Trailing(n int, now time.Time) domain.DateRange {
	if n < 1 {
		n = 1
	}
	end := Today(now)
	return domain.DateRange{Start: end.AddDate(0, 0, -(n - 1)), End: end}
}

// TrailingBefore returns the n days ending the day before today.
func TrailingBefore(n int, now time.Time) domain.DateRange {
	return Trailing(n, Today(now).AddDate(0, 0, -1))
}

// ParseRange resolves a {start, end} pair. Both ends are inclusive, start must
// not be after end and neither may lie in the future.
func ParseRange(start, end string, now time.Time) (domain.DateRange, error) {
	if start == "" || end == "" {
		return domain.DateRange{}, domain.InvalidParameter("date_range requires both start and end",
			`pass {"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"}`)
	}

	from, err := Resolve(start, now)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("date_range.start: %w", err)
	}
	to, err := Resolve(end, now)
	if err != nil {
		return domain.DateRange{}, fmt.Errorf("date_range.end: %w", err)
	}

	if from.After(to) {
		return domain.DateRange{}, domain.InvalidParameter(
			fmt.Sprintf("start %s is after end %s", Format(from), Format(to)),
			"swap start and end")
	}
	if err := ValidateNotFuture(to, now); err != nil {
		return domain.DateRange{}, err
	}

	return domain.DateRange{Start: from, End: to}, nil
}

// Preset names a canned history window relative to today.
type Preset string

const (
	PresetYesterday Preset = "yesterday"
	PresetLastWeek  Preset = "last_week"
	PresetLastMonth Preset = "last_month"
	PresetCustom    Preset = "custom"
)

// ResolvePreset maps a preset to a range. Custom presets need start and end.
func ResolvePreset(p Preset, start, end string, now time.Time) (domain.DateRange, error) {
	switch p {
	case PresetYesterday, "":
		return TrailingBefore(1, now), nil
	case PresetLastWeek:
		return TrailingBefore(7, now), nil
	case PresetLastMonth:
		return TrailingBefore(30, now), nil
	case PresetCustom:
		return ParseRange(start, end, now)
	default:
		return domain.DateRange{}, domain.InvalidParameter(
			fmt.Sprintf("unknown time_preset %q", p),
			"use yesterday, last_week, last_month or custom")
	}
}
