// Package earnings holds the profit reporting rules: period bucketing, range
// validation, margin arithmetic, investment and price-correction checks, and
// the aggregations behind the summary/by-product/by-period/by-seller reports.
package earnings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"floreria/internal/dto"
)

// Period is the bucket size of the by-period report.
type Period string

const (
	Day   Period = "day"
	Week  Period = "week"
	Month Period = "month"
	Year  Period = "year"
)

// DefaultWindow is the range used when the caller gives no dates.
const DefaultWindow = 30 * 24 * time.Hour

var ErrInvertedRange = errors.New("La fecha inicial no puede ser posterior a la fecha final.")

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Day, Week, Month, Year:
		return p, nil
	case "":
		return Month, nil
	}
	return "", fmt.Errorf("periodo invalido: %q", s)
}

// ValidateRange rejects a range whose start is after its end.
func ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return ErrInvertedRange
	}
	return nil
}

// DefaultRange is the 30 days ending at now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	return now.Add(-DefaultWindow), now
}

// NormalizeRange widens [start, end] to whole UTC days.
func NormalizeRange(start, end time.Time) (time.Time, time.Time) {
	return dayStart(start), dayEnd(end)
}

// ResolveRange reads the optional YYYY-MM-DD bounds of q. A missing end is
// now; a missing start is 30 days before the end. Explicit bounds are
// widened to whole days. The range is validated before it is returned.
func ResolveRange(q dto.PeriodQuery, now time.Time) (time.Time, time.Time, error) {
	end := now.UTC()
	if q.EndDate != "" {
		t, err := time.Parse(dto.DateLayout, q.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date invalida: %w", err)
		}
		end = dayEnd(t)
	}
	start := end.Add(-DefaultWindow)
	if q.StartDate != "" {
		t, err := time.Parse(dto.DateLayout, q.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date invalida: %w", err)
		}
		start = dayStart(t)
	}
	if err := ValidateRange(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// Bucket returns the UTC bounds of the period containing t. Weeks start on
// Monday; end is the last nanosecond of the bucket.
func Bucket(t time.Time, p Period) (time.Time, time.Time) {
	day := dayStart(t)
	switch p {
	case Day:
		return day, dayEnd(day)
	case Week:
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, dayEnd(start.AddDate(0, 0, 6))
	case Year:
		start := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	default:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	}
}

func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEnd(t time.Time) time.Time {
	return dayStart(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
