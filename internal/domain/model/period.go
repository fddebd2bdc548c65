package model

import (
	"encoding/json"
	"fmt"
	"time"
	"tle_zone_dashboard/internal/common"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// MaxBuckets bounds a single activity series.
const MaxBuckets = 1000

func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

func ParsePeriod(v string) (Period, error) {
	p := Period(v)
	if !p.IsValid() {
		return "", fmt.Errorf("period %q: %w", v, common.ErrInvalidEnumValue)
	}
	return p, nil
}

func (p *Period) UnmarshalText(text []byte) error {
	v, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Range is a closed time interval. Start must not be after End.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRange parses both bounds with ParseDate and validates ordering.
func NewRange(start, end string) (Range, error) {
	s, err := ParseDate(start)
	if err != nil {
		return Range{}, fieldErr("range", "start", err)
	}
	e, err := ParseDate(end)
	if err != nil {
		return Range{}, fieldErr("range", "end", err)
	}
	r := Range{Start: s, End: e}
	return r, r.Validate()
}

func (r Range) Validate() error {
	if r.Start.After(r.End) {
		return fieldErr("range", "start", common.ErrInvalidRange)
	}
	return nil
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

type rangeWire struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var w rangeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return decodeErr("range", err)
	}
	if err := requireFields("range",
		has("start", w.Start != nil),
		has("end", w.End != nil),
	); err != nil {
		return err
	}
	v, err := NewRange(*w.Start, *w.End)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// BucketFor truncates t (in UTC) to the start of its period: midnight, the
// preceding Sunday, or the first of the month.
func BucketFor(t time.Time, p Period) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeekly:
		return day.AddDate(0, 0, -int(day.Weekday()))
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func nextBucket(b time.Time, p Period) time.Time {
	switch p {
	case PeriodWeekly:
		return b.AddDate(0, 0, 7)
	case PeriodMonthly:
		return b.AddDate(0, 1, 0)
	default:
		return b.AddDate(0, 0, 1)
	}
}

// ThroughBucket widens End to the last instant of the p bucket containing it,
// so a series ending on a date counts that whole day, week, or month.
// Timestamps are stored at microsecond precision.
func (r Range) ThroughBucket(p Period) Range {
	r.End = nextBucket(BucketFor(r.End, p), p).Add(-time.Microsecond)
	return r
}

// Buckets returns the start of every period overlapping r, in order.
func Buckets(r Range, p Period) ([]time.Time, error) {
	if !p.IsValid() {
		return nil, fieldErr("period", "value", fmt.Errorf("%q: %w", p, common.ErrInvalidEnumValue))
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	end := r.End.UTC()
	var buckets []time.Time
	for b := BucketFor(r.Start, p); !b.After(end); b = nextBucket(b, p) {
		if len(buckets) == MaxBuckets {
			return nil, fmt.Errorf("range spans more than %d %s buckets: %w", MaxBuckets, p, common.ErrValidation)
		}
		buckets = append(buckets, b)
	}
	return buckets, nil
}
