package core

import (
	"fmt"
	"time"
)

// DateLayout is the layout of startDate/endDate query parameters.
const DateLayout = "2006-01-02"

// SnapshotDateLayout is the layout of snapshot date keys (YYYYMMDD).
const SnapshotDateLayout = "20060102"

// DateRange is an optional inclusive date window given by a client.
// Empty bounds are open.
type DateRange struct {
	Start string
	End   string
}

// ParseDateRange validates YYYY-MM-DD bounds.
func ParseDateRange(start, end string) (DateRange, error) {
	r := DateRange{Start: start, End: end}
	var from, to time.Time
	var err error
	if start != "" {
		if from, err = time.Parse(DateLayout, start); err != nil {
			return DateRange{}, WrapError(ErrInvalidInput,
				fmt.Errorf("startDate must be YYYY-MM-DD, got %q", start))
		}
	}
	if end != "" {
		if to, err = time.Parse(DateLayout, end); err != nil {
			return DateRange{}, WrapError(ErrInvalidInput,
				fmt.Errorf("endDate must be YYYY-MM-DD, got %q", end))
		}
	}
	if start != "" && end != "" && to.Before(from) {
		return DateRange{}, WrapError(ErrInvalidInput,
			fmt.Errorf("endDate %s is before startDate %s", end, start))
	}
	return r, nil
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.Start == "" && r.End == ""
}

// StartTime returns the start bound at 00:00:00 UTC.
func (r DateRange) StartTime() (time.Time, bool) {
	if r.Start == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, r.Start)
	return t.UTC(), err == nil
}

// EndTime returns the end bound at 23:59:59 UTC.
func (r DateRange) EndTime() (time.Time, bool) {
	if r.End == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, r.End)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC().Add(24*time.Hour - time.Second), true
}

// String renders the range for logs.
func (r DateRange) String() string {
	start, end := r.Start, r.End
	if start == "" {
		start = "*"
	}
	if end == "" {
		end = "*"
	}
	return start + "~" + end
}
