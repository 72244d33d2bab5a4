// Package window turns date/time filter expressions into absolute UTC query windows.
package window

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Input validation errors. All are fatal configuration errors; none are retried.
var (
	ErrInvalidExpression     = errors.New("invalid date expression")
	ErrInvalidTime           = errors.New("invalid time value")
	ErrIncompleteTimeWindow  = errors.New("both start and end times are required")
	ErrNonPositiveWindow     = errors.New("end time must be later than start time")
	ErrAmbiguousDateCount    = errors.New("a time window requires exactly one date range")
	ErrMultiDayRangeWithTime = errors.New("a time window requires a single-day date range")
	ErrInvalidCombination    = errors.New("invalid date/time combination")
)

// Window is an absolute UTC interval bounding a ticket query. Both endpoints
// are inclusive; overlap between windows is tolerated and deduplicated downstream.
type Window struct {
	StartUTC time.Time
	EndUTC   time.Time
	Label    string
}

// DateRange is one inclusive calendar-date term of a filter expression.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ShiftRule maps a wall-clock boundary to the shift window selected when the
// current local time falls before that boundary. Rules are evaluated in order;
// the last rule acts as the catch-all for the remainder of the day. Day offsets
// are relative to the current local date.
type ShiftRule struct {
	BoundaryHour   int
	BoundaryMinute int
	StartDayOffset int
	StartHour      int
	StartMinute    int
	EndDayOffset   int
	EndHour        int
	EndMinute      int
	Label          string
}

// shiftTable is the business shift calendar, copied verbatim from the operations
// policy. The boundaries 01:30, 09:30 and 18:30 partition the reference-timezone
// day; the final rule covers everything from 18:30 to midnight.
var shiftTable = []ShiftRule{
	{1, 30, 0, 13, 0, 1, 1, 30, "afternoon"},
	{9, 30, -1, 21, 30, 0, 9, 30, "evening"},
	{18, 30, 0, 18, 30, 1, 6, 30, "morning"},
	{24, 0, 0, 18, 30, 1, 6, 30, "morning"},
}

// Reference returns the reference timezone against which all wall-clock inputs
// and the shift calendar are interpreted. Manila has no daylight-saving
// transitions, so a fixed UTC+8 zone is an exact fallback when the IANA
// database is unavailable.
func Reference() *time.Location {
	if loc, err := time.LoadLocation("Asia/Manila"); err == nil {
		return loc
	}
	return time.FixedZone("PHT", 8*60*60)
}

// Planner resolves filter expressions into UTC windows.
type Planner struct {
	Location *time.Location
	Shifts   []ShiftRule
}

// NewPlanner returns a Planner bound to the reference timezone and the
// default shift calendar.
func NewPlanner() *Planner {
	return &Planner{
		Location: Reference(),
		Shifts:   shiftTable,
	}
}

var (
	orSplitRe  = regexp.MustCompile(`(?i)\s+OR\s+`)
	dateTermRe = regexp.MustCompile(`(?i)^\s*(\d{4}-\d{2}-\d{2})(?:\s+TO\s+(\d{4}-\d{2}-\d{2}))?\s*$`)
)

// clockLayout accepts one- and two-digit hours ("6:30 PM", "06:30 PM").
const clockLayout = "3:04 PM"

// ParseDateExpr parses an expression of inclusive date ranges joined by OR.
// Each term is "YYYY-MM-DD TO YYYY-MM-DD"; a bare date is a one-day range.
func ParseDateExpr(expr string) ([]DateRange, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	var ranges []DateRange
	for _, term := range orSplitRe.Split(strings.TrimSpace(expr), -1) {
		m := dateTermRe.FindStringSubmatch(term)
		if m == nil {
			return nil, fmt.Errorf("%w: %q (use YYYY-MM-DD TO YYYY-MM-DD, joined by OR)", ErrInvalidExpression, term)
		}
		start, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidExpression, term)
		}
		end := start
		if m[2] != "" {
			end, err = time.Parse("2006-01-02", m[2])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidExpression, term)
			}
		}
		ranges = append(ranges, DateRange{Start: start, End: end})
	}
	return ranges, nil
}

// ParseClock parses a 12-hour wall-clock value such as "10:00 AM".
func ParseClock(value string) (time.Time, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if t, err := time.Parse(clockLayout, trimmed); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q (use HH:MM AM/PM, e.g. \"10:00 AM\")", ErrInvalidTime, value)
}

// Plan resolves a date expression plus an optional daily time window into UTC
// windows, deterministic given its inputs. now must carry the planner's
// location; it anchors the default shift window and the date of time-only
// windows.
func (p *Planner) Plan(dateExpr, startTime, endTime string, now time.Time) ([]Window, error) {
	ranges, err := ParseDateExpr(dateExpr)
	if err != nil {
		return nil, err
	}

	hasTime := startTime != "" || endTime != ""
	var startClock, endClock time.Time
	if hasTime {
		if startTime == "" || endTime == "" {
			return nil, ErrIncompleteTimeWindow
		}
		if startClock, err = ParseClock(startTime); err != nil {
			return nil, err
		}
		if endClock, err = ParseClock(endTime); err != nil {
			return nil, err
		}
		if !endClock.After(startClock) {
			return nil, ErrNonPositiveWindow
		}
	}

	switch {
	case len(ranges) == 0 && !hasTime:
		return []Window{p.shiftWindow(now)}, nil

	case len(ranges) == 0 && hasTime:
		day := now.In(p.Location)
		return []Window{p.clockWindow(day, startClock, endClock, "time-only")}, nil

	case len(ranges) > 0 && !hasTime:
		windows := make([]Window, 0, len(ranges))
		for _, r := range ranges {
			start := p.localDate(r.Start, 0, 0, 0)
			end := p.localDate(r.End, 23, 59, 59)
			windows = append(windows, Window{StartUTC: start.UTC(), EndUTC: end.UTC(), Label: "date-only"})
		}
		return windows, nil

	case len(ranges) == 1 && hasTime:
		r := ranges[0]
		if !r.Start.Equal(r.End) {
			return nil, ErrMultiDayRangeWithTime
		}
		return []Window{p.clockWindow(r.Start, startClock, endClock, "date+time")}, nil

	case len(ranges) > 1 && hasTime:
		return nil, ErrAmbiguousDateCount
	}

	return nil, ErrInvalidCombination
}

// shiftWindow selects the default shift window containing now. The shift table
// partitions the day, so exactly one rule matches.
func (p *Planner) shiftWindow(now time.Time) Window {
	local := now.In(p.Location)
	minutes := local.Hour()*60 + local.Minute()

	for _, rule := range p.Shifts {
		if minutes >= rule.BoundaryHour*60+rule.BoundaryMinute {
			continue
		}
		start := time.Date(local.Year(), local.Month(), local.Day()+rule.StartDayOffset,
			rule.StartHour, rule.StartMinute, 0, 0, p.Location)
		end := time.Date(local.Year(), local.Month(), local.Day()+rule.EndDayOffset,
			rule.EndHour, rule.EndMinute, 0, 0, p.Location)
		return Window{StartUTC: start.UTC(), EndUTC: end.UTC(), Label: rule.Label}
	}

	// Unreachable while the table's last boundary is 24:00.
	last := p.Shifts[len(p.Shifts)-1]
	start := time.Date(local.Year(), local.Month(), local.Day()+last.StartDayOffset,
		last.StartHour, last.StartMinute, 0, 0, p.Location)
	end := time.Date(local.Year(), local.Month(), local.Day()+last.EndDayOffset,
		last.EndHour, last.EndMinute, 0, 0, p.Location)
	return Window{StartUTC: start.UTC(), EndUTC: end.UTC(), Label: last.Label}
}

// clockWindow combines a calendar date with a wall-clock range in the
// planner's location.
func (p *Planner) clockWindow(day, startClock, endClock time.Time, label string) Window {
	start := time.Date(day.Year(), day.Month(), day.Day(),
		startClock.Hour(), startClock.Minute(), 0, 0, p.Location)
	end := time.Date(day.Year(), day.Month(), day.Day(),
		endClock.Hour(), endClock.Minute(), 0, 0, p.Location)
	return Window{StartUTC: start.UTC(), EndUTC: end.UTC(), Label: label}
}

func (p *Planner) localDate(day time.Time, hour, minute, second int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, second, 0, p.Location)
}
