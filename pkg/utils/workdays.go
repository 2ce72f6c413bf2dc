package util

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// WorkdayCalendar answers whether a day is a working day under an RRULE
// such as FREQ=WEEKLY;BYDAY=MO,TU,WE,TH,FR.
type WorkdayCalendar struct {
	rule *rrule.RRule
	loc  *time.Location
}

func NewWorkdayCalendar(rule string, loc *time.Location) (*WorkdayCalendar, error) {
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("invalid workday rule %q: %w", rule, err)
	}
	// Anchor on a Monday so INTERVAL rules are stable.
	opt.Dtstart = time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("invalid workday rule %q: %w", rule, err)
	}
	return &WorkdayCalendar{rule: r, loc: loc}, nil
}

// IsWorkday reports whether the rule has an occurrence on day's calendar date.
func (c *WorkdayCalendar) IsWorkday(day time.Time) bool {
	start := StartOfDay(day, c.loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return len(c.rule.Between(start, end, true)) > 0
}

// Workdays lists the working days in [from, to], both inclusive.
func (c *WorkdayCalendar) Workdays(from, to time.Time) []time.Time {
	start := StartOfDay(from, c.loc)
	end := StartOfDay(to, c.loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	var days []time.Time
	for _, occ := range c.rule.Between(start, end, true) {
		days = append(days, StartOfDay(occ, c.loc))
	}
	return days
}

// ValidateWorkdayRule checks that rule parses.
func ValidateWorkdayRule(rule string) error {
	_, err := NewWorkdayCalendar(rule, time.UTC)
	return err
}
