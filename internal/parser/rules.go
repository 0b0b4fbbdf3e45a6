package parser

import (
	"regexp"
	"strconv"
	"time"
)

const weekdayPattern = `(monday|mon|tuesday|tues|tue|wednesday|wed|thursday|thurs|thur|thu|friday|fri|saturday|sat|sunday|sun)`

// rule is one entry of the ordered natural-language table. The first
// rule whose pattern matches the whole input wins.
type rule struct {
	name    string
	pattern *regexp.Regexp
	resolve func(p *TimeParser, m []string) (time.Time, bool)
}

// maxIntervalCount bounds "in N units" so date arithmetic cannot overflow.
const maxIntervalCount = 10000

var rules = []rule{
	{
		name:    "keyword",
		pattern: regexp.MustCompile(`^(now|today|tomorrow|yesterday)$`),
		resolve: func(p *TimeParser, m []string) (time.Time, bool) {
			switch m[1] {
			case "tomorrow":
				return p.now.AddDate(0, 0, 1), true
			case "yesterday":
				return p.now.AddDate(0, 0, -1), true
			default:
				return p.now, true
			}
		},
	},
	{
		name:    "adjacent period",
		pattern: regexp.MustCompile(`^(next|last) (week|month)$`),
		resolve: func(p *TimeParser, m []string) (time.Time, bool) {
			sign := 1
			if m[1] == "last" {
				sign = -1
			}
			if m[2] == "week" {
				return p.now.AddDate(0, 0, 7*sign), true
			}
			return addMonths(p.now, sign), true
		},
	},
	{
		name:    "qualified weekday",
		pattern: regexp.MustCompile(`^(next|this|last) ` + weekdayPattern + `$`),
		resolve: func(p *TimeParser, m []string) (time.Time, bool) {
			target := weekdays[m[2]]
			switch m[1] {
			case "next":
				return nextWeekWeekday(p.now, target), true
			case "last":
				return lastWeekWeekday(p.now, target), true
			default:
				return thisWeekday(p.now, target), true
			}
		},
	},
	{
		name:    "weekday",
		pattern: regexp.MustCompile(`^` + weekdayPattern + `$`),
		resolve: func(p *TimeParser, m []string) (time.Time, bool) {
			return upcomingWeekday(p.now, weekdays[m[1]]), true
		},
	},
	{
		name:    "interval",
		pattern: regexp.MustCompile(`^in (\d+) (day|week|month|year)s?$`),
		resolve: func(p *TimeParser, m []string) (time.Time, bool) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n > maxIntervalCount {
				return time.Time{}, false
			}
			switch m[2] {
			case "day":
				return p.now.AddDate(0, 0, n), true
			case "week":
				return p.now.AddDate(0, 0, 7*n), true
			case "month":
				return addMonths(p.now, n), true
			default:
				return addMonths(p.now, 12*n), true
			}
		},
	},
}

func (p *TimeParser) applyRules(input string) (time.Time, bool) {
	for _, r := range rules {
		if m := r.pattern.FindStringSubmatch(input); m != nil {
			return r.resolve(p, m)
		}
	}
	return time.Time{}, false
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// thisWeekday is today when today matches, otherwise the next occurrence.
func thisWeekday(now time.Time, target time.Weekday) time.Time {
	ahead := (int(target) - int(now.Weekday()) + 7) % 7
	return startOfDay(now).AddDate(0, 0, ahead)
}

// upcomingWeekday never returns today.
func upcomingWeekday(now time.Time, target time.Weekday) time.Time {
	ahead := (int(target) - int(now.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return startOfDay(now).AddDate(0, 0, ahead)
}

// nextWeekWeekday lands in the following Monday-first week, so it is
// 1 to 13 days ahead and never today.
func nextWeekWeekday(now time.Time, target time.Weekday) time.Time {
	ahead := 7 - mondayIndex(now.Weekday()) + mondayIndex(target)
	return startOfDay(now).AddDate(0, 0, ahead)
}

// lastWeekWeekday is the most recent occurrence at least a full week
// back: 7 to 13 days.
func lastWeekWeekday(now time.Time, target time.Weekday) time.Time {
	back := int(now.Weekday()) - int(target)
	if back < 0 {
		back += 7
	}
	return startOfDay(now).AddDate(0, 0, -(back + 7))
}

func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// addMonths moves by calendar months, clamping the day to the target
// month's length (Jan 31 + 1 month is Feb 28/29).
func addMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
