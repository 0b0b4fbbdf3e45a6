package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseError is returned when no rule or format recognizes the input.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	if e.Input == "" {
		return "empty date/time expression"
	}
	return fmt.Sprintf("unrecognized date/time expression: %q", e.Input)
}

type TimeParser struct {
	now      time.Time
	location *time.Location
}

func NewTimeParser() *TimeParser {
	return &TimeParser{
		now:      time.Now(),
		location: time.Local,
	}
}

func (p *TimeParser) SetNow(now time.Time) {
	p.now = now
}

// SetLocation sets the zone used for absolute formats. Relative
// expressions stay in the zone of the parser's "now".
func (p *TimeParser) SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	p.location = loc
}

func (p *TimeParser) Now() time.Time {
	return p.now
}

// Parse resolves input against now using a parser in now's location.
func Parse(input string, now time.Time) (time.Time, error) {
	p := &TimeParser{now: now, location: now.Location()}
	return p.Parse(input)
}

// Parse turns a natural-language or fixed-format expression into an
// absolute time. Resolution order: keyword and weekday rules, relative
// intervals, "<date> <time>" combinations, then fixed layouts.
func (p *TimeParser) Parse(input string) (time.Time, error) {
	normalized := normalize(input)
	if normalized == "" {
		return time.Time{}, &ParseError{Input: input}
	}

	if t, ok := p.applyRules(normalized); ok {
		return t, nil
	}

	if t, ok := p.parseCombined(normalized); ok {
		return t, nil
	}

	if t, ok := p.parseAbsolute(normalized); ok {
		return t, nil
	}

	return time.Time{}, &ParseError{Input: input}
}

// ParseRange resolves CLI-style range arguments.
//
// No tokens covers today; one token covers that whole calendar day; two
// tokens are parsed independently as start and end. The end is not
// required to follow the start.
func (p *TimeParser) ParseRange(tokens []string) (time.Time, time.Time, error) {
	switch len(tokens) {
	case 0:
		start := startOfDay(p.now)
		return start, start.AddDate(0, 0, 1), nil
	case 1:
		return p.dayRange(tokens[0])
	case 2:
		start, startErr := p.Parse(tokens[0])
		end, endErr := p.Parse(tokens[1])
		if startErr == nil && endErr == nil {
			return start, end, nil
		}
	}

	// "next friday" arrives as two tokens; treat the whole thing as one day
	return p.dayRange(strings.Join(tokens, " "))
}

func (p *TimeParser) dayRange(expr string) (time.Time, time.Time, error) {
	t, err := p.Parse(expr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := startOfDay(t)
	return start, start.AddDate(0, 0, 1), nil
}

// parseCombined handles "<date expression> <time of day>".
func (p *TimeParser) parseCombined(input string) (time.Time, bool) {
	fields := strings.Fields(input)
	if len(fields) < 2 {
		return time.Time{}, false
	}

	dateFields := fields[:len(fields)-1]
	timeField := fields[len(fields)-1]

	// "friday 3 pm": the meridiem is its own token
	if (timeField == "am" || timeField == "pm") && len(fields) >= 3 {
		dateFields = fields[:len(fields)-2]
		timeField = fields[len(fields)-2] + " " + timeField
	}

	date, err := p.Parse(strings.Join(dateFields, " "))
	if err != nil {
		return time.Time{}, false
	}

	hour, minute, second, ok := ParseTimeOfDay(timeField)
	if !ok {
		return time.Time{}, false
	}

	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, second, 0, date.Location()), true
}

type absoluteLayout struct {
	layout   string
	timeOnly bool
}

var absoluteLayouts = []absoluteLayout{
	{layout: "2006-01-02 15:04:05"},
	{layout: "2006-01-02 15:04"},
	{layout: "2006-01-02"},
	{layout: "01/02/2006 15:04"},
	{layout: "01/02/2006"},
	{layout: "1/2/2006 15:04"},
	{layout: "1/2/2006"},
	{layout: "02.01.2006 15:04"},
	{layout: "02.01.2006"},
	{layout: "2.1.2006 15:04"},
	{layout: "2.1.2006"},
	{layout: "15:04", timeOnly: true},
	{layout: "3:04 pm", timeOnly: true},
	{layout: "3pm", timeOnly: true},
}

func (p *TimeParser) parseAbsolute(input string) (time.Time, bool) {
	for _, l := range absoluteLayouts {
		t, err := time.ParseInLocation(l.layout, input, p.location)
		if err != nil {
			continue
		}
		if l.timeOnly {
			// Bare times land on today's date
			y, m, d := p.now.In(p.location).Date()
			t = time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, p.location)
		}
		return t, true
	}
	return time.Time{}, false
}

var timeOfDayLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04pm",
	"3:04 pm",
	"3pm",
	"3 pm",
}

// ParseTimeOfDay parses a clock time such as "14:30", "2:30pm" or "10am".
func ParseTimeOfDay(input string) (hour, minute, second int, ok bool) {
	s := normalize(input)
	for _, layout := range timeOfDayLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return t.Hour(), t.Minute(), t.Second(), true
	}
	return 0, 0, 0, false
}

var (
	hoursRe   = regexp.MustCompile(`^(\d+)\s*(h|hr|hrs|hour|hours)$`)
	minutesRe = regexp.MustCompile(`^(\d+)\s*(m|min|mins|minute|minutes)$`)
	clockRe   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// ParseDuration parses event lengths like "2h", "45min" or "1:30".
func ParseDuration(input string) (time.Duration, bool) {
	s := normalize(input)
	if s == "" {
		return 0, false
	}

	var d time.Duration
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		n, ok := scaled(m[1], time.Hour)
		if !ok {
			return 0, false
		}
		d = n
	} else if m := minutesRe.FindStringSubmatch(s); m != nil {
		n, ok := scaled(m[1], time.Minute)
		if !ok {
			return 0, false
		}
		d = n
	} else if m := clockRe.FindStringSubmatch(s); m != nil {
		h, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		min, err := strconv.Atoi(m[2])
		if err != nil || min > 59 {
			return 0, false
		}
		d = time.Duration(h)*time.Hour + time.Duration(min)*time.Minute
	} else if parsed, err := time.ParseDuration(s); err == nil {
		d = parsed
	}

	if d <= 0 {
		return 0, false
	}
	return d, true
}

// scaled multiplies a decimal count by unit, rejecting counts that
// would overflow a time.Duration.
func scaled(count string, unit time.Duration) (time.Duration, bool) {
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

func normalize(input string) string {
	return strings.Join(strings.Fields(strings.ToLower(input)), " ")
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
