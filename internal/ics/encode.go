package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/mozillazg/go-unidecode"
	"github.com/teambition/rrule-go"

	"schtocal/internal/model"
)

const (
	DefaultTZID   = "Asia/Riyadh"
	DefaultTZName = "AST"
	DefaultOffset = 3 * time.Hour

	productID = "-//ScheduleTools//Schedule to ICS//EN"

	localLayout   = "20060102T150405"
	utcLayout     = "20060102T150405Z"
	minutesPerDay = 1440
)

// ErrInvalidWeekday is returned for a series whose weekday is not 1..7.
var ErrInvalidWeekday = errors.New("ics: weekday out of range")

const (
	propDtStamp      = ical.ComponentProperty("DTSTAMP")
	propTransp       = ical.ComponentProperty("TRANSP")
	propTzid         = ical.ComponentProperty("TZID")
	propTzOffsetFrom = ical.ComponentProperty("TZOFFSETFROM")
	propTzOffsetTo   = ical.ComponentProperty("TZOFFSETTO")
	propTzName       = ical.ComponentProperty("TZNAME")
)

var byDay = map[int]rrule.Weekday{
	1: rrule.SU,
	2: rrule.MO,
	3: rrule.TU,
	4: rrule.WE,
	5: rrule.TH,
	6: rrule.FR,
	7: rrule.SA,
}

// ValidWeekday reports whether d is a weekday code (1=Sunday ... 7=Saturday).
func ValidWeekday(d int) bool {
	_, ok := byDay[d]
	return ok
}

// Encoder renders recurring series as an iCalendar document in a single
// fixed-offset zone.
type Encoder struct {
	TZID   string
	TZName string
	Offset time.Duration

	// Now stamps DTSTAMP and UIDs; NewID supplies the random UID suffix.
	Now   func() time.Time
	NewID func() string
}

// NewEncoder returns an Encoder for Asia/Riyadh (+03:00).
func NewEncoder() *Encoder {
	return &Encoder{
		TZID:   DefaultTZID,
		TZName: DefaultTZName,
		Offset: DefaultOffset,
		Now:    time.Now,
		NewID:  uuid.NewString,
	}
}

// Encode is NewEncoder().Encode.
func Encode(series []model.RecurringSeries, start, end time.Time) (string, error) {
	return NewEncoder().Encode(series, start, end)
}

// Encode emits the header, one timezone block, one VEVENT per series and
// the footer, with CRLF line endings. Text values are passed raw; golang-ical
// applies RFC 5545 escaping on serialize. UIDs are unique within the
// document only.
func (e *Encoder) Encode(series []model.RecurringSeries, start, end time.Time) (string, error) {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetCalscale("GREGORIAN")
	cal.Components = append(cal.Components, e.timezone())

	now := e.Now().UTC()
	stamp := now.Format(utcLayout)
	until := UntilStamp(end)

	for _, s := range series {
		if !ValidWeekday(s.Weekday) {
			return "", fmt.Errorf("%w: series %s has weekday %d", ErrInvalidWeekday, s.ID, s.Weekday)
		}
		anchor := FirstOccurrence(start, s.Weekday)

		ev := cal.AddEvent(fmt.Sprintf("%s-%s-%s", s.ID, stamp, e.NewID()))
		ev.SetProperty(propDtStamp, stamp)
		ev.SetProperty(ical.ComponentPropertyDtStart, LocalDateTime(anchor, s.Start).Format(localLayout), e.tzParam())
		ev.SetProperty(ical.ComponentPropertyDtEnd, LocalDateTime(anchor, s.End).Format(localLayout), e.tzParam())
		ev.SetProperty(ical.ComponentPropertyRrule, WeeklyRule(s.Weekday, until))
		ev.SetProperty(ical.ComponentPropertySummary, s.Summary)
		if s.Location != "" {
			ev.SetProperty(ical.ComponentPropertyLocation, s.Location)
		}
		if s.Description != "" {
			ev.SetProperty(ical.ComponentPropertyDescription, s.Description)
		}
		if s.Transparency == model.Transparent {
			ev.SetProperty(propTransp, "TRANSPARENT")
		}
	}

	return cal.Serialize(ical.WithNewLineWindows), nil
}

func (e *Encoder) tzParam() ical.PropertyParameter {
	return &ical.KeyValues{Key: "TZID", Value: []string{e.TZID}}
}

// timezone is a static VTIMEZONE with one STANDARD rule; the zone has no
// daylight saving.
func (e *Encoder) timezone() *ical.VTimezone {
	offset := formatOffset(e.Offset)

	std := &ical.Standard{}
	std.SetProperty(ical.ComponentPropertyDtStart, time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC).Add(e.Offset).Format(localLayout))
	std.SetProperty(propTzOffsetFrom, offset)
	std.SetProperty(propTzOffsetTo, offset)
	std.SetProperty(propTzName, e.TZName)

	tz := &ical.VTimezone{}
	tz.SetProperty(propTzid, e.TZID)
	tz.Components = append(tz.Components, std)
	return tz
}

func formatOffset(d time.Duration) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	mins := int(d / time.Minute)
	return fmt.Sprintf("%s%02d%02d", sign, mins/60, mins%60)
}

// FirstOccurrence returns the first date on or after semesterStart whose
// weekday matches (1=Sunday ... 7=Saturday).
func FirstOccurrence(semesterStart time.Time, weekday int) time.Time {
	d := time.Date(semesterStart.Year(), semesterStart.Month(), semesterStart.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Weekday(weekday - 1)
	shift := (int(target) - int(d.Weekday()) + 7) % 7
	return d.AddDate(0, 0, shift)
}

// LocalDateTime places a minute-of-day value on date. Values outside
// [0, 1440) move the date by whole days; the clock uses the value modulo
// 1440. The result is a wall-clock time carried in UTC.
func LocalDateTime(date time.Time, minutes int) time.Time {
	days := floorDiv(minutes, minutesPerDay)
	wrapped := minutes - days*minutesPerDay
	base := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return base.Add(time.Duration(wrapped) * time.Minute)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// UntilStamp is the last instant of the inclusive semester end date.
func UntilStamp(end time.Time) time.Time {
	return time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
}

// WeeklyRule renders FREQ=WEEKLY bounded by until and restricted to weekday.
func WeeklyRule(weekday int, until time.Time) string {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Until:     until,
		Byweekday: []rrule.Weekday{byDay[weekday]},
	}
	return opt.RRuleString()
}

// Filename returns the download name for a student's schedule, folded to
// ASCII so it survives any filesystem.
func Filename(student string) string {
	name := unidecode.Unidecode(strings.TrimSpace(student))
	name = strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-')
	}), "_")
	if name == "" {
		name = "Student"
	}
	return "schedule_" + name + ".ics"
}
