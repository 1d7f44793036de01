package model

import (
	"time"

	"schtocal/internal/i18n"
	"schtocal/internal/remap"
)

// ScheduleEntry is one meeting pattern of a course as scraped from the
// timetable: the weekdays it repeats on (1=Sunday ... 7=Saturday), the raw
// localized clock strings and the raw room string. Decoding also accepts
// the scraper's camelCase keys (see decode.go).
type ScheduleEntry struct {
	Days      Weekdays `yaml:"days" json:"days"`
	StartTime string   `yaml:"start_time" json:"start_time"`
	EndTime   string   `yaml:"end_time" json:"end_time"`
	Room      string   `yaml:"room" json:"room"`
}

// Course is a registered course section.
type Course struct {
	Code       string          `yaml:"code" json:"code"`
	Name       string          `yaml:"name" json:"name"`
	Activity   string          `yaml:"activity" json:"activity"`
	Section    string          `yaml:"section" json:"section"`
	Instructor string          `yaml:"instructor" json:"instructor"`
	Schedule   []ScheduleEntry `yaml:"schedule" json:"schedule"`
}

type Transparency string

const (
	Opaque      Transparency = "opaque"
	Transparent Transparency = "transparent"
)

// ColorGroupCommute is the color group shared by all commute events.
const ColorGroupCommute = "driving"

// RecurringSeries is one weekly event: a single weekday with a fixed
// minute-of-day interval. Start/End follow remap.AdjustedTime and may lie
// outside [0, 1440).
type RecurringSeries struct {
	ID           string       `json:"id"`
	Weekday      int          `json:"weekday"`
	Start        int          `json:"start"`
	End          int          `json:"end"`
	Summary      string       `json:"summary"`
	Location     string       `json:"location,omitempty"`
	Description  string       `json:"description,omitempty"`
	Transparency Transparency `json:"transparency"`
	ColorGroup   string       `json:"color_group"`
}

// SemesterOptions controls generation for one semester.
type SemesterOptions struct {
	// Start and End are civil dates; End is inclusive.
	Start time.Time
	End   time.Time

	// CommuteIn / CommuteOut are minutes of travel before the first and
	// after the last class of a day. Zero or negative disables a direction.
	CommuteIn  int
	CommuteOut int

	Mode remap.Mode

	// CourseGlyphs maps a sanitized course code to the glyph placed in
	// the event summary.
	CourseGlyphs map[string]string
	CommuteGlyph string

	Lang i18n.Lang
}

// Occurrence represents a single concrete instance of a weekly series
// after recurrence expansion.
type Occurrence struct {
	UID string `json:"uid"`

	// InstanceKey uniquely identifies one occurrence of a series; it is
	// derived from the local start time.
	InstanceKey string `json:"instance_key"`

	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Transparent bool   `json:"transparent"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

const dateLayout = "2006-01-02"

// SemesterTag identifies all remote events generated for one semester.
// It depends on the dates only, so changing other settings still targets
// the same event set.
func SemesterTag(start, end time.Time) string {
	return start.Format(dateLayout) + "_" + end.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD civil date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}
