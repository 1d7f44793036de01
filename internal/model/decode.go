package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Weekdays is a list of weekday codes. The timetable scraper emits them
// as strings ("2"), hand-written files usually as integers; both decode.
type Weekdays []int

func parseWeekday(s string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("weekday %q is not a number", s)
	}
	return d, nil
}

func (w *Weekdays) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: days must be a list", value.Line)
	}
	out := make(Weekdays, 0, len(value.Content))
	for _, n := range value.Content {
		if n.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: weekday must be a scalar", n.Line)
		}
		d, err := parseWeekday(n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		out = append(out, d)
	}
	*w = out
	return nil
}

func (w *Weekdays) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Weekdays, 0, len(raw))
	for _, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			s = string(r)
		}
		d, err := parseWeekday(s)
		if err != nil {
			return err
		}
		out = append(out, d)
	}
	*w = out
	return nil
}

// entryFields accepts both snake_case and the scraper's camelCase keys.
type entryFields struct {
	Days       Weekdays `yaml:"days" json:"days"`
	StartTime  string   `yaml:"start_time" json:"start_time"`
	StartTimeC string   `yaml:"startTime" json:"startTime"`
	EndTime    string   `yaml:"end_time" json:"end_time"`
	EndTimeC   string   `yaml:"endTime" json:"endTime"`
	Room       string   `yaml:"room" json:"room"`
}

func (f entryFields) entry() ScheduleEntry {
	return ScheduleEntry{
		Days:      f.Days,
		StartTime: firstNonEmpty(f.StartTime, f.StartTimeC),
		EndTime:   firstNonEmpty(f.EndTime, f.EndTimeC),
		Room:      f.Room,
	}
}

func (e *ScheduleEntry) UnmarshalYAML(value *yaml.Node) error {
	var f entryFields
	if err := value.Decode(&f); err != nil {
		return err
	}
	*e = f.entry()
	return nil
}

func (e *ScheduleEntry) UnmarshalJSON(data []byte) error {
	var f entryFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*e = f.entry()
	return nil
}

type courseFields struct {
	Code          string          `yaml:"code" json:"code"`
	CourseCode    string          `yaml:"courseCode" json:"courseCode"`
	Name          string          `yaml:"name" json:"name"`
	CourseName    string          `yaml:"courseName" json:"courseName"`
	Activity      string          `yaml:"activity" json:"activity"`
	Section       string          `yaml:"section" json:"section"`
	SectionNumber string          `yaml:"sectionNumber" json:"sectionNumber"`
	Instructor    string          `yaml:"instructor" json:"instructor"`
	Schedule      []ScheduleEntry `yaml:"schedule" json:"schedule"`
}

func (f courseFields) course() Course {
	return Course{
		Code:       firstNonEmpty(f.Code, f.CourseCode),
		Name:       firstNonEmpty(f.Name, f.CourseName),
		Activity:   f.Activity,
		Section:    firstNonEmpty(f.Section, f.SectionNumber),
		Instructor: f.Instructor,
		Schedule:   f.Schedule,
	}
}

func (c *Course) UnmarshalYAML(value *yaml.Node) error {
	var f courseFields
	if err := value.Decode(&f); err != nil {
		return err
	}
	*c = f.course()
	return nil
}

func (c *Course) UnmarshalJSON(data []byte) error {
	var f courseFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = f.course()
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
