// Package remap converts localized class meeting times into minute-of-day
// intervals, optionally applying one of the compressed (fasting-month)
// schedules published by the institution.
package remap

import (
	"regexp"
	"strconv"
	"strings"
)

const minutesPerDay = 1440

// Mode selects the time-remapping policy.
type Mode string

const (
	ModeOff         Mode = "off"
	ModeEngineering Mode = "engineering"
	ModeFirstYear   Mode = "firstYear"
)

// ParseMode maps a stored mode value to a Mode. The legacy boolean value
// "on" predates the two compressed variants and means engineering.
func ParseMode(s string) (Mode, bool) {
	switch strings.TrimSpace(s) {
	case "", string(ModeOff), "false":
		return ModeOff, true
	case string(ModeEngineering), "on", "true":
		return ModeEngineering, true
	case string(ModeFirstYear):
		return ModeFirstYear, true
	default:
		return ModeOff, false
	}
}

// AdjustedTime is a meeting interval in minutes from local midnight. End may
// be past 1440 when the meeting spills into the next day.
type AdjustedTime struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Duration returns End-Start in minutes.
func (a AdjustedTime) Duration() int {
	return a.End - a.Start
}

// Strategy remaps a meeting that starts at the given 24-hour clock hour.
// start and end are the original minute totals. ok is false when the hour is
// not covered by the strategy's table.
type Strategy interface {
	Remap(hour, start, end int) (adj AdjustedTime, ok bool)
}

var strategies = map[Mode]Strategy{
	ModeEngineering: engineering{},
	ModeFirstYear:   firstYear{},
}

// StrategyFor returns the strategy bound to mode, or nil for ModeOff and
// unknown modes.
func StrategyFor(mode Mode) Strategy {
	return strategies[mode]
}

var numerals = regexp.MustCompile(`\d+`)

// Adjust parses the two clock strings and returns the remapped interval.
// Strings that do not carry an hour and a minute yield {0, 0}.
func Adjust(startStr, endStr string, mode Mode) AdjustedTime {
	sHour, sMin, ok := parseClock(startStr)
	if !ok {
		return AdjustedTime{}
	}
	eHour, eMin, ok := parseClock(endStr)
	if !ok {
		return AdjustedTime{}
	}

	start := sHour*60 + sMin
	end := eHour*60 + eMin

	if s := StrategyFor(mode); s != nil {
		if adj, ok := s.Remap(sHour, start, end); ok {
			return adj
		}
	}

	// Non-core hours and ModeOff keep the normal schedule.
	if end <= start {
		end += minutesPerDay
	}
	return AdjustedTime{Start: start, End: end}
}

// parseClock extracts hour and minute and converts to a 24-hour clock using
// the Arabic (ص / م) or Latin (AM / PM) period markers.
func parseClock(s string) (hour, minute int, ok bool) {
	groups := numerals.FindAllString(s, -1)
	if len(groups) < 2 {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(groups[0])
	minute, _ = strconv.Atoi(groups[1])

	upper := strings.ToUpper(s)
	switch {
	case (strings.Contains(s, "م") || strings.Contains(upper, "PM")) && hour != 12:
		hour += 12
	case (strings.Contains(s, "ص") || strings.Contains(upper, "AM")) && hour == 12:
		hour = 0
	}
	return hour, minute, true
}

// originalDuration treats an end at or before the start as crossing midnight.
func originalDuration(start, end int) int {
	if end > start {
		return end - start
	}
	return end + minutesPerDay - start
}
