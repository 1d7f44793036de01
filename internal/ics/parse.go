package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "schtocal/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT read back from
// a generated document. Recurrence expansion operates on this type.
type ParsedEvent struct {
	UID string

	Summary     string
	Description string
	Location    string
	Transparent bool

	// Start / End carry the wall clock in the document's zone.
	Start time.Time
	End   time.Time
	TZID  string

	RawRRule string
}

// ParseICS decodes body into events. DTSTART/DTEND values carrying the
// zone named by e.TZID are read with e.Offset; other TZIDs are resolved
// through the tz database.
func (e *Encoder) ParseICS(body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := e.parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "event_count", len(events))
	return events, nil
}

// ParseICS is NewEncoder().ParseICS.
func ParseICS(body []byte) ([]ParsedEvent, error) {
	return NewEncoder().ParseICS(body)
}

func (e *Encoder) parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(propTransp); p != nil {
		out.Transparent = strings.EqualFold(p.Value, "TRANSPARENT")
	}

	start, tzid, err := e.localTime(ve.GetProperty(ical.ComponentPropertyDtStart))
	if err != nil {
		return out, err
	}
	end, _, err := e.localTime(ve.GetProperty(ical.ComponentPropertyDtEnd))
	if err != nil {
		return out, err
	}
	out.Start, out.End, out.TZID = start, end, tzid

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	return out, nil
}

func (e *Encoder) localTime(p *ical.IANAProperty) (time.Time, string, error) {
	if p == nil || p.Value == "" {
		return time.Time{}, "", errors.New("missing date-time")
	}

	v := strings.TrimSpace(p.Value)
	if strings.HasSuffix(v, "Z") {
		t, err := time.Parse(utcLayout, v)
		return t, "UTC", err
	}

	tzid := ""
	if tzs, ok := p.ICalParameters["TZID"]; ok && len(tzs) > 0 {
		tzid = tzs[0]
	}

	loc := time.Local
	switch {
	case tzid == e.TZID:
		loc = time.FixedZone(e.TZName, int(e.Offset/time.Second))
	case tzid != "":
		l, err := time.LoadLocation(tzid)
		if err != nil {
			return time.Time{}, tzid, err
		}
		loc = l
	}

	t, err := time.ParseInLocation(localLayout, v, loc)
	return t, tzid, err
}

// RuleWeekdays returns the BYDAY codes of a raw RRULE value.
func RuleWeekdays(raw string) []string {
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(k, "BYDAY") {
			return strings.Split(v, ",")
		}
	}
	return nil
}
