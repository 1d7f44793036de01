// Package series turns a course list into the canonical set of weekly
// recurring events shared by the ICS encoder and the Google syncer.
package series

import (
	"fmt"
	"regexp"
	"strings"

	"schtocal/internal/i18n"
	"schtocal/internal/model"
	"schtocal/internal/remap"
)

const (
	DefaultCourseGlyph  = "📚"
	DefaultCommuteGlyph = "🚗"

	activityLecture  = "محاضرة"
	activityTutorial = "تمارين"
)

var whitespace = regexp.MustCompile(`\s+`)

// GroupKey is the course code with whitespace runs replaced by "-". It keys
// glyphs and colors and prefixes series ids.
func GroupKey(code string) string {
	return whitespace.ReplaceAllString(code, "-")
}

func activityGlyph(activity string) string {
	switch activity {
	case activityLecture:
		return "📖"
	case activityTutorial:
		return "🎯"
	default:
		return ""
	}
}

type bounds struct {
	start, end int
}

// Build emits one series per (course, entry, weekday) with both clock
// strings present, followed by commute series ordered by weekday. The
// result depends only on its inputs.
func Build(courses []model.Course, opts model.SemesterOptions) []model.RecurringSeries {
	out := make([]model.RecurringSeries, 0)
	daily := make(map[int]*bounds)

	for _, course := range courses {
		key := GroupKey(course.Code)
		glyph, ok := opts.CourseGlyphs[key]
		if !ok {
			glyph = DefaultCourseGlyph
		}
		summary := strings.TrimSpace(course.Code + " " + glyph + activityGlyph(course.Activity))

		for entryIdx, entry := range course.Schedule {
			if entry.StartTime == "" || entry.EndTime == "" {
				continue
			}
			adj := remap.Adjust(entry.StartTime, entry.EndTime, opts.Mode)
			room := ParseRoom(entry.Room)
			description := fmt.Sprintf("%s\n🔢 %s\n👨‍🏫 %s\n📍 %s",
				course.Name, course.Section, course.Instructor, entry.Room)

			for _, day := range entry.Days {
				if day < 1 || day > 7 {
					continue
				}
				out = append(out, model.RecurringSeries{
					ID:           fmt.Sprintf("%s-%d-%d", key, entryIdx, day),
					Weekday:      day,
					Start:        adj.Start,
					End:          adj.End,
					Summary:      summary,
					Location:     room.DisplayLocation(),
					Description:  description,
					Transparency: model.Opaque,
					ColorGroup:   key,
				})

				if b, ok := daily[day]; !ok {
					daily[day] = &bounds{start: adj.Start, end: adj.End}
				} else {
					b.start = min(b.start, adj.Start)
					b.end = max(b.end, adj.End)
				}
			}
		}
	}

	if opts.CommuteIn > 0 || opts.CommuteOut > 0 {
		out = append(out, commute(daily, opts)...)
	}
	return out
}

func commute(daily map[int]*bounds, opts model.SemesterOptions) []model.RecurringSeries {
	labels := i18n.For(opts.Lang)
	glyph := opts.CommuteGlyph
	if glyph == "" {
		glyph = DefaultCommuteGlyph
	}

	var out []model.RecurringSeries
	for day := 1; day <= 7; day++ {
		b, ok := daily[day]
		if !ok {
			continue
		}
		if opts.CommuteIn > 0 {
			out = append(out, model.RecurringSeries{
				ID:           fmt.Sprintf("drive-to-%d", day),
				Weekday:      day,
				Start:        b.start - opts.CommuteIn,
				End:          b.start,
				Summary:      glyph + " " + labels.CommuteTo,
				Transparency: model.Transparent,
				ColorGroup:   model.ColorGroupCommute,
			})
		}
		if opts.CommuteOut > 0 {
			out = append(out, model.RecurringSeries{
				ID:           fmt.Sprintf("drive-from-%d", day),
				Weekday:      day,
				Start:        b.end,
				End:          b.end + opts.CommuteOut,
				Summary:      glyph + " " + labels.CommuteFrom,
				Transparency: model.Transparent,
				ColorGroup:   model.ColorGroupCommute,
			})
		}
	}
	return out
}
