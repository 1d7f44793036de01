package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schtocal/internal/i18n"
	"schtocal/internal/model"
	"schtocal/internal/remap"
)

func semester() model.SemesterOptions {
	return model.SemesterOptions{
		Start: time.Date(2026, 1, 18, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC),
		Mode:  remap.ModeOff,
		Lang:  i18n.English,
	}
}

func cs101() model.Course {
	return model.Course{
		Code:       "CS101",
		Name:       "Intro to Computing",
		Activity:   "محاضرة",
		Section:    "171",
		Instructor: "Dr. Salem",
		Schedule: []model.ScheduleEntry{
			{Days: []int{2, 4}, StartTime: "09:00 AM", EndTime: "10:40 AM", Room: "5-2A3"},
		},
	}
}

func TestBuildScenario(t *testing.T) {
	got := Build([]model.Course{cs101()}, semester())
	require.Len(t, got, 2)

	assert.Equal(t, 2, got[0].Weekday)
	assert.Equal(t, 4, got[1].Weekday)
	for _, s := range got {
		assert.Equal(t, 540, s.Start)
		assert.Equal(t, 640, s.End)
		assert.Equal(t, "CS101 📚📖", s.Summary)
		assert.Equal(t, "5-2A3", s.Location)
		assert.Equal(t, model.Opaque, s.Transparency)
		assert.Equal(t, "CS101", s.ColorGroup)
		assert.Contains(t, s.Description, "Intro to Computing\n🔢 171\n👨‍🏫 Dr. Salem\n📍 5-2A3")
	}
	assert.Equal(t, "CS101-0-2", got[0].ID)
}

func TestBuildIsDeterministic(t *testing.T) {
	courses := []model.Course{cs101(), {
		Code:     "MATH 201",
		Activity: "تمارين",
		Schedule: []model.ScheduleEntry{
			{Days: []int{1, 3, 5}, StartTime: "01:00 م", EndTime: "01:50 م", Room: "54-1 a 12"},
		},
	}}
	opts := semester()
	opts.CommuteIn = 30
	opts.CommuteOut = 45
	opts.CourseGlyphs = map[string]string{"MATH-201": "📐"}

	assert.Equal(t, Build(courses, opts), Build(courses, opts))
}

func TestBuildSkipsEntriesWithoutTimesAndBadDays(t *testing.T) {
	c := model.Course{
		Code: "PHYS 110",
		Schedule: []model.ScheduleEntry{
			{Days: []int{2}, StartTime: "", EndTime: "10:00 AM"},
			{Days: []int{0, 8, 3}, StartTime: "08:00 AM", EndTime: "08:50 AM"},
		},
	}
	got := Build([]model.Course{c}, semester())
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Weekday)
	assert.Equal(t, "PHYS-110-1-3", got[0].ID)
	assert.Equal(t, "PHYS 110 📚", got[0].Summary)
}

func TestBuildCommute(t *testing.T) {
	courses := []model.Course{
		cs101(),
		{Code: "ENG 100", Schedule: []model.ScheduleEntry{
			{Days: []int{2}, StartTime: "01:00 PM", EndTime: "02:15 PM"},
		}},
	}
	opts := semester()
	opts.CommuteIn = 30
	opts.CommuteOut = 20

	got := Build(courses, opts)
	var commute []model.RecurringSeries
	for _, s := range got {
		if s.ColorGroup == model.ColorGroupCommute {
			commute = append(commute, s)
		}
	}
	require.Len(t, commute, 4)

	assert.Equal(t, model.RecurringSeries{
		ID: "drive-to-2", Weekday: 2, Start: 510, End: 540,
		Summary: "🚗 Driving to College", Transparency: model.Transparent, ColorGroup: "driving",
	}, commute[0])
	assert.Equal(t, "drive-from-2", commute[1].ID)
	assert.Equal(t, 855, commute[1].Start)
	assert.Equal(t, 875, commute[1].End)
	assert.Equal(t, "drive-to-4", commute[2].ID)
	assert.Equal(t, 540, commute[2].End)
}

func TestBuildCommuteSkipsNonPositiveDirection(t *testing.T) {
	opts := semester()
	opts.CommuteIn = 0
	opts.CommuteOut = 15
	opts.Lang = i18n.Arabic

	for _, s := range Build([]model.Course{cs101()}, opts) {
		assert.NotContains(t, s.ID, "drive-to")
	}

	opts.CommuteIn = 25
	opts.CommuteOut = -5
	got := Build([]model.Course{cs101()}, opts)
	require.Len(t, got, 4)
	for _, s := range got {
		assert.NotContains(t, s.ID, "drive-from")
	}
	assert.Equal(t, "🚗 القيادة إلى الجامعة", got[2].Summary)
}

func TestParseRoom(t *testing.T) {
	r := ParseRoom(" 54-1 a 12 ")
	assert.True(t, r.Known)
	assert.Equal(t, "A12", r.Label)
	assert.Equal(t, "A12 هندسة وعلوم الحاسب", r.DisplayLocation())

	r = ParseRoom("33 2 1 B B105")
	assert.True(t, r.Known)
	assert.Equal(t, "B105", r.Label)
	assert.Equal(t, "1", r.Floor)

	r = ParseRoom("99 2 1 c 7")
	assert.Equal(t, "C7", r.DisplayLocation())

	r = ParseRoom("Online")
	assert.False(t, r.Known)
	assert.Equal(t, "Online", r.DisplayLocation())
}
