package remap

import "math"

const (
	standardPeriodMinutes = 50
	compressedTeaching    = 35
	compressedBreak       = 5
	firstYearRatio        = 0.7
)

type slot struct {
	start, end int
}

func hm(h, m int) int { return h*60 + m }

// engineeringStarts maps a standard start hour to its compressed start.
var engineeringStarts = map[int]int{
	8:  hm(10, 0),
	9:  hm(10, 40),
	10: hm(11, 20),
	11: hm(12, 30),
	13: hm(13, 10),
	14: hm(13, 50),
	15: hm(14, 30),
	16: hm(15, 10),
	17: hm(21, 30),
	18: hm(22, 10),
	19: hm(22, 50),
	20: hm(23, 30),
	21: hm(24, 10),
	22: hm(24, 50),
}

// engineeringSlots is the published compressed timetable, in order. The gap
// between 11:55 and 12:30 is the midday prayer break.
var engineeringSlots = []slot{
	{hm(10, 0), hm(10, 35)},
	{hm(10, 40), hm(11, 15)},
	{hm(11, 20), hm(11, 55)},
	{hm(12, 30), hm(13, 5)},
	{hm(13, 10), hm(13, 45)},
	{hm(13, 50), hm(14, 25)},
	{hm(14, 30), hm(15, 5)},
	{hm(15, 10), hm(15, 45)},
	{hm(21, 30), hm(22, 5)},
	{hm(22, 10), hm(22, 45)},
	{hm(22, 50), hm(23, 25)},
	{hm(23, 30), hm(24, 5)},
	{hm(24, 10), hm(24, 45)},
	{hm(24, 50), hm(25, 25)},
}

type engineering struct{}

func (engineering) Remap(hour, start, end int) (AdjustedTime, bool) {
	mapped, ok := engineeringStarts[hour]
	if !ok {
		return AdjustedTime{}, false
	}
	periods := periodCount(originalDuration(start, end))
	return AdjustedTime{Start: mapped, End: engineeringEnd(mapped, periods)}, true
}

// periodCount is how many standard 50-minute periods a duration spans,
// rounded up, never less than one.
func periodCount(duration int) int {
	n := (duration + standardPeriodMinutes - 1) / standardPeriodMinutes
	if n < 1 {
		n = 1
	}
	return n
}

func engineeringEnd(mappedStart, periods int) int {
	idx := -1
	for i, s := range engineeringSlots {
		if s.start == mappedStart {
			idx = i
			break
		}
	}
	if idx == -1 {
		return mappedStart + compressedTeaching*periods + compressedBreak*(periods-1)
	}
	last := idx + periods - 1
	if last >= len(engineeringSlots) {
		last = len(engineeringSlots) - 1
	}
	return engineeringSlots[last].end
}

// firstYearStarts covers the preparatory-year evening schedule. The last
// three hours land after midnight.
var firstYearStarts = map[int]int{
	13: hm(21, 30),
	14: hm(22, 10),
	15: hm(22, 50),
	16: hm(23, 30),
	17: hm(0, 10),
	18: hm(0, 50),
	19: hm(1, 30),
}

type firstYear struct{}

func (firstYear) Remap(hour, start, end int) (AdjustedTime, bool) {
	mapped, ok := firstYearStarts[hour]
	if !ok {
		return AdjustedTime{}, false
	}
	d := int(math.Round(float64(originalDuration(start, end)) * firstYearRatio))
	return AdjustedTime{Start: mapped, End: mapped + d}, true
}
