package gcal

import (
	"math/rand"

	"schtocal/internal/model"
)

// Color is one Google Calendar event color.
type Color struct {
	ID   string
	Name string
}

// Palette lists the event colors accepted by Google Calendar.
var Palette = []Color{
	{ID: "1", Name: "Lavender"},
	{ID: "2", Name: "Sage"},
	{ID: "3", Name: "Grape"},
	{ID: "4", Name: "Flamingo"},
	{ID: "5", Name: "Banana"},
	{ID: "6", Name: "Tangerine"},
	{ID: "7", Name: "Peacock"},
	{ID: "8", Name: "Graphite"},
	{ID: "9", Name: "Blueberry"},
	{ID: "10", Name: "Basil"},
	{ID: "11", Name: "Tomato"},
}

// ValidColor reports whether id names a palette entry.
func ValidColor(id string) bool {
	for _, c := range Palette {
		if c.ID == id {
			return true
		}
	}
	return false
}

// assignColors maps every color group in series to a palette id. Valid
// overrides are used as given. The palette is shuffled once and the
// remaining groups take colors round-robin in first-seen order, skipping
// colors already claimed by an override.
func assignColors(series []model.RecurringSeries, overrides map[string]string, shuffle func(n int, swap func(i, j int))) map[string]string {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	out := make(map[string]string)
	claimed := make(map[string]bool)
	for group, id := range overrides {
		if ValidColor(id) {
			out[group] = id
			claimed[id] = true
		}
	}

	ids := make([]string, len(Palette))
	for i, c := range Palette {
		ids[i] = c.ID
	}
	shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	free := make([]string, 0, len(ids))
	for _, id := range ids {
		if !claimed[id] {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		free = ids
	}

	next := 0
	for _, s := range series {
		if _, ok := out[s.ColorGroup]; ok {
			continue
		}
		out[s.ColorGroup] = free[next%len(free)]
		next++
	}
	return out
}
