// Package i18n holds the few user-facing strings that end up inside
// generated calendar events.
package i18n

import (
	"golang.org/x/text/language"
)

// Lang is a supported output language.
type Lang string

const (
	Arabic  Lang = "ar"
	English Lang = "en"
)

// Strings are the labels used for synthetic events.
type Strings struct {
	CommuteTo   string
	CommuteFrom string
}

var catalog = map[Lang]Strings{
	Arabic: {
		CommuteTo:   "القيادة إلى الجامعة",
		CommuteFrom: "العودة للمنزل",
	},
	English: {
		CommuteTo:   "Driving to College",
		CommuteFrom: "Driving Back Home",
	},
}

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// Parse resolves a BCP 47 tag such as "ar-SA" or "en-GB" to a supported
// language. Anything unparsable resolves to Arabic.
func Parse(s string) Lang {
	tag, err := language.Parse(s)
	if err != nil {
		return Arabic
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Arabic
	}
	if idx == 1 {
		return English
	}
	return Arabic
}

// For returns the labels for l, defaulting to Arabic.
func For(l Lang) Strings {
	if s, ok := catalog[l]; ok {
		return s
	}
	return catalog[Arabic]
}
