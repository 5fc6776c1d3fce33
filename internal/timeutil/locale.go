package timeutil

import (
	"time"

	"golang.org/x/text/language"
)

// DefaultLocale is used when no display locale is configured.
const DefaultLocale = "fr-FR"

type localeLayout struct {
	date     string
	dateTime string
}

var (
	supportedLocales = []language.Tag{
		language.MustParse("fr-FR"),
		language.AmericanEnglish,
		language.BritishEnglish,
		language.MustParse("de-DE"),
		language.MustParse("ar-TN"),
	}
	localeLayouts = []localeLayout{
		{date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
		{date: "1/2/2006", dateTime: "1/2/2006, 3:04:05 PM"},
		{date: "02/01/2006", dateTime: "02/01/2006, 15:04:05"},
		{date: "02.01.2006", dateTime: "02.01.2006, 15:04:05"},
		{date: "02/01/2006", dateTime: "02/01/2006 15:04:05"},
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

func layoutFor(locale string) localeLayout {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return localeLayouts[0]
	}
	_, idx, confidence := localeMatcher.Match(tag)
	if confidence == language.No {
		return localeLayouts[0]
	}
	return localeLayouts[idx]
}

// FormatLocaleDate renders a calendar date for display in the given locale.
// A zero time renders as an empty string.
func FormatLocaleDate(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layoutFor(locale).date)
}

// FormatLocaleDateTime renders a timestamp for display in the given locale.
func FormatLocaleDateTime(t time.Time, locale string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layoutFor(locale).dateTime)
}
