package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/practissac/go-certificate/internal/config"
)

// LimaZone is the fixed UTC-05:00 zone every CalendarDate is anchored to,
// so a certificate shows the same date wherever it is rendered.
var LimaZone = time.FixedZone(config.LimaZoneName, config.LimaOffsetSeconds)

var (
	// YYYY-MM-DD
	isoDashPattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	// YYYY-MM-DD or YYYY/MM/DD, separators chosen independently.
	isoAnyPattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})$`)
	// DD/MM/YYYY
	dmyPattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
)

// CalendarDate is a date without time of day, pinned to local midnight in LimaZone.
// The zero value means "no date".
type CalendarDate struct {
	t time.Time
}

// NewCalendarDate returns the date for y-m-d, or the zero CalendarDate when
// the fields do not name a real day (month 13, February 30, ...).
func NewCalendarDate(y int, m time.Month, d int) CalendarDate {
	t := time.Date(y, m, d, 0, 0, 0, 0, LimaZone)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return CalendarDate{}
	}
	return CalendarDate{t: t}
}

// IsZero reports whether d is "no date".
func (d CalendarDate) IsZero() bool { return d.t.IsZero() }

// Year returns the year in LimaZone.
func (d CalendarDate) Year() int { return d.t.Year() }

// Month returns the month in LimaZone.
func (d CalendarDate) Month() time.Month { return d.t.Month() }

// Day returns the day of the month in LimaZone.
func (d CalendarDate) Day() int { return d.t.Day() }

// Time returns the midnight instant of d in LimaZone.
func (d CalendarDate) Time() time.Time { return d.t }

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool { return d.t.Before(other.t) }

// ParseDate reads YYYY-MM-DD or DD/MM/YYYY, plus YYYY/MM/DD when slashedISO is set.
// Any other input, including impossible days, yields the zero CalendarDate.
func ParseDate(s string, slashedISO bool) CalendarDate {
	if s == "" {
		return CalendarDate{}
	}

	iso := isoDashPattern
	if slashedISO {
		iso = isoAnyPattern
	}
	if m := iso.FindStringSubmatch(s); m != nil {
		return dateFromParts(m[1], m[2], m[3])
	}
	if m := dmyPattern.FindStringSubmatch(s); m != nil {
		return dateFromParts(m[3], m[2], m[1])
	}
	return CalendarDate{}
}

func dateFromParts(year, month, day string) CalendarDate {
	// The patterns guarantee digits only.
	y, _ := strconv.Atoi(year)
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return NewCalendarDate(y, time.Month(m), d)
}

// Translator supplies the localized month names and date phrases.
// locale.Catalog implements it.
type Translator interface {
	Message(key string, data map[string]any) string
	MonthName(m time.Month) string
}

// Formatter spells out dates as prose. Without a Translator it uses the
// built-in Spanish phrases.
type Formatter struct {
	Tr Translator
}

// Long renders "15 de octubre del 2025". The zero date renders as "".
func (f Formatter) Long(d CalendarDate) string {
	if d.IsZero() {
		return ""
	}
	if f.Tr == nil {
		return fmt.Sprintf(config.FallbackDateLong, day2(d), f.month(d), d.Year())
	}
	return f.Tr.Message(config.TKeyDateLong, map[string]any{
		config.TDataDay:   day2(d),
		config.TDataMonth: f.month(d),
		config.TDataYear:  d.Year(),
	})
}

// Range renders the interval between start and end. Dates in the same year
// share a single year suffix; otherwise each side carries its own year.
// If either date is zero the result is "".
func (f Formatter) Range(start, end CalendarDate) string {
	if start.IsZero() || end.IsZero() {
		return ""
	}

	d1, m1, y1 := day2(start), f.month(start), start.Year()
	d2, m2, y2 := day2(end), f.month(end), end.Year()

	if y1 == y2 {
		if f.Tr == nil {
			return fmt.Sprintf(config.FallbackRangeSameYear, d1, m1, d2, m2, y2)
		}
		return f.Tr.Message(config.TKeyDateRangeSameYear, map[string]any{
			config.TDataDay1:   d1,
			config.TDataMonth1: m1,
			config.TDataDay2:   d2,
			config.TDataMonth2: m2,
			config.TDataYear:   y2,
		})
	}

	if f.Tr == nil {
		return fmt.Sprintf(config.FallbackRangeCrossYear, d1, m1, y1, d2, m2, y2)
	}
	return f.Tr.Message(config.TKeyDateRangeCrossYear, map[string]any{
		config.TDataDay1:   d1,
		config.TDataMonth1: m1,
		config.TDataYear1:  y1,
		config.TDataDay2:   d2,
		config.TDataMonth2: m2,
		config.TDataYear2:  y2,
	})
}

func (f Formatter) month(d CalendarDate) string {
	if f.Tr == nil {
		return config.FallbackMonths[d.Month()-1]
	}
	return f.Tr.MonthName(d.Month())
}

func day2(d CalendarDate) string {
	return fmt.Sprintf(config.FormatDay2, d.Day())
}
