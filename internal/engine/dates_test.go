package engine_test

import (
	"testing"
	"time"

	"github.com/practissac/go-certificate/internal/engine"
	"github.com/practissac/go-certificate/internal/locale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) engine.CalendarDate {
	t.Helper()
	d := engine.ParseDate(s, true)
	require.False(t, d.IsZero(), "fixture %q must parse", s)
	return d
}

func TestParseDate_AcceptedShapes(t *testing.T) {
	tests := []struct {
		input      string
		slashedISO bool
		year       int
		month      time.Month
		day        int
	}{
		{"2025-10-15", false, 2025, time.October, 15},
		{"15/10/2025", false, 2025, time.October, 15},
		{"2025-10-15", true, 2025, time.October, 15},
		{"2025/10/15", true, 2025, time.October, 15},
		{"2025-10/15", true, 2025, time.October, 15},
		{"29/02/2024", false, 2024, time.February, 29},
		{"0001-01-01", false, 1, time.January, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := engine.ParseDate(tt.input, tt.slashedISO)
			require.False(t, d.IsZero())
			assert.Equal(t, tt.year, d.Year())
			assert.Equal(t, tt.month, d.Month())
			assert.Equal(t, tt.day, d.Day())
		})
	}
}

func TestParseDate_Rejected(t *testing.T) {
	tests := []struct {
		input      string
		slashedISO bool
	}{
		{"", true},
		{"2025/10/15", false}, // slashed ISO only where enabled
		{"2025-1-5", true},
		{"15-10-2025", true},
		{"15/10/25", true},
		{"2025-10-15T00:00:00", true},
		{" 2025-10-15", true},
		{"2025-13-01", true},
		{"2025-02-29", true},
		{"31/04/2025", true},
		{"00/01/2025", true},
		{"hoy", true},
		{"２０２５-10-15", true}, // full-width digits
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.True(t, engine.ParseDate(tt.input, tt.slashedISO).IsZero())
		})
	}
}

// TestParseDate_LimaMidnight checks that dates are anchored to UTC-05:00
// regardless of the process time zone.
func TestParseDate_LimaMidnight(t *testing.T) {
	d := date(t, "2025-01-01")

	_, offset := d.Time().Zone()
	assert.Equal(t, -5*60*60, offset)
	assert.Equal(t, time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC), d.Time().UTC())
	assert.Equal(t, 0, d.Time().Hour())
}

func TestNewCalendarDate_Invalid(t *testing.T) {
	assert.True(t, engine.NewCalendarDate(2025, time.February, 30).IsZero())
	assert.True(t, engine.NewCalendarDate(2025, 0, 10).IsZero())
	assert.False(t, engine.NewCalendarDate(2025, time.December, 31).IsZero())
}

func formatters(t *testing.T) map[string]engine.Formatter {
	t.Helper()
	catalog, err := locale.Load("es")
	require.NoError(t, err)
	return map[string]engine.Formatter{
		"builtin": {},
		"catalog": {Tr: catalog},
	}
}

func TestFormatter_Long(t *testing.T) {
	for name, f := range formatters(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, "15 de octubre del 2025", f.Long(date(t, "2025-10-15")))
			assert.Equal(t, "01 de enero del 2025", f.Long(date(t, "01/01/2025")))
			assert.Equal(t, "31 de diciembre del 2024", f.Long(date(t, "2024/12/31")))
			assert.Equal(t, "", f.Long(engine.CalendarDate{}))
		})
	}
}

func TestFormatter_Range(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       string
	}{
		{"Same month", "2025-10-10", "2025-10-15", "10 de octubre al 15 de octubre del 2025"},
		{"Different months", "2025-11-01", "2025-12-01", "01 de noviembre al 01 de diciembre del 2025"},
		{"Different years", "2024-12-31", "2025-01-02", "31 de diciembre del 2024 al 02 de enero del 2025"},
		{"Mixed input shapes", "10/10/2025", "2025-10-15", "10 de octubre al 15 de octubre del 2025"},
	}

	for name, f := range formatters(t) {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				assert.Equal(t, tt.want, f.Range(date(t, tt.start), date(t, tt.end)))
			})
		}
	}
}

func TestFormatter_RangeMissingDate(t *testing.T) {
	f := engine.Formatter{}
	d := date(t, "2025-10-15")

	assert.Equal(t, "", f.Range(engine.CalendarDate{}, d))
	assert.Equal(t, "", f.Range(d, engine.CalendarDate{}))
	assert.Equal(t, "", f.Range(engine.ParseDate("bad", true), d))
}

func TestFormatter_English(t *testing.T) {
	catalog, err := locale.Load("en")
	require.NoError(t, err)
	f := engine.Formatter{Tr: catalog}

	assert.Equal(t, "October 15, 2025", f.Long(date(t, "2025-10-15")))
	assert.Equal(t, "December 31, 2024 to January 02, 2025", f.Range(date(t, "2024-12-31"), date(t, "2025-01-02")))
}

func TestFlow_SelectDates(t *testing.T) {
	tests := []struct {
		name        string
		flow        engine.Flow
		query       string
		wantPrimary string // "" means no date
		wantRange   bool
	}{
		{"Certificate canonical date", engine.CertificateFlow(), "fecha=2025-10-15&fecha_fin=2025-11-20", "2025-10-15", false},
		{"Certificate falls back to end", engine.CertificateFlow(), "fecha_fin=2025-11-20", "2025-11-20", false},
		{"Certificate invalid canonical falls back", engine.CertificateFlow(), "fecha=nope&fecha_fin=20/11/2025", "2025-11-20", false},
		{"Certificate range", engine.CertificateFlow(), "fecha_inicio=2025-10-10&fecha_fin=2025-10-15", "2025-10-15", true},
		{"Certificate start only", engine.CertificateFlow(), "fecha_inicio=2025-10-10", "", false},
		{"Certificate slashed ISO", engine.CertificateFlow(), "fecha=2025/10/15", "2025-10-15", false},
		{"Diploma ignores fecha", engine.DiplomaFlow(), "fecha=2025-10-15", "", false},
		{"Diploma uses end", engine.DiplomaFlow(), "fecha=2025-01-01&fecha_fin=2025-10-15", "2025-10-15", false},
		{"Diploma range", engine.DiplomaFlow(), "fecha_inicio=10/10/2025&fecha_fin=15/10/2025", "2025-10-15", true},
		{"Diploma rejects slashed ISO", engine.DiplomaFlow(), "fecha_fin=2025/10/15", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := tt.flow.SelectDates(engine.ReadParameters(tt.query))

			if tt.wantPrimary == "" {
				assert.True(t, dates.Primary.IsZero())
			} else {
				assert.Equal(t, date(t, tt.wantPrimary), dates.Primary)
			}
			assert.Equal(t, tt.wantRange, dates.HasRange())
		})
	}
}
