package engine

import (
	"time"

	"github.com/practissac/go-certificate/internal/config"
)

// DatePolicy selects which parameter feeds the primary displayed date.
type DatePolicy int

const (
	// DatePolicyCanonical shows "fecha", or "fecha_fin" when "fecha" is missing.
	DatePolicyCanonical DatePolicy = iota
	// DatePolicyEndDate always shows "fecha_fin" and ignores "fecha".
	DatePolicyEndDate
)

// Flow configures one kind of page rendered by the Pipeline.
type Flow struct {
	Name             string
	DatePolicy       DatePolicy
	AcceptSlashedISO bool          // also accept YYYY/MM/DD
	HardenLinks      bool          // rel="noopener noreferrer" target="_blank" on the QR link
	QRTimeout        time.Duration // bound on the generator call; <= 0 means config.DefaultQRTimeout
}

// CertificateFlow renders certificates: a canonical single date plus an
// optional course range.
func CertificateFlow() Flow {
	return Flow{
		Name:             config.FlowCertificate,
		DatePolicy:       DatePolicyCanonical,
		AcceptSlashedISO: true,
		HardenLinks:      true,
		QRTimeout:        config.DefaultQRTimeout,
	}
}

// DiplomaFlow renders diplomas: the displayed date is always the course end.
func DiplomaFlow() Flow {
	return Flow{
		Name:        config.FlowDiploma,
		DatePolicy:  DatePolicyEndDate,
		HardenLinks: true,
		QRTimeout:   config.DefaultQRTimeout,
	}
}

// FlowDates are the dates a flow displays. Zero fields are not shown.
type FlowDates struct {
	Primary CalendarDate
	Start   CalendarDate
	End     CalendarDate
}

// HasRange reports whether both course bounds are known.
func (d FlowDates) HasRange() bool {
	return !d.Start.IsZero() && !d.End.IsZero()
}

// SelectDates parses the date parameters according to the flow's policy.
func (f Flow) SelectDates(params ParameterSet) FlowDates {
	dates := FlowDates{
		Start: ParseDate(params.Get(config.ParamDateStart), f.AcceptSlashedISO),
		End:   ParseDate(params.Get(config.ParamDateEnd), f.AcceptSlashedISO),
	}

	switch f.DatePolicy {
	case DatePolicyCanonical:
		dates.Primary = ParseDate(params.Get(config.ParamDate), f.AcceptSlashedISO)
		if dates.Primary.IsZero() {
			dates.Primary = dates.End
		}
	case DatePolicyEndDate:
		dates.Primary = dates.End
	}
	return dates
}
