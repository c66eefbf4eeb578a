package engine

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/emersion/go-ical"
	"github.com/practissac/go-certificate/internal/config"
)

// ErrNoCoursePeriod is returned when the course bounds are missing or reversed.
var ErrNoCoursePeriod = errors.New(config.ErrNoCoursePeriod)

// CourseEvent encodes the course period of params as an iCalendar file with
// one all-day event running from fecha_inicio to fecha_fin inclusive.
func (p *Pipeline) CourseEvent(flow Flow, params ParameterSet) ([]byte, error) {
	dates := flow.SelectDates(params)
	if !dates.HasRange() || dates.End.Before(dates.Start) {
		return nil, ErrNoCoursePeriod
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	name := params.Get(config.ParamName)
	if name == "" {
		name = config.FallbackName
	}
	code := params.Get(config.ParamCode)

	// Deterministic UID so re-downloads update the same event.
	input := fmt.Sprintf(config.FormatHashInput, flow.Name, name, code,
		dates.Start.Time().Format(config.DateFormatISO))
	hash := sha256.Sum256([]byte(input))
	uid := fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), config.ICalDomain)

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid)
	event.Props.SetText(config.PropSummary, p.eventSummary(name))
	event.Props.SetText(config.PropDescription, p.Formatter.Range(dates.Start, dates.End))

	clock := p.Clock
	if clock == nil {
		clock = RealClock{}
	}
	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(clock.Now().UTC())
	event.Props.Set(stamp)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(dates.Start.Time())
	event.Props.Set(dtStart)

	// DTEND is exclusive for all-day events.
	dtEnd := ical.NewProp(config.PropDTEnd)
	dtEnd.SetDate(dates.End.Time().AddDate(0, 0, 1))
	event.Props.Set(dtEnd)

	if code != "" && p.QR != nil {
		// Set the value directly to keep the default URI type.
		link := ical.NewProp(config.PropURL)
		link.Value = p.QR.TargetURL(code)
		event.Props.Set(link)
	}

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}

func (p *Pipeline) eventSummary(name string) string {
	if p.Formatter.Tr == nil {
		return fmt.Sprintf(config.FallbackSummary, name)
	}
	return p.Formatter.Tr.Message(config.TKeyEventSummary, map[string]any{config.TDataName: name})
}
