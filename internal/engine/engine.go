package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/practissac/go-certificate/internal/config"
	"github.com/practissac/go-certificate/internal/document"
	"golang.org/x/sync/errgroup"
)

// Pipeline renders a page by binding request parameters into a document.
// One Pipeline serves every flow; per-flow behaviour comes from Flow.
type Pipeline struct {
	Clock     Clock
	Formatter Formatter
	QR        *QRResolver
}

// Report summarises one render.
type Report struct {
	Flow  string
	Bound []string    // slot ids that received a value
	QR    *QRArtifact // nil when no lookup code was given
}

// Render fills doc from params. Field binding runs while the QR image is
// being fetched; the document is only touched from the calling goroutine.
// Missing parameters and slots are skipped. The only error is the
// cancellation of ctx itself.
func (p *Pipeline) Render(ctx context.Context, flow Flow, doc *document.Tree, params ParameterSet) (Report, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompEngine,
		config.LogKeyFlow, flow.Name,
	)
	report := Report{Flow: flow.Name}

	// 1. Start the QR fetch first, it is the only blocking step.
	code := params.Get(config.ParamCode)
	var (
		targetURL string
		art       QRArtifact
		g         *errgroup.Group
	)
	if code != "" && p.QR != nil {
		targetURL = p.QR.TargetURL(code)
		var gctx context.Context
		g, gctx = errgroup.WithContext(ctx)
		g.Go(func() error {
			art = p.QR.Resolve(gctx, targetURL, flow.QRTimeout)
			return nil
		})
	}

	// 2. Text fields
	bind := func(slot, value string) {
		if Bind(doc, slot, value) {
			report.Bound = append(report.Bound, slot)
		}
	}
	bind(config.SlotFullName, params.Get(config.ParamName))
	bind(config.SlotDocType, params.Get(config.ParamDocType))
	bind(config.SlotDocNumber, params.Get(config.ParamDocNumber))
	if BindHours(doc, params.Get(config.ParamHours)) {
		report.Bound = append(report.Bound, config.SlotHours)
	}

	// 3. Dates
	dates := flow.SelectDates(params)
	bind(config.SlotDate, p.Formatter.Long(dates.Primary))
	if dates.HasRange() {
		bind(config.SlotDateRange, p.Formatter.Range(dates.Start, dates.End))
	}

	// 4. QR link and image
	if targetURL != "" {
		if BindQRLink(doc, targetURL, code, flow.HardenLinks) {
			report.Bound = append(report.Bound, config.SlotQRLink)
		}
		_ = g.Wait() // Resolve never fails.
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("%s: %w", config.ErrQRResolverFailed, err)
		}
		if BindQRImage(doc, art) {
			report.Bound = append(report.Bound, config.SlotQRImage)
		}
		report.QR = &art
	}

	log.Debug(config.MsgPageRendered,
		config.LogKeyBound, report.Bound,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
	return report, nil
}
