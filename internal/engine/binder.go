package engine

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/practissac/go-certificate/internal/config"
	"github.com/practissac/go-certificate/internal/document"
)

const digits = "0123456789"

// Bind writes value as the text of the slot with id slotID.
// Empty values and missing slots are skipped; the result reports whether the slot changed.
func Bind(doc *document.Tree, slotID, value string) bool {
	if value == "" {
		return false
	}
	el := doc.ElementByID(slotID)
	if el == nil {
		slog.Debug(config.MsgSlotMissing,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeySlot, slotID,
		)
		return false
	}
	el.SetText(value)
	return true
}

// ResolveHoursSlot finds the hours slot. Templates are not consistent about
// its id, so the lookup is ordered:
//  1. the element whose id is exactly "id-hours";
//  2. otherwise the first element, in document order, whose id starts with
//     "id-hours" and whose current text contains a digit.
//
// It returns nil when neither matches.
func ResolveHoursSlot(doc *document.Tree) *document.Element {
	if el := doc.ElementByID(config.SlotHours); el != nil {
		return el
	}
	for _, el := range doc.ElementsByIDPrefix(config.SlotHours) {
		if strings.ContainsAny(el.Text(), digits) {
			return el
		}
	}
	return nil
}

// BindHours writes value into the slot chosen by ResolveHoursSlot.
func BindHours(doc *document.Tree, value string) bool {
	if value == "" {
		return false
	}
	el := ResolveHoursSlot(doc)
	if el == nil {
		slog.Debug(config.MsgSlotMissing,
			config.LogKeyComponent, config.CompEngine,
			config.LogKeySlot, config.SlotHours,
		)
		return false
	}
	el.SetText(value)
	return true
}

// BindQRLink points the link under the QR image at targetURL and labels it with code.
// With harden set, the link opens in a new tab without opener or referrer.
func BindQRLink(doc *document.Tree, targetURL, code string, harden bool) bool {
	el := doc.ElementByID(config.SlotQRLink)
	if el == nil {
		return false
	}
	el.SetAttr(config.AttrHref, targetURL)
	el.SetText(code)
	if harden {
		el.SetAttr(config.AttrRel, config.RelNoReferrer)
		el.SetAttr(config.AttrTarget, config.TargetBlank)
	}
	return true
}

// BindQRImage sets the artifact as the background of the QR box.
func BindQRImage(doc *document.Tree, art QRArtifact) bool {
	el := doc.ElementByID(config.SlotQRImage)
	if el == nil {
		return false
	}
	el.SetStyle(config.StyleBgImage, fmt.Sprintf(config.FormatCSSURL, art.Reference()))
	el.SetStyle(config.StyleBgSize, config.StyleBgCover)
	el.SetStyle(config.StyleBgPos, config.StyleBgCenter)
	return true
}
