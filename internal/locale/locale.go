// Package locale loads the embedded translation files used to spell out dates.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/practissac/go-certificate/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Catalog translates message keys for one language.
type Catalog struct {
	Lang      string
	Languages []string

	localizer *i18n.Localizer
}

// Load builds the translation bundle from the embedded locale files and
// returns a catalogue for lang. Unknown languages fall back to Spanish.
func Load(lang string) (*Catalog, error) {
	if _, err := language.Parse(lang); err != nil {
		return nil, fmt.Errorf("%s: %q", config.ErrLanguage, lang)
	}

	bundle := i18n.NewBundle(language.Spanish)
	bundle.RegisterUnmarshalFunc(config.LocaleFormatJSON, json.Unmarshal)

	entries, err := localeFS.ReadDir(config.LocalesDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, config.LocalePrefix) || !strings.HasSuffix(name, config.LocaleSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, config.LocalePrefix), config.LocaleSuffix)
		if code == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocalesDir+"/"+name); err != nil {
			return nil, fmt.Errorf("%s %s: %w", config.ErrLocaleLoad, name, err)
		}
		detected = append(detected, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code,
			config.LogKeyFile, name,
		)
	}

	return &Catalog{
		Lang:      lang,
		Languages: detected,
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}, nil
}

// Message renders key with data. A missing key yields the key itself.
func (c *Catalog) Message(key string, data map[string]any) string {
	msg, err := c.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// MonthName returns the full month name.
func (c *Catalog) MonthName(m time.Month) string {
	return c.Message(config.TKeyMonthPrefix+strconv.Itoa(int(m)), nil)
}
