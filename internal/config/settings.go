package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Settings holds the runtime configuration read from the YAML settings file.
// Every field has a default, so a missing file is a valid configuration.
type Settings struct {
	Server       ServerSettings   `yaml:"server"`
	QR           QRSettings       `yaml:"qr"`
	Verification string           `yaml:"verification_base"`
	Language     string           `yaml:"language"`
	Templates    TemplateSettings `yaml:"templates"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Bind string `yaml:"bind"`
	Port string `yaml:"port"`
}

// QRSettings configures the branded generator and its public fallback.
type QRSettings struct {
	Base         string `yaml:"base"`
	LogoURL      string `yaml:"logo_url"`
	LogoWidth    int    `yaml:"logo_width"`
	LogoHeight   int    `yaml:"logo_height"`
	Timeout      string `yaml:"timeout"`
	FallbackBase string `yaml:"fallback_base"`
	Size         int    `yaml:"size"`
}

// TemplateSettings points at HTML files overriding the embedded templates.
// Empty paths keep the embedded defaults.
type TemplateSettings struct {
	Certificate string `yaml:"certificate"`
	Diploma     string `yaml:"diploma"`
}

// DefaultSettings returns the settings used when no file is provided.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Bind: LocalhostBindAddr,
			Port: DefaultPort,
		},
		QR: QRSettings{
			Base:         DefaultQRBase,
			LogoURL:      DefaultQRLogoURL,
			LogoWidth:    DefaultQRLogoWidth,
			LogoHeight:   DefaultQRLogoHeight,
			Timeout:      DefaultQRTimeout.String(),
			FallbackBase: DefaultQRFallbackBase,
			Size:         DefaultQRSize,
		},
		Verification: DefaultVerificationBase,
		Language:     DefaultLanguage,
	}
}

// Load reads settings from a YAML file on top of the defaults.
// A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	cfg := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Info(MsgConfigDefault, LogKeyComponent, CompConfig, LogKeyPath, path)
			return cfg, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigInvalid, err)
	}
	return cfg, nil
}

// Validate checks that the settings can drive the server.
func (s *Settings) Validate() error {
	if err := ValidatePort(s.Server.Port); err != nil {
		return err
	}
	for _, raw := range []string{s.QR.Base, s.QR.FallbackBase, s.Verification} {
		if err := validateHTTPURL(raw); err != nil {
			return err
		}
	}
	timeout, err := time.ParseDuration(s.QR.Timeout)
	if err != nil || timeout <= 0 || timeout > MaxQRTimeout {
		return errors.New(ErrQRTimeout)
	}
	if _, err := language.Parse(s.Language); err != nil {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}
	return nil
}

// QRTimeout returns the parsed QR generator timeout, or the default when unparsable.
func (s *Settings) QRTimeout() time.Duration {
	d, err := time.ParseDuration(s.QR.Timeout)
	if err != nil || d <= 0 {
		return DefaultQRTimeout
	}
	return d
}

// Addr returns the listen address.
func (s *Settings) Addr() string {
	return s.Server.Bind + AddrSeparator + s.Server.Port
}

// ValidatePort checks that port is a number in the TCP range.
func ValidatePort(port string) error {
	if port == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrInvalidURL, err)
	}
	if u.Scheme != SchemeHTTP && u.Scheme != SchemeHTTPS {
		return fmt.Errorf("%s: %q", ErrProtocol, raw)
	}
	return nil
}
