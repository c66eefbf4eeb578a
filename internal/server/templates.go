package server

import (
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/practissac/go-certificate/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplate returns the HTML template for a flow. An empty path selects
// the embedded default for that flow.
func LoadTemplate(flowName, path string) ([]byte, error) {
	if path == "" {
		data, err := templateFS.ReadFile("templates/" + flowName + ".html")
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", config.ErrTemplateMissing, flowName, err)
		}
		return data, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplateRead, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, config.MaxTemplateSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrTemplateRead, err)
	}

	slog.Info(config.MsgTemplateLoaded,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyFlow, flowName,
		config.LogKeyFile, path,
		config.LogKeySizeBytes, len(data),
	)
	return data, nil
}
