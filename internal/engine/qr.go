package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/practissac/go-certificate/internal/config"
)

// QRArtifact is a QR image ready to be used as a background.
// Fetched images carry their bytes; the fallback only carries its URL.
type QRArtifact struct {
	Data        []byte
	ContentType string
	SourceURL   string
	Source      string // config.QRSourcePrimary or config.QRSourceFallback
}

// Reference returns something a CSS url() can point at: a data URI for
// fetched bytes, the source URL otherwise.
func (a QRArtifact) Reference() string {
	if len(a.Data) == 0 {
		return a.SourceURL
	}
	return fmt.Sprintf(config.FormatDataURI, a.ContentType, base64.StdEncoding.EncodeToString(a.Data))
}

// QRGenerator produces a QR image encoding targetURL.
// This interface allows for mocking in tests and decoupling from the network layer.
type QRGenerator interface {
	Generate(ctx context.Context, targetURL string) (QRArtifact, error)
}

// HTTPQRGenerator calls the branded QR generation service.
type HTTPQRGenerator struct {
	Client     *http.Client
	Endpoint   string
	LogoURL    string
	LogoWidth  int
	LogoHeight int
}

// qrRequest is the JSON body expected by the generator.
type qrRequest struct {
	URL     string `json:"url"`
	QRLogo  string `json:"qrLogo"`
	QRLogoW int    `json:"qrLogoW"`
	QRLogoH int    `json:"qrLogoH"`
}

// NewHTTPQRGenerator targets {base}/tools/qr-generator.
func NewHTTPQRGenerator(base, logoURL string, logoW, logoH int) *HTTPQRGenerator {
	return &HTTPQRGenerator{
		Client: &http.Client{
			Timeout: config.HTTPTimeout,
		},
		Endpoint:   strings.TrimRight(base, "/") + config.QRGeneratorPath,
		LogoURL:    logoURL,
		LogoWidth:  logoW,
		LogoHeight: logoH,
	}
}

// Generate posts targetURL to the generator and returns the image it answers with.
// Non-2xx statuses, empty bodies and bodies that are not images are errors.
func (g *HTTPQRGenerator) Generate(ctx context.Context, targetURL string) (QRArtifact, error) {
	payload, err := json.Marshal(qrRequest{
		URL:     targetURL,
		QRLogo:  g.LogoURL,
		QRLogoW: g.LogoWidth,
		QRLogoH: g.LogoHeight,
	})
	if err != nil {
		return QRArtifact{}, fmt.Errorf("%s: %w", config.ErrQREncode, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return QRArtifact{}, fmt.Errorf("%s: %w", config.ErrQRRequest, err)
	}
	req.Header.Set(config.HeaderContentType, config.MimeJSON)
	req.Header.Set(config.HeaderAccept, config.MimeAcceptImage)
	req.Header.Set(config.HeaderUserAgent, config.UserAgent)

	slog.Debug(config.MsgQRRequest,
		config.LogKeyComponent, config.CompQR,
		config.LogKeyURL, g.Endpoint,
	)

	resp, err := g.Client.Do(req)
	if err != nil {
		return QRArtifact{}, fmt.Errorf("%s: %w", config.ErrQRNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return QRArtifact{}, fmt.Errorf("%s: %d %s", config.ErrQRStatus, resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, config.MaxQRResponseSize))
	if err != nil {
		return QRArtifact{}, fmt.Errorf("%s: %w", config.ErrQRBody, err)
	}
	if len(body) == 0 {
		return QRArtifact{}, errors.New(config.ErrQREmpty)
	}

	contentType := imageType(resp.Header.Get(config.HeaderContentType), body)
	if contentType == "" {
		return QRArtifact{}, errors.New(config.ErrQRNotImage)
	}

	return QRArtifact{
		Data:        body,
		ContentType: contentType,
		SourceURL:   g.Endpoint,
		Source:      config.QRSourcePrimary,
	}, nil
}

// imageType returns the image media type of body, trusting the declared
// header first and sniffing otherwise. It returns "" for non-images.
func imageType(header string, body []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && strings.HasPrefix(mt, config.MimeImagePrefix) {
		return mt
	}
	if sniffed := http.DetectContentType(body); strings.HasPrefix(sniffed, config.MimeImagePrefix) {
		return sniffed
	}
	return ""
}

// QRResolver builds verification URLs and obtains their QR image, degrading
// to the public unbranded service when the generator fails.
type QRResolver struct {
	Generator        QRGenerator
	VerificationBase string
	FallbackBase     string
	Size             int
}

// TargetURL returns the verification URL for a lookup code.
func (r *QRResolver) TargetURL(code string) string {
	return strings.TrimRight(r.VerificationBase, "/") + config.VerificationPath + PercentEncode(code)
}

// Fallback returns the unbranded QR image for targetURL.
func (r *QRResolver) Fallback(targetURL string) QRArtifact {
	size := r.Size
	if size <= 0 {
		size = config.DefaultQRSize
	}
	return QRArtifact{
		SourceURL: fmt.Sprintf(config.FormatQRFallback, r.FallbackBase, PercentEncode(targetURL), size, size),
		Source:    config.QRSourceFallback,
	}
}

// Resolve asks the generator for a QR image of targetURL, bounded by timeout.
// It never fails: any error is logged and the fallback artifact returned.
func (r *QRResolver) Resolve(ctx context.Context, targetURL string, timeout time.Duration) QRArtifact {
	if r.Generator == nil {
		return r.Fallback(targetURL)
	}
	if timeout <= 0 {
		timeout = config.DefaultQRTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	art, err := r.Generator.Generate(ctx, targetURL)
	if err != nil {
		slog.Warn(config.MsgQRFallback,
			config.LogKeyComponent, config.CompQR,
			config.LogKeyURL, targetURL,
			config.LogKeyError, err,
		)
		return r.Fallback(targetURL)
	}

	slog.Debug(config.MsgQRPrimaryOK,
		config.LogKeyComponent, config.CompQR,
		config.LogKeySource, art.Source,
		config.LogKeySizeBytes, len(art.Data),
	)
	return art
}

// PercentEncode escapes s as a URI component. ASCII letters, digits and
// "-_.!~*'()" are left as is; every other byte becomes %XX.
func PercentEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreservedComponent(c) {
			sb.WriteByte(c)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[c>>4])
		sb.WriteByte(upperHex[c&0x0F])
	}
	return sb.String()
}

const upperHex = "0123456789ABCDEF"

func isUnreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(config.URIComponentMarks, c) >= 0
}
