package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/practissac/go-certificate/internal/config"
	"github.com/practissac/go-certificate/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// newTestServer registers both flows with their embedded templates. A nil
// generator makes every QR lookup use the fallback service.
func newTestServer(t *testing.T, addr string, gen engine.QRGenerator) *CertificateServer {
	t.Helper()
	pipeline := &engine.Pipeline{
		QR: &engine.QRResolver{
			Generator:        gen,
			VerificationBase: config.DefaultVerificationBase,
			FallbackBase:     config.DefaultQRFallbackBase,
			Size:             config.DefaultQRSize,
		},
	}
	srv := NewCertificateServer(addr, pipeline)
	for _, flow := range []engine.Flow{engine.CertificateFlow(), engine.DiplomaFlow()} {
		tpl, err := LoadTemplate(flow.Name, "")
		require.NoError(t, err)
		srv.Register(flow, tpl)
	}
	return srv
}

func get(t *testing.T, h http.Handler, method, target string, header http.Header) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	resp := w.Result()
	t.Cleanup(func() { _ = resp.Body.Close() })
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// -----------------------------------------------------------------------------
// Pages
// -----------------------------------------------------------------------------

func TestHandler_Certificate(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	resp, body := get(t, srv.Handler(), http.MethodGet,
		"/certificado?nombre=Ana%20P%C3%A9rez&codigo=ABC123&fecha=2025-10-15&fecha_inicio=2025-10-10&fecha_fin=2025-10-15&horas=120", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextHTML, resp.Header.Get(config.HeaderContentType))
	assert.Equal(t, config.MimeNoSniff, resp.Header.Get(config.HeaderXContentType))
	assert.Equal(t, config.CacheControlPrivate, resp.Header.Get(config.HeaderCacheControl))
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))

	assert.Contains(t, body, "Ana Pérez")
	assert.Contains(t, body, "15 de octubre del 2025")
	assert.Contains(t, body, "10 de octubre al 15 de octubre del 2025")
	assert.Contains(t, body, `href="https://bd.practissac.com/student/ABC123"`)
	assert.Contains(t, body, "api.qrserver.com/v1/create-qr-code/")
}

func TestHandler_CertificateWithGeneratedQR(t *testing.T) {
	qr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HeaderContentType, "image/png")
		_, _ = w.Write(pngBytes)
	}))
	defer qr.Close()

	gen := engine.NewHTTPQRGenerator(qr.URL, config.DefaultQRLogoURL, config.DefaultQRLogoWidth, config.DefaultQRLogoHeight)
	srv := newTestServer(t, "0", gen)

	_, body := get(t, srv.Handler(), http.MethodGet, "/certificado?codigo=ABC123", nil)

	assert.Contains(t, body, "data:image/png;base64,")
	assert.NotContains(t, body, "api.qrserver.com")
}

func TestHandler_Diploma(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	_, body := get(t, srv.Handler(), http.MethodGet,
		"/diploma?nombre=Luis&horas=240&fecha=2020-01-01&fecha_inicio=31/12/2024&fecha_fin=02/01/2025", nil)

	assert.Contains(t, body, "Luis")
	assert.Contains(t, body, ">240<")
	assert.Contains(t, body, "02 de enero del 2025")
	assert.NotContains(t, body, "2020")
}

func TestHandler_EscapesValues(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	_, body := get(t, srv.Handler(), http.MethodGet, "/certificado?nombre=%3Cscript%3Ealert(1)%3C%2Fscript%3E", nil)

	assert.NotContains(t, body, "<script>alert(1)</script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestHandler_Caching(t *testing.T) {
	srv := newTestServer(t, "0", nil)
	const target = "/certificado?nombre=Ana"

	// Step 1: Initial Request to get the ETag
	resp1, _ := get(t, srv.Handler(), http.MethodGet, target, nil)
	etag := resp1.Header.Get(config.HeaderETag)
	require.NotEmpty(t, etag, "Server must provide an ETag")

	// Step 2: Same query, known ETag
	resp2, body := get(t, srv.Handler(), http.MethodGet, target,
		http.Header{config.HeaderIfNoneMatch: {etag}})
	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
	assert.Empty(t, body, "Body must be empty on 304 Not Modified")

	// Step 3: Different query, different page
	resp3, _ := get(t, srv.Handler(), http.MethodGet, "/certificado?nombre=Luis",
		http.Header{config.HeaderIfNoneMatch: {etag}})
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestHandler_Head(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	resp, body := get(t, srv.Handler(), http.MethodHead, "/diploma?nombre=Luis", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(config.HeaderETag))
	assert.Empty(t, body)
}

// TestHandler_MethodNotAllowed ensures strictly GET and HEAD are accepted.
func TestHandler_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	for _, target := range []string{"/certificado", "/diploma/evento.ics"} {
		resp, _ := get(t, srv.Handler(), http.MethodPost, target, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, target)
		assert.Equal(t, config.AllowedMethods, resp.Header.Get(config.HeaderAllow), target)
	}
}

func TestHandler_UnknownRoute(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	resp, _ := get(t, srv.Handler(), http.MethodGet, "/constancia", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// -----------------------------------------------------------------------------
// Course events
// -----------------------------------------------------------------------------

func TestHandler_Event(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	resp, body := get(t, srv.Handler(), http.MethodGet,
		"/certificado/evento.ics?nombre=Ana&codigo=ABC123&fecha_inicio=2025-10-10&fecha_fin=2025-10-15", nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.MimeTextCalendar, resp.Header.Get(config.HeaderContentType))

	disposition := resp.Header.Get(config.HeaderContentDisposition)
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="certificado-`), disposition)
	assert.True(t, strings.HasSuffix(disposition, `.ics"`), disposition)

	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "DTSTART;VALUE=DATE:20251010")
	assert.Contains(t, body, "DTEND;VALUE=DATE:20251016")
}

func TestHandler_EventWithoutPeriod(t *testing.T) {
	srv := newTestServer(t, "0", nil)

	tests := []string{
		"/diploma/evento.ics",
		"/diploma/evento.ics?fecha_inicio=2025-10-10",
		"/diploma/evento.ics?fecha_inicio=2025-10-15&fecha_fin=2025-10-10",
	}
	for _, target := range tests {
		resp, _ := get(t, srv.Handler(), http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, target)
	}
}

// -----------------------------------------------------------------------------
// Templates
// -----------------------------------------------------------------------------

func TestLoadTemplate(t *testing.T) {
	t.Run("Embedded", func(t *testing.T) {
		for _, flow := range []string{config.FlowCertificate, config.FlowDiploma} {
			data, err := LoadTemplate(flow, "")
			require.NoError(t, err)
			assert.Contains(t, string(data), config.SlotQRImage)
			assert.Contains(t, string(data), config.SlotFullName)
		}
	})

	t.Run("UnknownFlow", func(t *testing.T) {
		_, err := LoadTemplate("constancia", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrTemplateMissing)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.html")
		require.NoError(t, os.WriteFile(path, []byte(`<p id="id-nombre-completo">X</p>`), config.FilePermUserRW))

		data, err := LoadTemplate(config.FlowCertificate, path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "id-nombre-completo")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadTemplate(config.FlowCertificate, filepath.Join(t.TempDir(), "nope.html"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), config.ErrTemplateRead)
	})
}

// -----------------------------------------------------------------------------
// Concurrency Tests (Race Detection)
// -----------------------------------------------------------------------------

// TestServer_ConcurrentRenders checks that parallel requests never see each
// other's values. Run this with `go test -race`.
func TestServer_ConcurrentRenders(t *testing.T) {
	srv := newTestServer(t, "0", nil)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				name := fmt.Sprintf("Alumno-%d-%d", id, j)
				req := httptest.NewRequest(http.MethodGet, "/certificado?nombre="+name, nil)
				w := httptest.NewRecorder()
				srv.Handler().ServeHTTP(w, req)

				if w.Code != http.StatusOK {
					t.Errorf("Unexpected status code during race test: %d", w.Code)
					return
				}
				if strings.Count(w.Body.String(), "Alumno-") != 1 || !strings.Contains(w.Body.String(), name) {
					t.Errorf("Response for %s carries another request's values", name)
					return
				}
			}
		}(i)
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------
// Integration Tests (Real TCP Lifecycle)
// -----------------------------------------------------------------------------

// TestServer_Lifecycle spins up the actual TCP listener to verify network binding
// and graceful shutdown logic.
func TestServer_Lifecycle(t *testing.T) {
	const addr = "127.0.0.1:18099"

	srv := newTestServer(t, addr, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.Start(ctx)
	}()

	url := "http://" + addr + "/certificado?nombre=Ana"

	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 50*time.Millisecond, "Server failed to bind/listen in time")

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)
	assert.Contains(t, string(body), ">Ana<")

	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err, "Server should shutdown gracefully without error")
	case <-time.After(5 * time.Second):
		t.Fatal("Server shutdown timed out")
	}
}
