package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/practissac/go-certificate/internal/config"
	"github.com/practissac/go-certificate/internal/document"
	"github.com/practissac/go-certificate/internal/engine"
)

// page binds a flow to the template it renders.
type page struct {
	flow     engine.Flow
	template []byte
}

// CertificateServer renders certificate and diploma pages over HTTP.
// Every request parses its own copy of the template, so renders never share
// a document.
type CertificateServer struct {
	Addr     string
	Pipeline *engine.Pipeline

	mux *http.ServeMux
}

// NewCertificateServer creates a server with no flows registered.
func NewCertificateServer(addr string, pipeline *engine.Pipeline) *CertificateServer {
	return &CertificateServer{
		Addr:     addr,
		Pipeline: pipeline,
		mux:      http.NewServeMux(),
	}
}

// Register serves flow at /<flow.Name> and its course event at /<flow.Name>/evento.ics.
func (s *CertificateServer) Register(flow engine.Flow, template []byte) {
	p := &page{flow: flow, template: template}
	route := "/" + flow.Name
	s.mux.HandleFunc(route, func(w http.ResponseWriter, r *http.Request) {
		s.handlePage(w, r, p)
	})
	s.mux.HandleFunc(route+config.RouteEventSuffix, func(w http.ResponseWriter, r *http.Request) {
		s.handleEvent(w, r, p)
	})
}

// Handler exposes the routes, mainly for tests.
func (s *CertificateServer) Handler() http.Handler {
	return s.mux
}

// Start initializes the HTTP server and blocks until the context is cancelled.
func (s *CertificateServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr,
		Handler:      s.mux,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyAddr, s.Addr,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// handlePage renders the flow's template with the request's query parameters.
func (s *CertificateServer) handlePage(w http.ResponseWriter, r *http.Request, p *page) {
	if !allowMethod(w, r) {
		return
	}

	log := slog.With(
		config.LogKeyComponent, config.CompServer,
		config.LogKeyFlow, p.flow.Name,
	)

	doc, err := document.Parse(bytes.NewReader(p.template))
	if err != nil {
		log.Error(config.ErrRenderFailed, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	params := engine.ReadParameters(r.URL.RawQuery)
	if _, err := s.Pipeline.Render(r.Context(), p.flow, doc, params); err != nil {
		// The client went away; nobody is left to answer.
		log.Debug(config.ErrRenderFailed, config.LogKeyError, err)
		return
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		log.Error(config.ErrRenderFailed, config.LogKeyError, err)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	writeCached(w, r, buf.Bytes(), config.MimeTextHTML)
}

// handleEvent serves the course period as an .ics download.
func (s *CertificateServer) handleEvent(w http.ResponseWriter, r *http.Request, p *page) {
	if !allowMethod(w, r) {
		return
	}

	params := engine.ReadParameters(r.URL.RawQuery)
	data, err := s.Pipeline.CourseEvent(p.flow, params)
	if errors.Is(err, engine.ErrNoCoursePeriod) {
		http.Error(w, config.HTTPMsgNoPeriod, http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error(config.ErrICalEncode,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyFlow, p.flow.Name,
			config.LogKeyError, err,
		)
		http.Error(w, config.HTTPMsgInternalErr, http.StatusInternalServerError)
		return
	}

	stamp := time.Now().In(engine.LimaZone).Format(config.DateFormatISO)
	fileName := fmt.Sprintf(config.EventFileNamePattern, p.flow.Name, stamp)
	w.Header().Set(config.HeaderContentDisposition, fmt.Sprintf(config.EventFileNameFormat, fileName))

	slog.Debug(config.MsgEventRendered,
		config.LogKeyComponent, config.CompServer,
		config.LogKeyFlow, p.flow.Name,
		config.LogKeySizeBytes, len(data),
	)
	writeCached(w, r, data, config.MimeTextCalendar)
}

// allowMethod accepts GET and HEAD, answering 405 otherwise.
func allowMethod(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set(config.HeaderAllow, config.AllowedMethods)
	http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
	return false
}

// writeCached writes body with an ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, body []byte, contentType string) {
	hash := sha256.Sum256(body)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	w.Header().Set(config.HeaderContentType, contentType)
	w.Header().Set(config.HeaderXContentType, config.MimeNoSniff)
	w.Header().Set(config.HeaderCacheControl, config.CacheControlPrivate)
	w.Header().Set(config.HeaderETag, etag)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, bytes.NewReader(body)); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyError, err,
		)
	}
}
