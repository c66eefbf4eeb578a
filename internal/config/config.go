package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Certificate/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Certificate"
	AppID             = "com.practissac.go-certificate"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DefaultConfigFile = "certificate.yaml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagConfig       = "config"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescConfig   = "Path to the YAML settings file"
	MsgVersionOutput = "%s version %s (commit %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Query Parameters
// -----------------------------------------------------------------------------

const (
	ParamName      = "nombre"
	ParamDocType   = "tipo_doc"
	ParamDocNumber = "num_doc"
	ParamHours     = "horas"
	ParamCode      = "codigo"
	ParamDate      = "fecha"
	ParamDateStart = "fecha_inicio"
	ParamDateEnd   = "fecha_fin"

	QueryPrefix      = "?"
	QueryPairSep     = "&"
	QueryKeyValueSep = "="
	ReplacementChar  = "\uFFFD"
)

// RecognizedParams lists every query key the pipeline reads.
var RecognizedParams = []string{
	ParamName,
	ParamDocType,
	ParamDocNumber,
	ParamHours,
	ParamCode,
	ParamDate,
	ParamDateStart,
	ParamDateEnd,
}

// -----------------------------------------------------------------------------
// Document Slots (element ids in the templates)
// -----------------------------------------------------------------------------

const (
	SlotFullName    = "id-nombre-completo"
	SlotDocType     = "id-type-document"
	SlotDocNumber   = "id-num-document"
	SlotHours       = "id-hours"
	SlotDate        = "id-date"
	SlotDateRange   = "id-date-start-end"
	SlotQRLink      = "qr-text-id-2-2"
	SlotQRImage     = "id-qr-code"
	AttrID          = "id"
	AttrHref        = "href"
	AttrRel         = "rel"
	AttrTarget      = "target"
	AttrStyle       = "style"
	RelNoReferrer   = "noopener noreferrer"
	TargetBlank     = "_blank"
	StyleBgImage    = "background-image"
	StyleBgSize     = "background-size"
	StyleBgPos      = "background-position"
	StyleBgCover    = "cover"
	StyleBgCenter   = "center"
	FormatCSSURL    = "url('%s')"
	StyleDeclSep    = ";"
	StylePropSep    = ":"
	FormatStyleDecl = "%s: %s"
)

// -----------------------------------------------------------------------------
// Flows
// -----------------------------------------------------------------------------

const (
	FlowCertificate = "certificado"
	FlowDiploma     = "diploma"
)

// -----------------------------------------------------------------------------
// Dates
// -----------------------------------------------------------------------------

const (
	// LimaOffsetSeconds is the fixed UTC-05:00 offset used for every displayed date.
	LimaOffsetSeconds = -5 * 60 * 60
	LimaZoneName      = "America/Lima"

	FormatDay2 = "%02d"

	// Built-in Spanish phrases used when no locale catalogue is available.
	FallbackDateLong       = "%s de %s del %d"
	FallbackRangeSameYear  = "%s de %s al %s de %s del %d"
	FallbackRangeCrossYear = "%s de %s del %d al %s de %s del %d"

	// DateFormatISO is the ISO calendar date layout.
	DateFormatISO = "2006-01-02"
)

// FallbackMonths holds the Spanish month names indexed by time.Month - 1.
var FallbackMonths = [12]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// -----------------------------------------------------------------------------
// QR Code & Verification
// -----------------------------------------------------------------------------

const (
	DefaultVerificationBase = "https://bd.practissac.com"
	VerificationPath        = "/student/"
	URIComponentMarks       = "-_.!~*'()"
	DefaultQRBase           = "https://nred.practis.pe"
	QRGeneratorPath         = "/tools/qr-generator"
	DefaultQRLogoURL        = "https://nred.practis.pe/media-puplic/image/svg/logo.png"
	DefaultQRLogoWidth      = 30
	DefaultQRLogoHeight     = 40
	DefaultQRFallbackBase   = "https://api.qrserver.com/v1/create-qr-code/"
	DefaultQRSize           = 125
	FormatQRFallback        = "%s?data=%s&size=%dx%d"
	FormatDataURI           = "data:%s;base64,%s"
	MimeImagePrefix         = "image/"
	MaxQRResponseSize       = 2 * 1024 * 1024 // 2MB
	QRSourcePrimary         = "primary"
	QRSourceFallback        = "fallback"
)

// -----------------------------------------------------------------------------
// Locale
// -----------------------------------------------------------------------------

const (
	DefaultLanguage  = "es"
	LocalesDir       = "locales"
	LocalePrefix     = "active."
	LocaleSuffix     = ".json"
	LocaleFormatJSON = "json"

	TKeyMonthPrefix        = "month_"
	TKeyDateLong           = "date_long"
	TKeyDateRangeSameYear  = "date_range_same_year"
	TKeyDateRangeCrossYear = "date_range_cross_year"
	TKeyEventSummary       = "event_summary"

	// Template data keys shared by the locale messages.
	TDataDay    = "Day"
	TDataMonth  = "Month"
	TDataYear   = "Year"
	TDataDay1   = "Day1"
	TDataMonth1 = "Month1"
	TDataYear1  = "Year1"
	TDataDay2   = "Day2"
	TDataMonth2 = "Month2"
	TDataYear2  = "Year2"
	TDataName   = "Name"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Certificate//Engine//ES"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gocertificate"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTEnd       = "DTEND"
	PropDTStamp     = "DTSTAMP"
	PropURL         = "URL"
	PropDescription = "DESCRIPTION"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	FormatUID       = "%s@%s"
	FormatHashInput = "%s|%s|%s|%s"
	UIDHashLength   = 16
	FallbackSummary = "Curso: %s"
	FallbackName    = "Participante"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout          = 30 * time.Second
	DefaultQRTimeout     = 5 * time.Second
	MaxQRTimeout         = time.Minute
	ShutdownTimeout      = 5 * time.Second
	ServerReadTimeout    = 10 * time.Second
	ServerWriteTimeout   = 30 * time.Second
	ServerIdleTimeout    = 60 * time.Second
	DefaultPort          = "18080"
	AllowedMethods       = "GET, HEAD"
	MaxTemplateSize      = 4 * 1024 * 1024 // 4MB
	SchemeHTTP           = "http"
	SchemeHTTPS          = "https"
	AddrSeparator        = ":"
	RouteEventSuffix     = "/evento.ics"
	EventFileNameFormat  = "attachment; filename=%q"
	EventFileNamePattern = "%s-%s.ics"
	MinPort              = 1
	MaxPort              = 65535
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType        = "Content-Type"
	HeaderContentDisposition = "Content-Disposition"
	HeaderCacheControl       = "Cache-Control"
	HeaderETag               = "ETag"
	HeaderAllow              = "Allow"
	HeaderXContentType       = "X-Content-Type-Options"
	HeaderUserAgent          = "User-Agent"
	HeaderIfNoneMatch        = "If-None-Match"
	HeaderAccept             = "Accept"

	MimeTextHTML        = "text/html; charset=utf-8"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeAcceptImage     = "image/*"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrQRTimeout        = "qr timeout must be positive and at most one minute"
	ErrLanguage         = "unsupported language tag"
	ErrConfigRead       = "failed to read config"
	ErrConfigParse      = "failed to parse config"
	ErrConfigInvalid    = "invalid configuration"
	ErrTemplateRead     = "failed to read template"
	ErrTemplateParse    = "failed to parse template"
	ErrTemplateRender   = "failed to render template"
	ErrTemplateMissing  = "no template registered for flow"
	ErrQRRequest        = "failed to create QR request"
	ErrQRNetwork        = "network error during QR generation"
	ErrQRStatus         = "QR service returned unexpected status"
	ErrQRBody           = "failed to read QR response body"
	ErrQREmpty          = "QR service returned an empty body"
	ErrQRNotImage       = "QR service returned a non-image body"
	ErrQREncode         = "failed to encode QR payload"
	ErrNoCoursePeriod   = "course period requires valid fecha_inicio and fecha_fin"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrRenderFailed     = "page rendering failed"
	ErrQRResolverFailed = "qr resolution aborted"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgNoPeriod     = "Course period not available"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgConfigLoaded   = "Configuration loaded"
	MsgConfigDefault  = "Configuration file not found, using defaults"
	MsgTemplateLoaded = "Template loaded"
	MsgPageRendered   = "Page rendered"
	MsgEventRendered  = "Course event rendered"
	MsgQRRequest      = "Requesting branded QR image"
	MsgQRPrimaryOK    = "Branded QR image received"
	MsgQRFallback     = "QR generator failed, using unbranded fallback"
	MsgSlotMissing    = "Template slot not found"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyFlow      = "flow"
	LogKeySlot      = "slot"
	LogKeySource    = "source"
	LogKeySizeBytes = "size_bytes"
	LogKeyBound     = "bound_slots"
	LogKeyDuration  = "duration_ms"
	LogKeyPath      = "path"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain   = "main"
	CompConfig = "config"
	CompEngine = "engine"
	CompServer = "server"
	CompQR     = "qr"
	CompI18n   = "i18n"
)
