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
var UserAgent = "Tally/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Tally"
	AppID             = "com.github.caijinglong.tally"
	KeyringService    = "com.github.caijinglong.tally"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "tally.log"
	ConfigFileName    = "tally.toml"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
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
// CLI Commands & Flags
// -----------------------------------------------------------------------------

const (
	CmdServe   = "serve"
	CmdParse   = "parse"
	CmdRenew   = "renew"
	CmdSearch  = "search"
	CmdExport  = "export"
	CmdRestore = "restore"

	FlagVersion = "version"
	FlagDebug   = "debug"
	FlagConfig  = "config"
	FlagLang    = "lang"
	FlagFrom    = "from"
	FlagNow     = "now"
	FlagDays    = "days"
	FlagYears   = "years"
	FlagTo      = "to"
	FlagQuery   = "q"
	FlagMode    = "mode"
	FlagGroup   = "group"
	FlagDir     = "dir"
	FlagOut     = "o"

	FlagDescVersion = "Show application version and exit"
	FlagDescDebug   = "Enable debug logging"
	FlagDescConfig  = "Path to the TOML configuration file"
	FlagDescLang    = "Display language (en, zh, ja)"
	FlagDescFrom    = "Current expiry date"
	FlagDescNow     = "Reference date used as today (defaults to the real clock)"
	FlagDescDays    = "Renew by this many days"
	FlagDescYears   = "Renew by this many calendar years"
	FlagDescTo      = "Renew to this explicit date"
	FlagDescQuery   = "Search pattern"
	FlagDescMode    = "Search mode: normal, glob or regex"
	FlagDescGroup   = "Only keep resources of this group"
	FlagDescDir     = "Directory the export is written to"
	FlagDescOut     = "Write the merged backup here instead of over the existing file"
	FlagDescRestore = "Restore mode: overwrite or append"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
	MsgUsage         = "usage: tally [-version] [-debug] [serve|parse|renew|search|export|restore] [flags] [args]"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyEvtSummary       = "event_summary"         // Requires Name
	TKeyEvtSummaryGroup  = "event_summary_group"   // Requires Name, Group
	TKeyEvtDescription   = "event_description"     // Requires Name, Date
	TKeyRemainingDays    = "remaining_days"        // Plural, requires Count
	TKeyExpired          = "status_expired"        // Resource already expired
	TKeyErrDateEmpty     = "err_date_empty"        // No date given
	TKeyErrDateFormat    = "err_date_unrecognized" // Date hint shown to users
	TKeyErrRenewCount    = "err_renew_count"       // Days/years must be positive
	TKeyErrRenewSpec     = "err_renew_spec"        // Exactly one of days/years/to
	TKeyLblNewExpiry     = "lbl_new_expiry"        // Requires Date
	TKeyLblNoMatch       = "lbl_no_match"          // Empty search result
	TKeyLblResourceCount = "lbl_resource_count"    // Plural, requires Count
	TKeyLblSaved         = "lbl_saved"             // Requires Path
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeWeb     = "web"
	SourceModeLocal   = "local"
	DefaultPort       = "18080"
	DefaultRefreshMin = 60
	DefaultLanguage   = "en"
	DefaultWarnDays   = 30
	UIDNamespace      = "tally-expiry-v1" // Seed for deterministic event UIDs
	DisabledInterval  = 0

	// BackupVersion is written into exported backups; imports accept any 1.x.
	BackupVersion       = "1.0"
	BackupVersionPrefix = "1."
	BackupModeOverwrite = "overwrite"
	BackupModeAppend    = "append"
	BackupFilePrefix    = "tally-backup-"
	DefaultExportDir    = "."
	BackupJSONIndent    = "  "

	// DefaultReminderTrigger is an ISO8601 duration: one day before the expiry.
	DefaultReminderTrigger = "-P1D"
)

// Reminder units and directions accepted in the configuration file.
const (
	UnitDays             = "days"
	UnitHours            = "hours"
	UnitMinutes          = "minutes"
	DirBefore            = "before"
	DirAfter             = "after"
	DefaultReminderValue = 1
)

// ISO8601 Duration Components for Reminders
const (
	ISOPeriodPrefix   = "P"
	ISONegativePrefix = "-P"
	ISOTimePrefix     = "T"
	ISODay            = "D"
	ISOHour           = "H"
	ISOMinute         = "M"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion   = "2.0"
	ICalProdid    = "-//Tally//Expiry Feed//EN"
	ICalCalName   = "Tally Expiry Dates"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "tally"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropCategories  = "CATEGORIES"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	DefaultICalRefresh = 1 * time.Hour

	FormatUID = "%s@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"
	BearerPrefix        = "Bearer "

	MinPort = 1
	MaxPort = 65535
)

// -----------------------------------------------------------------------------
// HTTP Routes, Query Parameters, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteRoot       = "/"
	RouteCalendar   = "/calendar.ics"
	RouteResources  = "/api/resources"
	RouteGroups     = "/api/groups"
	RouteParseDate  = "/api/dates/parse"
	RouteMetrics    = "/metrics"
	QueryParamQ     = "q"
	QueryParamMode  = "mode"
	QueryParamGroup = "group"
	QueryParamText  = "text"
	QueryParamLang  = "lang"

	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderAuthorization   = "Authorization"
	HeaderAccept          = "Accept"
	HeaderAcceptLanguage  = "Accept-Language"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported source mode"
	ErrIntervalNegative = "configuration error: refresh interval must not be negative"
	ErrWarnDaysNegative = "configuration error: warning window must not be negative"
	ErrReminderUnit     = "configuration error: reminder unit must be days, hours or minutes"
	ErrReminderValue    = "configuration error: reminder value must not be negative"
	ErrConfigDecode     = "failed to decode configuration file"
	ErrKeyringToken     = "failed to read API token from keyring"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrSourceOpen       = "failed to open backup source"
	ErrBackupDecode     = "failed to decode backup document"
	ErrBackupEncode     = "failed to encode backup document"
	ErrBackupInvalid    = "invalid backup document"
	ErrBackupVersion    = "unsupported backup version"
	ErrBackupMode       = "restore mode must be 'overwrite' or 'append'"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrConfigDir        = "could not determine user config dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrUnknownCommand   = "unknown command"
	ErrMissingArgument  = "missing argument"
	ErrFlagParse        = "failed to parse flags"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Expiry feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgBadMode      = "Unknown search mode"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Expires: %s"
	FallbackSummaryGroup = "Expires: %s (%s)"
	FallbackName         = "Unnamed resource"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted   = "Synchronization started..."
	MsgSyncFailed    = "Synchronization failed. Check logs."
	MsgSyncFinished  = "Sync finished"
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgSkippedEntry  = "Skipping invalid backup entry"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgAppStop       = "Application stopped gracefully"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Expiry feed cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgTokenKeyring  = "API token resolved from keyring"
	MsgConfigMissing = "Configuration file not found, using defaults"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgExpiringSoon  = "Resource expiring soon"
	MsgFetchStart    = "Initiating backup download"
	MsgFetchBody     = "Backup downloading"
	MsgFetchStatus   = "Server returned error status"
	MsgRestored      = "Backup restored"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_resources"
	LogKeyValid     = "valid_resources"
	LogKeyExpiring  = "expiring"
	LogKeySizeBytes = "size_bytes"
	LogKeyLength    = "content_length"
	LogKeyETag      = "etag"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyExpiry    = "expiry"
	LogKeyRemaining = "remaining_days"
	LogKeyDuration  = "duration_ms"
	LogKeyImported  = "imported"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
	LogKeyCommand = "command"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompCLI     = "cli"
	CompConfig  = "config"
	CompEngine  = "engine"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompBackup  = "backup"
)

// -----------------------------------------------------------------------------
// Metrics
// -----------------------------------------------------------------------------

const (
	MetricsNamespace = "tally"
)
