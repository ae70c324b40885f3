package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Configuration locations.
const (
	// ConfigDirName is the directory under the user's home holding the config file.
	ConfigDirName = ".ridderiq"

	// ConfigFileName is the config file name without extension.
	ConfigFileName = "config"

	// ConfigFileType is the config file format.
	ConfigFileType = "yml"

	// EnvPrefix is the prefix viper uses for environment overrides.
	EnvPrefix = "RIDDERIQ"

	// DotEnvFile is the optional env file read before the environment is bound.
	DotEnvFile = ".env"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for the connectivity check.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits for the transport.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Pagination limits of the RidderIQ API.
const (
	// DefaultPage is sent on reads when no page was supplied.
	DefaultPage = 1

	// DefaultPageSize is sent on reads when no page size was supplied.
	DefaultPageSize = 20

	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 200
)

// Query parameter names.
const (
	QueryParamPage   = "page"
	QueryParamSize   = "size"
	QueryParamSort   = "sort"
	QueryParamFilter = "filter"
)

// HTTP headers and media types.
const (
	// HeaderAccept is the content negotiation header.
	HeaderAccept = "Accept"

	// HeaderContentType is set on requests carrying a body.
	HeaderContentType = "Content-Type"

	// HeaderAPIKey carries the tenant API key.
	HeaderAPIKey = "X-API-KEY"

	// HeaderUserAgent identifies the client.
	HeaderUserAgent = "User-Agent"

	// MediaTypeJSON is the only media type the API speaks.
	MediaTypeJSON = "application/json"

	// DefaultUserAgent is sent unless overridden.
	DefaultUserAgent = "ridderiq-client/1.0"
)

// HTTP status codes commonly used.
const (
	// HTTPStatusBadRequest is the first status treated as a failure.
	HTTPStatusBadRequest = 400
)

// Connectivity check.
const (
	// PingVersion is the API version used by the connectivity check.
	PingVersion = "v2"

	// PingEndpoint is a cheap list endpoint every administration exposes.
	PingEndpoint = "crm/todos"

	// PingPageSize keeps the connectivity check response small.
	PingPageSize = 1
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// MaskVisibleChars is how many trailing characters of a secret stay visible.
	MaskVisibleChars = 4

	// StatusOK marks a successful outcome in table output.
	StatusOK = "ok"

	// StatusFailed marks a failed outcome in table output.
	StatusFailed = "failed"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Boolean string constants.
const (
	// BooleanTrue string representation.
	BooleanTrue = "true"

	// BooleanFalse string representation.
	BooleanFalse = "false"
)
