package constants

import "errors"

// Configuration errors.
var (
	ErrUnknownConfigKey   = errors.New("unknown configuration key")
	ErrSecretNotSettable  = errors.New("api_key cannot be stored via config command, use RIDDERIQ_API_KEY or a .env file")
	ErrConfigDirNotFound  = errors.New("could not determine configuration directory")
	ErrInvalidOutputValue = errors.New("output must be one of json, yaml, table")
)

// Command input errors.
var (
	ErrInvalidFilterFlag    = errors.New("filter must have the form field:operator:value[:value2]")
	ErrInputAndFlagsMixed   = errors.New("--input cannot be combined with per-record flags")
	ErrEmptyInputFile       = errors.New("input file contains no records")
	ErrNATSSubjectRequired  = errors.New("--nats-subject is required when --nats-url is set")
	ErrAPIKeyPromptRequired = errors.New("no API key configured and stdin is not a terminal")
	ErrNotRegularFile       = errors.New("path is not a regular file")
)

// Execution errors.
var (
	ErrBatchFailed = errors.New("one or more records failed")
)
