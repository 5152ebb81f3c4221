package xmlfix

import (
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - ALL error messages must be constants (NO MAGIC STRINGS)
const (
	// Input validation errors
	ErrMsgInputEmpty    = "input is empty or whitespace only"
	ErrMsgInputTooLarge = "input exceeds maximum allowed size"

	// Output validation errors (strict mode)
	ErrMsgOutputEmpty  = "repair produced empty output"
	ErrMsgOutputNoTags = "repair produced output without XML tags"

	// Streaming errors
	ErrMsgDepthExceeded = "nesting depth limit exceeded"
	ErrMsgSessionFailed = "stream session has failed and cannot accept input"
	ErrMsgSessionClosed = "stream session is already finalized"

	// Profile errors
	ErrMsgProfileParse        = "repair profile parsing failed"
	ErrMsgProfileRead         = "repair profile file could not be read"
	ErrMsgProfileUnknownTrust = "unknown trust level in repair profile"

	// Internal errors
	ErrMsgInternalInvariant = "internal invariant violation"

	// Audit storage errors
	ErrMsgAuditEmptyConnString = "audit storage connection string is empty"
	ErrMsgAuditConnection      = "audit storage connection failed"
	ErrMsgAuditQuery           = "audit storage query failed"
	ErrMsgAuditMigration       = "audit storage migration failed"
	ErrMsgAuditClosed          = "audit storage is already closed"
)

// Error code constants for categorization
const (
	ErrCodeValidation = "XMLFIX_VALIDATION"
	ErrCodeStructure  = "XMLFIX_STRUCTURE"
	ErrCodeStream     = "XMLFIX_STREAM"
	ErrCodeProfile    = "XMLFIX_PROFILE"
	ErrCodeInternal   = "XMLFIX_INTERNAL"
	ErrCodeAudit      = "XMLFIX_AUDIT"
)

// NewEmptyInputError reports input that is empty or whitespace only.
func NewEmptyInputError() error {
	return cuserr.NewValidationError(ErrCodeValidation, ErrMsgInputEmpty)
}

// NewInputTooLargeError reports input exceeding the configured size cap.
func NewInputTooLargeError(size, maxSize int) error {
	return cuserr.NewValidationError(ErrCodeValidation, ErrMsgInputTooLarge).
		WithMetadata(MetaKeyInputSize, strconv.Itoa(size)).
		WithMetadata(MetaKeyMaxSize, strconv.Itoa(maxSize))
}

// NewEmptyOutputError reports a strict-mode repair whose output is empty.
func NewEmptyOutputError() error {
	return cuserr.NewValidationError(ErrCodeStructure, ErrMsgOutputEmpty)
}

// NewNoTagsOutputError reports a strict-mode repair whose output has no
// XML structure at all. The preview carries the first bytes of the output
// for diagnostics.
func NewNoTagsOutputError(preview string) error {
	return cuserr.NewValidationError(ErrCodeStructure, ErrMsgOutputNoTags).
		WithMetadata(MetaKeyPreview, preview)
}

// NewDepthExceededError reports the streaming nesting-depth DoS guard
// firing. This aborts the session.
func NewDepthExceededError(depth, maxDepth int) error {
	return cuserr.NewValidationError(ErrCodeStream, ErrMsgDepthExceeded).
		WithMetadata(MetaKeyDepth, strconv.Itoa(depth)).
		WithMetadata(MetaKeyMaxDepth, strconv.Itoa(maxDepth))
}

// NewSessionFailedError reports a feed into a session that already failed.
func NewSessionFailedError() error {
	return cuserr.NewValidationError(ErrCodeStream, ErrMsgSessionFailed)
}

// NewSessionClosedError reports a feed into a finalized session.
func NewSessionClosedError() error {
	return cuserr.NewValidationError(ErrCodeStream, ErrMsgSessionClosed)
}

// NewProfileParseError wraps a YAML parse failure for a repair profile.
func NewProfileParseError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeProfile, ErrMsgProfileParse)
}

// NewProfileReadError wraps a file read failure for a repair profile.
func NewProfileReadError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeProfile, ErrMsgProfileRead)
}

// NewUnknownTrustError reports an unrecognized trust level name.
func NewUnknownTrustError(value string) error {
	return cuserr.NewValidationError(ErrCodeProfile, ErrMsgProfileUnknownTrust).
		WithMetadata(MetaKeyPreview, value)
}

// NewAuditConfigError reports an audit storage config without a DSN.
func NewAuditConfigError() error {
	return cuserr.NewValidationError(ErrCodeAudit, ErrMsgAuditEmptyConnString)
}

// NewAuditConnectionError wraps a failed audit storage connection.
func NewAuditConnectionError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeAudit, ErrMsgAuditConnection)
}

// NewAuditQueryError wraps a failed audit storage query.
func NewAuditQueryError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeAudit, ErrMsgAuditQuery)
}

// NewAuditMigrationError wraps a failed audit schema migration.
func NewAuditMigrationError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeAudit, ErrMsgAuditMigration)
}

// NewAuditClosedError reports use of a closed audit storage.
func NewAuditClosedError() error {
	return cuserr.NewValidationError(ErrCodeAudit, ErrMsgAuditClosed)
}

// NewInvariantError reports a bug: a state the engine should never reach.
func NewInvariantError(detail string) error {
	return cuserr.NewInternalError(ErrCodeInternal, nil).
		WithMetadata(MetaKeyPreview, detail)
}
