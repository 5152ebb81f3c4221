package xmlfix

import "time"

// Engine defaults
const (
	// DefaultMatchThreshold is the maximum Levenshtein distance at which a
	// closing tag is still considered to match an open tag.
	DefaultMatchThreshold = 2

	// DefaultMaxInputSize caps input length (100MB). Oversized input is
	// rejected before the core runs.
	DefaultMaxInputSize = 100 * 1024 * 1024

	// UnlimitedDepth disables the nesting depth guard.
	UnlimitedDepth = 0
)

// Trust tier depth defaults
const (
	UntrustedMaxDepth = 1000
	InternalMaxDepth  = 10000
)

// Streaming constants
const (
	// StreamTextYieldMin is the minimum buffered text length before a
	// partial text run is flushed mid-stream.
	StreamTextYieldMin = 10

	// StreamTextReserve is the tail kept back when flushing partial text,
	// in case a '<' is split across the chunk boundary.
	StreamTextReserve = 5

	// StreamEntityReserve is how far behind the flush point an unterminated
	// '&' still holds back the flush. Covers the longest valid entity
	// reference (&#1114111; is ten bytes); a '&' further back than this
	// cannot be the start of one.
	StreamEntityReserve = 10
)

// SanitizedTagPrefix is prepended to tag names that are not valid XML
// names (e.g. <123> becomes <tag_123>). Applied to open and close tags
// alike so the repair pass can still pair them.
const SanitizedTagPrefix = "tag_"

// SyntheticRootName is the element used to wrap multiple root elements.
const SyntheticRootName = "document"

// dangerousPITargets are processing-instruction targets that indicate
// server-side code. Checked case-insensitively against the literal
// "<?name" prefix.
var dangerousPITargets = []string{"php", "asp", "jsp", "ruby", "python", "perl", "exec"}

// dangerousTagNames are element names commonly abused for XSS.
var dangerousTagNames = []string{"script", "iframe", "object", "embed", "applet", "meta", "link", "style"}

// commonNamespaces maps well-known prefixes to their namespace URIs for
// auto-injection into the root tag.
var commonNamespaces = map[string]string{
	"soap": "http://schemas.xmlsoap.org/soap/envelope/",
	"xsi":  "http://www.w3.org/2001/XMLSchema-instance",
	"xsd":  "http://www.w3.org/2001/XMLSchema",
	"xs":   "http://www.w3.org/2001/XMLSchema",
}

// namespaceInjectionOrder fixes the emission order of injected xmlns
// declarations (map iteration order is not deterministic).
var namespaceInjectionOrder = []string{"soap", "xsi", "xsd", "xs"}

// cdataCandidateTags are element names expected to hold code-like content,
// eligible for automatic CDATA wrapping.
var cdataCandidateTags = map[string]bool{
	"code":       true,
	"script":     true,
	"pre":        true,
	"source":     true,
	"sql":        true,
	"query":      true,
	"formula":    true,
	"expression": true,
	"xpath":      true,
	"regex":      true,
}

// Log message constants
const (
	LogMsgEngineCreated    = "repair engine created"
	LogMsgTokenizerStart   = "starting tokenization"
	LogMsgTokenizerEnd     = "tokenization complete"
	LogMsgRepairStart      = "starting repair"
	LogMsgRepairEnd        = "repair complete"
	LogMsgFluffStripped    = "conversational fluff stripped"
	LogMsgStreamOpened     = "stream session opened"
	LogMsgStreamFinalized  = "stream session finalized"
	LogMsgDepthExceeded    = "nesting depth limit exceeded"
	LogMsgThreatDetected   = "security threat detected"
	LogMsgAuditDispatch    = "dispatching threat audit event"
	LogMsgBatchStart       = "starting batch repair"
	LogMsgBatchEnd         = "batch repair complete"
)

// Log field name constants
const (
	LogFieldSource   = "source_length"
	LogFieldTokens   = "token_count"
	LogFieldActions  = "action_count"
	LogFieldOutput   = "output_length"
	LogFieldDepth    = "depth"
	LogFieldMaxDepth = "max_depth"
	LogFieldTag      = "tag"
	LogFieldTrust    = "trust_level"
	LogFieldThreat   = "threat"
	LogFieldInputs   = "input_count"
	LogFieldWorkers  = "worker_count"
)

// Metadata keys used on errors
const (
	MetaKeyInputSize = "input_size"
	MetaKeyMaxSize   = "max_size"
	MetaKeyDepth     = "depth"
	MetaKeyMaxDepth  = "max_depth"
	MetaKeyPreview   = "preview"
	MetaKeyIndex     = "index"
)

// Postgres auditor defaults
const (
	PostgresTablePrefix            = "xmlfix_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)
