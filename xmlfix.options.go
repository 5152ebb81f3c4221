package xmlfix

import (
	"go.uber.org/zap"
)

// Config is the full set of repair options recognized by the engine,
// expressed as named fields rather than flag bitmasks.
type Config struct {
	// MatchThreshold is the maximum Levenshtein distance at which a
	// closing tag still matches an open tag. Default: 2.
	MatchThreshold int

	// StripDangerousPIs removes processing instructions that look like
	// server-side code (php, asp, jsp, ...).
	StripDangerousPIs bool

	// StripExternalEntities removes DOCTYPE declarations, which may carry
	// external entity references (XXE prevention).
	StripExternalEntities bool

	// StripDangerousTags suppresses markup for XSS-prone elements
	// (script, iframe, object, ...) while keeping their inner content.
	StripDangerousTags bool

	// WrapMultipleRoots wraps multiple root elements (or root-level text)
	// in a synthetic <document> element.
	WrapMultipleRoots bool

	// SanitizeInvalidTagNames rewrites tag names that are not valid XML
	// names (e.g. <123> becomes <tag_123>).
	SanitizeInvalidTagNames bool

	// FixNamespaceSyntax flattens malformed namespace syntax
	// (e.g. <bad::ns> becomes <bad_ns>).
	FixNamespaceSyntax bool

	// AutoWrapCDATA wraps code-like content of CDATA-candidate tags
	// (<code>, <sql>, ...) in CDATA sections when it contains special
	// characters.
	AutoWrapCDATA bool

	// MaxNestingDepth caps element nesting in streaming sessions.
	// 0 means unlimited.
	MaxNestingDepth int

	// Strict validates that the repaired output has minimal XML shape and
	// fails the call otherwise.
	Strict bool

	// AuditThreats dispatches detected security threats to the configured
	// auditor.
	AuditThreats bool
}

// DefaultConfig returns the default repair configuration: repair
// everything, strip nothing.
func DefaultConfig() Config {
	return Config{
		MatchThreshold: DefaultMatchThreshold,
	}
}

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	config       Config
	trust        TrustLevel
	maxInputSize int
	logger       *zap.Logger
	auditor      ThreatAuditor
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		config:       DefaultConfig(),
		trust:        TrustTrusted,
		maxInputSize: DefaultMaxInputSize,
		logger:       nil,
		auditor:      nil,
	}
}

// WithConfig replaces the entire repair configuration.
func WithConfig(config Config) Option {
	return func(c *engineConfig) {
		c.config = config
	}
}

// WithTrustLevel applies a trust tier's security defaults. Options applied
// after WithTrustLevel override individual fields.
func WithTrustLevel(trust TrustLevel) Option {
	return func(c *engineConfig) {
		sec := SecurityConfigFor(trust)
		c.trust = trust
		c.config.StripDangerousPIs = sec.StripDangerousPIs
		c.config.StripExternalEntities = sec.StripExternalEntities
		c.config.StripDangerousTags = sec.StripDangerousTags
		c.config.MaxNestingDepth = sec.MaxNestingDepth
		c.config.Strict = sec.Strict
		c.config.AuditThreats = sec.AuditThreats
	}
}

// WithMatchThreshold sets the maximum Levenshtein distance for fuzzy
// close-tag matching. Default: 2.
func WithMatchThreshold(threshold int) Option {
	return func(c *engineConfig) {
		if threshold >= 0 {
			c.config.MatchThreshold = threshold
		}
	}
}

// WithStripDangerousPIs toggles dangerous processing-instruction removal.
func WithStripDangerousPIs(v bool) Option {
	return func(c *engineConfig) { c.config.StripDangerousPIs = v }
}

// WithStripExternalEntities toggles DOCTYPE/external-entity removal.
func WithStripExternalEntities(v bool) Option {
	return func(c *engineConfig) { c.config.StripExternalEntities = v }
}

// WithStripDangerousTags toggles XSS-prone tag suppression.
func WithStripDangerousTags(v bool) Option {
	return func(c *engineConfig) { c.config.StripDangerousTags = v }
}

// WithWrapMultipleRoots toggles synthetic-root wrapping.
func WithWrapMultipleRoots(v bool) Option {
	return func(c *engineConfig) { c.config.WrapMultipleRoots = v }
}

// WithSanitizeInvalidTagNames toggles invalid tag-name rewriting.
func WithSanitizeInvalidTagNames(v bool) Option {
	return func(c *engineConfig) { c.config.SanitizeInvalidTagNames = v }
}

// WithFixNamespaceSyntax toggles malformed-namespace rewriting.
func WithFixNamespaceSyntax(v bool) Option {
	return func(c *engineConfig) { c.config.FixNamespaceSyntax = v }
}

// WithAutoWrapCDATA toggles automatic CDATA wrapping of code-like content.
func WithAutoWrapCDATA(v bool) Option {
	return func(c *engineConfig) { c.config.AutoWrapCDATA = v }
}

// WithMaxNestingDepth caps streaming nesting depth. Use 0 for unlimited.
func WithMaxNestingDepth(depth int) Option {
	return func(c *engineConfig) {
		if depth >= 0 {
			c.config.MaxNestingDepth = depth
		}
	}
}

// WithAuditThreats toggles threat-event dispatch to the auditor.
func WithAuditThreats(v bool) Option {
	return func(c *engineConfig) { c.config.AuditThreats = v }
}

// WithStrict toggles strict-mode output validation.
func WithStrict(v bool) Option {
	return func(c *engineConfig) { c.config.Strict = v }
}

// WithMaxInputSize caps accepted input length in bytes.
// Default: 100MB. Use 0 to disable the check.
func WithMaxInputSize(size int) Option {
	return func(c *engineConfig) {
		if size >= 0 {
			c.maxInputSize = size
		}
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithAuditor sets the threat audit sink. Threat events are dispatched to
// it when auditing is active.
func WithAuditor(auditor ThreatAuditor) Option {
	return func(c *engineConfig) {
		c.auditor = auditor
	}
}
