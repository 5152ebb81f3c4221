package xmlfix

// TrustLevel names the provenance of the input and selects a bundle of
// default security settings. Making trust explicit forces security
// thinking at the point of use.
type TrustLevel string

const (
	// TrustUntrusted is for LLM output, user uploads, external APIs, and
	// any other input outside your control. All stripping is enabled, nesting depth
	// is capped, output structure is validated, and threats are audited.
	TrustUntrusted TrustLevel = "untrusted"

	// TrustInternal is for internal services and configuration you
	// control. External entity declarations are still stripped;
	// everything else is off.
	TrustInternal TrustLevel = "internal"

	// TrustTrusted is for hardcoded literals, test fixtures and known-good
	// data. All security checks are disabled. Never use for external
	// input.
	TrustTrusted TrustLevel = "trusted"
)

// SecurityConfig is the immutable security posture derived from a trust
// level, created once per repair invocation and never mutated.
type SecurityConfig struct {
	TrustLevel            TrustLevel
	StripDangerousPIs     bool
	StripExternalEntities bool
	StripDangerousTags    bool
	MaxNestingDepth       int // 0 = unlimited
	Strict                bool
	AuditThreats          bool
}

// SecurityOverride adjusts a single field of a derived SecurityConfig.
type SecurityOverride func(*SecurityConfig)

// OverrideStripDangerousPIs overrides the PI stripping default.
func OverrideStripDangerousPIs(v bool) SecurityOverride {
	return func(c *SecurityConfig) { c.StripDangerousPIs = v }
}

// OverrideStripExternalEntities overrides the external entity default.
func OverrideStripExternalEntities(v bool) SecurityOverride {
	return func(c *SecurityConfig) { c.StripExternalEntities = v }
}

// OverrideStripDangerousTags overrides the tag stripping default.
func OverrideStripDangerousTags(v bool) SecurityOverride {
	return func(c *SecurityConfig) { c.StripDangerousTags = v }
}

// OverrideMaxNestingDepth overrides the nesting depth cap (0 = unlimited).
func OverrideMaxNestingDepth(depth int) SecurityOverride {
	return func(c *SecurityConfig) { c.MaxNestingDepth = depth }
}

// OverrideStrict overrides strict output validation.
func OverrideStrict(v bool) SecurityOverride {
	return func(c *SecurityConfig) { c.Strict = v }
}

// OverrideAuditThreats overrides threat auditing.
func OverrideAuditThreats(v bool) SecurityOverride {
	return func(c *SecurityConfig) { c.AuditThreats = v }
}

// SecurityConfigFor derives the security configuration for a trust level,
// with explicit per-field overrides applied on top of the tier defaults.
func SecurityConfigFor(trust TrustLevel, overrides ...SecurityOverride) SecurityConfig {
	var config SecurityConfig

	switch trust {
	case TrustUntrusted:
		config = SecurityConfig{
			TrustLevel:            TrustUntrusted,
			StripDangerousPIs:     true,
			StripExternalEntities: true,
			StripDangerousTags:    true,
			MaxNestingDepth:       UntrustedMaxDepth,
			Strict:                true,
			AuditThreats:          true,
		}
	case TrustInternal:
		config = SecurityConfig{
			TrustLevel:            TrustInternal,
			StripExternalEntities: true,
			MaxNestingDepth:       InternalMaxDepth,
		}
	default:
		config = SecurityConfig{
			TrustLevel:      TrustTrusted,
			MaxNestingDepth: UnlimitedDepth,
		}
	}

	for _, override := range overrides {
		override(&config)
	}
	return config
}

// ParseTrustLevel converts a string (e.g. from a YAML profile) into a
// TrustLevel.
func ParseTrustLevel(s string) (TrustLevel, error) {
	switch TrustLevel(s) {
	case TrustUntrusted, TrustInternal, TrustTrusted:
		return TrustLevel(s), nil
	}
	return "", NewUnknownTrustError(s)
}
