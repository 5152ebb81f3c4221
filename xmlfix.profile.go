package xmlfix

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is a declarative repair configuration, typically loaded from a
// YAML file checked in next to the service that uses it. Every field is
// optional: unset fields keep the defaults of the selected trust tier.
//
//	trust: untrusted
//	match_threshold: 3
//	wrap_multiple_roots: true
//	auto_wrap_cdata: true
//	strip_dangerous_tags: false
type Profile struct {
	// Trust selects the tier whose defaults the other fields override.
	Trust string `yaml:"trust,omitempty" json:"trust,omitempty"`

	MatchThreshold          *int  `yaml:"match_threshold,omitempty" json:"match_threshold,omitempty"`
	StripDangerousPIs       *bool `yaml:"strip_dangerous_pis,omitempty" json:"strip_dangerous_pis,omitempty"`
	StripExternalEntities   *bool `yaml:"strip_external_entities,omitempty" json:"strip_external_entities,omitempty"`
	StripDangerousTags      *bool `yaml:"strip_dangerous_tags,omitempty" json:"strip_dangerous_tags,omitempty"`
	WrapMultipleRoots       *bool `yaml:"wrap_multiple_roots,omitempty" json:"wrap_multiple_roots,omitempty"`
	SanitizeInvalidTagNames *bool `yaml:"sanitize_invalid_tag_names,omitempty" json:"sanitize_invalid_tag_names,omitempty"`
	FixNamespaceSyntax      *bool `yaml:"fix_namespace_syntax,omitempty" json:"fix_namespace_syntax,omitempty"`
	AutoWrapCDATA           *bool `yaml:"auto_wrap_cdata,omitempty" json:"auto_wrap_cdata,omitempty"`
	MaxNestingDepth         *int  `yaml:"max_nesting_depth,omitempty" json:"max_nesting_depth,omitempty"`
	Strict                  *bool `yaml:"strict,omitempty" json:"strict,omitempty"`
	AuditThreats            *bool `yaml:"audit_threats,omitempty" json:"audit_threats,omitempty"`
	MaxInputSize            *int  `yaml:"max_input_size,omitempty" json:"max_input_size,omitempty"`
}

// ParseProfile parses a YAML repair profile.
func ParseProfile(data []byte) (*Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, NewProfileParseError(err)
	}
	if profile.Trust != "" {
		if _, err := ParseTrustLevel(profile.Trust); err != nil {
			return nil, err
		}
	}
	return &profile, nil
}

// LoadProfileFile reads and parses a YAML repair profile from disk.
func LoadProfileFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewProfileReadError(err)
	}
	return ParseProfile(data)
}

// Options converts the profile into engine options, trust tier first so
// the explicit fields override its defaults.
func (p *Profile) Options() []Option {
	var opts []Option

	if p.Trust != "" {
		if trust, err := ParseTrustLevel(p.Trust); err == nil {
			opts = append(opts, WithTrustLevel(trust))
		}
	}
	if p.MatchThreshold != nil {
		opts = append(opts, WithMatchThreshold(*p.MatchThreshold))
	}
	if p.StripDangerousPIs != nil {
		opts = append(opts, WithStripDangerousPIs(*p.StripDangerousPIs))
	}
	if p.StripExternalEntities != nil {
		opts = append(opts, WithStripExternalEntities(*p.StripExternalEntities))
	}
	if p.StripDangerousTags != nil {
		opts = append(opts, WithStripDangerousTags(*p.StripDangerousTags))
	}
	if p.WrapMultipleRoots != nil {
		opts = append(opts, WithWrapMultipleRoots(*p.WrapMultipleRoots))
	}
	if p.SanitizeInvalidTagNames != nil {
		opts = append(opts, WithSanitizeInvalidTagNames(*p.SanitizeInvalidTagNames))
	}
	if p.FixNamespaceSyntax != nil {
		opts = append(opts, WithFixNamespaceSyntax(*p.FixNamespaceSyntax))
	}
	if p.AutoWrapCDATA != nil {
		opts = append(opts, WithAutoWrapCDATA(*p.AutoWrapCDATA))
	}
	if p.MaxNestingDepth != nil {
		opts = append(opts, WithMaxNestingDepth(*p.MaxNestingDepth))
	}
	if p.Strict != nil {
		opts = append(opts, WithStrict(*p.Strict))
	}
	if p.AuditThreats != nil {
		opts = append(opts, WithAuditThreats(*p.AuditThreats))
	}
	if p.MaxInputSize != nil {
		opts = append(opts, WithMaxInputSize(*p.MaxInputSize))
	}

	return opts
}

// NewFromProfile creates an engine from a profile plus extra options
// (applied after the profile, so they win).
func NewFromProfile(profile *Profile, opts ...Option) (*Engine, error) {
	all := append(profile.Options(), opts...)
	return New(all...)
}
