package xmlfix

import "regexp"

// The preprocessor runs before tokenization and rewrites tag names the
// tokenizer could not otherwise recognize. It is a single regex-driven
// pass and idempotent: preprocess(preprocess(x)) == preprocess(x).

// invalidTagNamePattern matches open or close tags whose name starts with
// a character that is not a valid XML name-start (digits, dots, hyphens).
var invalidTagNamePattern = regexp.MustCompile(`<(/?)([0-9.\-][^<>\s/]*)`)

// invalidNamespacePattern matches tag names with malformed namespace
// syntax: two or more consecutive colons between prefix and local name.
var invalidNamespacePattern = regexp.MustCompile(`<(/?)([A-Za-z_][\w.\-]*)::+([A-Za-z_][\w.\-]*)`)

// emptyPrefixPattern matches tag names with a leading colon and no prefix.
var emptyPrefixPattern = regexp.MustCompile(`<(/?):([A-Za-z_][\w.\-]*)`)

// Preprocessor fixes structurally invalid tag and namespace names before
// tokenization. Unparseable fragments pass through unchanged; the
// preprocessor never fails.
type Preprocessor struct {
	config Config
}

// NewPreprocessor creates a preprocessor bound to the given configuration.
func NewPreprocessor(config Config) *Preprocessor {
	return &Preprocessor{config: config}
}

// Preprocess applies the enabled rewrites and returns the new text along
// with the repair actions taken.
func (p *Preprocessor) Preprocess(text string) (string, []RepairAction) {
	var actions []RepairAction

	if p.config.SanitizeInvalidTagNames {
		text = invalidTagNamePattern.ReplaceAllStringFunc(text, func(match string) string {
			groups := invalidTagNamePattern.FindStringSubmatch(match)
			before := groups[2]
			after := SanitizedTagPrefix + before
			actions = append(actions, RepairAction{
				Type:        RepairInvalidTagName,
				Description: "sanitized invalid tag name",
				Before:      before,
				After:       after,
			})
			return "<" + groups[1] + after
		})
	}

	if p.config.FixNamespaceSyntax {
		text = invalidNamespacePattern.ReplaceAllStringFunc(text, func(match string) string {
			groups := invalidNamespacePattern.FindStringSubmatch(match)
			before := groups[2] + "::" + groups[3]
			after := groups[2] + "_" + groups[3]
			actions = append(actions, RepairAction{
				Type:        RepairInvalidNamespace,
				Description: "flattened malformed namespace syntax",
				Before:      before,
				After:       after,
			})
			return "<" + groups[1] + after
		})
		text = emptyPrefixPattern.ReplaceAllStringFunc(text, func(match string) string {
			groups := emptyPrefixPattern.FindStringSubmatch(match)
			actions = append(actions, RepairAction{
				Type:        RepairInvalidNamespace,
				Description: "dropped empty namespace prefix",
				Before:      ":" + groups[2],
				After:       groups[2],
			})
			return "<" + groups[1] + groups[2]
		})
	}

	return text, actions
}
