package xmlfix

import "strings"

// SecurityFilter classifies processing instructions, tag names and DOCTYPE
// content as dangerous, and applies the policy-gated suppression actions.
//
// Detection and action are decoupled: the Is*/Contains*
// predicates always report threats regardless of configuration, so callers
// can run pure threat detection in audit mode. Only the ShouldStrip*
// variants consult the active policy.
type SecurityFilter struct {
	config Config
}

// NewSecurityFilter creates a filter bound to the given configuration.
func NewSecurityFilter(config Config) *SecurityFilter {
	return &SecurityFilter{config: config}
}

// IsDangerousPI returns true if the processing instruction looks like
// server-side code (php, asp, jsp, ruby, python, perl, exec). The check is
// case-insensitive against the literal "<?name" prefix.
func (f *SecurityFilter) IsDangerousPI(piContent string) bool {
	piLower := strings.ToLower(piContent)
	for _, target := range dangerousPITargets {
		if strings.Contains(piLower, "<?"+target) {
			return true
		}
	}
	return false
}

// IsDangerousTag returns true if the tag's local name (first
// whitespace-delimited token, case-insensitive) is in the XSS denylist.
func (f *SecurityFilter) IsDangerousTag(tagName string) bool {
	fields := strings.Fields(strings.ToLower(tagName))
	if len(fields) == 0 {
		return false
	}
	for _, name := range dangerousTagNames {
		if fields[0] == name {
			return true
		}
	}
	return false
}

// ContainsExternalEntity returns true if the DOCTYPE content references
// SYSTEM or PUBLIC identifiers. This is a coarse heuristic, not a DTD
// parser: it errs toward reporting.
func (f *SecurityFilter) ContainsExternalEntity(doctype string) bool {
	upper := strings.ToUpper(doctype)
	return strings.Contains(upper, "SYSTEM") || strings.Contains(upper, "PUBLIC")
}

// ShouldStripPI combines the PI predicate with the active policy flag.
func (f *SecurityFilter) ShouldStripPI(piContent string) bool {
	return f.config.StripDangerousPIs && f.IsDangerousPI(piContent)
}

// ShouldStripTag combines the tag predicate with the active policy flag.
func (f *SecurityFilter) ShouldStripTag(tagName string) bool {
	return f.config.StripDangerousTags && f.IsDangerousTag(tagName)
}

// StripExternalEntitiesFromText removes entire DOCTYPE declarations from
// the text when the policy flag is set. The scan is bracket-aware: an
// internal subset may itself contain '[' and ']', and a '>' inside the
// subset must not terminate the declaration.
func (f *SecurityFilter) StripExternalEntitiesFromText(text string) string {
	if !f.config.StripExternalEntities {
		return text
	}

	var sb strings.Builder
	i := 0
	for i < len(text) {
		if hasFoldPrefix(text[i:], "<!DOCTYPE") {
			end := doctypeEnd(text, i+len("<!DOCTYPE"))
			i = end
			continue
		}
		sb.WriteByte(text[i])
		i++
	}
	return sb.String()
}

// doctypeEnd returns the index just past the '>' terminating a DOCTYPE
// declaration starting inside text at pos, tracking internal-subset
// bracket depth. If no terminator exists the rest of the text is consumed.
func doctypeEnd(text string, pos int) int {
	inBracket := false
	for pos < len(text) {
		switch text[pos] {
		case '[':
			inBracket = true
		case ']':
			inBracket = false
		case '>':
			if !inBracket {
				return pos + 1
			}
		}
		pos++
	}
	return pos
}

// hasFoldPrefix reports whether s starts with prefix, ASCII case-folded.
func hasFoldPrefix(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}
