package xmlfix

import (
	"fmt"
	"regexp"
	"strings"
)

// validEntityPattern matches entity references that are already well-formed
// and must survive escaping verbatim: the five predefined entities plus
// decimal and hexadecimal character references.
var validEntityPattern = regexp.MustCompile(`&(?:lt|gt|amp|quot|apos|#\d+|#x[0-9a-fA-F]+);`)

// entityPlaceholder builds the temporary marker used while escaping. NUL
// delimiters cannot occur in the entity grammar, so the markers never
// collide with document text.
func entityPlaceholder(i int) string {
	return fmt.Sprintf("\x00ent%d\x00", i)
}

// swapOutEntities replaces every valid entity reference with a unique
// placeholder and returns the rewritten string plus the saved entities.
// This is the load-bearing trick of the escaper: a plain sequential
// replace would double-escape the '&' inside '&amp;'.
func swapOutEntities(s string) (string, []string) {
	var entities []string
	out := validEntityPattern.ReplaceAllStringFunc(s, func(match string) string {
		entities = append(entities, match)
		return entityPlaceholder(len(entities) - 1)
	})
	return out, entities
}

// swapInEntities restores saved entities into their placeholders verbatim.
func swapInEntities(s string, entities []string) string {
	for i, entity := range entities {
		s = strings.Replace(s, entityPlaceholder(i), entity, 1)
	}
	return s
}

// EscapeText escapes &, < and > in text content while preserving entity
// references that are already valid. Running EscapeText on its own output
// does not double-escape.
func EscapeText(s string) string {
	s, entities := swapOutEntities(s)

	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")

	return swapInEntities(s, entities)
}

// EscapeAttributeValue escapes an attribute value for emission between
// quoteChar delimiters. Valid entity references are preserved. When
// aggressive is true, a fuller character set is escaped (both quotes,
// slash, and whitespace control characters) for XSS-hardening contexts.
func EscapeAttributeValue(value string, quoteChar byte, aggressive bool) string {
	value, entities := swapOutEntities(value)

	value = strings.ReplaceAll(value, "&", "&amp;")
	value = strings.ReplaceAll(value, "<", "&lt;")
	value = strings.ReplaceAll(value, ">", "&gt;")

	if aggressive {
		value = strings.ReplaceAll(value, "'", "&apos;")
		value = strings.ReplaceAll(value, `"`, "&quot;")
		value = strings.ReplaceAll(value, "/", "&#x2F;")
		value = strings.ReplaceAll(value, " ", "&#x20;")
		value = strings.ReplaceAll(value, "\t", "&#x09;")
		value = strings.ReplaceAll(value, "\n", "&#x0A;")
		value = strings.ReplaceAll(value, "\r", "&#x0D;")
	} else if quoteChar == '\'' {
		value = strings.ReplaceAll(value, "'", "&apos;")
	} else {
		value = strings.ReplaceAll(value, `"`, "&quot;")
	}

	return swapInEntities(value, entities)
}
