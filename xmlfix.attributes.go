package xmlfix

import "strings"

// fixMalformedAttributes parses and repairs the attribute region of a tag.
//
// It handles unquoted attribute values (key=value), missing closing
// quotes, duplicate attribute names, and escaping of special characters.
// Duplicate names are resolved case-insensitively with the first
// occurrence winning; later duplicates are still parsed so the cursor
// advances correctly, then discarded.
//
// tagContent is everything inside the angle brackets (e.g. "item id=1").
// Returns the repaired content and the repair actions taken.
func fixMalformedAttributes(tagContent string, aggressive bool) (string, []RepairAction) {
	var actions []RepairAction
	content := strings.TrimSpace(tagContent)

	// Read the tag name (first whitespace-delimited run).
	i := 0
	for i < len(content) && !isSpaceByte(content[i]) {
		i++
	}
	if i >= len(content) {
		// No attributes, just a tag name.
		return content, nil
	}
	tagName := content[:i]
	for i < len(content) && isSpaceByte(content[i]) {
		i++
	}

	var sb strings.Builder
	sb.WriteString(tagName)
	seen := make(map[string]bool)

	for i < len(content) {
		for i < len(content) && isSpaceByte(content[i]) {
			i++
		}
		if i >= len(content) {
			break
		}

		// Attribute name run: [alnum _ - :]
		attrStart := i
		for i < len(content) && isAttrNameByte(content[i]) {
			i++
		}

		if i >= len(content) || content[i] != '=' {
			// Not an attribute; append the remaining text verbatim.
			sb.WriteByte(' ')
			sb.WriteString(content[attrStart:])
			break
		}

		attrName := content[attrStart:i]
		attrNameLower := strings.ToLower(attrName)
		i++ // skip '='

		if seen[attrNameLower] {
			// First occurrence wins: parse the value to advance, discard it.
			i = skipAttributeValue(content, i)
			actions = append(actions, RepairAction{
				Type:        RepairDuplicateAttribute,
				Description: "removed duplicate attribute '" + attrNameLower + "'",
				Location:    tagName,
			})
			continue
		}
		seen[attrNameLower] = true

		if i >= len(content) {
			// name= at end of content: synthesize an opening quote.
			sb.WriteString(" " + attrName + `="`)
			break
		}

		if content[i] == '"' || content[i] == '\'' {
			quote := content[i]
			valueStart := i + 1
			i++
			for i < len(content) && content[i] != quote {
				i++
			}
			value := content[valueStart:i]
			if i < len(content) {
				i++ // skip closing quote
			}
			escaped := EscapeAttributeValue(value, quote, aggressive)
			sb.WriteByte(' ')
			sb.WriteString(attrName)
			sb.WriteByte('=')
			sb.WriteByte(quote)
			sb.WriteString(escaped)
			sb.WriteByte(quote)
		} else {
			// Unquoted value: collect up to the next `word=` lookahead or
			// end of content. The lookahead is required because unquoted
			// values may contain internal whitespace
			// (name=John Smith age=30 splits before age=).
			valueStart := i
			i = scanUnquotedValue(content, i)
			value := strings.TrimSpace(content[valueStart:i])
			escaped := EscapeAttributeValue(value, '"', aggressive)
			actions = append(actions, RepairAction{
				Type:        RepairMalformedAttribute,
				Description: "added quotes to unquoted attribute '" + attrName + "'",
				Location:    tagName,
				Before:      attrName + "=" + value,
				After:       attrName + `="` + escaped + `"`,
			})
			sb.WriteByte(' ')
			sb.WriteString(attrName)
			sb.WriteString(`="`)
			sb.WriteString(escaped)
			sb.WriteByte('"')
		}
	}

	return sb.String(), actions
}

// scanUnquotedValue advances from pos to the end of an unquoted attribute
// value: the position of the whitespace preceding the next `word=` pattern,
// or the end of content.
func scanUnquotedValue(content string, pos int) int {
	for pos < len(content) {
		if isSpaceByte(content[pos]) {
			j := pos
			for j < len(content) && isSpaceByte(content[j]) {
				j++
			}
			if j < len(content) {
				k := j
				for k < len(content) && isAttrNameByte(content[k]) {
					k++
				}
				// A bare '=' after whitespace also ends the value, with
				// an empty name run.
				if k < len(content) && content[k] == '=' {
					return pos
				}
			}
		}
		pos++
	}
	return pos
}

// skipAttributeValue advances past a quoted or unquoted attribute value
// without retaining it. Used for discarded duplicates.
func skipAttributeValue(content string, pos int) int {
	if pos < len(content) && (content[pos] == '"' || content[pos] == '\'') {
		quote := content[pos]
		pos++
		for pos < len(content) && content[pos] != quote {
			pos++
		}
		if pos < len(content) {
			pos++
		}
		return pos
	}
	return scanUnquotedValue(content, pos)
}

// Character classification helpers

func isSpaceByte(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isAttrNameByte(ch byte) bool {
	return isAlnumByte(ch) || ch == '_' || ch == '-' || ch == ':'
}

func isAlnumByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isLetterByte(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
