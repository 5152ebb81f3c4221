package xmlfix

import (
	"strings"

	"go.uber.org/zap"
)

// Tokenizer scans raw text into a flat sequence of typed tokens in a
// single forward pass. It never fails on malformed content: a '<' that
// cannot start a tag is plain text, and a tag cut off by end of input
// becomes an IncompleteTag token rather than an error.
type Tokenizer struct {
	source           string
	pos              int
	aggressiveEscape bool
	actions          []RepairAction
	logger           *zap.Logger
}

// NewTokenizer creates a tokenizer over the given source.
func NewTokenizer(source string, logger *zap.Logger) *Tokenizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tokenizer{
		source: source,
		logger: logger,
	}
}

// Tokenize is a convenience wrapper producing the token sequence for input.
func Tokenize(input string) []Token {
	return NewTokenizer(input, nil).Tokenize()
}

// Actions returns the repair actions recorded while tokenizing (attribute
// repairs happen inline so the scan cursor stays correct).
func (t *Tokenizer) Actions() []RepairAction {
	return t.actions
}

// Tokenize processes the source and returns the token stream.
func (t *Tokenizer) Tokenize() []Token {
	t.logger.Debug(LogMsgTokenizerStart, zap.Int(LogFieldSource, len(t.source)))
	var tokens []Token

	for !t.isAtEnd() {
		if t.peek() != '<' {
			tokens = t.scanTextRun(tokens)
			continue
		}

		// A '<' at the very end of input is literal text.
		if t.pos+1 >= len(t.source) {
			tokens = append(tokens, NewToken(TokenTypeText, "<", t.pos))
			t.pos++
			continue
		}

		// A '<' not followed by a tag-start character is literal text.
		if !isTagStartByte(t.source[t.pos+1]) {
			tokens = t.scanLooseText(tokens)
			continue
		}

		// Processing instruction / XML declaration.
		if t.matchStr("<?") {
			end := strings.Index(t.source[t.pos+2:], "?>")
			if end == -1 {
				// Unterminated PI: everything to end of input.
				tokens = append(tokens, NewToken(TokenTypeIncomplete, t.source[t.pos+1:], t.pos))
				t.pos = len(t.source)
				break
			}
			piEnd := t.pos + 2 + end + 2
			tokens = append(tokens, NewToken(TokenTypePI, t.source[t.pos:piEnd], t.pos))
			t.pos = piEnd
			continue
		}

		if t.matchStr("<!") {
			if tok, ok := t.scanDeclaration(); ok {
				tokens = append(tokens, tok)
				continue
			}
			// Unterminated comment/CDATA falls through to regular tag
			// scanning, same as any other ragged markup.
		}

		tokens = t.scanTag(tokens)
	}

	t.logger.Debug(LogMsgTokenizerEnd, zap.Int(LogFieldTokens, len(tokens)))
	return tokens
}

// scanTextRun consumes a run of plain text up to the next '<'. Runs that
// are pure whitespace become Whitespace tokens so formatting survives the
// rebuild; everything else stays raw and is escaped at emission time.
func (t *Tokenizer) scanTextRun(tokens []Token) []Token {
	start := t.pos
	for !t.isAtEnd() && t.peek() != '<' {
		t.pos++
	}
	content := t.source[start:t.pos]
	if strings.TrimSpace(content) != "" {
		tokens = append(tokens, NewToken(TokenTypeText, content, start))
	} else if content != "" {
		tokens = append(tokens, NewToken(TokenTypeWhitespace, content, start))
	}
	return tokens
}

// scanLooseText consumes text starting at a '<' that does not open a tag,
// re-entering tag detection at every subsequent '<'.
func (t *Tokenizer) scanLooseText(tokens []Token) []Token {
	start := t.pos
	for !t.isAtEnd() {
		if t.peek() == '<' && t.pos+1 < len(t.source) && isTagStartByte(t.source[t.pos+1]) {
			break
		}
		if t.peek() == '<' && t.pos+1 >= len(t.source) {
			break
		}
		t.pos++
	}
	if t.pos > start {
		tokens = append(tokens, NewToken(TokenTypeText, t.source[start:t.pos], start))
	}
	return tokens
}

// scanDeclaration handles the "<!" family: comments, CDATA sections, and
// DOCTYPE declarations. Returns ok=false when the construct has no
// terminator (the caller falls back to regular tag scanning), except for
// DOCTYPE which consumes to end of input.
func (t *Tokenizer) scanDeclaration() (Token, bool) {
	if t.matchStr("<!--") {
		end := strings.Index(t.source[t.pos+4:], "-->")
		if end == -1 {
			return Token{}, false
		}
		commentEnd := t.pos + 4 + end + 3
		tok := NewToken(TokenTypeComment, t.source[t.pos:commentEnd], t.pos)
		t.pos = commentEnd
		return tok, true
	}

	if t.matchStr("<![CDATA[") {
		end := strings.Index(t.source[t.pos+9:], "]]>")
		if end == -1 {
			return Token{}, false
		}
		cdataEnd := t.pos + 9 + end + 3
		tok := NewToken(TokenTypeCData, t.source[t.pos:cdataEnd], t.pos)
		t.pos = cdataEnd
		return tok, true
	}

	if hasFoldPrefix(t.source[t.pos:], "<!DOCTYPE") {
		// The internal subset may contain '>' inside [...], so track
		// bracket depth instead of scanning for the first '>'.
		end := doctypeEnd(t.source, t.pos+len("<!DOCTYPE"))
		tok := NewToken(TokenTypeDoctype, t.source[t.pos:end], t.pos)
		t.pos = end
		return tok, true
	}

	return Token{}, false
}

// scanTag consumes a regular tag from '<' to its unquoted '>'. A '>'
// inside a quoted attribute value does not terminate the tag. Reaching end
// of input before the terminator produces an IncompleteTag, the
// truncation entry point.
func (t *Tokenizer) scanTag(tokens []Token) []Token {
	start := t.pos
	end := t.pos + 1
	inQuotes := false
	var quoteChar byte

	for end < len(t.source) {
		ch := t.source[end]
		if !inQuotes {
			if ch == '"' || ch == '\'' {
				inQuotes = true
				quoteChar = ch
			} else if ch == '>' {
				end++
				break
			}
		} else if ch == quoteChar {
			inQuotes = false
		}
		end++
	}

	tagContent := t.source[start:end]

	if !strings.HasSuffix(tagContent, ">") {
		// Truncated tag: repair what we have and stop.
		inner := strings.TrimSpace(t.source[start+1:])
		if inner != "" {
			repaired, actions := fixMalformedAttributes(inner, t.aggressiveEscape)
			t.actions = append(t.actions, actions...)
			tokens = append(tokens, NewToken(TokenTypeIncomplete, repaired, start))
			tokens = append(tokens, NewToken(TokenTypeTagName, firstField(repaired), start))
		}
		t.pos = len(t.source)
		return tokens
	}

	switch {
	case strings.HasPrefix(tagContent, "</"):
		name := strings.TrimSpace(tagContent[2 : len(tagContent)-1])
		tokens = append(tokens, NewToken(TokenTypeCloseTag, name, start))
	case strings.HasSuffix(tagContent, "/>"):
		inner := strings.TrimSpace(tagContent[1 : len(tagContent)-2])
		repaired, actions := fixMalformedAttributes(inner, t.aggressiveEscape)
		t.actions = append(t.actions, actions...)
		tokens = append(tokens, NewToken(TokenTypeSelfClosing, repaired, start))
	default:
		inner := strings.TrimSpace(tagContent[1 : len(tagContent)-1])
		repaired, actions := fixMalformedAttributes(inner, t.aggressiveEscape)
		t.actions = append(t.actions, actions...)
		tokens = append(tokens, NewToken(TokenTypeOpenTag, repaired, start))
		tokens = append(tokens, NewToken(TokenTypeTagName, firstField(repaired), start))
	}

	t.pos = end
	return tokens
}

// Helper methods

func (t *Tokenizer) isAtEnd() bool {
	return t.pos >= len(t.source)
}

func (t *Tokenizer) peek() byte {
	if t.isAtEnd() {
		return 0
	}
	return t.source[t.pos]
}

func (t *Tokenizer) matchStr(s string) bool {
	return strings.HasPrefix(t.source[t.pos:], s)
}

// isTagStartByte reports whether ch can follow '<' at the start of a tag.
func isTagStartByte(ch byte) bool {
	return isLetterByte(ch) || ch == '_' || ch == ':' || ch == '/' || ch == '!' || ch == '?'
}

// firstField returns the first whitespace-delimited field of s, or s
// itself when it has no whitespace.
func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}
