package xmlfix

import "fmt"

// TokenType identifies the kind of a lexical token.
type TokenType string

// Token types produced by the tokenizer.
const (
	TokenTypeOpenTag     TokenType = "open_tag"
	TokenTypeCloseTag    TokenType = "close_tag"
	TokenTypeSelfClosing TokenType = "self_closing_tag"
	TokenTypeIncomplete  TokenType = "incomplete_tag"
	TokenTypeTagName     TokenType = "tag_name"
	TokenTypeText        TokenType = "text"
	TokenTypeWhitespace  TokenType = "whitespace"
	TokenTypePI          TokenType = "processing_instruction"
	TokenTypeComment     TokenType = "comment"
	TokenTypeCData       TokenType = "cdata"
	TokenTypeDoctype     TokenType = "doctype"
)

// Token represents one lexical unit of the input document. Tokens are
// produced in document order; a TagName token trails its owning OpenTag or
// IncompleteTag token and carries the parsed name separately from the raw
// attribute text.
type Token struct {
	Type     TokenType // The kind of token
	Content  string    // The token's content (meaning varies per kind)
	Position int       // Byte offset in the tokenized input
}

// String returns a human-readable representation of the token.
func (t Token) String() string {
	return fmt.Sprintf("Token{%s: %q @ %d}", t.Type, t.Content, t.Position)
}

// IsTag returns true for any token representing tag markup.
func (t Token) IsTag() bool {
	switch t.Type {
	case TokenTypeOpenTag, TokenTypeCloseTag, TokenTypeSelfClosing, TokenTypeIncomplete:
		return true
	}
	return false
}

// IsText returns true for text and whitespace tokens.
func (t Token) IsText() bool {
	return t.Type == TokenTypeText || t.Type == TokenTypeWhitespace
}

// NewToken creates a token with the given type, content and position.
func NewToken(tokenType TokenType, content string, pos int) Token {
	return Token{Type: tokenType, Content: content, Position: pos}
}
