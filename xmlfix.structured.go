package xmlfix

import (
	"regexp"
	"strings"
)

// Node is one element of the structured view of a repaired document.
type Node struct {
	// Attributes are the element's attributes (quoted values only).
	Attributes map[string]string `json:"attributes,omitempty"`

	// Text is the element's accumulated text content, trimmed.
	Text string `json:"text,omitempty"`

	// Children maps child element names to their occurrences in document
	// order.
	Children map[string][]*Node `json:"children,omitempty"`
}

// FirstChild returns the first child with the given name, or nil.
func (n *Node) FirstChild(name string) *Node {
	if n == nil || len(n.Children[name]) == 0 {
		return nil
	}
	return n.Children[name][0]
}

// ChildCount returns the number of children with the given name.
func (n *Node) ChildCount(name string) int {
	if n == nil {
		return 0
	}
	return len(n.Children[name])
}

// addChild appends a child node under name.
func (n *Node) addChild(name string, child *Node) {
	if n.Children == nil {
		n.Children = make(map[string][]*Node)
	}
	n.Children[name] = append(n.Children[name], child)
}

// ToTree repairs the input and converts the result into a Node tree. The
// returned root is a synthetic container: the document's root element(s)
// are its children.
func (e *Engine) ToTree(input string) (*Node, error) {
	repaired, err := e.Repair(input)
	if err != nil {
		return nil, err
	}
	return buildTree(Tokenize(repaired)), nil
}

// buildTree folds a token stream from already-repaired XML into a Node
// tree. The stream is balanced at this point, so the walk needs no repair
// logic of its own.
func buildTree(tokens []Token) *Node {
	root := &Node{}
	stack := []*Node{root}
	var textBuffer []string

	// Text buffered so far belongs to the innermost open element. It is
	// flushed before descending into a child, so mixed content like
	// <a>x<b>y</b>z</a> keeps "x" and "z" on a.
	flushText := func() {
		text := strings.TrimSpace(strings.Join(textBuffer, ""))
		textBuffer = textBuffer[:0]
		if text == "" {
			return
		}
		top := stack[len(stack)-1]
		if top.Text != "" {
			top.Text += " " + text
		} else {
			top.Text = text
		}
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		switch token.Type {
		case TokenTypeOpenTag:
			flushText()
			name := firstField(token.Content)
			child := &Node{Attributes: parseQuotedAttributes(token.Content)}
			stack[len(stack)-1].addChild(name, child)
			stack = append(stack, child)
			if i+1 < len(tokens) && tokens[i+1].Type == TokenTypeTagName {
				i++
			}

		case TokenTypeCloseTag:
			flushText()
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}

		case TokenTypeSelfClosing:
			flushText()
			name := firstField(token.Content)
			child := &Node{Attributes: parseQuotedAttributes(token.Content)}
			stack[len(stack)-1].addChild(name, child)

		case TokenTypeText:
			textBuffer = append(textBuffer, token.Content)

		case TokenTypeCData:
			inner := strings.TrimSuffix(strings.TrimPrefix(token.Content, "<![CDATA["), "]]>")
			textBuffer = append(textBuffer, inner)
		}
	}

	return root
}

// quotedAttributePattern extracts name="value" pairs (either quote style).
var quotedAttributePattern = regexp.MustCompile(`([\w.:-]+)=(?:"([^"]*)"|'([^']*)')`)

// parseQuotedAttributes extracts the attributes from the content of a tag
// token. Repair has already run, so every value is quoted.
func parseQuotedAttributes(tagContent string) map[string]string {
	idx := strings.IndexFunc(tagContent, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	if idx == -1 {
		return nil
	}

	matches := quotedAttributePattern.FindAllStringSubmatch(tagContent[idx:], -1)
	if len(matches) == 0 {
		return nil
	}

	attrs := make(map[string]string, len(matches))
	for _, match := range matches {
		value := match[2]
		if strings.HasSuffix(match[0], "'") {
			value = match[3]
		}
		attrs[match[1]] = value
	}
	return attrs
}
