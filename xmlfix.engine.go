package xmlfix

import (
	"context"
	"regexp"
	"strings"

	"github.com/itsatony/go-xmlfix/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point for XML repair. It is safe for concurrent
// use: all per-call state lives on the stack of Repair.
type Engine struct {
	config  *engineConfig
	pre     *Preprocessor
	filter  *SecurityFilter
	logger  *zap.Logger
	auditor ThreatAuditor
}

// New creates a new repair Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	auditor := config.auditor
	if auditor == nil {
		auditor = NewNoOpAuditor()
	}

	engine := &Engine{
		config:  config,
		pre:     NewPreprocessor(config.config),
		filter:  NewSecurityFilter(config.config),
		logger:  logger,
		auditor: auditor,
	}

	logger.Debug(LogMsgEngineCreated,
		zap.String(LogFieldTrust, string(config.trust)),
		zap.Int(LogFieldMaxDepth, config.config.MaxNestingDepth))
	return engine, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Repair creates a one-shot engine and repairs input with it.
func Repair(input string, opts ...Option) (string, error) {
	engine, err := New(opts...)
	if err != nil {
		return "", err
	}
	return engine.Repair(input)
}

// RepairWithReport creates a one-shot engine and repairs input with it,
// returning the full repair report.
func RepairWithReport(input string, opts ...Option) (string, *RepairReport, error) {
	engine, err := New(opts...)
	if err != nil {
		return "", nil, err
	}
	return engine.RepairWithReport(input)
}

// Config returns a copy of the engine's repair configuration.
func (e *Engine) Config() Config {
	return e.config.config
}

// TrustLevel returns the trust tier the engine was configured with.
func (e *Engine) TrustLevel() TrustLevel {
	return e.config.trust
}

// Repair transforms malformed XML-like input into well-formed XML.
// Malformed content is never an error: truncated tags are closed, stray
// markup is repaired or passed through. Errors are reserved for invalid
// input (empty, oversized) and for strict-mode output validation.
func (e *Engine) Repair(input string) (string, error) {
	repaired, _, err := e.RepairWithReport(input)
	return repaired, err
}

// RepairWithReport repairs input and returns the report of every repair
// performed. The report is populated even when strict-mode validation
// fails afterwards.
func (e *Engine) RepairWithReport(input string) (string, *RepairReport, error) {
	if err := e.validateInput(input); err != nil {
		return "", nil, err
	}

	e.logger.Debug(LogMsgRepairStart, zap.Int(LogFieldSource, len(input)))

	report := &RepairReport{Original: input}
	var threats []*ThreatEvent

	repaired := e.repair(input, report, &threats)
	report.Repaired = repaired

	e.dispatchThreats(threats)

	if e.config.config.Strict {
		if err := e.validateOutput(repaired); err != nil {
			return "", report, err
		}
	}

	e.logger.Debug(LogMsgRepairEnd,
		zap.Int(LogFieldOutput, len(repaired)),
		zap.Int(LogFieldActions, report.Len()))
	return repaired, report, nil
}

// repair runs the full pipeline: preprocess, fluff extraction, namespace
// scan, tokenize, stack rebuild, multi-root wrap.
func (e *Engine) repair(input string, report *RepairReport, threats *[]*ThreatEvent) string {
	// Invalid tag names and namespace syntax must be rewritten before
	// tokenization so the tokenizer recognizes the tags at all.
	preprocessed, actions := e.pre.Preprocess(input)
	for _, action := range actions {
		report.add(action)
	}

	cleaned := e.extractXMLContent(preprocessed, report, threats)

	namespaces := extractNamespaces(cleaned)

	tokenizer := NewTokenizer(cleaned, e.logger)
	tokenizer.aggressiveEscape = e.config.trust == TrustUntrusted
	tokens := tokenizer.Tokenize()
	for _, action := range tokenizer.Actions() {
		report.add(action)
	}

	rebuilt := e.rebuild(tokens, namespaces, report, threats)

	if e.config.config.WrapMultipleRoots {
		rebuilt = e.wrapMultipleRoots(rebuilt, report)
	}

	return rebuilt
}

// rebuild replays the token stream, pairing closing tags against a stack
// of open tags and synthesizing whatever the input left out.
func (e *Engine) rebuild(tokens []Token, namespaces map[string]string, report *RepairReport, threats *[]*ThreatEvent) string {
	var out []string

	// Open tags carry their original case for emission; matching is done
	// on the lowercased form.
	type stackEntry struct {
		original string
		lower    string
	}
	var tagStack []stackEntry
	var dangerousStack []string // lowercased names of suppressed tags
	lowered := func(stack []stackEntry) []string {
		names := make([]string, len(stack))
		for i, entry := range stack {
			names[i] = entry.lower
		}
		return names
	}

	firstOpenTag := true
	inCdataCandidate := false
	var textBuffer []string
	autoCdata := e.config.config.AutoWrapCDATA

	flushText := func() {
		if len(textBuffer) == 0 {
			return
		}
		combined := strings.Join(textBuffer, "")
		textBuffer = textBuffer[:0]

		if inCdataCandidate && autoCdata && contentNeedsCdata(combined) {
			out = append(out, wrapInCdata(combined))
			report.add(RepairAction{
				Type:        RepairCdataWrapped,
				Description: "wrapped code-like content in CDATA section",
			})
		} else {
			out = append(out, EscapeText(combined))
		}
	}

	emitOpen := func(content string) {
		if firstOpenTag && len(namespaces) > 0 {
			injected := injectNamespaceDeclarations(content, namespaces)
			out = append(out, "<"+injected+">")
			report.add(RepairAction{
				Type:        RepairNamespaceInjected,
				Description: "injected xmlns declarations into root element",
				Before:      content,
				After:       injected,
			})
		} else {
			out = append(out, "<"+content+">")
		}
		firstOpenTag = false
	}

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		switch token.Type {
		case TokenTypePI:
			if e.filter.IsDangerousPI(token.Content) {
				*threats = append(*threats, newThreatEvent(ThreatDangerousPI, token.Content, e.config.config.StripDangerousPIs))
				if e.config.config.StripDangerousPIs {
					report.add(RepairAction{
						Type:        RepairDangerousPiStripped,
						Description: "stripped code-bearing processing instruction",
						Before:      token.Content,
					})
					continue
				}
			}
			out = append(out, token.Content)

		case TokenTypeOpenTag:
			flushText()

			var tagName string
			if i+1 < len(tokens) && tokens[i+1].Type == TokenTypeTagName {
				tagName = tokens[i+1].Content
			}

			if tagName != "" && e.filter.IsDangerousTag(tagName) {
				*threats = append(*threats, newThreatEvent(ThreatDangerousTag, tagName, e.config.config.StripDangerousTags))
				if e.config.config.StripDangerousTags {
					// Suppress the markup but keep processing the
					// content inside it.
					dangerousStack = append(dangerousStack, strings.ToLower(tagName))
					report.add(RepairAction{
						Type:        RepairDangerousTagStripped,
						Description: "suppressed markup of dangerous element",
						Location:    tagName,
					})
					i++ // skip the tag name token
					continue
				}
			}

			emitOpen(token.Content)

			if tagName != "" {
				tagStack = append(tagStack, stackEntry{original: tagName, lower: strings.ToLower(tagName)})
				inCdataCandidate = cdataCandidateTags[strings.ToLower(tagName)]
				i++ // skip the tag name token
			}

		case TokenTypeCloseTag:
			flushText()
			inCdataCandidate = false

			closingLower := strings.ToLower(token.Content)

			// A close for a suppressed dangerous tag is swallowed too.
			if e.config.config.StripDangerousTags && len(dangerousStack) > 0 {
				if idx := indexOfString(dangerousStack, closingLower); idx >= 0 {
					dangerousStack = append(dangerousStack[:idx], dangerousStack[idx+1:]...)
					continue
				}
			}

			matchIdx := internal.FindBestMatch(closingLower, lowered(tagStack), e.config.config.MatchThreshold)
			if matchIdx < 0 {
				// Extra or hopelessly mismatched closing tag, pass through.
				out = append(out, "</"+token.Content+">")
				continue
			}

			matched := tagStack[matchIdx]
			if matched.lower != closingLower {
				report.add(RepairAction{
					Type:        RepairTagTypo,
					Description: "matched misspelled closing tag to open tag",
					Before:      token.Content,
					After:       matched.original,
				})
			} else if matched.original != token.Content {
				report.add(RepairAction{
					Type:        RepairTagCaseMismatch,
					Description: "matched closing tag with differing case",
					Before:      token.Content,
					After:       matched.original,
				})
			}

			// Close the matched tag and every tag opened after it; those
			// inner tags were left unclosed by the mismatch.
			for len(tagStack) > matchIdx {
				top := tagStack[len(tagStack)-1]
				tagStack = tagStack[:len(tagStack)-1]
				out = append(out, "</"+top.original+">")
				if top.lower != matched.lower {
					report.add(RepairAction{
						Type:        RepairTruncation,
						Description: "auto-closed unclosed element",
						Location:    top.original,
					})
				}
			}

		case TokenTypeSelfClosing:
			flushText()
			out = append(out, "<"+token.Content+"/>")

		case TokenTypeIncomplete:
			flushText()
			emitOpen(token.Content)
			report.add(RepairAction{
				Type:        RepairTruncation,
				Description: "completed truncated tag",
				Before:      token.Content,
			})
			if i+1 < len(tokens) && tokens[i+1].Type == TokenTypeTagName {
				name := tokens[i+1].Content
				tagStack = append(tagStack, stackEntry{original: name, lower: strings.ToLower(name)})
				i++
			}

		case TokenTypeText:
			if inCdataCandidate && autoCdata {
				textBuffer = append(textBuffer, token.Content)
			} else {
				escaped := EscapeText(token.Content)
				if escaped != token.Content {
					report.add(RepairAction{
						Type:        RepairUnescapedEntity,
						Description: "escaped special characters in text content",
					})
				}
				out = append(out, escaped)
			}

		case TokenTypeWhitespace:
			if inCdataCandidate && autoCdata {
				textBuffer = append(textBuffer, token.Content)
			} else {
				out = append(out, token.Content)
			}

		case TokenTypeDoctype:
			if e.filter.ContainsExternalEntity(token.Content) {
				*threats = append(*threats, newThreatEvent(ThreatExternalEntity, token.Content, false))
			}
			out = append(out, token.Content)

		case TokenTypeComment, TokenTypeCData:
			out = append(out, token.Content)
		}
	}

	flushText()

	// Close every tag still open at end of input, innermost first, using
	// the original case.
	for len(tagStack) > 0 {
		top := tagStack[len(tagStack)-1]
		tagStack = tagStack[:len(tagStack)-1]
		out = append(out, "</"+top.original+">")
		report.add(RepairAction{
			Type:        RepairTruncation,
			Description: "closed element left open at end of input",
			Location:    top.original,
		})
	}

	return strings.Join(out, "")
}

// fluffEndPatterns detect conversational text after the XML payload.
// Checked in order; the first hit wins.
var fluffEndPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s+(Hope\s+this\s+helps|Let\s+me\s+know|That\s+should)`),
	regexp.MustCompile(`(?i)\s+(Please\s+let\s+me\s+know|Is\s+this\s+what)`),
	regexp.MustCompile(`(?i)\s*\n\s*[A-Z][^<]*$`),
}

// extractXMLContent strips conversational text around the XML payload and,
// when the policy requires it, removes DOCTYPE declarations before
// tokenization.
func (e *Engine) extractXMLContent(text string, report *RepairReport, threats *[]*ThreatEvent) string {
	text = strings.TrimSpace(text)

	if e.config.config.StripExternalEntities {
		stripped := e.filter.StripExternalEntitiesFromText(text)
		if stripped != text {
			*threats = append(*threats, newThreatEvent(ThreatExternalEntity, text, true))
			report.add(RepairAction{
				Type:        RepairExternalEntityStripped,
				Description: "removed DOCTYPE declaration",
			})
			text = stripped
		}
	}

	original := text

	xmlStart := -1
	if strings.HasPrefix(text, "<?xml") {
		xmlStart = 0
	} else {
		for i := 0; i+1 < len(text); i++ {
			if text[i] == '<' && isTagStartByte(text[i+1]) {
				xmlStart = i
				break
			}
		}
	}

	if xmlStart == -1 {
		// Nothing XML-like at all; the tokenizer will treat it as text.
		return text
	}

	xmlEnd := len(text)
	for _, pattern := range fluffEndPatterns {
		loc := pattern.FindStringIndex(text[xmlStart:])
		if loc == nil {
			continue
		}
		// Back up to the nearest '>' so the cut lands on a tag boundary.
		potentialEnd := xmlStart + loc[0]
		for i := potentialEnd - 1; i > xmlStart; i-- {
			if text[i] == '>' {
				xmlEnd = i + 1
				break
			}
		}
		break
	}

	extracted := text[xmlStart:xmlEnd]
	if extracted != original {
		e.logger.Debug(LogMsgFluffStripped,
			zap.Int(LogFieldSource, len(original)),
			zap.Int(LogFieldOutput, len(extracted)))
		report.add(RepairAction{
			Type:        RepairConversationalFluff,
			Description: "stripped conversational text around XML payload",
		})
	}
	return extracted
}

// namespacePrefixPattern finds prefix:name tag usages.
var namespacePrefixPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*):([a-zA-Z][a-zA-Z0-9]*)`)

// extractNamespaces collects the well-known namespace prefixes used in the
// document, mapped to their standard URIs.
func extractNamespaces(xml string) map[string]string {
	namespaces := make(map[string]string)
	for _, match := range namespacePrefixPattern.FindAllStringSubmatch(xml, -1) {
		prefix := match[1]
		if uri, ok := commonNamespaces[prefix]; ok {
			namespaces[prefix] = uri
		}
	}
	return namespaces
}

// injectNamespaceDeclarations inserts xmlns declarations into the root tag
// content, between the tag name and its attributes. Emission order is
// fixed so output is deterministic.
func injectNamespaceDeclarations(rootTag string, namespaces map[string]string) string {
	if len(namespaces) == 0 {
		return rootTag
	}

	var decls []string
	for _, prefix := range namespaceInjectionOrder {
		if uri, ok := namespaces[prefix]; ok {
			decls = append(decls, `xmlns:`+prefix+`="`+uri+`"`)
		}
	}

	parts := strings.SplitN(rootTag, " ", 2)
	if len(parts) > 1 {
		return parts[0] + " " + strings.Join(decls, " ") + " " + strings.TrimSpace(parts[1])
	}
	return rootTag + " " + strings.Join(decls, " ")
}

// contentNeedsCdata reports whether code-like content benefits from CDATA.
// A single special character is enough: escaping code hurts readability.
func contentNeedsCdata(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	return strings.ContainsAny(content, "<>&")
}

// wrapInCdata wraps content in a CDATA section. A literal "]]>" inside the
// content would terminate the section early, so it is split across two
// sections.
func wrapInCdata(content string) string {
	content = strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>")
	return "<![CDATA[" + content + "]]>"
}

// wrapMultipleRoots wraps the document in a synthetic root when it has
// more than one root element or text at the top level. The XML declaration
// and any processing instructions before the first root stay outside the
// wrapper.
func (e *Engine) wrapMultipleRoots(xml string, report *RepairReport) string {
	tokens := Tokenize(xml)

	depth := 0
	rootCount := 0
	hasTopLevelText := false
	var xmlDeclaration string
	var pisBeforeRoot []string

	for _, token := range tokens {
		switch token.Type {
		case TokenTypePI:
			if strings.HasPrefix(token.Content, "<?xml") {
				xmlDeclaration = token.Content
			} else if depth == 0 {
				pisBeforeRoot = append(pisBeforeRoot, token.Content)
			}
		case TokenTypeOpenTag, TokenTypeIncomplete:
			if depth == 0 {
				rootCount++
			}
			depth++
		case TokenTypeCloseTag:
			depth--
		case TokenTypeSelfClosing:
			if depth == 0 {
				rootCount++
			}
		case TokenTypeText:
			if depth == 0 && strings.TrimSpace(token.Content) != "" {
				hasTopLevelText = true
			}
		}
	}

	if rootCount <= 1 && !hasTopLevelText {
		return xml
	}

	var sb strings.Builder
	if xmlDeclaration != "" {
		sb.WriteString(xmlDeclaration)
		sb.WriteByte('\n')
		xml = strings.Replace(xml, xmlDeclaration, "", 1)
	}
	for _, pi := range pisBeforeRoot {
		sb.WriteString(pi)
		sb.WriteByte('\n')
		xml = strings.Replace(xml, pi, "", 1)
	}

	sb.WriteString("<" + SyntheticRootName + ">")
	sb.WriteString(strings.TrimSpace(xml))
	sb.WriteString("</" + SyntheticRootName + ">")

	report.add(RepairAction{
		Type:        RepairMultipleRoots,
		Description: "wrapped multiple root elements in synthetic root",
		Location:    SyntheticRootName,
	})
	return sb.String()
}

// dispatchThreats forwards collected threat events to the auditor when
// auditing is active. Audit failures are logged, never propagated: the
// repair result must not depend on sink availability.
func (e *Engine) dispatchThreats(threats []*ThreatEvent) {
	if !e.config.config.AuditThreats || len(threats) == 0 {
		return
	}
	ctx := context.Background()
	for _, event := range threats {
		event.TrustLevel = e.config.trust
		e.logger.Debug(LogMsgAuditDispatch,
			zap.String(LogFieldThreat, string(event.Type)))
		if err := e.auditor.RecordThreat(ctx, event); err != nil {
			e.logger.Warn(LogMsgThreatDetected,
				zap.String(LogFieldThreat, string(event.Type)),
				zap.Error(err))
		}
	}
}

// indexOfString returns the index of the first occurrence of v, or -1.
func indexOfString(items []string, v string) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return -1
}
