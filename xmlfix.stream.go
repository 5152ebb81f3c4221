package xmlfix

import (
	"strings"

	"github.com/itsatony/go-xmlfix/internal"
	"go.uber.org/zap"
)

// streamState is the lexical position of a streaming session.
type streamState int

const (
	// streamInitial buffers until the first '<' so leading conversational
	// fluff is never emitted.
	streamInitial streamState = iota

	// streamInText is between tags.
	streamInText

	// streamInTag is inside an unterminated '<...>'.
	streamInTag
)

// openTagEntry is one open element on the session stack, original case for
// emission and lowercase for matching.
type openTagEntry struct {
	original string
	lower    string
}

// StreamSession repairs chunked input incrementally, yielding output as
// soon as it is provably complete. A session is a sequential state
// machine: Feed calls must not run concurrently, but independent sessions
// are fully parallel.
//
// Streaming output differs from one-shot repair in three documented ways:
// trailing fluff after the payload is not detected (it would require
// lookahead past already-emitted output), multiple roots are never
// wrapped, and namespace declarations are not injected into the root.
type StreamSession struct {
	engine         *Engine
	buffer         string
	state          streamState
	tagStack       []openTagEntry
	dangerousStack []string
	threats        []*ThreatEvent
	failed         bool
	closed         bool
}

// OpenStream starts a streaming repair session using the engine's
// configuration.
func (e *Engine) OpenStream() *StreamSession {
	e.logger.Debug(LogMsgStreamOpened,
		zap.Int(LogFieldMaxDepth, e.config.config.MaxNestingDepth))
	return &StreamSession{
		engine: e,
		state:  streamInitial,
	}
}

// Feed appends a chunk and returns every output fragment that is safe to
// emit given the buffered content so far. A fragment is safe when no
// future input can change it: complete tags, and text runs far enough from
// the buffer tail that a split '<' cannot reach them.
//
// The only error conditions are a session that already failed (depth
// guard) or one that was already finalized.
func (s *StreamSession) Feed(chunk string) ([]string, error) {
	if s.failed {
		return nil, NewSessionFailedError()
	}
	if s.closed {
		return nil, NewSessionClosedError()
	}

	s.buffer += chunk
	var out []string

	for {
		switch s.state {
		case streamInitial:
			idx := strings.IndexByte(s.buffer, '<')
			if idx == -1 {
				// Might all be fluff, might be a split tag start. Wait.
				return out, nil
			}
			s.buffer = s.buffer[idx:]
			s.state = streamInText

		case streamInText:
			idx := strings.IndexByte(s.buffer, '<')
			if idx == -1 {
				// No tag in sight. Flush all but a short tail: a '<'
				// may be split across the chunk boundary, and so may an
				// entity reference, which EscapeText must never see half
				// of.
				if len(s.buffer) > StreamTextYieldMin {
					cut := len(s.buffer) - StreamTextReserve
					cut = holdBackSplitEntity(s.buffer, cut)
					text := s.buffer[:cut]
					s.buffer = s.buffer[cut:]
					if text != "" {
						out = append(out, EscapeText(text))
					}
				}
				return out, nil
			}
			if idx > 0 {
				out = append(out, EscapeText(s.buffer[:idx]))
				s.buffer = s.buffer[idx:]
			}
			s.state = streamInTag

		case streamInTag:
			end, ok := completeTagEnd(s.buffer)
			if !ok {
				// Partial tag, cannot act yet.
				return out, nil
			}

			tag := s.buffer[:end]
			s.buffer = s.buffer[end:]
			s.state = streamInText

			fragments, err := s.repairCompleteTag(tag)
			if err != nil {
				s.failed = true
				return nil, err
			}
			out = append(out, fragments...)
		}
	}
}

// Finalize ends the stream: the remaining buffer is repaired as a
// best-effort final fragment, then every still-open tag is closed
// innermost first. The session cannot be fed afterwards.
func (s *StreamSession) Finalize() ([]string, error) {
	if s.failed {
		return nil, NewSessionFailedError()
	}
	if s.closed {
		return nil, NewSessionClosedError()
	}
	s.closed = true

	var out []string

	switch s.state {
	case streamInTag:
		// Truncated tag at end of stream.
		inner := strings.TrimSpace(strings.TrimPrefix(s.buffer, "<"))
		if inner != "" && !strings.HasPrefix(inner, "/") {
			repaired, _ := fixMalformedAttributes(inner, s.aggressive())
			out = append(out, "<"+repaired+">")
			s.tagStack = append(s.tagStack, newOpenTagEntry(firstField(repaired)))
		}
	case streamInText:
		if strings.TrimSpace(s.buffer) != "" {
			out = append(out, EscapeText(s.buffer))
		}
	case streamInitial:
		// Never saw a tag; the buffer is fluff.
	}
	s.buffer = ""

	for len(s.tagStack) > 0 {
		top := s.tagStack[len(s.tagStack)-1]
		s.tagStack = s.tagStack[:len(s.tagStack)-1]
		out = append(out, "</"+top.original+">")
	}

	s.engine.dispatchThreats(s.threats)
	s.engine.logger.Debug(LogMsgStreamFinalized,
		zap.Int(LogFieldTokens, len(out)))
	return out, nil
}

// Depth returns the current element nesting depth.
func (s *StreamSession) Depth() int {
	return len(s.tagStack)
}

// Failed reports whether the session aborted on the depth guard.
func (s *StreamSession) Failed() bool {
	return s.failed
}

// repairCompleteTag applies the core engine's per-tag repair to one
// complete tag and returns the fragments to emit.
func (s *StreamSession) repairCompleteTag(tag string) ([]string, error) {
	config := s.engine.config.config
	filter := s.engine.filter

	switch {
	case strings.HasPrefix(tag, "<?"):
		if filter.IsDangerousPI(tag) {
			s.threats = append(s.threats, newThreatEvent(ThreatDangerousPI, tag, config.StripDangerousPIs))
			if config.StripDangerousPIs {
				return nil, nil
			}
		}
		return []string{tag}, nil

	case strings.HasPrefix(tag, "<!--"), strings.HasPrefix(tag, "<![CDATA["):
		return []string{tag}, nil

	case hasFoldPrefix(tag, "<!DOCTYPE"):
		if filter.ContainsExternalEntity(tag) {
			s.threats = append(s.threats, newThreatEvent(ThreatExternalEntity, tag, config.StripExternalEntities))
		}
		if config.StripExternalEntities {
			return nil, nil
		}
		return []string{tag}, nil

	case strings.HasPrefix(tag, "</"):
		return s.repairCloseTag(tag), nil

	case strings.HasSuffix(tag, "/>"):
		inner := strings.TrimSpace(tag[1 : len(tag)-2])
		repaired, _ := fixMalformedAttributes(inner, s.aggressive())
		return []string{"<" + repaired + "/>"}, nil

	default:
		return s.repairOpenTag(tag)
	}
}

// repairOpenTag pushes the tag on the stack and enforces the depth guard.
func (s *StreamSession) repairOpenTag(tag string) ([]string, error) {
	config := s.engine.config.config

	inner := strings.TrimSpace(tag[1 : len(tag)-1])
	repaired, _ := fixMalformedAttributes(inner, s.aggressive())
	name := firstField(repaired)

	if name != "" && s.engine.filter.IsDangerousTag(name) {
		s.threats = append(s.threats, newThreatEvent(ThreatDangerousTag, name, config.StripDangerousTags))
		if config.StripDangerousTags {
			s.dangerousStack = append(s.dangerousStack, strings.ToLower(name))
			return nil, nil
		}
	}

	s.tagStack = append(s.tagStack, newOpenTagEntry(name))

	if config.MaxNestingDepth > UnlimitedDepth && len(s.tagStack) > config.MaxNestingDepth {
		s.threats = append(s.threats, newThreatEvent(ThreatDepthBomb, name, false))
		s.engine.dispatchThreats(s.threats)
		s.engine.logger.Warn(LogMsgDepthExceeded,
			zap.Int(LogFieldDepth, len(s.tagStack)),
			zap.Int(LogFieldMaxDepth, config.MaxNestingDepth))
		return nil, NewDepthExceededError(len(s.tagStack), config.MaxNestingDepth)
	}

	return []string{"<" + repaired + ">"}, nil
}

// repairCloseTag matches a closing tag against the open-tag stack the same
// way the core engine does, closing intervening unclosed tags on the way.
func (s *StreamSession) repairCloseTag(tag string) []string {
	config := s.engine.config.config
	closing := strings.TrimSpace(tag[2 : len(tag)-1])
	closingLower := strings.ToLower(closing)

	if config.StripDangerousTags && len(s.dangerousStack) > 0 {
		if idx := indexOfString(s.dangerousStack, closingLower); idx >= 0 {
			s.dangerousStack = append(s.dangerousStack[:idx], s.dangerousStack[idx+1:]...)
			return nil
		}
	}

	names := make([]string, len(s.tagStack))
	for i, entry := range s.tagStack {
		names[i] = entry.lower
	}

	matchIdx := internal.FindBestMatch(closingLower, names, config.MatchThreshold)
	if matchIdx < 0 {
		return []string{"</" + closing + ">"}
	}

	var out []string
	for len(s.tagStack) > matchIdx {
		top := s.tagStack[len(s.tagStack)-1]
		s.tagStack = s.tagStack[:len(s.tagStack)-1]
		out = append(out, "</"+top.original+">")
	}
	return out
}

// aggressive reports whether attribute escaping runs in hardened mode.
func (s *StreamSession) aggressive() bool {
	return s.engine.config.trust == TrustUntrusted
}

func newOpenTagEntry(name string) openTagEntry {
	return openTagEntry{original: name, lower: strings.ToLower(name)}
}

// holdBackSplitEntity moves the flush point cut back to the last
// unterminated '&' within StreamEntityReserve of it, so that a reference
// like &amp; straddling a chunk boundary is escaped whole or not at all.
// A '&' further back can no longer become a valid reference and flushes
// as-is.
func holdBackSplitEntity(buffer string, cut int) int {
	amp := strings.LastIndexByte(buffer[:cut], '&')
	if amp < 0 || cut-amp >= StreamEntityReserve {
		return cut
	}
	if strings.IndexByte(buffer[amp:cut], ';') >= 0 {
		return cut
	}
	return amp
}

// completeTagEnd reports where the tag starting at buffer[0] ends
// (exclusive), or ok=false when more input is needed. Each construct has
// its own terminator: '?>' for processing instructions, '-->' for
// comments, ']]>' for CDATA, a bracket-aware '>' for DOCTYPE, and a
// quote-aware '>' for everything else.
func completeTagEnd(buffer string) (int, bool) {
	if strings.HasPrefix(buffer, "<?") {
		idx := strings.Index(buffer[2:], "?>")
		if idx == -1 {
			return 0, false
		}
		return 2 + idx + 2, true
	}

	if strings.HasPrefix(buffer, "<!") {
		// The construct may still be ambiguous: "<!-" could become a
		// comment, "<![CD" a CDATA section. Wait until the prefix
		// disambiguates.
		switch {
		case strings.HasPrefix(buffer, "<!--"):
			idx := strings.Index(buffer[4:], "-->")
			if idx == -1 {
				return 0, false
			}
			return 4 + idx + 3, true
		case strings.HasPrefix(buffer, "<![CDATA["):
			idx := strings.Index(buffer[9:], "]]>")
			if idx == -1 {
				return 0, false
			}
			return 9 + idx + 3, true
		case hasFoldPrefix(buffer, "<!DOCTYPE"):
			inBracket := false
			for i := len("<!DOCTYPE"); i < len(buffer); i++ {
				switch buffer[i] {
				case '[':
					inBracket = true
				case ']':
					inBracket = false
				case '>':
					if !inBracket {
						return i + 1, true
					}
				}
			}
			return 0, false
		case isPartialPrefix(buffer, "<!--"), isPartialPrefix(buffer, "<![CDATA["), isPartialFoldPrefix(buffer, "<!DOCTYPE"):
			return 0, false
		}
		// Some other "<!" construct, treat like a plain tag.
	}

	inQuotes := false
	var quoteChar byte
	for i := 1; i < len(buffer); i++ {
		ch := buffer[i]
		if !inQuotes {
			if ch == '"' || ch == '\'' {
				inQuotes = true
				quoteChar = ch
			} else if ch == '>' {
				return i + 1, true
			}
		} else if ch == quoteChar {
			inQuotes = false
		}
	}
	return 0, false
}

// isPartialPrefix reports whether s is a strict prefix of full.
func isPartialPrefix(s, full string) bool {
	return len(s) < len(full) && strings.HasPrefix(full, s)
}

// isPartialFoldPrefix is isPartialPrefix with ASCII case folding.
func isPartialFoldPrefix(s, full string) bool {
	return len(s) < len(full) && strings.EqualFold(s, full[:len(s)])
}
