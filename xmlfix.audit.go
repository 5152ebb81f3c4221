package xmlfix

import (
	"context"
	"sync"
	"time"
)

// ThreatType classifies a detected security threat.
type ThreatType string

const (
	// ThreatDangerousPI is a processing instruction carrying server-side
	// code (php, asp, jsp, ...).
	ThreatDangerousPI ThreatType = "dangerous_pi"

	// ThreatDangerousTag is an XSS-prone element (script, iframe, ...).
	ThreatDangerousTag ThreatType = "dangerous_tag"

	// ThreatExternalEntity is a DOCTYPE with SYSTEM/PUBLIC identifiers
	// (XXE vector).
	ThreatExternalEntity ThreatType = "external_entity"

	// ThreatDepthBomb is input whose nesting exceeded the configured
	// depth limit.
	ThreatDepthBomb ThreatType = "depth_bomb"
)

// Threat dispositions recorded on events.
const (
	// ThreatActionStripped means the threat was removed from the output.
	ThreatActionStripped = "stripped"

	// ThreatActionDetected means the threat was observed but the active
	// policy left it in place. Detection always runs; only the action is
	// policy-gated.
	ThreatActionDetected = "detected"
)

// threatDetailLimit caps the amount of offending content carried on an
// event, so audit sinks never store unbounded attacker-controlled data.
const threatDetailLimit = 200

// ThreatEvent is one detected threat in one repair invocation.
type ThreatEvent struct {
	// Timestamp is when the threat was detected.
	Timestamp time.Time

	// Type classifies the threat.
	Type ThreatType

	// Action is what was done about it: stripped or detected.
	Action string

	// TrustLevel is the trust tier the engine was running under.
	TrustLevel TrustLevel

	// Detail carries the offending content, truncated.
	Detail string

	// Metadata contains additional context.
	Metadata map[string]any
}

// newThreatEvent creates an event for a detected threat.
func newThreatEvent(threatType ThreatType, detail string, stripped bool) *ThreatEvent {
	action := ThreatActionDetected
	if stripped {
		action = ThreatActionStripped
	}
	if len(detail) > threatDetailLimit {
		detail = detail[:threatDetailLimit]
	}
	return &ThreatEvent{
		Timestamp: timeNow(),
		Type:      threatType,
		Action:    action,
		Detail:    detail,
	}
}

// WithMetadata adds metadata to the event.
func (e *ThreatEvent) WithMetadata(key string, value any) *ThreatEvent {
	if e.Metadata == nil {
		e.Metadata = make(map[string]any)
	}
	e.Metadata[key] = value
	return e
}

// ThreatAuditor is the interface for threat audit sinks. Implement this to
// feed detections into your logging or SIEM pipeline.
type ThreatAuditor interface {
	// RecordThreat records one detected threat.
	// Implementations should be non-blocking or use buffering.
	RecordThreat(ctx context.Context, event *ThreatEvent) error
}

// NoOpAuditor is an auditor that does nothing.
// Useful for testing or when threat auditing is disabled.
type NoOpAuditor struct{}

// NewNoOpAuditor creates a no-op auditor.
func NewNoOpAuditor() *NoOpAuditor {
	return &NoOpAuditor{}
}

// RecordThreat does nothing.
func (a *NoOpAuditor) RecordThreat(ctx context.Context, event *ThreatEvent) error {
	return nil
}

// MemoryAuditor stores threat events in memory.
// Useful for testing and debugging.
type MemoryAuditor struct {
	mu     sync.RWMutex
	events []*ThreatEvent
	limit  int
}

// NewMemoryAuditor creates an in-memory auditor.
// If limit > 0, only the most recent events are kept.
func NewMemoryAuditor(limit int) *MemoryAuditor {
	return &MemoryAuditor{
		events: make([]*ThreatEvent, 0),
		limit:  limit,
	}
}

// RecordThreat stores an event in memory.
func (a *MemoryAuditor) RecordThreat(ctx context.Context, event *ThreatEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.events = append(a.events, event)

	// Trim if over limit
	if a.limit > 0 && len(a.events) > a.limit {
		a.events = a.events[len(a.events)-a.limit:]
	}

	return nil
}

// Events returns all stored events.
func (a *MemoryAuditor) Events() []*ThreatEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	result := make([]*ThreatEvent, len(a.events))
	copy(result, a.events)
	return result
}

// Clear removes all stored events.
func (a *MemoryAuditor) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = make([]*ThreatEvent, 0)
}

// Count returns the number of stored events.
func (a *MemoryAuditor) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.events)
}

// LastEvent returns the most recent event, or nil if none.
func (a *MemoryAuditor) LastEvent() *ThreatEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.events) == 0 {
		return nil
	}
	return a.events[len(a.events)-1]
}

// FilteredEvents returns events matching the filter function.
func (a *MemoryAuditor) FilteredEvents(filter func(*ThreatEvent) bool) []*ThreatEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var result []*ThreatEvent
	for _, event := range a.events {
		if filter(event) {
			result = append(result, event)
		}
	}
	return result
}

// ChannelAuditor sends events to a channel.
// Useful for streaming threat events to external systems.
type ChannelAuditor struct {
	ch chan<- *ThreatEvent
}

// NewChannelAuditor creates an auditor that sends events to a channel.
// The channel should be buffered to prevent blocking.
func NewChannelAuditor(ch chan<- *ThreatEvent) *ChannelAuditor {
	return &ChannelAuditor{ch: ch}
}

// RecordThreat sends the event to the channel.
// Returns immediately if the channel is full (non-blocking).
func (a *ChannelAuditor) RecordThreat(ctx context.Context, event *ThreatEvent) error {
	select {
	case a.ch <- event:
		return nil
	default:
		// Channel full, drop event
		return nil
	}
}

// FuncAuditor wraps a function as an auditor.
// Useful for simple logging integrations.
type FuncAuditor struct {
	fn func(context.Context, *ThreatEvent) error
}

// NewFuncAuditor creates an auditor from a function.
func NewFuncAuditor(fn func(context.Context, *ThreatEvent) error) *FuncAuditor {
	return &FuncAuditor{fn: fn}
}

// RecordThreat calls the wrapped function.
func (a *FuncAuditor) RecordThreat(ctx context.Context, event *ThreatEvent) error {
	return a.fn(ctx, event)
}

// MultiAuditor sends events to multiple auditors.
type MultiAuditor struct {
	auditors []ThreatAuditor
}

// NewMultiAuditor creates an auditor that records to multiple
// destinations.
func NewMultiAuditor(auditors ...ThreatAuditor) *MultiAuditor {
	return &MultiAuditor{auditors: auditors}
}

// RecordThreat sends the event to all auditors.
// Continues even if individual auditors fail.
func (a *MultiAuditor) RecordThreat(ctx context.Context, event *ThreatEvent) error {
	var lastErr error
	for _, auditor := range a.auditors {
		if err := auditor.RecordThreat(ctx, event); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// AddAuditor adds an auditor to the multi-auditor.
func (a *MultiAuditor) AddAuditor(auditor ThreatAuditor) {
	a.auditors = append(a.auditors, auditor)
}

// timeNow is a variable for testing.
var timeNow = time.Now
