package xmlfix

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThreatEvent(t *testing.T) {
	stripped := newThreatEvent(ThreatDangerousTag, "script", true)
	assert.Equal(t, ThreatDangerousTag, stripped.Type)
	assert.Equal(t, ThreatActionStripped, stripped.Action)
	assert.Equal(t, "script", stripped.Detail)
	assert.False(t, stripped.Timestamp.IsZero())

	detected := newThreatEvent(ThreatDangerousPI, "<?php ?>", false)
	assert.Equal(t, ThreatActionDetected, detected.Action)
}

func TestThreatEvent_WithMetadata(t *testing.T) {
	event := newThreatEvent(ThreatDepthBomb, "a", false).
		WithMetadata("depth", 1001).
		WithMetadata("limit", 1000)

	assert.Equal(t, 1001, event.Metadata["depth"])
	assert.Equal(t, 1000, event.Metadata["limit"])
}

func TestMemoryAuditor(t *testing.T) {
	auditor := NewMemoryAuditor(0)
	ctx := context.Background()

	require.NoError(t, auditor.RecordThreat(ctx, newThreatEvent(ThreatDangerousTag, "script", true)))
	require.NoError(t, auditor.RecordThreat(ctx, newThreatEvent(ThreatDangerousPI, "<?php ?>", true)))

	assert.Equal(t, 2, auditor.Count())
	assert.Equal(t, ThreatDangerousPI, auditor.LastEvent().Type)

	tags := auditor.FilteredEvents(func(e *ThreatEvent) bool {
		return e.Type == ThreatDangerousTag
	})
	assert.Len(t, tags, 1)

	auditor.Clear()
	assert.Zero(t, auditor.Count())
	assert.Nil(t, auditor.LastEvent())
}

func TestMemoryAuditor_Limit(t *testing.T) {
	auditor := NewMemoryAuditor(2)
	ctx := context.Background()

	for _, detail := range []string{"one", "two", "three"} {
		require.NoError(t, auditor.RecordThreat(ctx, newThreatEvent(ThreatDangerousTag, detail, true)))
	}

	events := auditor.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "two", events[0].Detail)
	assert.Equal(t, "three", events[1].Detail)
}

func TestChannelAuditor(t *testing.T) {
	ch := make(chan *ThreatEvent, 1)
	auditor := NewChannelAuditor(ch)
	ctx := context.Background()

	require.NoError(t, auditor.RecordThreat(ctx, newThreatEvent(ThreatDangerousTag, "a", true)))

	// Channel full: the event is dropped rather than blocking.
	require.NoError(t, auditor.RecordThreat(ctx, newThreatEvent(ThreatDangerousTag, "b", true)))

	event := <-ch
	assert.Equal(t, "a", event.Detail)
	assert.Empty(t, ch)
}

func TestFuncAuditor(t *testing.T) {
	var seen []*ThreatEvent
	auditor := NewFuncAuditor(func(ctx context.Context, event *ThreatEvent) error {
		seen = append(seen, event)
		return nil
	})

	require.NoError(t, auditor.RecordThreat(context.Background(), newThreatEvent(ThreatExternalEntity, "d", true)))
	require.Len(t, seen, 1)
	assert.Equal(t, ThreatExternalEntity, seen[0].Type)
}

func TestMultiAuditor(t *testing.T) {
	memory := NewMemoryAuditor(0)
	failing := NewFuncAuditor(func(ctx context.Context, event *ThreatEvent) error {
		return errors.New("sink down")
	})
	multi := NewMultiAuditor(failing, memory)

	err := multi.RecordThreat(context.Background(), newThreatEvent(ThreatDangerousTag, "script", true))

	// The failure is reported but does not stop the other sinks.
	require.Error(t, err)
	assert.Equal(t, 1, memory.Count())
}

func TestMultiAuditor_AddAuditor(t *testing.T) {
	memory := NewMemoryAuditor(0)
	multi := NewMultiAuditor()
	multi.AddAuditor(memory)

	require.NoError(t, multi.RecordThreat(context.Background(), newThreatEvent(ThreatDangerousTag, "x", true)))
	assert.Equal(t, 1, memory.Count())
}

func TestEngine_AuditorFailureDoesNotFailRepair(t *testing.T) {
	failing := NewFuncAuditor(func(ctx context.Context, event *ThreatEvent) error {
		return errors.New("sink down")
	})
	engine := MustNew(WithTrustLevel(TrustUntrusted), WithAuditor(failing))

	repaired, err := engine.Repair("<root><script>x</script></root>")
	require.NoError(t, err)
	assert.Equal(t, "<root>x</root>", repaired)
}
