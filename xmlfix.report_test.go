package xmlfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairReport_Empty(t *testing.T) {
	report := &RepairReport{}

	assert.Zero(t, report.Len())
	assert.False(t, report.HasRepairs())
	assert.False(t, report.HasSecurityIssues())
	assert.Equal(t, "No repairs needed - XML was already well-formed.", report.Summary())
}

func TestRepairReport_ByType(t *testing.T) {
	report := &RepairReport{}
	report.add(RepairAction{Type: RepairTruncation, Description: "a"})
	report.add(RepairAction{Type: RepairTagTypo, Description: "b"})
	report.add(RepairAction{Type: RepairTruncation, Description: "c"})

	byType := report.ByType()
	assert.Len(t, byType[RepairTruncation], 2)
	assert.Len(t, byType[RepairTagTypo], 1)
	assert.Empty(t, byType[RepairCdataWrapped])
}

func TestRepairReport_HasSecurityIssues(t *testing.T) {
	report := &RepairReport{}
	report.add(RepairAction{Type: RepairTruncation})
	assert.False(t, report.HasSecurityIssues())

	report.add(RepairAction{Type: RepairDangerousTagStripped})
	assert.True(t, report.HasSecurityIssues())
}

func TestRepairReport_Statistics(t *testing.T) {
	report := &RepairReport{Original: "<a>", Repaired: "<a></a>"}
	report.add(RepairAction{Type: RepairTruncation})
	report.add(RepairAction{Type: RepairTruncation})
	report.add(RepairAction{Type: RepairTagTypo})

	stats := report.Statistics()
	assert.Equal(t, 3, stats["total_repairs"])
	assert.Equal(t, 3, stats["input_size"])
	assert.Equal(t, 7, stats["output_size"])
	assert.Equal(t, 2, stats["truncation_count"])
	assert.Equal(t, 1, stats["tag_typo_count"])
	_, present := stats["cdata_wrapped_count"]
	assert.False(t, present)
}

func TestRepairAction_String(t *testing.T) {
	action := RepairAction{
		Type:        RepairTagTypo,
		Description: "matched misspelled closing tag to open tag",
		Before:      "itme",
		After:       "item",
	}

	s := action.String()
	assert.Contains(t, s, "[tag_typo]")
	assert.Contains(t, s, "'itme' -> 'item'")

	located := RepairAction{Type: RepairTruncation, Description: "auto-closed unclosed element", Location: "item"}
	assert.Contains(t, located.String(), " at item")
}

func TestRepairReport_Summary(t *testing.T) {
	report := &RepairReport{}
	report.add(RepairAction{Type: RepairTruncation, Description: "completed truncated tag"})
	report.add(RepairAction{Type: RepairMalformedAttribute, Description: "added quotes"})

	summary := report.Summary()
	require.Contains(t, summary, "Performed 2 repair(s):")
	assert.Contains(t, summary, "completed truncated tag")
	assert.Contains(t, summary, "added quotes")
}
