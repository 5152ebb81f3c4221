package xmlfix

import (
	"strconv"
	"strings"
)

// RepairType classifies a repair performed on the input.
type RepairType string

// Repair types recorded by the engine.
const (
	RepairTruncation             RepairType = "truncation"
	RepairConversationalFluff    RepairType = "conversational_fluff"
	RepairMalformedAttribute     RepairType = "malformed_attribute"
	RepairUnescapedEntity        RepairType = "unescaped_entity"
	RepairCdataWrapped           RepairType = "cdata_wrapped"
	RepairTagTypo                RepairType = "tag_typo"
	RepairTagCaseMismatch        RepairType = "tag_case_mismatch"
	RepairNamespaceInjected      RepairType = "namespace_injected"
	RepairDuplicateAttribute     RepairType = "duplicate_attribute"
	RepairInvalidTagName         RepairType = "invalid_tag_name"
	RepairInvalidNamespace       RepairType = "invalid_namespace"
	RepairMultipleRoots          RepairType = "multiple_roots"
	RepairDangerousPiStripped    RepairType = "dangerous_pi_stripped"
	RepairDangerousTagStripped   RepairType = "dangerous_tag_stripped"
	RepairExternalEntityStripped RepairType = "external_entity_stripped"
)

// allRepairTypes fixes the iteration order for statistics.
var allRepairTypes = []RepairType{
	RepairTruncation,
	RepairConversationalFluff,
	RepairMalformedAttribute,
	RepairUnescapedEntity,
	RepairCdataWrapped,
	RepairTagTypo,
	RepairTagCaseMismatch,
	RepairNamespaceInjected,
	RepairDuplicateAttribute,
	RepairInvalidTagName,
	RepairInvalidNamespace,
	RepairMultipleRoots,
	RepairDangerousPiStripped,
	RepairDangerousTagStripped,
	RepairExternalEntityStripped,
}

// securityRepairTypes are the repair types that indicate a security threat
// was acted on.
var securityRepairTypes = map[RepairType]bool{
	RepairDangerousPiStripped:    true,
	RepairDangerousTagStripped:   true,
	RepairExternalEntityStripped: true,
}

// RepairAction records a single repair performed. Actions are append-only:
// created once by a repair pass and never mutated.
type RepairAction struct {
	Type        RepairType `json:"type"`
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"` // tag name or offset context
	Before      string     `json:"before,omitempty"`
	After       string     `json:"after,omitempty"`
}

// String returns a human-readable representation of the action.
func (a RepairAction) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(string(a.Type))
	sb.WriteString("] ")
	sb.WriteString(a.Description)
	if a.Location != "" {
		sb.WriteString(" at ")
		sb.WriteString(a.Location)
	}
	if a.Before != "" {
		sb.WriteString(" '")
		sb.WriteString(a.Before)
		sb.WriteString("' -> '")
		sb.WriteString(a.After)
		sb.WriteByte('\'')
	}
	return sb.String()
}

// RepairReport aggregates all repairs performed on one input, providing
// full transparency into what was fixed.
type RepairReport struct {
	Original string         `json:"-"`
	Repaired string         `json:"-"`
	Actions  []RepairAction `json:"actions"`
}

// add appends a repair action to the report.
func (r *RepairReport) add(action RepairAction) {
	r.Actions = append(r.Actions, action)
}

// Len returns the number of repairs performed.
func (r *RepairReport) Len() int {
	return len(r.Actions)
}

// HasRepairs returns true if any repair was performed.
func (r *RepairReport) HasRepairs() bool {
	return len(r.Actions) > 0
}

// HasSecurityIssues returns true if any security-related repair was
// performed.
func (r *RepairReport) HasSecurityIssues() bool {
	for _, action := range r.Actions {
		if securityRepairTypes[action.Type] {
			return true
		}
	}
	return false
}

// ByType groups actions by repair type.
func (r *RepairReport) ByType() map[RepairType][]RepairAction {
	grouped := make(map[RepairType][]RepairAction)
	for _, action := range r.Actions {
		grouped[action.Type] = append(grouped[action.Type], action)
	}
	return grouped
}

// Statistics returns derived counters: total repairs, input/output sizes,
// and a per-type count for every type that occurred.
func (r *RepairReport) Statistics() map[string]int {
	stats := map[string]int{
		"total_repairs": len(r.Actions),
		"input_size":    len(r.Original),
		"output_size":   len(r.Repaired),
	}
	for _, repairType := range allRepairTypes {
		count := 0
		for _, action := range r.Actions {
			if action.Type == repairType {
				count++
			}
		}
		if count > 0 {
			stats[string(repairType)+"_count"] = count
		}
	}
	return stats
}

// Summary returns a human-readable summary of all repairs.
func (r *RepairReport) Summary() string {
	if len(r.Actions) == 0 {
		return "No repairs needed - XML was already well-formed."
	}

	var sb strings.Builder
	sb.WriteString("Performed ")
	sb.WriteString(strconv.Itoa(len(r.Actions)))
	sb.WriteString(" repair(s):")
	for _, action := range r.Actions {
		sb.WriteString("\n  - ")
		sb.WriteString(action.String())
	}
	return sb.String()
}
