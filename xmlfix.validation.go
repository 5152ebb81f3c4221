package xmlfix

import "strings"

// outputPreviewLimit caps the output excerpt attached to strict-mode
// validation errors.
const outputPreviewLimit = 80

// ValidateInput checks that input is acceptable for repair under the given
// size cap (0 disables the cap). Malformed XML is fine; empty or oversized
// input is not.
func ValidateInput(input string, maxSize int) error {
	if strings.TrimSpace(input) == "" {
		return NewEmptyInputError()
	}
	if maxSize > 0 && len(input) > maxSize {
		return NewInputTooLargeError(len(input), maxSize)
	}
	return nil
}

// validateInput applies the engine's configured size cap.
func (e *Engine) validateInput(input string) error {
	return ValidateInput(input, e.config.maxInputSize)
}

// validateOutput enforces strict mode: the repaired output must be
// non-empty and contain at least one tag. This catches inputs that were
// never XML at all (plain prose) rather than repairable XML.
func (e *Engine) validateOutput(output string) error {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return NewEmptyOutputError()
	}
	if !strings.Contains(trimmed, "<") || !strings.Contains(trimmed, ">") {
		preview := trimmed
		if len(preview) > outputPreviewLimit {
			preview = preview[:outputPreviewLimit]
		}
		return NewNoTagsOutputError(preview)
	}
	return nil
}
