package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds identifiers such as commit ids and branch names.
const maxNameLength = 256

// ValidateName validates a caller-supplied identifier (commit id, branch name,
// node id, entity name). what names the identifier in error messages.
//
// The validation rules are intentionally conservative:
//   - No empty or whitespace-only names
//   - No control characters (including null bytes and newlines)
//   - Maximum length of 256 characters
//
// Diagram-specific rules (uniqueness, references) are checked by the diagrams.
func ValidateName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeValidation, "%s cannot be empty", what)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeValidation, "%s too long (max %d characters)", what, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeValidation, "%s contains invalid control characters", what)
		}
	}

	return nil
}

// ValidateTypeName validates an envelope type string. Type names are
// lower snake case: ASCII lowercase letters, digits and underscores,
// starting with a letter.
func ValidateTypeName(name string) error {
	if name == "" {
		return New(ErrCodeUnknownType, "envelope must include a type")
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case (r >= '0' && r <= '9') || r == '_':
			if i == 0 {
				return New(ErrCodeUnknownType, "invalid diagram type %q", name)
			}
		default:
			return New(ErrCodeUnknownType, "invalid diagram type %q", name)
		}
	}
	return nil
}
