package errors

import (
	"strings"
	"unicode"
)

// ValidateName validates a layer group or collection name.
//
// Names become directory names and PNG prefixes, so they may not be empty,
// contain control characters or path separators, or be a relative path
// element.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidConfig, "name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidConfig, "name too long (max 255 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "name %q contains control characters", name)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidConfig, "name %q cannot contain path separators", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidConfig, "name %q is not allowed", name)
	}

	return nil
}

// ValidatePath validates a configured file or directory location.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidConfig, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidConfig, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateDimension validates a positive pixel dimension.
func ValidateDimension(field string, v int) error {
	if v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %d", field, v)
	}
	const maxDimension = 16384
	if v > maxDimension {
		return New(ErrCodeInvalidConfig, "%s too large (max %d), got %d", field, maxDimension, v)
	}
	return nil
}
