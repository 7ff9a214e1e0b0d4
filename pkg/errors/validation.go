package errors

import (
	"strings"
	"unicode"
)

// ValidateTemplateName validates a template name supplied by a host or user.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
//
// Uniqueness of block names within a template is a store invariant and is
// checked there, not here.
func ValidateTemplateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "template name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidName, "template name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "template name contains control characters")
		}
	}
	return nil
}

// ValidatePayloadPath validates a local payload file path for safety.
// It prevents path traversal out of the working tree when the path comes
// from an untrusted source (e.g. a dev-server query parameter).
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePayloadPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
