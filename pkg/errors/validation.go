package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a dataset or output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
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

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// IsURL reports whether s looks like an http(s) URL rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// genreRegex matches playlist genre and subgenre labels as they appear in the
// dataset ("pop", "r&b", "latin", "album rock", "post-teen pop").
var genreRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9&' .-]*$`)

// ValidateGenre validates a genre name taken from a query string or flag.
// Names are compared lowercase, so callers should lowercase before lookup.
func ValidateGenre(name string) error {
	if name == "" {
		return New(ErrCodeInvalidGenre, "genre cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidGenre, "genre too long (max 64 characters)")
	}
	if !genreRegex.MatchString(strings.ToLower(name)) {
		return New(ErrCodeInvalidGenre, "invalid genre name: %q", name)
	}
	return nil
}

// ValidateFormat checks that format is one of allowed.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
