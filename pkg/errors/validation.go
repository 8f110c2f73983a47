package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxNameLength bounds array, dataset and node key names.
const maxNameLength = 256

// ValidateName validates an array, dataset or view name.
// Names are used as registry keys and as path segments in scene files, so
// the rules are conservative:
//   - No empty names
//   - No control characters
//   - No '/' (reserved as the scene path separator)
//   - Maximum length of 256 characters
func ValidateName(field, name string) error {
	if name == "" {
		return Configuration(field, "name cannot be empty")
	}
	if len(name) > maxNameLength {
		return Configuration(field, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return Configuration(field, "name contains invalid control characters")
		}
	}
	if strings.Contains(name, "/") {
		return Configuration(field, "name cannot contain '/'")
	}
	return nil
}

// ValidateComponents checks that count values can be split into tuples of
// components each.
func ValidateComponents(count, components int) error {
	if components < 1 {
		return Configuration("components", "component count must be positive, got %d", components)
	}
	if count%components != 0 {
		return Configuration("components", "component count %d does not divide %d values", components, count)
	}
	return nil
}

// ValidateRange checks an explicit color data range. Both ends must be
// finite; an inverted pair is allowed and maps colors in reverse.
func ValidateRange(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return Configuration("colorDataRange", "range must be finite, got [%g, %g]", lo, hi)
	}
	return nil
}

// ValidateKeyPath validates a scene path such as "axial/ct".
func ValidateKeyPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	if strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return New(ErrCodeInvalidInput, "malformed path %q", path)
	}
	for _, seg := range strings.Split(path, "/") {
		if err := ValidateName("path", seg); err != nil {
			return Wrap(ErrCodeInvalidInput, err, "invalid path segment %q", seg)
		}
	}
	return nil
}
