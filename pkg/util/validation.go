package util

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
)

// hexColorRegex matches #RGB and #RRGGBB
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

const (
	// EmailMaxLength is the maximum length of an address (RFC 5321 path limit)
	EmailMaxLength = 254
)

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// ValidateEmail validates that a string is a bare address such as "a@b.com".
// Display names ("Alice <a@b.com>") are rejected.
func ValidateEmail(value string) error {
	value = strings.TrimSpace(value)

	if value == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(value) > EmailMaxLength {
		return fmt.Errorf("email must be no more than %d characters", EmailMaxLength)
	}

	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || addr.Name != "" {
		return fmt.Errorf("email must be a valid address")
	}

	at := strings.LastIndex(value, "@")
	if at < 1 || !strings.Contains(value[at+1:], ".") {
		return fmt.Errorf("email must include a domain")
	}

	return nil
}

// IsHexColor reports whether value is a CSS hex color
func IsHexColor(value string) bool {
	return hexColorRegex.MatchString(value)
}

// SanitizeFilename strips directory components and characters unsafe in storage keys
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == 0x7f:
			return -1
		case strings.ContainsRune(`<>:"|?*`, r):
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}
