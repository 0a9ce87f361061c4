package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// NamePattern allows letters, spaces, dots and hyphens
	NamePattern = `^[A-Za-z .\-]+$`

	// Name validation max length
	NameMaxLength = 100

	// UsernameMaxLength bounds usernames
	UsernameMaxLength = 50

	// PasswordMaxBytes is the longest input bcrypt accepts
	PasswordMaxBytes = 72
)

// CompiledPatterns caches compiled regex patterns for better performance
var CompiledPatterns = struct {
	Name *regexp.Regexp
}{
	Name: regexp.MustCompile(NamePattern),
}

// IsValidName reports whether s is a non-blank person name made of letters,
// spaces, '.' and '-'.
func IsValidName(s string) bool {
	if strings.TrimSpace(s) == "" || len(s) > NameMaxLength {
		return false
	}
	return CompiledPatterns.Name.MatchString(s)
}

// IsValidEmail reports whether s has an '@' with a '.' somewhere after it.
func IsValidEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at < 0 {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

// IsStorable reports whether s can be written as a single table field: it must
// not contain the field delimiter or a line break.
func IsStorable(s string) bool {
	return !strings.ContainsAny(s, ",\r\n")
}

// IsValidUsername reports whether s is a usable login name
func IsValidUsername(s string) bool {
	if s == "" || len(s) > UsernameMaxLength {
		return false
	}
	return IsStorable(s) && !strings.ContainsAny(s, " \t")
}

// IsValidPassword reports whether s is non-empty and fits bcrypt's input
// limit, which counts bytes rather than characters.
func IsValidPassword(s string) bool {
	return s != "" && len(s) <= PasswordMaxBytes
}
