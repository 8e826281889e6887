// Package naming validates the display names, message bodies and secret
// words supplied by callers, and normalizes words for comparison.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/duelhall/duel-server-go/internal/duelerr"
)

const (
	// MaxNameLength bounds identities, senders and secrets in bytes.
	MaxNameLength = 128
	// MaxContentLength bounds message bodies in bytes.
	MaxContentLength = 16_384
)

// ValidateName trims a participant name and checks it is non-empty and
// at most MaxNameLength bytes.
func ValidateName(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", duelerr.New(duelerr.KindEmptyName, "name must not be empty")
	}
	if len(trimmed) > MaxNameLength {
		return "", duelerr.TooLong(duelerr.KindNameTooLong, "name too long", len(trimmed), MaxNameLength)
	}
	return trimmed, nil
}

// ValidateSender is ValidateName for chat senders, reported with sender kinds.
func ValidateSender(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", duelerr.New(duelerr.KindEmptySender, "sender must not be empty")
	}
	if len(trimmed) > MaxNameLength {
		return "", duelerr.TooLong(duelerr.KindSenderTooLong, "sender too long", len(trimmed), MaxNameLength)
	}
	return trimmed, nil
}

// ValidateContent trims a message body and checks its bounds.
func ValidateContent(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", duelerr.New(duelerr.KindEmptyContent, "message content must not be empty")
	}
	if len(trimmed) > MaxContentLength {
		return "", duelerr.TooLong(duelerr.KindContentTooLong, "content too long", len(trimmed), MaxContentLength)
	}
	return trimmed, nil
}

// ValidateSecret applies the name rules and then requires a single token.
func ValidateSecret(value string) (string, error) {
	trimmed, err := ValidateName(value)
	if err != nil {
		return "", err
	}
	if strings.ContainsFunc(trimmed, unicode.IsSpace) {
		return "", duelerr.New(duelerr.KindInvalidSecretFormat, "secret must be a single word")
	}
	return trimmed, nil
}

// NormalizeWord trims surrounding whitespace and lower-cases the word.
// Secret and guess comparisons always use this form.
func NormalizeWord(value string) string {
	// cases.Caser keeps state, so one per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(value))
}

// SameWord reports whether two words are equal after normalization.
func SameWord(a, b string) bool {
	return NormalizeWord(a) == NormalizeWord(b)
}
