// Package classifier implements the message classification layer:
// one-time code extraction and category assignment.
package classifier

import (
	"regexp"
	"strings"
)

// Recognizer patterns, tried in order. The first match that reduces to a
// 4-6 digit string wins.
var codePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}\b`),
	regexp.MustCompile(`\b\d{5}\b`),
	regexp.MustCompile(`\b\d{6}\b`),
	regexp.MustCompile(`(?i)OTP[\s:]*[0-9]{4,6}`),
	regexp.MustCompile(`(?i)code[\s:]*[0-9]{4,6}`),
	regexp.MustCompile(`(?i)[0-9]{4,6}\s*is your OTP`),
}

// codeKeywords mark a message as code-bearing. All comparisons are done on
// lower-cased text.
var codeKeywords = []string{
	"otp",
	"one time password",
	"verification code",
	"auth code",
	"security code",
	"login code",
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// ExtractCode finds a short numeric verification code in the given text.
// It returns the digit string, or "" when no code is found.
func ExtractCode(text string) string {
	if text == "" {
		return ""
	}

	// Pattern pass: first pattern whose match reduces to 4-6 digits wins.
	for _, pattern := range codePatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		digits := keepDigits(match)
		if len(digits) >= 4 && len(digits) <= 6 {
			return digits
		}
	}

	// Fallback: scan whitespace tokens for a bare 4-6 digit run that sits
	// within 30 characters of a code keyword.
	lowerText := strings.ToLower(text)
	for _, token := range whitespaceRegex.Split(text, -1) {
		digits := keepDigits(token)
		if len(digits) < 4 || len(digits) > 6 || len(digits) != len(token) {
			continue
		}
		idx := strings.Index(lowerText, strings.ToLower(token))
		if idx == -1 {
			continue
		}
		start := max(0, idx-30)
		end := min(len(lowerText), idx+30)
		window := lowerText[start:end]
		for _, keyword := range codeKeywords {
			if strings.Contains(window, keyword) {
				return digits
			}
		}
	}

	return ""
}

// IsCodeMessage reports whether the text carries a one-time code. A code
// keyword must be present and ExtractCode must succeed; keyword presence
// alone is not enough.
func IsCodeMessage(text string) bool {
	lowerText := strings.ToLower(text)

	hasKeyword := false
	for _, keyword := range codeKeywords {
		if strings.Contains(lowerText, keyword) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}

	return ExtractCode(text) != ""
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
