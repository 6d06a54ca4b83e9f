package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCode(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"four digit with otp marker", "Your OTP: 4829 valid for 10 min", "4829"},
		{"six digit bare token", "Please use 493821 to verify, your login code.", "493821"},
		{"five digit bare token", "Your one time password is 99887", "99887"},
		{"marker with colon and digits", "OTP:5521 expires soon", "5521"},
		{"is your otp phrase", "558712 is your OTP for login", "558712"},
		{"digits without keywords still match patterns", "Your parcel 1234 arrived", "1234"},
		{"first digit run wins", "Use 4444 or 5555 to verify", "4444"},
		{"punctuation around code", "code (6781) is valid", "6781"},
		{"empty text", "", ""},
		{"no digits at all", "see you at the office", ""},
		{"too short digit run", "call 911 now", ""},
		{"too long digit run", "ref 12345678 received", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.text))
		})
	}
}

func TestExtractCode_IgnoresWhitespaceAndPunctuation(t *testing.T) {
	// The same code must come back regardless of surrounding noise.
	variants := []string{
		"Your OTP: 4829 valid for 10 min",
		"Your OTP:4829, valid for 10 min",
		"Your OTP -  4829 . valid for 10 min",
	}
	for _, text := range variants {
		assert.Equal(t, "4829", ExtractCode(text), "text: %s", text)
	}
}

func TestIsCodeMessage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"otp keyword with code", "Your OTP: 4829 valid for 10 min", true},
		{"one time password keyword", "Your one time password is 99887", true},
		{"verification code keyword", "Use verification code 332211 to continue", true},
		{"keyword but no digits", "your otp will be sent shortly", false},
		{"digits but no keyword", "1234 is your pin", false},
		{"empty text", "", false},
		{"unrelated text", "meeting moved to 3pm", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCodeMessage(tt.text))
		})
	}
}
