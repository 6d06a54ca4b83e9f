package smtp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== ParseSMS Tests ====================

// TestParseSMS_SimpleText tests parsing a plain gateway message
func TestParseSMS_SimpleText(t *testing.T) {
	// Arrange
	content := `From: 15550142@sms.example.com
To: inbox@sms-organizer.local
Subject: New text message
Content-Type: text/plain; charset=utf-8

Your package arrives tomorrow.`

	// Act
	parsed, err := ParseSMS(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "15550142", parsed.SenderNumber)
	assert.Equal(t, "Your package arrives tomorrow.", parsed.Body)
}

// TestParseSMS_DisplayName tests a From header with a display name
func TestParseSMS_DisplayName(t *testing.T) {
	// Arrange
	content := `From: "Jane Doe" <+15550142@sms.example.com>
To: inbox@sms-organizer.local
Content-Type: text/plain; charset=utf-8

See you at 8.`

	// Act
	parsed, err := ParseSMS(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "+15550142", parsed.SenderNumber)
	assert.Equal(t, "Jane Doe", parsed.SenderName)
	assert.Equal(t, "See you at 8.", parsed.Body)
}

// TestParseSMS_AlphanumericSenderID tests a brand sender id local part
func TestParseSMS_AlphanumericSenderID(t *testing.T) {
	// Arrange
	content := `From: VM-HDFCBK@sms.example.com
To: inbox@sms-organizer.local
Content-Type: text/plain; charset=utf-8

Your account balance is 1200.50`

	// Act
	parsed, err := ParseSMS(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "VM-HDFCBK", parsed.SenderNumber)
}

// TestParseSMS_HTMLBody tests HTML fallback when no plain text part exists
func TestParseSMS_HTMLBody(t *testing.T) {
	// Arrange
	content := `From: 15550142@sms.example.com
To: inbox@sms-organizer.local
Content-Type: text/html; charset=utf-8

<html><body><p>Flash sale ends tonight</p></body></html>`

	// Act
	parsed, err := ParseSMS(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Flash sale ends tonight", parsed.Body)
}

// TestParseSMS_SubjectFallback tests gateways that put the text in Subject
func TestParseSMS_SubjectFallback(t *testing.T) {
	// Arrange
	content := `From: 15550142@sms.example.com
To: inbox@sms-organizer.local
Subject: 4829 is your OTP
Content-Type: text/plain; charset=utf-8

`

	// Act
	parsed, err := ParseSMS(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "4829 is your OTP", parsed.Body)
}

// TestParseSMS_CollapsesWhitespace tests body whitespace normalization
func TestParseSMS_CollapsesWhitespace(t *testing.T) {
	// Arrange
	content := `From: 15550142@sms.example.com
To: inbox@sms-organizer.local
Content-Type: text/plain; charset=utf-8

line one
line two`

	// Act
	parsed, err := ParseSMS(strings.NewReader(content))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "line one line two", parsed.Body)
}

// ==================== normalizePhoneNumber Tests ====================

func TestNormalizePhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain digits", "15550142", "15550142"},
		{"leading plus", "+15550142", "+15550142"},
		{"dashes and dots", "1-555-0142", "15550142"},
		{"parens and spaces", "(555) 014-2000", "5550142000"},
		{"letters only", "VM-HDFCBK", ""},
		{"lone plus", "+", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizePhoneNumber(tt.input))
		})
	}
}

// ==================== parseFromHeader Tests ====================

func TestParseFromHeader(t *testing.T) {
	tests := []struct {
		name           string
		from           string
		expectedName   string
		expectedNumber string
	}{
		{"bare address", "15550142@sms.example.com", "", "15550142"},
		{"bare brand id", "VM-HDFCBK@sms.example.com", "", "VM-HDFCBK"},
		{"angle brackets", "<15550142@sms.example.com>", "", "15550142"},
		{"quoted name", `"Jane Doe" <15550142@sms.example.com>`, "Jane Doe", "15550142"},
		{"alphanumeric id", "PROMO@deals.example.com", "", "PROMO"},
		{"unparsable header", `SMS Gateway 15550142@sms.example.com`, "", "15550142"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, number := parseFromHeader(tt.from)
			assert.Equal(t, tt.expectedName, name)
			assert.Equal(t, tt.expectedNumber, number)
		})
	}
}

// ==================== stripHTMLTags Tests ====================

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{"simple tags", "<p>hello</p>", " hello "},
		{"script removed", "<script>alert(1)</script>ok", "ok"},
		{"script mixed case", "<SCRIPT>alert(1)</SCRIPT>ok", "ok"},
		{"style removed", "<style>p { color: red }</style>ok", "ok"},
		{"entities decoded", "a &amp; b", "a & b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, stripHTMLTags(tt.html))
		})
	}
}
