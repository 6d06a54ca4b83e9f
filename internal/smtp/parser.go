package smtp

import (
	"io"
	"net/mail"
	"regexp"
	"strings"

	"github.com/jhillyerd/enmime"
)

// ParsedSMS is a text message recovered from a carrier email-to-SMS
// gateway envelope. The sender's phone number travels in the From local
// part; the message text is the mail body.
type ParsedSMS struct {
	SenderNumber string
	SenderName   string
	Body         string
}

var (
	nonPhoneChars = regexp.MustCompile(`[^0-9+]`)
	scriptBlocks  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlocks   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlTags      = regexp.MustCompile(`<[^>]*>`)
)

// ParseSMS parses a gateway email from an io.Reader
func ParseSMS(r io.Reader) (*ParsedSMS, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedSMS{}

	fromHeader := env.GetHeader("From")
	parsed.SenderName, parsed.SenderNumber = parseFromHeader(fromHeader)

	parsed.Body = extractBody(env.Text, env.HTML)

	// Gateways often repeat the message text in the Subject when the body
	// is empty.
	if parsed.Body == "" {
		parsed.Body = strings.TrimSpace(env.GetHeader("Subject"))
	}

	return parsed, nil
}

// parseFromHeader extracts the display name and the phone number from a
// gateway From header such as `"Jane" <15550142@sms.example.com>`.
func parseFromHeader(from string) (name, number string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	var address string
	if addr, err := mail.ParseAddress(from); err == nil {
		name = addr.Name
		address = addr.Address
	} else {
		// Some gateways emit headers the RFC parser rejects; fall back
		// to the last @-bearing token, stripped of any wrapping.
		for _, tok := range strings.Fields(from) {
			if strings.Contains(tok, "@") {
				address = strings.Trim(tok, `<>"`)
			}
		}
		if address == "" {
			address = strings.Trim(from, `<>"`)
		}
	}

	localPart := address
	if at := strings.Index(address, "@"); at >= 0 {
		localPart = address[:at]
	}

	number = normalizePhoneNumber(localPart)
	if number == "" {
		// Alphanumeric sender id (banks and brands use these).
		number = localPart
	}
	return name, number
}

// normalizePhoneNumber strips separators and keeps a leading plus
func normalizePhoneNumber(raw string) string {
	cleaned := nonPhoneChars.ReplaceAllString(raw, "")
	if plus := strings.HasPrefix(cleaned, "+"); plus {
		cleaned = "+" + strings.ReplaceAll(cleaned[1:], "+", "")
	} else {
		cleaned = strings.ReplaceAll(cleaned, "+", "")
	}
	if strings.TrimPrefix(cleaned, "+") == "" {
		return ""
	}
	return cleaned
}

// extractBody picks the plain text body, falling back to stripped HTML
func extractBody(bodyText, bodyHTML string) string {
	var text string

	if bodyText != "" {
		text = bodyText
	} else if bodyHTML != "" {
		text = stripHTMLTags(bodyHTML)
	}

	// Clean up whitespace
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}

// stripHTMLTags removes HTML tags from a string
func stripHTMLTags(html string) string {
	// Drop script and style elements with their contents
	html = scriptBlocks.ReplaceAllString(html, "")
	html = styleBlocks.ReplaceAllString(html, "")

	// Remove HTML tags
	html = htmlTags.ReplaceAllString(html, " ")

	// Decode common HTML entities
	html = strings.ReplaceAll(html, "&nbsp;", " ")
	html = strings.ReplaceAll(html, "&amp;", "&")
	html = strings.ReplaceAll(html, "&lt;", "<")
	html = strings.ReplaceAll(html, "&gt;", ">")
	html = strings.ReplaceAll(html, "&quot;", `"`)
	html = strings.ReplaceAll(html, "&#39;", "'")

	return html
}
