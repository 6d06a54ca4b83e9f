package classifier

import (
	"strings"

	"github.com/rpsms/sms-organizer-backend/internal/models"
)

// Built-in message categories. A message's folder is either one of these,
// "inbox", or a user filter's destination folder.
const (
	CategoryCode        = "code"
	CategoryPromotional = "promotional"
	CategoryBills       = "bills"
	CategoryBanking     = "banking"
	CategoryTravel      = "travel"
	CategoryPersonal    = "personal"
)

var promotionalKeywords = []string{
	"offer", "sale", "discount", "promo", "deal", "win", "free",
	"cashback", "loan", "credit card", "insurance", "investment",
	"subscription", "unsubscribe", "limited time", "shop now",
	"buy now", "click here", "apply now", "call now",
}

// IsPromotional reports whether the message looks like marketing: either a
// promotional keyword occurs in the body, or the sender address carries the
// bulk-sender "DM" marker.
func IsPromotional(msg *models.Message) bool {
	bodyLower := strings.ToLower(msg.Body)
	for _, keyword := range promotionalKeywords {
		if strings.Contains(bodyLower, keyword) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(msg.Address), "dm")
}

// Categorize assigns one of the built-in categories to a message. The rules
// form a priority cascade: first match wins, so a banking bill reminder that
// contains "bill" lands in bills, not banking.
func Categorize(msg *models.Message) string {
	bodyLower := strings.ToLower(msg.Body)

	switch {
	case IsCodeMessage(msg.Body):
		return CategoryCode
	case IsPromotional(msg):
		return CategoryPromotional
	case strings.Contains(bodyLower, "bill"):
		return CategoryBills
	case strings.Contains(bodyLower, "bank"):
		return CategoryBanking
	case strings.Contains(bodyLower, "travel"):
		return CategoryTravel
	default:
		return CategoryPersonal
	}
}
