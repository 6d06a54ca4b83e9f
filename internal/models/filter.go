package models

import "strings"

// Filter represents a user-defined keyword rule that routes matching
// messages into a named folder. Keywords are stored comma-separated,
// matching is a case-insensitive substring check.
type Filter struct {
	ID                  uint   `gorm:"primaryKey" json:"id"`
	Name                string `gorm:"not null;size:255" json:"name"`
	Keywords            string `gorm:"not null" json:"keywords"`
	FolderName          string `gorm:"not null;size:255" json:"folder_name"`
	Color               int    `json:"color"`
	AutoDelete          bool   `gorm:"default:false" json:"auto_delete"`
	DeleteAfterHours    int    `gorm:"default:24" json:"delete_after_hours"`
	NotificationEnabled bool   `gorm:"default:true" json:"notification_enabled"`
	CreatedDate         int64  `gorm:"autoCreateTime:milli" json:"created_date"`
}

// TableName returns the table name for Filter
func (Filter) TableName() string {
	return "filters"
}

// KeywordList splits the stored keyword string into trimmed, lower-cased
// keywords. Empty entries (e.g. from a trailing comma) are dropped.
func (f *Filter) KeywordList() []string {
	parts := strings.Split(f.Keywords, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		k := strings.ToLower(strings.TrimSpace(p))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// Matches reports whether any of the filter's keywords occurs in the
// message body, case-insensitively.
func (f *Filter) Matches(body string) bool {
	bodyLower := strings.ToLower(body)
	for _, k := range f.KeywordList() {
		if strings.Contains(bodyLower, k) {
			return true
		}
	}
	return false
}
