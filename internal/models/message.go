package models

// Message direction values.
const (
	DirectionIncoming = 1
	DirectionOutgoing = 2
)

// FolderInbox is the default folder for newly stored messages.
const FolderInbox = "inbox"

// Message represents a single text message in the local corpus
type Message struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Address       string `gorm:"not null;size:255;index" json:"address"`
	Body          string `gorm:"not null" json:"body"`
	Timestamp     int64  `gorm:"not null;index" json:"date"`
	Direction     int    `gorm:"not null;default:1" json:"type"`
	Read          bool   `gorm:"default:false" json:"read"`
	ThreadID      int64  `gorm:"index" json:"thread_id"`
	Folder        string `gorm:"not null;default:inbox;index" json:"folder"`
	IsCode        bool   `gorm:"default:false" json:"is_code"`
	CodeValue     string `gorm:"size:16" json:"code_value,omitempty"`
	IsPromotional bool   `gorm:"default:false" json:"is_promotional"`
	Saved         bool   `gorm:"default:false" json:"saved"`
	ContactName   string `gorm:"size:255" json:"contact_name,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageListItem is a lightweight version for list views
type MessageListItem struct {
	ID            uint   `json:"id"`
	Address       string `json:"address"`
	Snippet       string `json:"snippet"`
	Timestamp     int64  `json:"date"`
	Read          bool   `json:"read"`
	Folder        string `json:"folder"`
	IsCode        bool   `json:"is_code"`
	IsPromotional bool   `json:"is_promotional"`
	ContactName   string `json:"contact_name,omitempty"`
}
