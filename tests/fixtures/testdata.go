package fixtures

import (
	"time"

	"github.com/rpsms/sms-organizer-backend/internal/models"
)

// MessageBuilder creates test Message instances with fluent API
type MessageBuilder struct {
	message models.Message
}

// NewMessageBuilder creates a new MessageBuilder with sensible defaults
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{
		message: models.Message{
			Address:   "+15550142",
			Body:      "see you at six",
			Timestamp: time.Now().UnixMilli(),
			Direction: models.DirectionIncoming,
			Folder:    models.FolderInbox,
		},
	}
}

// WithID sets the message ID
func (b *MessageBuilder) WithID(id uint) *MessageBuilder {
	b.message.ID = id
	return b
}

// WithAddress sets the sender address
func (b *MessageBuilder) WithAddress(address string) *MessageBuilder {
	b.message.Address = address
	return b
}

// WithBody sets the message body
func (b *MessageBuilder) WithBody(body string) *MessageBuilder {
	b.message.Body = body
	return b
}

// WithTimestamp sets the message timestamp in milliseconds
func (b *MessageBuilder) WithTimestamp(ts int64) *MessageBuilder {
	b.message.Timestamp = ts
	return b
}

// WithAge sets the timestamp to the given duration before now
func (b *MessageBuilder) WithAge(age time.Duration) *MessageBuilder {
	b.message.Timestamp = time.Now().Add(-age).UnixMilli()
	return b
}

// WithFolder sets the folder
func (b *MessageBuilder) WithFolder(folder string) *MessageBuilder {
	b.message.Folder = folder
	return b
}

// WithRead sets the read flag
func (b *MessageBuilder) WithRead(read bool) *MessageBuilder {
	b.message.Read = read
	return b
}

// WithSaved sets the saved flag
func (b *MessageBuilder) WithSaved(saved bool) *MessageBuilder {
	b.message.Saved = saved
	return b
}

// WithCode marks the message as a code message carrying the given value
func (b *MessageBuilder) WithCode(code string) *MessageBuilder {
	b.message.IsCode = true
	b.message.CodeValue = code
	return b
}

// WithPromotional sets the promotional flag
func (b *MessageBuilder) WithPromotional(promo bool) *MessageBuilder {
	b.message.IsPromotional = promo
	return b
}

// WithContactName sets the contact display name
func (b *MessageBuilder) WithContactName(name string) *MessageBuilder {
	b.message.ContactName = name
	return b
}

// Outgoing marks the message as sent rather than received
func (b *MessageBuilder) Outgoing() *MessageBuilder {
	b.message.Direction = models.DirectionOutgoing
	return b
}

// Build returns the constructed Message
func (b *MessageBuilder) Build() *models.Message {
	msg := b.message
	return &msg
}

// FilterBuilder creates test Filter instances with fluent API
type FilterBuilder struct {
	filter models.Filter
}

// NewFilterBuilder creates a new FilterBuilder with sensible defaults
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filter: models.Filter{
			Name:                "Banking",
			Keywords:            "bank,balance",
			FolderName:          "Banking",
			NotificationEnabled: true,
			CreatedDate:         time.Now().UnixMilli(),
		},
	}
}

// WithID sets the filter ID
func (b *FilterBuilder) WithID(id uint) *FilterBuilder {
	b.filter.ID = id
	return b
}

// WithName sets the filter name
func (b *FilterBuilder) WithName(name string) *FilterBuilder {
	b.filter.Name = name
	return b
}

// WithKeywords sets the comma-separated keyword string
func (b *FilterBuilder) WithKeywords(keywords string) *FilterBuilder {
	b.filter.Keywords = keywords
	return b
}

// WithFolderName sets the destination folder
func (b *FilterBuilder) WithFolderName(folder string) *FilterBuilder {
	b.filter.FolderName = folder
	return b
}

// WithAutoDelete enables auto-delete after the given number of hours
func (b *FilterBuilder) WithAutoDelete(hours int) *FilterBuilder {
	b.filter.AutoDelete = true
	b.filter.DeleteAfterHours = hours
	return b
}

// Build returns the constructed Filter
func (b *FilterBuilder) Build() *models.Filter {
	f := b.filter
	return &f
}
