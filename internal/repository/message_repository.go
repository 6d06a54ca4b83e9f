package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rpsms/sms-organizer-backend/internal/models"
	"gorm.io/gorm"
)

// MessageRepository defines the interface for message data access. Insert
// assigns the message id; all reads return messages in store order (id
// ascending) unless noted.
type MessageRepository interface {
	Insert(ctx context.Context, message *models.Message) error
	Update(ctx context.Context, message *models.Message) error
	UpdateFolder(ctx context.Context, id uint, folder string) error
	MarkAsRead(ctx context.Context, id uint) error
	SetSaved(ctx context.Context, id uint, saved bool) error
	Delete(ctx context.Context, message *models.Message) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteOlderThan(ctx context.Context, timestamp int64) (int64, error)
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	GetAll(ctx context.Context) ([]models.Message, error)
	GetByFolder(ctx context.Context, folderName string) ([]models.Message, error)
	GetByDateRange(ctx context.Context, from, to int64) ([]models.Message, error)
	GetCodeMessages(ctx context.Context) ([]models.Message, error)
	List(ctx context.Context, folderName string, limit, offset int) ([]models.MessageListItem, int64, error)
	Count(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) error

	// WithTx returns a repository bound to the given transaction. Restore
	// uses it to make clear-then-insert atomic.
	WithTx(tx *gorm.DB) MessageRepository
}

// messageRepository implements MessageRepository using GORM
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository instance
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *messageRepository) WithTx(tx *gorm.DB) MessageRepository {
	return &messageRepository{db: tx}
}

// Insert persists a new message and assigns its id
func (r *messageRepository) Insert(ctx context.Context, message *models.Message) error {
	result := r.db.WithContext(ctx).Create(message)
	if result.Error != nil {
		return fmt.Errorf("failed to insert message: %w", result.Error)
	}
	return nil
}

// Update replaces a stored message by id
func (r *messageRepository) Update(ctx context.Context, message *models.Message) error {
	if message.ID == 0 {
		return ErrInvalidInput
	}
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", message.ID).
		Select("*").Omit("id").
		Updates(message)
	if result.Error != nil {
		return fmt.Errorf("failed to update message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateFolder moves a message into a folder
func (r *messageRepository) UpdateFolder(ctx context.Context, id uint, folder string) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Update("folder", folder)
	if result.Error != nil {
		return fmt.Errorf("failed to update message folder: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAsRead marks a message as read
func (r *messageRepository) MarkAsRead(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message as read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSaved pins or unpins a message
func (r *messageRepository) SetSaved(ctx context.Context, id uint, saved bool) error {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Update("saved", saved)
	if result.Error != nil {
		return fmt.Errorf("failed to update saved flag: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete deletes a message
func (r *messageRepository) Delete(ctx context.Context, message *models.Message) error {
	return r.DeleteByID(ctx, message.ID)
}

// DeleteByID deletes a message by its ID
func (r *messageRepository) DeleteByID(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Message{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOlderThan deletes every message with a timestamp strictly before
// the given cutoff and returns the number of rows removed.
func (r *messageRepository) DeleteOlderThan(ctx context.Context, timestamp int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", timestamp).
		Delete(&models.Message{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetByID retrieves a message by its ID
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	result := r.db.WithContext(ctx).First(&message, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message by ID: %w", result.Error)
	}
	return &message, nil
}

// GetAll retrieves every message in store order
func (r *messageRepository) GetAll(ctx context.Context) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).Order("id ASC").Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get all messages: %w", result.Error)
	}
	return messages, nil
}

// GetByFolder retrieves the messages currently in a folder
func (r *messageRepository) GetByFolder(ctx context.Context, folderName string) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Where("folder = ?", folderName).
		Order("id ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get messages by folder: %w", result.Error)
	}
	return messages, nil
}

// GetByDateRange retrieves messages with from <= timestamp <= to
func (r *messageRepository) GetByDateRange(ctx context.Context, from, to int64) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp <= ?", from, to).
		Order("id ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get messages by date range: %w", result.Error)
	}
	return messages, nil
}

// GetCodeMessages retrieves every message flagged as carrying a code
func (r *messageRepository) GetCodeMessages(ctx context.Context) ([]models.Message, error) {
	var messages []models.Message
	result := r.db.WithContext(ctx).
		Where("is_code = ?", true).
		Order("id ASC").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get code messages: %w", result.Error)
	}
	return messages, nil
}

// List retrieves messages for display, newest first, with pagination.
// An empty folderName lists the whole corpus.
func (r *messageRepository) List(ctx context.Context, folderName string, limit, offset int) ([]models.MessageListItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{})
	if folderName != "" {
		query = query.Where("folder = ?", folderName)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	var messages []models.Message
	if err := query.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&messages).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	items := make([]models.MessageListItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, models.MessageListItem{
			ID:            m.ID,
			Address:       m.Address,
			Snippet:       snippet(m.Body),
			Timestamp:     m.Timestamp,
			Read:          m.Read,
			Folder:        m.Folder,
			IsCode:        m.IsCode,
			IsPromotional: m.IsPromotional,
			ContactName:   m.ContactName,
		})
	}
	return items, total, nil
}

// Count returns the number of stored messages
func (r *messageRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.Message{}).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count messages: %w", result.Error)
	}
	return count, nil
}

// ClearAll removes every message from the store
func (r *messageRepository) ClearAll(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&models.Message{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear messages: %w", result.Error)
	}
	return nil
}

const snippetLength = 120

func snippet(body string) string {
	if len(body) <= snippetLength {
		return body
	}
	return body[:snippetLength] + "..."
}
