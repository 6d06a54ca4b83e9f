package mocks

import (
	"context"

	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockMessageRepository implements repository.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

// Insert persists a new message
func (m *MockMessageRepository) Insert(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// Update replaces a stored message
func (m *MockMessageRepository) Update(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// UpdateFolder moves a message into a folder
func (m *MockMessageRepository) UpdateFolder(ctx context.Context, id uint, folder string) error {
	args := m.Called(ctx, id, folder)
	return args.Error(0)
}

// MarkAsRead marks a message as read
func (m *MockMessageRepository) MarkAsRead(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// SetSaved pins or unpins a message
func (m *MockMessageRepository) SetSaved(ctx context.Context, id uint, saved bool) error {
	args := m.Called(ctx, id, saved)
	return args.Error(0)
}

// Delete deletes a message
func (m *MockMessageRepository) Delete(ctx context.Context, message *models.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

// DeleteByID deletes a message by its ID
func (m *MockMessageRepository) DeleteByID(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// DeleteOlderThan deletes messages older than the cutoff
func (m *MockMessageRepository) DeleteOlderThan(ctx context.Context, timestamp int64) (int64, error) {
	args := m.Called(ctx, timestamp)
	return args.Get(0).(int64), args.Error(1)
}

// GetByID retrieves a message by its ID
func (m *MockMessageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

// GetAll retrieves every message
func (m *MockMessageRepository) GetAll(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// GetByFolder retrieves the messages currently in a folder
func (m *MockMessageRepository) GetByFolder(ctx context.Context, folderName string) ([]models.Message, error) {
	args := m.Called(ctx, folderName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// GetByDateRange retrieves messages within the timestamp window
func (m *MockMessageRepository) GetByDateRange(ctx context.Context, from, to int64) ([]models.Message, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// GetCodeMessages retrieves every message flagged as carrying a code
func (m *MockMessageRepository) GetCodeMessages(ctx context.Context) ([]models.Message, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// List retrieves messages for display with pagination
func (m *MockMessageRepository) List(ctx context.Context, folderName string, limit, offset int) ([]models.MessageListItem, int64, error) {
	args := m.Called(ctx, folderName, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.MessageListItem), args.Get(1).(int64), args.Error(2)
}

// Count returns the number of stored messages
func (m *MockMessageRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// ClearAll removes every message from the store
func (m *MockMessageRepository) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// WithTx returns a repository bound to the given transaction
func (m *MockMessageRepository) WithTx(tx *gorm.DB) repository.MessageRepository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return m
	}
	return args.Get(0).(repository.MessageRepository)
}

// MockFilterRepository implements repository.FilterRepository
type MockFilterRepository struct {
	mock.Mock
}

// Insert persists a new filter
func (m *MockFilterRepository) Insert(ctx context.Context, filter *models.Filter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

// Update replaces a stored filter
func (m *MockFilterRepository) Update(ctx context.Context, filter *models.Filter) error {
	args := m.Called(ctx, filter)
	return args.Error(0)
}

// Delete deletes a filter by its ID
func (m *MockFilterRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// GetByID retrieves a filter by its ID
func (m *MockFilterRepository) GetByID(ctx context.Context, id uint) (*models.Filter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Filter), args.Error(1)
}

// GetAll retrieves every filter in creation order
func (m *MockFilterRepository) GetAll(ctx context.Context) ([]models.Filter, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Filter), args.Error(1)
}
