package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MessageRepositoryTestSuite is the test suite for MessageRepository
type MessageRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo MessageRepository
}

// SetupSuite runs once before all tests
func (s *MessageRepositoryTestSuite) SetupSuite() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	err = db.AutoMigrate(&models.Message{}, &models.Filter{})
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewMessageRepository(db)
}

// TearDownSuite runs once after all tests
func (s *MessageRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test
func (s *MessageRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM messages")
}

// TestMessageRepositoryTestSuite runs the test suite
func TestMessageRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MessageRepositoryTestSuite))
}

func (s *MessageRepositoryTestSuite) insertMessage(body, folder string, timestamp int64) *models.Message {
	msg := &models.Message{
		Address:   "+15550142",
		Body:      body,
		Timestamp: timestamp,
		Direction: models.DirectionIncoming,
		ThreadID:  1,
		Folder:    folder,
	}
	require.NoError(s.T(), s.repo.Insert(context.Background(), msg))
	return msg
}

// ==================== Insert Tests ====================

func (s *MessageRepositoryTestSuite) TestInsert_AssignsID() {
	msg := s.insertMessage("hello", models.FolderInbox, time.Now().UnixMilli())
	assert.NotZero(s.T(), msg.ID)

	// The id is assigned exactly once; a second insert gets a new one.
	other := s.insertMessage("hello again", models.FolderInbox, time.Now().UnixMilli())
	assert.NotEqual(s.T(), msg.ID, other.ID)
}

// ==================== Update Tests ====================

func (s *MessageRepositoryTestSuite) TestUpdate_FullReplace() {
	msg := s.insertMessage("your bill is due", models.FolderInbox, 1000)

	msg.Folder = "bills"
	msg.Read = true
	err := s.repo.Update(context.Background(), msg)
	assert.NoError(s.T(), err)

	stored, err := s.repo.GetByID(context.Background(), msg.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "bills", stored.Folder)
	assert.True(s.T(), stored.Read)
}

func (s *MessageRepositoryTestSuite) TestUpdate_NotFound() {
	err := s.repo.Update(context.Background(), &models.Message{ID: 9999, Body: "x", Folder: "inbox"})
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *MessageRepositoryTestSuite) TestUpdateFolder() {
	msg := s.insertMessage("invoice attached", models.FolderInbox, 1000)

	err := s.repo.UpdateFolder(context.Background(), msg.ID, "Bills")
	assert.NoError(s.T(), err)

	stored, err := s.repo.GetByID(context.Background(), msg.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Bills", stored.Folder)
}

func (s *MessageRepositoryTestSuite) TestMarkAsReadAndSetSaved() {
	msg := s.insertMessage("hello", models.FolderInbox, 1000)

	assert.NoError(s.T(), s.repo.MarkAsRead(context.Background(), msg.ID))
	assert.NoError(s.T(), s.repo.SetSaved(context.Background(), msg.ID, true))

	stored, err := s.repo.GetByID(context.Background(), msg.ID)
	require.NoError(s.T(), err)
	assert.True(s.T(), stored.Read)
	assert.True(s.T(), stored.Saved)
}

// ==================== Delete Tests ====================

func (s *MessageRepositoryTestSuite) TestDeleteByID() {
	msg := s.insertMessage("hello", models.FolderInbox, 1000)

	err := s.repo.DeleteByID(context.Background(), msg.ID)
	assert.NoError(s.T(), err)

	_, err = s.repo.GetByID(context.Background(), msg.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	// Deleting again reports not found; callers that need idempotence
	// treat that as a no-op.
	err = s.repo.DeleteByID(context.Background(), msg.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *MessageRepositoryTestSuite) TestDeleteOlderThan() {
	s.insertMessage("old", models.FolderInbox, 1000)
	s.insertMessage("older", models.FolderInbox, 2000)
	kept := s.insertMessage("recent", models.FolderInbox, 5000)

	deleted, err := s.repo.DeleteOlderThan(context.Background(), 3000)
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), deleted)

	remaining, err := s.repo.GetAll(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), remaining, 1)
	assert.Equal(s.T(), kept.ID, remaining[0].ID)
}

// ==================== Query Tests ====================

func (s *MessageRepositoryTestSuite) TestGetAll_StoreOrder() {
	first := s.insertMessage("first", models.FolderInbox, 3000)
	second := s.insertMessage("second", models.FolderInbox, 1000)

	messages, err := s.repo.GetAll(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), messages, 2)
	// Store order is insertion order, not timestamp order.
	assert.Equal(s.T(), first.ID, messages[0].ID)
	assert.Equal(s.T(), second.ID, messages[1].ID)
}

func (s *MessageRepositoryTestSuite) TestGetByFolder() {
	s.insertMessage("a", "promotional", 1000)
	s.insertMessage("b", models.FolderInbox, 2000)
	s.insertMessage("c", "promotional", 3000)

	messages, err := s.repo.GetByFolder(context.Background(), "promotional")
	require.NoError(s.T(), err)
	assert.Len(s.T(), messages, 2)
}

func (s *MessageRepositoryTestSuite) TestGetByDateRange_Inclusive() {
	s.insertMessage("a", models.FolderInbox, 1000)
	s.insertMessage("b", models.FolderInbox, 2000)
	s.insertMessage("c", models.FolderInbox, 3000)

	messages, err := s.repo.GetByDateRange(context.Background(), 1000, 2000)
	require.NoError(s.T(), err)
	assert.Len(s.T(), messages, 2)
}

func (s *MessageRepositoryTestSuite) TestGetCodeMessages() {
	code := &models.Message{
		Address: "VK-AUTHSV", Body: "Your OTP: 4829", Timestamp: 1000,
		Direction: models.DirectionIncoming, Folder: "code",
		IsCode: true, CodeValue: "4829",
	}
	require.NoError(s.T(), s.repo.Insert(context.Background(), code))
	s.insertMessage("plain", models.FolderInbox, 2000)

	messages, err := s.repo.GetCodeMessages(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), messages, 1)
	assert.Equal(s.T(), "4829", messages[0].CodeValue)
}

func (s *MessageRepositoryTestSuite) TestList_PaginationAndSnippet() {
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'a'
	}
	s.insertMessage(string(long), models.FolderInbox, 1000)
	s.insertMessage("short", models.FolderInbox, 2000)

	items, total, err := s.repo.List(context.Background(), "", 1, 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), total)
	require.Len(s.T(), items, 1)
	// Newest first.
	assert.Equal(s.T(), "short", items[0].Snippet)

	items, _, err = s.repo.List(context.Background(), "", 1, 1)
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 1)
	assert.Len(s.T(), items[0].Snippet, snippetLength+3)
}

func (s *MessageRepositoryTestSuite) TestCountAndClearAll() {
	s.insertMessage("a", models.FolderInbox, 1000)
	s.insertMessage("b", models.FolderInbox, 2000)

	count, err := s.repo.Count(context.Background())
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(2), count)

	assert.NoError(s.T(), s.repo.ClearAll(context.Background()))

	count, err = s.repo.Count(context.Background())
	require.NoError(s.T(), err)
	assert.Zero(s.T(), count)
}
