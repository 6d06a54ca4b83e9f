package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/rpsms/sms-organizer-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// BackupServiceTestSuite is the test suite for BackupService
type BackupServiceTestSuite struct {
	suite.Suite
	db          *gorm.DB
	messageRepo repository.MessageRepository
	snapshots   storage.SnapshotStorage
	publisher   *capturingPublisher
	config      BackupConfig
	service     *BackupService
}

func (s *BackupServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.messageRepo = repository.NewMessageRepository(s.db)

	snapshots, err := storage.NewLocalSnapshotStorage(s.T().TempDir())
	require.NoError(s.T(), err)
	s.snapshots = snapshots

	s.publisher = &capturingPublisher{}
	s.config = BackupConfig{Enabled: false, Interval: time.Hour}
	s.service = NewBackupService(
		s.db,
		s.messageRepo,
		s.snapshots,
		func() BackupConfig { return s.config },
		s.publisher,
		testLogger(),
	)
}

func TestBackupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BackupServiceTestSuite))
}

func (s *BackupServiceTestSuite) insertMessage(body string) *models.Message {
	msg := &models.Message{
		Address:   "+15550142",
		Body:      body,
		Timestamp: time.Now().UnixMilli(),
		Direction: models.DirectionIncoming,
		ThreadID:  1,
		Folder:    models.FolderInbox,
	}
	require.NoError(s.T(), s.messageRepo.Insert(context.Background(), msg))
	return msg
}

// ==================== Backup Tests ====================

func (s *BackupServiceTestSuite) TestBackup_CapturesFullCorpus() {
	s.insertMessage("first")
	s.insertMessage("second")

	name, snap, err := s.service.Backup(context.Background())
	require.NoError(s.T(), err)
	assert.NotEmpty(s.T(), name)
	assert.Equal(s.T(), 2, snap.TotalMessages)
	assert.Len(s.T(), snap.Messages, 2)
	assert.Equal(s.T(), "first", snap.Messages[0].Body)

	// The store itself is untouched.
	count, err := s.messageRepo.Count(context.Background())
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 2, count)

	require.Len(s.T(), s.publisher.eventsNamed(EventBackupCompleted), 1)
}

func (s *BackupServiceTestSuite) TestBackup_EmptyCorpus() {
	_, snap, err := s.service.Backup(context.Background())
	require.NoError(s.T(), err)
	assert.Zero(s.T(), snap.TotalMessages)
	assert.Empty(s.T(), snap.Messages)
}

// ==================== Restore Tests ====================

func (s *BackupServiceTestSuite) TestRestore_RoundTrip() {
	s.insertMessage("keep me")
	s.insertMessage("me too")

	name, _, err := s.service.Backup(context.Background())
	require.NoError(s.T(), err)

	// Mutate the store after the backup.
	s.insertMessage("post-backup noise")

	restored, err := s.service.Restore(context.Background(), name)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, restored)

	all, err := s.messageRepo.GetAll(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 2)
	assert.Equal(s.T(), "keep me", all[0].Body)
	assert.Equal(s.T(), "me too", all[1].Body)

	require.Len(s.T(), s.publisher.eventsNamed(EventRestoreCompleted), 1)
}

func (s *BackupServiceTestSuite) TestRestore_AssignsFreshIDs() {
	s.insertMessage("original")

	name, _, err := s.service.Backup(context.Background())
	require.NoError(s.T(), err)

	_, err = s.service.Restore(context.Background(), name)
	require.NoError(s.T(), err)

	all, err := s.messageRepo.GetAll(context.Background())
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 1)
	assert.NotZero(s.T(), all[0].ID)
}

func (s *BackupServiceTestSuite) TestRestore_SnapshotNotFound() {
	_, err := s.service.Restore(context.Background(), "sms_backup_missing.json")
	assert.ErrorIs(s.T(), err, apperrors.ErrSnapshotNotFound)
}

func (s *BackupServiceTestSuite) TestRestore_CorruptJSONLeavesStoreUntouched() {
	s.insertMessage("survivor")

	name, err := s.snapshots.Save([]byte("{not json"))
	require.NoError(s.T(), err)

	_, err = s.service.Restore(context.Background(), name)
	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsCorruptSnapshot(err))

	count, err := s.messageRepo.Count(context.Background())
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, count)
}

func (s *BackupServiceTestSuite) TestRestore_CountMismatchIsCorrupt() {
	s.insertMessage("survivor")

	bogus, err := json.Marshal(Snapshot{
		Messages:      []models.Message{{Address: "+1", Body: "x", Folder: models.FolderInbox}},
		BackupDate:    time.Now().UnixMilli(),
		TotalMessages: 5,
	})
	require.NoError(s.T(), err)
	name, err := s.snapshots.Save(bogus)
	require.NoError(s.T(), err)

	_, err = s.service.Restore(context.Background(), name)
	require.Error(s.T(), err)
	assert.True(s.T(), apperrors.IsCorruptSnapshot(err))

	count, err := s.messageRepo.Count(context.Background())
	require.NoError(s.T(), err)
	assert.EqualValues(s.T(), 1, count)
}

func (s *BackupServiceTestSuite) TestRestore_RejectedWhileAnotherRestoreRuns() {
	name, _, err := s.service.Backup(context.Background())
	require.NoError(s.T(), err)

	s.service.restoreMu.Lock()
	defer s.service.restoreMu.Unlock()

	_, err = s.service.Restore(context.Background(), name)
	assert.ErrorIs(s.T(), err, apperrors.ErrRestoreInProgress)
}

// ==================== Scheduled Backup Tests ====================

func (s *BackupServiceTestSuite) TestRunScheduledBackup_DisabledIsNoOp() {
	s.insertMessage("something")

	require.NoError(s.T(), s.service.RunScheduledBackup(context.Background()))
	infos, err := s.service.ListSnapshots()
	require.NoError(s.T(), err)
	assert.Empty(s.T(), infos)
}

func (s *BackupServiceTestSuite) TestRunScheduledBackup_SkipsEmptyCorpus() {
	s.config.Enabled = true

	require.NoError(s.T(), s.service.RunScheduledBackup(context.Background()))
	infos, err := s.service.ListSnapshots()
	require.NoError(s.T(), err)
	assert.Empty(s.T(), infos)
}

func (s *BackupServiceTestSuite) TestRunScheduledBackup_WritesSnapshot() {
	s.config.Enabled = true
	s.insertMessage("something")

	require.NoError(s.T(), s.service.RunScheduledBackup(context.Background()))
	infos, err := s.service.ListSnapshots()
	require.NoError(s.T(), err)
	require.Len(s.T(), infos, 1)
	assert.Contains(s.T(), infos[0].Name, "sms_backup_")
}
