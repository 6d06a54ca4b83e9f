package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
	"github.com/rpsms/sms-organizer-backend/internal/storage"
	"gorm.io/gorm"
)

// Snapshot is the serialized backup document. The field names and the
// count-matches-length invariant are part of the compatibility contract.
type Snapshot struct {
	Messages      []models.Message `json:"messages"`
	BackupDate    int64            `json:"backupDate"`
	TotalMessages int              `json:"totalMessages"`
}

// BackupConfig controls the scheduled auto-backup runner
type BackupConfig struct {
	Enabled  bool
	Interval time.Duration
}

// BackupConfigProvider supplies the auto-backup config for each run, so a
// toggle takes effect by the next tick.
type BackupConfigProvider func() BackupConfig

// BackupService serializes the full message corpus to versioned snapshots
// and restores it from one. Restore is destructive: it replaces the whole
// store under an exclusive lock, atomically.
type BackupService struct {
	db          *gorm.DB
	messageRepo repository.MessageRepository
	snapshots   storage.SnapshotStorage
	configFn    BackupConfigProvider
	publisher   EventPublisher
	logger      *slog.Logger

	// restoreMu guards the clear-then-insert sequence; concurrent
	// restores are rejected rather than queued.
	restoreMu sync.Mutex

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewBackupService creates a new BackupService
func NewBackupService(
	db *gorm.DB,
	messageRepo repository.MessageRepository,
	snapshots storage.SnapshotStorage,
	configFn BackupConfigProvider,
	publisher EventPublisher,
	logger *slog.Logger,
) *BackupService {
	return &BackupService{
		db:          db,
		messageRepo: messageRepo,
		snapshots:   snapshots,
		configFn:    configFn,
		publisher:   publisher,
		logger:      logger,
		stopCh:      make(chan struct{}),
	}
}

// Backup reads the entire corpus in store order, wraps it with a
// timestamp and count, and writes it to snapshot storage. The store is
// not mutated. Returns the snapshot name and the snapshot itself.
func (s *BackupService) Backup(ctx context.Context) (string, *Snapshot, error) {
	messages, err := s.messageRepo.GetAll(ctx)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	snap := &Snapshot{
		Messages:      messages,
		BackupDate:    time.Now().UnixMilli(),
		TotalMessages: len(messages),
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "serialize snapshot")
	}

	name, err := s.snapshots.Save(data)
	if err != nil {
		return "", nil, apperrors.Wrap(err, "persist snapshot")
	}

	s.logger.Info("backup completed",
		slog.String("snapshot", name),
		slog.Int("messages", snap.TotalMessages))
	s.publish(EventBackupCompleted, map[string]interface{}{
		"snapshot": name,
		"messages": snap.TotalMessages,
	})
	return name, snap, nil
}

// Restore replaces the entire message store with the snapshot's contents.
// Original ids are discarded; the store assigns fresh ones. The
// clear-then-insert sequence runs in one transaction, so on any failure
// the store is left in its pre-restore state.
func (s *BackupService) Restore(ctx context.Context, name string) (int, error) {
	if !s.restoreMu.TryLock() {
		return 0, apperrors.ErrRestoreInProgress
	}
	defer s.restoreMu.Unlock()

	data, err := s.snapshots.Get(name)
	if err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return 0, apperrors.ErrSnapshotNotFound
		}
		return 0, apperrors.Wrap(err, "read snapshot")
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return 0, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := s.messageRepo.WithTx(tx)
		if err := txRepo.ClearAll(ctx); err != nil {
			return err
		}
		for i := range snap.Messages {
			msg := snap.Messages[i]
			msg.ID = 0
			if err := txRepo.Insert(ctx, &msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// The transaction rolled back; the store is untouched.
		return 0, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	s.logger.Info("restore completed",
		slog.String("snapshot", name),
		slog.Int("messages", snap.TotalMessages))
	s.publish(EventRestoreCompleted, map[string]interface{}{
		"snapshot": name,
		"messages": snap.TotalMessages,
	})
	return snap.TotalMessages, nil
}

// ListSnapshots returns the stored snapshots, newest first
func (s *BackupService) ListSnapshots() ([]storage.SnapshotInfo, error) {
	return s.snapshots.List()
}

// DeleteSnapshot removes a stored snapshot by name
func (s *BackupService) DeleteSnapshot(name string) error {
	if err := s.snapshots.Delete(name); err != nil {
		if errors.Is(err, storage.ErrSnapshotNotFound) {
			return apperrors.ErrSnapshotNotFound
		}
		return apperrors.Wrap(err, "delete snapshot")
	}
	s.logger.Info("snapshot deleted", slog.String("snapshot", name))
	return nil
}

// RunScheduledBackup performs one auto-backup run. It is a no-op when
// auto-backup is disabled or the corpus is empty.
func (s *BackupService) RunScheduledBackup(ctx context.Context) error {
	cfg := s.configFn()
	if !cfg.Enabled {
		return nil
	}

	count, err := s.messageRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	_, _, err = s.Backup(ctx)
	return err
}

// Start begins the scheduled auto-backup loop
func (s *BackupService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.backupLoop()

	s.logger.Info("auto-backup service started",
		slog.Duration("interval", s.configFn().Interval))
}

// Stop gracefully stops the auto-backup loop
func (s *BackupService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("auto-backup service stopped")
}

func (s *BackupService) backupLoop() {
	defer s.wg.Done()

	interval := s.configFn().Interval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if err := s.RunScheduledBackup(ctx); err != nil {
				s.logger.Error("scheduled backup failed",
					slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

func (s *BackupService) publish(event string, payload interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(event, payload)
	}
}

// decodeSnapshot parses and structurally validates a snapshot document
func decodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrCorruptSnapshot,
			"snapshot is not valid JSON", apperrors.CodeCorruptSnapshot)
	}
	if snap.TotalMessages != len(snap.Messages) {
		return nil, apperrors.NewAppError(apperrors.ErrCorruptSnapshot,
			"snapshot message count does not match contents", apperrors.CodeCorruptSnapshot)
	}
	return &snap, nil
}
