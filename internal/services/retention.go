package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/rpsms/sms-organizer-backend/internal/classifier"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
)

// RetentionConfig is the immutable rule set a single sweep runs with. It
// is produced by the configuration collaborator for every run, so flag
// changes take effect no later than the next tick.
type RetentionConfig struct {
	// AutoDeleteDays deletes any message older than this many days.
	// Zero disables the global age cutoff.
	AutoDeleteDays int `json:"auto_delete_days"`
	// AutoDeleteCodes expires code messages after CodeExpiryHours.
	AutoDeleteCodes bool `json:"auto_delete_codes"`
	// AutoDeletePromo expires messages in the promotional folder after
	// 24 hours.
	AutoDeletePromo bool `json:"auto_delete_promo"`
	// CodeExpiryHours is the age at which code messages expire.
	CodeExpiryHours int `json:"code_expiry_hours"`
}

// RetentionConfigProvider supplies the config for each sweep run.
type RetentionConfigProvider func() RetentionConfig

// RetentionService periodically evaluates the time-based deletion rules
// and removes qualifying messages. It also manages one-shot, cancellable
// code-expiry deletions keyed by message id; the periodic sweep is the
// safety net for point schedules that were missed.
type RetentionService struct {
	messageRepo repository.MessageRepository
	filterRepo  repository.FilterRepository
	configFn    RetentionConfigProvider
	publisher   EventPublisher
	logger      *slog.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex

	timersMu sync.Mutex
	timers   map[uint]*time.Timer
}

// NewRetentionService creates a new RetentionService
func NewRetentionService(
	messageRepo repository.MessageRepository,
	filterRepo repository.FilterRepository,
	configFn RetentionConfigProvider,
	publisher EventPublisher,
	interval time.Duration,
	logger *slog.Logger,
) *RetentionService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RetentionService{
		messageRepo: messageRepo,
		filterRepo:  filterRepo,
		configFn:    configFn,
		publisher:   publisher,
		logger:      logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
		timers:      make(map[uint]*time.Timer),
	}
}

// Start begins the periodic retention sweep
func (s *RetentionService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.sweepLoop()

	s.logger.Info("retention service started",
		slog.Duration("sweep_interval", s.interval))
}

// Stop gracefully stops the sweep loop and drops pending point schedules
func (s *RetentionService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()

	s.timersMu.Lock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.timersMu.Unlock()

	s.logger.Info("retention service stopped")
}

// IsRunning returns whether the sweep loop is currently running
func (s *RetentionService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *RetentionService) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			deleted, err := s.RunSweep(ctx, s.configFn())
			cancel()
			if err != nil {
				// Abandon this run; the next tick retries.
				s.logger.Error("retention sweep failed",
					slog.String("error", err.Error()))
				continue
			}
			if deleted > 0 {
				s.logger.Info("retention sweep finished",
					slog.Int("deleted", deleted))
			}
		}
	}
}

// SweepNow runs one sweep with the current configuration
func (s *RetentionService) SweepNow(ctx context.Context) (int, error) {
	return s.RunSweep(ctx, s.configFn())
}

// Config returns the retention configuration the next sweep will use
func (s *RetentionService) Config() RetentionConfig {
	return s.configFn()
}

// RunSweep evaluates all four deletion rules against the corpus and
// deletes the union of qualifying messages. Every rule is an independent
// predicate; a message eligible under several rules is deleted exactly
// once. Returns the number of messages removed.
func (s *RetentionService) RunSweep(ctx context.Context, cfg RetentionConfig) (int, error) {
	now := time.Now().UnixMilli()

	messages, err := s.messageRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	filters, err := s.filterRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	// Per-folder cutoffs from filters with auto-delete enabled.
	folderCutoffs := make(map[string]int64)
	for i := range filters {
		if filters[i].AutoDelete {
			folderCutoffs[filters[i].FolderName] = now - int64(filters[i].DeleteAfterHours)*3600000
		}
	}

	codeExpiryHours := cfg.CodeExpiryHours
	if codeExpiryHours <= 0 {
		codeExpiryHours = 24
	}
	codeCutoff := now - int64(codeExpiryHours)*3600000
	promoCutoff := now - 24*3600000

	var globalCutoff int64
	if cfg.AutoDeleteDays > 0 {
		globalCutoff = now - int64(cfg.AutoDeleteDays)*86400000
	}

	toDelete := make(map[uint]struct{})
	for i := range messages {
		m := &messages[i]
		switch {
		case cfg.AutoDeleteDays > 0 && m.Timestamp < globalCutoff:
			toDelete[m.ID] = struct{}{}
		case cfg.AutoDeleteCodes && m.IsCode && m.Timestamp < codeCutoff:
			toDelete[m.ID] = struct{}{}
		case cfg.AutoDeletePromo && m.Folder == classifier.CategoryPromotional && m.Timestamp < promoCutoff:
			toDelete[m.ID] = struct{}{}
		default:
			if cutoff, ok := folderCutoffs[m.Folder]; ok && m.Timestamp < cutoff {
				toDelete[m.ID] = struct{}{}
			}
		}
	}

	deleted := 0
	for id := range toDelete {
		if err := s.messageRepo.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Already gone (point schedule or concurrent delete);
				// deletion is idempotent.
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// ScheduleCodeExpiry registers a one-shot deferred deletion for a single
// code message. A second schedule for the same id replaces the first.
func (s *RetentionService) ScheduleCodeExpiry(messageID uint, delay time.Duration) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if timer, ok := s.timers[messageID]; ok {
		timer.Stop()
	}
	s.timers[messageID] = time.AfterFunc(delay, func() {
		s.fireCodeExpiry(messageID)
	})

	s.logger.Debug("code expiry scheduled",
		slog.Uint64("message_id", uint64(messageID)),
		slog.Duration("delay", delay))
}

// CancelCodeExpiry cancels a pending code-expiry deletion. Canceling an
// unknown or already-fired schedule is a no-op.
func (s *RetentionService) CancelCodeExpiry(messageID uint) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()

	if timer, ok := s.timers[messageID]; ok {
		timer.Stop()
		delete(s.timers, messageID)
		s.logger.Debug("code expiry cancelled",
			slog.Uint64("message_id", uint64(messageID)))
	}
}

func (s *RetentionService) fireCodeExpiry(messageID uint) {
	s.timersMu.Lock()
	delete(s.timers, messageID)
	s.timersMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.messageRepo.DeleteByID(ctx, messageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return
		}
		// The periodic sweep picks the message up on a later run.
		s.logger.Error("code expiry deletion failed",
			slog.Uint64("message_id", uint64(messageID)),
			slog.String("error", err.Error()))
		return
	}

	s.logger.Info("code message expired",
		slog.Uint64("message_id", uint64(messageID)))
	if s.publisher != nil {
		s.publisher.Publish(EventMessageDeleted, map[string]interface{}{
			"message_id": messageID,
			"reason":     "code_expiry",
		})
	}
}
