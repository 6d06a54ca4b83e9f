package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
)

// FilterEngine evaluates user-defined keyword filters against messages and
// keeps folder assignments up to date. Creating or editing a filter
// triggers a background re-evaluation of the whole corpus; re-evaluations
// for the same filter id are serialized, and a newer edit supersedes a
// queued stale run.
type FilterEngine struct {
	filterRepo  repository.FilterRepository
	messageRepo repository.MessageRepository
	publisher   EventPublisher
	logger      *slog.Logger

	guardMu sync.Mutex
	guards  map[uint]*reevalGuard
	wg      sync.WaitGroup
}

// reevalGuard serializes re-evaluation runs for one filter id. gen is
// bumped on every edit; a queued run that observes a stale gen gives way
// to the newer one.
type reevalGuard struct {
	mu  sync.Mutex
	gen uint64
}

// NewFilterEngine creates a new FilterEngine
func NewFilterEngine(
	filterRepo repository.FilterRepository,
	messageRepo repository.MessageRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) *FilterEngine {
	return &FilterEngine{
		filterRepo:  filterRepo,
		messageRepo: messageRepo,
		publisher:   publisher,
		logger:      logger,
		guards:      make(map[uint]*reevalGuard),
	}
}

// CreateFilter validates and persists a new filter, then re-evaluates the
// existing corpus against it in the background. FolderName defaults to the
// filter name when unspecified.
func (e *FilterEngine) CreateFilter(ctx context.Context, filter *models.Filter) error {
	if err := validateFilter(filter); err != nil {
		return err
	}
	if filter.FolderName == "" {
		filter.FolderName = filter.Name
	}

	if err := e.filterRepo.Insert(ctx, filter); err != nil {
		return apperrors.Wrap(err, "create filter")
	}

	e.logger.Info("filter created",
		slog.Uint64("filter_id", uint64(filter.ID)),
		slog.String("folder", filter.FolderName))

	e.startReevaluation(filter.ID)
	return nil
}

// UpdateFilter persists an edited filter and re-evaluates the corpus, the
// same way a create does. The filter's identity is stable across edits.
func (e *FilterEngine) UpdateFilter(ctx context.Context, filter *models.Filter) error {
	if filter.ID == 0 {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, "filter id is required", apperrors.CodeInvalidInput)
	}
	if err := validateFilter(filter); err != nil {
		return err
	}
	if filter.FolderName == "" {
		filter.FolderName = filter.Name
	}

	if err := e.filterRepo.Update(ctx, filter); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrFilterNotFound
		}
		return apperrors.Wrap(err, "update filter")
	}

	e.logger.Info("filter updated", slog.Uint64("filter_id", uint64(filter.ID)))

	e.startReevaluation(filter.ID)
	return nil
}

// DeleteFilter removes a filter. Messages already moved into its folder
// stay where they are; membership is sticky and only changes on the next
// classification or filter pass.
func (e *FilterEngine) DeleteFilter(ctx context.Context, filterID uint) error {
	if err := e.filterRepo.Delete(ctx, filterID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrFilterNotFound
		}
		return apperrors.Wrap(err, "delete filter")
	}
	e.logger.Info("filter deleted", slog.Uint64("filter_id", uint64(filterID)))
	return nil
}

// GetFilters returns all filters in creation order
func (e *FilterEngine) GetFilters(ctx context.Context) ([]models.Filter, error) {
	return e.filterRepo.GetAll(ctx)
}

// GetMessagesByFolder returns the messages currently in a folder
func (e *FilterEngine) GetMessagesByFolder(ctx context.Context, folderName string) ([]models.Message, error) {
	return e.messageRepo.GetByFolder(ctx, folderName)
}

// ApplyFiltersToMessage runs a single first-match-wins pass over the
// filters in creation order and reassigns the message folder on a hit.
// The message is returned unchanged when no filter matches; it is not
// persisted here.
func (e *FilterEngine) ApplyFiltersToMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	filters, err := e.filterRepo.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "apply filters")
	}

	for i := range filters {
		if filters[i].Matches(message.Body) {
			message.Folder = filters[i].FolderName
			break
		}
	}
	return message, nil
}

// ResetDefaultFilters replaces nothing; it inserts the built-in default
// filter set (code, promotional, banking) alongside whatever exists.
// Each insert triggers the usual retroactive re-evaluation.
func (e *FilterEngine) ResetDefaultFilters(ctx context.Context) ([]models.Filter, error) {
	defaults := []models.Filter{
		{
			Name:                "OTP",
			Keywords:            "OTP,code,verification,password",
			FolderName:          "OTP",
			NotificationEnabled: true,
			AutoDelete:          true,
			DeleteAfterHours:    24,
		},
		{
			Name:                "Promotional",
			Keywords:            "offer,sale,discount,promo,win,free,cashback",
			FolderName:          "Promotional",
			NotificationEnabled: false,
		},
		{
			Name:                "Banking",
			Keywords:            "bank,transaction,account,balance,withdrawal,deposit",
			FolderName:          "Banking",
			NotificationEnabled: true,
		},
	}

	created := make([]models.Filter, 0, len(defaults))
	for i := range defaults {
		if err := e.CreateFilter(ctx, &defaults[i]); err != nil {
			return created, err
		}
		created = append(created, defaults[i])
	}
	return created, nil
}

// WaitForReevaluations blocks until all in-flight background
// re-evaluations finish. Used on shutdown and in tests.
func (e *FilterEngine) WaitForReevaluations() {
	e.wg.Wait()
}

// startReevaluation queues a background re-evaluation for the filter.
// The run takes the filter's guard lock, so two runs for the same id never
// interleave; a run that lost the race to a newer edit exits early.
func (e *FilterEngine) startReevaluation(filterID uint) {
	guard := e.guardFor(filterID)

	e.guardMu.Lock()
	guard.gen++
	myGen := guard.gen
	e.guardMu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		guard.mu.Lock()
		defer guard.mu.Unlock()

		e.guardMu.Lock()
		stale := guard.gen != myGen
		e.guardMu.Unlock()
		if stale {
			// A newer edit queued its own run; let it do the work.
			return
		}

		moved, err := e.Reevaluate(context.Background(), filterID)
		if err != nil {
			e.logger.Error("filter re-evaluation failed",
				slog.Uint64("filter_id", uint64(filterID)),
				slog.String("error", err.Error()))
			return
		}

		e.logger.Info("filter re-evaluation finished",
			slog.Uint64("filter_id", uint64(filterID)),
			slog.Int("moved", moved))
		e.publish(EventFilterReevaluated, map[string]interface{}{
			"filter_id": filterID,
			"moved":     moved,
		})
	}()
}

// Reevaluate runs one full pass over the corpus: every message is matched
// against all filters in creation order and moved to the first match's
// folder. Messages with no matching filter keep their current folder. The
// pass is idempotent; re-running it against an unchanged corpus moves
// nothing. Returns the number of messages that changed folder.
func (e *FilterEngine) Reevaluate(ctx context.Context, filterID uint) (int, error) {
	filters, err := e.filterRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load filters: %w", err)
	}

	messages, err := e.messageRepo.GetAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("load messages: %w", err)
	}

	moved := 0
	for i := range messages {
		msg := &messages[i]
		target := msg.Folder
		for j := range filters {
			if filters[j].Matches(msg.Body) {
				target = filters[j].FolderName
				break
			}
		}
		if target == msg.Folder {
			continue
		}
		if err := e.messageRepo.UpdateFolder(ctx, msg.ID, target); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				// Deleted out from under us; last writer wins.
				continue
			}
			return moved, fmt.Errorf("move message %d: %w", msg.ID, err)
		}
		moved++
	}
	return moved, nil
}

func (e *FilterEngine) guardFor(filterID uint) *reevalGuard {
	e.guardMu.Lock()
	defer e.guardMu.Unlock()
	guard, ok := e.guards[filterID]
	if !ok {
		guard = &reevalGuard{}
		e.guards[filterID] = guard
	}
	return guard
}

func (e *FilterEngine) publish(event string, payload interface{}) {
	if e.publisher != nil {
		e.publisher.Publish(event, payload)
	}
}

// validateFilter rejects a filter whose keyword set is empty after
// trimming; such a filter could never match anything.
func validateFilter(filter *models.Filter) error {
	if filter.Name == "" {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, "filter name is required", apperrors.CodeInvalidInput)
	}
	if len(filter.KeywordList()) == 0 {
		return apperrors.NewAppError(apperrors.ErrInvalidInput, "filter needs at least one non-empty keyword", apperrors.CodeInvalidInput)
	}
	return nil
}
