package services

import (
	"context"
	"hash/fnv"
	"log/slog"
	"strings"
	"time"

	"github.com/rpsms/sms-organizer-backend/internal/classifier"
	apperrors "github.com/rpsms/sms-organizer-backend/internal/errors"
	"github.com/rpsms/sms-organizer-backend/internal/models"
	"github.com/rpsms/sms-organizer-backend/internal/repository"
)

// IntakeService is the synchronous receive path: classify, route, persist,
// then kick off the code-expiry point schedule for code messages. The
// whole pass is pure computation plus a single store write.
type IntakeService struct {
	messageRepo  repository.MessageRepository
	filterEngine *FilterEngine
	retention    *RetentionService
	publisher    EventPublisher
	logger       *slog.Logger

	codeExpiry time.Duration
}

// NewIntakeService creates a new IntakeService
func NewIntakeService(
	messageRepo repository.MessageRepository,
	filterEngine *FilterEngine,
	retention *RetentionService,
	publisher EventPublisher,
	codeExpiry time.Duration,
	logger *slog.Logger,
) *IntakeService {
	if codeExpiry <= 0 {
		codeExpiry = 24 * time.Hour
	}
	return &IntakeService{
		messageRepo:  messageRepo,
		filterEngine: filterEngine,
		retention:    retention,
		publisher:    publisher,
		logger:       logger,
		codeExpiry:   codeExpiry,
	}
}

// IncomingMessage is the tuple the external transport delivers
type IncomingMessage struct {
	Address     string
	Body        string
	Timestamp   int64
	ContactName string
	Outgoing    bool
}

// Receive classifies, routes and persists one message. The category
// classifier assigns the folder first; user filters may then override it
// with a first-match-wins pass. Code messages get a deferred point
// deletion scheduled.
func (s *IntakeService) Receive(ctx context.Context, in IncomingMessage) (*models.Message, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "sender address is required", apperrors.CodeInvalidInput)
	}
	if in.Body == "" {
		return nil, apperrors.NewAppError(apperrors.ErrInvalidInput, "message body is required", apperrors.CodeInvalidInput)
	}

	timestamp := in.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	direction := models.DirectionIncoming
	if in.Outgoing {
		direction = models.DirectionOutgoing
	}

	msg := &models.Message{
		Address:     in.Address,
		Body:        in.Body,
		Timestamp:   timestamp,
		Direction:   direction,
		ThreadID:    threadIDFor(in.Address),
		Folder:      models.FolderInbox,
		ContactName: in.ContactName,
	}

	// Classification: built-in category first, then user filters.
	msg.IsCode = classifier.IsCodeMessage(msg.Body)
	if msg.IsCode {
		msg.CodeValue = classifier.ExtractCode(msg.Body)
	}
	msg.IsPromotional = classifier.IsPromotional(msg)
	msg.Folder = classifier.Categorize(msg)

	msg, err := s.filterEngine.ApplyFiltersToMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	if err := s.messageRepo.Insert(ctx, msg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorageFailure, err.Error())
	}

	if msg.IsCode && s.retention != nil {
		s.retention.ScheduleCodeExpiry(msg.ID, s.codeExpiry)
	}

	s.logger.Info("message received",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.String("folder", msg.Folder),
		slog.Bool("is_code", msg.IsCode))

	if s.publisher != nil {
		s.publisher.Publish(EventNewMessage, map[string]interface{}{
			"message_id": msg.ID,
			"address":    msg.Address,
			"folder":     msg.Folder,
			"is_code":    msg.IsCode,
		})
	}
	return msg, nil
}

// threadIDFor derives a stable conversation grouping key from the
// normalized sender address.
func threadIDFor(address string) int64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(address))))
	return int64(h.Sum32())
}
