package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rpsms/sms-organizer-backend/internal/repository"
)

// DailyStats aggregates the last 24 hours of traffic
type DailyStats struct {
	Date        string `json:"date"`
	Total       int    `json:"total"`
	Unread      int    `json:"unread"`
	Codes       int    `json:"codes"`
	Promotional int    `json:"promotional"`
}

// SummaryService produces a once-a-day digest of message activity and
// pushes it to subscribers.
type SummaryService struct {
	messageRepo repository.MessageRepository
	publisher   EventPublisher
	logger      *slog.Logger

	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	mu       sync.Mutex
}

// NewSummaryService creates a new SummaryService
func NewSummaryService(
	messageRepo repository.MessageRepository,
	publisher EventPublisher,
	interval time.Duration,
	logger *slog.Logger,
) *SummaryService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &SummaryService{
		messageRepo: messageRepo,
		publisher:   publisher,
		logger:      logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Summarize computes stats for the 24 hours preceding now
func (s *SummaryService) Summarize(ctx context.Context, now time.Time) (*DailyStats, error) {
	to := now.UnixMilli()
	from := now.Add(-24 * time.Hour).UnixMilli()

	messages, err := s.messageRepo.GetByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &DailyStats{Date: now.Format("2006-01-02")}
	for i := range messages {
		stats.Total++
		if !messages[i].Read {
			stats.Unread++
		}
		if messages[i].IsCode {
			stats.Codes++
		}
		if messages[i].IsPromotional {
			stats.Promotional++
		}
	}
	return stats, nil
}

// Start begins the periodic summary loop
func (s *SummaryService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.summaryLoop()

	s.logger.Info("daily summary service started",
		slog.Duration("interval", s.interval))
}

// Stop gracefully stops the summary loop
func (s *SummaryService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("daily summary service stopped")
}

func (s *SummaryService) summaryLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			stats, err := s.Summarize(ctx, time.Now())
			cancel()
			if err != nil {
				s.logger.Error("daily summary failed",
					slog.String("error", err.Error()))
				continue
			}

			s.logger.Info("daily summary",
				slog.String("date", stats.Date),
				slog.Int("total", stats.Total),
				slog.Int("unread", stats.Unread),
				slog.Int("codes", stats.Codes),
				slog.Int("promotional", stats.Promotional))
			if s.publisher != nil {
				s.publisher.Publish(EventDailySummary, stats)
			}
		}
	}
}
