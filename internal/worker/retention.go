package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/orderdesk/internal/domain/model"
)

// DeskFacade exposes the subset of application functionality required by the scheduler.
type DeskFacade interface {
	OrdersInProgress(ctx context.Context) ([]model.Order, error)
	OrdersPastRetention(ctx context.Context, cutoff time.Time) ([]model.Order, error)
	PurgeDeliveredFiles(ctx context.Context, order model.Order) error
	RemindDeadline(ctx context.Context, order model.Order, daysLeft int) error
}

// reminderDays are the deadlines-ahead marks that trigger a reminder.
var reminderDays = map[int]struct{}{7: {}, 3: {}, 1: {}}

// RetentionScheduler periodically reminds about approaching deadlines, purges
// delivered files past the retention window and rotates backups.
type RetentionScheduler struct {
	facade       DeskFacade
	interval     time.Duration
	initialDelay time.Duration
	retention    time.Duration
	backup       *Backup
	logger       *slog.Logger

	now    func() time.Time
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewRetentionScheduler constructs the scheduler.
func NewRetentionScheduler(facade DeskFacade, interval, initialDelay, retention time.Duration, backup *Backup, logger *slog.Logger) *RetentionScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &RetentionScheduler{
		facade:       facade,
		interval:     interval,
		initialDelay: initialDelay,
		retention:    retention,
		backup:       backup,
		logger:       logger,
		now:          time.Now,
	}
}

// Start launches the background sweep loop.
func (s *RetentionScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(runCtx)
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *RetentionScheduler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *RetentionScheduler) run(ctx context.Context) {
	defer s.wg.Done()

	delay := time.NewTimer(s.initialDelay)
	defer delay.Stop()
	select {
	case <-ctx.Done():
		return
	case <-delay.C:
		s.Sweep(ctx)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one full maintenance pass.
func (s *RetentionScheduler) Sweep(ctx context.Context) {
	s.remindDeadlines(ctx)
	s.purgeExpired(ctx)
	if s.backup != nil {
		if err := s.backup.Run(); err != nil {
			s.logger.Error("backup failed", slog.Any("error", err))
		}
	}
}

func (s *RetentionScheduler) remindDeadlines(ctx context.Context) {
	orders, err := s.facade.OrdersInProgress(ctx)
	if err != nil {
		s.logger.Error("fetch orders in progress failed", slog.Any("error", err))
		return
	}
	for _, order := range orders {
		days := daysUntil(order.Deadline, s.now())
		if _, remind := reminderDays[days]; !remind {
			continue
		}
		if err := s.facade.RemindDeadline(ctx, order, days); err != nil {
			s.logger.Warn("deadline reminder failed",
				slog.String("order_id", order.ID), slog.Any("error", err))
		}
	}
}

func (s *RetentionScheduler) purgeExpired(ctx context.Context) {
	cutoff := s.now().Add(-s.retention)
	orders, err := s.facade.OrdersPastRetention(ctx, cutoff)
	if err != nil {
		s.logger.Error("fetch orders past retention failed", slog.Any("error", err))
		return
	}
	for _, order := range orders {
		if err := s.facade.PurgeDeliveredFiles(ctx, order); err != nil {
			s.logger.Error("retention purge failed",
				slog.String("order_id", order.ID), slog.Any("error", err))
		}
	}
}

// daysUntil counts whole calendar days between now and the deadline.
func daysUntil(deadline, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(today) / (24 * time.Hour))
}
