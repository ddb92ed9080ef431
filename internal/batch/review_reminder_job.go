package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-origination/internal/domain/loan"
	"loan-origination/internal/infrastructure/monitoring"

	"github.com/google/uuid"
)

const reviewReminderLockKey = "lock:job:review-reminder"

type StaleLister interface {
	ListStale(ctx context.Context, status loan.Status, cutoff time.Time) ([]loan.LoanRequest, error)
}

// Locker grants a non-blocking, cluster-wide lock. acquired is false when
// another instance already holds key.
type Locker interface {
	TryLock(ctx context.Context, key string) (unlock func(context.Context) error, acquired bool, err error)
}

// ReviewReminderJob reminds marketing agents of requests that have waited in
// MARKETING_REVIEW longer than staleAfter.
type ReviewReminderJob struct {
	requests   StaleLister
	notifier   loan.Notifier
	locker     Locker
	staleAfter time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

func NewReviewReminderJob(
	requests StaleLister,
	notifier loan.Notifier,
	locker Locker,
	staleAfter time.Duration,
	logger *slog.Logger,
) *ReviewReminderJob {
	if requests == nil || notifier == nil || logger == nil {
		panic("ReviewReminderJob dependencies cannot be nil")
	}
	return &ReviewReminderJob{
		requests:   requests,
		notifier:   notifier,
		locker:     locker,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     logger.With("job", "ReviewReminder"),
	}
}

func (j *ReviewReminderJob) Run(ctx context.Context) error {
	if j.locker != nil {
		unlock, acquired, err := j.locker.TryLock(ctx, reviewReminderLockKey)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to acquire job lock, skipping run.", slog.Any("error", err))
			return fmt.Errorf("acquiring job lock: %w", err)
		}
		if !acquired {
			j.logger.InfoContext(ctx, "Another instance is running the review reminder job, skipping.")
			return nil
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				j.logger.WarnContext(ctx, "Failed to release job lock", slog.Any("error", err))
			}
		}()
	}

	startTime := time.Now()
	cutoff := j.now().Add(-j.staleAfter)
	j.logger.InfoContext(ctx, "Starting review reminder job.", slog.Time("cutoff", cutoff))

	stale, err := j.requests.ListStale(ctx, loan.StatusMarketingReview, cutoff)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list stale loan requests, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list stale requests: %w", err)
	}
	if len(stale) == 0 {
		j.logger.InfoContext(ctx, "No loan requests waiting for review.", slog.Duration("duration", time.Since(startTime)))
		return nil
	}

	byAgent := make(map[uuid.UUID]int)
	for _, r := range stale {
		byAgent[r.MarketingID]++
	}

	var wg sync.WaitGroup
	var sentCount, errorCount atomic.Int32
	for agentID, count := range byAgent {
		wg.Add(1)
		go func(agentID uuid.UUID, count int) {
			defer wg.Done()
			logCtx := j.logger.With(slog.String("marketingID", agentID.String()), slog.Int("pending", count))

			body := fmt.Sprintf("You have %d loan request(s) waiting for review for more than %s.", count, j.staleAfter)
			if err := j.notifier.Notify(ctx, agentID, "Loan requests awaiting review", body); err != nil {
				logCtx.ErrorContext(ctx, "Failed to send review reminder", slog.Any("error", err))
				monitoring.RecordNotification("push", err)
				errorCount.Add(1)
				return
			}
			monitoring.RecordNotification("push", nil)
			monitoring.RecordReminder()
			sentCount.Add(1)
			logCtx.DebugContext(ctx, "Review reminder sent.")
		}(agentID, count)
	}
	wg.Wait()

	summaryLog := j.logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("stale_requests", len(stale)),
		slog.Int("agents", len(byAgent)),
		slog.Int("reminders_sent", int(sentCount.Load())),
		slog.Int("errors_encountered", int(errorCount.Load())),
	)
	if n := errorCount.Load(); n > 0 {
		summaryLog.WarnContext(ctx, "Review reminder job finished with errors.")
		return fmt.Errorf("job completed with %d errors", n)
	}
	summaryLog.InfoContext(ctx, "Review reminder job finished successfully.")
	return nil
}
