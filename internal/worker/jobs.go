package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"time-tracker/backend/internal/models"
	"time-tracker/backend/internal/services"
	"time-tracker/backend/internal/timesheet"
)

// NewStaleTaskReminderHandler reports tasks that have been running unattended.
// A task is stale when its current interval has been open longer than
// staleAfter.
func NewStaleTaskReminderHandler(db *gorm.DB, staleAfter time.Duration) JobHandler {
	return func(ctx context.Context, job *Job) error {
		cutoff := time.Now().Add(-staleAfter)

		var logs []models.TimeLog
		err := db.WithContext(ctx).
			Where("ended_at IS NULL AND started_at < ?", cutoff).
			Find(&logs).Error
		if err != nil {
			return fmt.Errorf("failed to query stale intervals: %w", err)
		}

		for _, l := range logs {
			var task models.Task
			if err := db.WithContext(ctx).First(&task, "id = ?", l.TaskID).Error; err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return fmt.Errorf("failed to load task %s: %w", l.TaskID, err)
			}

			running := timesheet.FormatDuration(int(time.Since(l.From) / time.Minute))
			log.Printf("Reminder: task %q (%s) has been running for %s", task.Title, task.ID, running)
		}

		return nil
	}
}

// NewWeeklySummaryHandler logs per-user weekly totals. It reuses the task
// service so the numbers match what the stats endpoint reports.
func NewWeeklySummaryHandler(db *gorm.DB, taskService services.TaskService) JobHandler {
	return func(ctx context.Context, job *Job) error {
		var users []models.User
		if err := db.WithContext(ctx).Where("is_active = ?", true).Find(&users).Error; err != nil {
			return fmt.Errorf("failed to load users: %w", err)
		}

		for _, u := range users {
			stats, err := taskService.GetTaskStats(db.WithContext(ctx), u.ID)
			if err != nil {
				return fmt.Errorf("failed to compute stats for user %s: %w", u.ID, err)
			}

			log.Printf("Weekly summary for %s: %s this week, %d completed, %d active",
				u.Username, stats.ThisWeekTime, stats.CompletedTasks, stats.ActiveTasks)
		}

		return nil
	}
}

// NewTokenCleanupHandler purges expired refresh tokens.
func NewTokenCleanupHandler(db *gorm.DB) JobHandler {
	return func(ctx context.Context, job *Job) error {
		result := db.WithContext(ctx).
			Where("expires_at < ?", time.Now()).
			Delete(&models.Token{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete expired tokens: %w", result.Error)
		}

		if result.RowsAffected > 0 {
			log.Printf("Removed %d expired refresh tokens", result.RowsAffected)
		}

		return nil
	}
}

// Scheduler enqueues the recurring maintenance jobs on fixed intervals.
type Scheduler struct {
	queue  *JobQueue
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

type SchedulerConfig struct {
	ReminderInterval time.Duration
	SummaryInterval  time.Duration
	CleanupInterval  time.Duration
}

func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ReminderInterval: time.Hour,
		SummaryInterval:  24 * time.Hour,
		CleanupInterval:  6 * time.Hour,
	}
}

func NewScheduler(queue *JobQueue) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		queue:  queue,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

func (s *Scheduler) Start(config SchedulerConfig) {
	go s.loop(config)
}

func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
}

func (s *Scheduler) loop(config SchedulerConfig) {
	defer close(s.done)

	reminder := time.NewTicker(config.ReminderInterval)
	summary := time.NewTicker(config.SummaryInterval)
	cleanup := time.NewTicker(config.CleanupInterval)
	defer reminder.Stop()
	defer summary.Stop()
	defer cleanup.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-reminder.C:
			s.enqueue(JobTypeStaleTaskReminder)
		case <-summary.C:
			s.enqueue(JobTypeWeeklySummary)
		case <-cleanup.C:
			s.enqueue(JobTypeTokenCleanup)
		}
	}
}

func (s *Scheduler) enqueue(jobType JobType) {
	if err := s.queue.Enqueue(QueueDefault, jobType, nil); err != nil {
		log.Printf("Failed to enqueue %s job: %v", jobType, err)
	}
}
