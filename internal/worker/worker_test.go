package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestWorker(t *testing.T) (*Worker, *JobQueue, *redis.Client) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	w := NewWorker(WorkerConfig{RedisClient: client})
	return w, NewJobQueue(client), client
}

func TestJobQueue_Enqueue(t *testing.T) {
	_, queue, _ := setupTestWorker(t)

	err := queue.Enqueue(QueueDefault, JobTypeWeeklySummary, map[string]interface{}{"reason": "test"})
	if err != nil {
		t.Fatalf("Failed to enqueue job: %v", err)
	}

	size, err := queue.GetQueueSize(QueueDefault)
	if err != nil {
		t.Fatalf("Failed to get queue size: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected queue size 1, got %d", size)
	}
}

func TestWorker_ProcessesEnqueuedJob(t *testing.T) {
	w, queue, _ := setupTestWorker(t)

	processed := make(chan *Job, 1)
	w.RegisterHandler(JobTypeStaleTaskReminder, func(ctx context.Context, job *Job) error {
		processed <- job
		return nil
	})

	if err := queue.Enqueue(QueueDefault, JobTypeStaleTaskReminder, map[string]interface{}{"source": "test"}); err != nil {
		t.Fatalf("Failed to enqueue job: %v", err)
	}

	w.Start(1)
	defer w.Stop()

	select {
	case job := <-processed:
		if job.Type != JobTypeStaleTaskReminder {
			t.Errorf("Expected job type %s, got %s", JobTypeStaleTaskReminder, job.Type)
		}
		if job.Payload["source"] != "test" {
			t.Errorf("Expected payload source 'test', got %v", job.Payload["source"])
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for job to be processed")
	}
}

func TestWorker_ExecuteJob_NoHandler(t *testing.T) {
	w, _, _ := setupTestWorker(t)

	job := &Job{ID: "j1", Type: JobTypeWeeklySummary, MaxTries: 3}
	err := w.executeJob(job)
	if err == nil {
		t.Error("Expected error for unregistered job type")
	}
}

func TestWorker_FailedJobGoesToRetryQueue(t *testing.T) {
	w, queue, _ := setupTestWorker(t)

	w.RegisterHandler(JobTypeWeeklySummary, func(ctx context.Context, job *Job) error {
		return errors.New("boom")
	})

	job := &Job{ID: "j1", Type: JobTypeWeeklySummary, MaxTries: 3}
	if err := w.executeJob(job); err != nil {
		t.Fatalf("Retry path should not surface the handler error: %v", err)
	}

	size, err := queue.GetQueueSize(QueueRetry)
	if err != nil {
		t.Fatalf("Failed to get retry queue size: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected 1 job on retry queue, got %d", size)
	}

	if job.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", job.Attempts)
	}
	if !job.ProcessAt.After(time.Now()) {
		t.Error("Expected retry to be scheduled in the future")
	}
}

func TestWorker_ExhaustedJobGoesToDeadQueue(t *testing.T) {
	w, queue, client := setupTestWorker(t)

	w.RegisterHandler(JobTypeTokenCleanup, func(ctx context.Context, job *Job) error {
		return errors.New("boom")
	})

	job := &Job{ID: "j1", Type: JobTypeTokenCleanup, Attempts: 2, MaxTries: 3}
	if err := w.executeJob(job); err != nil {
		t.Fatalf("Dead-queue path should not surface the handler error: %v", err)
	}

	size, err := queue.GetQueueSize(QueueDead)
	if err != nil {
		t.Fatalf("Failed to get dead queue size: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected 1 job on dead queue, got %d", size)
	}

	ctx := context.Background()
	data, err := client.LIndex(ctx, QueueDead, 0).Result()
	if err != nil {
		t.Fatalf("Failed to read dead queue entry: %v", err)
	}

	var deadJob map[string]interface{}
	if err := json.Unmarshal([]byte(data), &deadJob); err != nil {
		t.Fatalf("Failed to unmarshal dead job: %v", err)
	}
	if deadJob["error"] != "boom" {
		t.Errorf("Expected dead job to record the error, got %v", deadJob["error"])
	}
}

func TestWorker_DeferredJobIsRequeued(t *testing.T) {
	w, queue, _ := setupTestWorker(t)

	handled := make(chan struct{}, 1)
	w.RegisterHandler(JobTypeWeeklySummary, func(ctx context.Context, job *Job) error {
		handled <- struct{}{}
		return nil
	})

	future := time.Now().Add(time.Hour)
	if err := queue.EnqueueAt(QueueDefault, JobTypeWeeklySummary, nil, future); err != nil {
		t.Fatalf("Failed to enqueue deferred job: %v", err)
	}

	if err := w.processNextJob(); err != nil {
		t.Fatalf("Failed to process deferred job: %v", err)
	}

	select {
	case <-handled:
		t.Error("Deferred job should not have been executed")
	default:
	}

	size, err := queue.GetQueueSize(QueueDefault)
	if err != nil {
		t.Fatalf("Failed to get queue size: %v", err)
	}
	if size != 1 {
		t.Errorf("Expected deferred job back on the queue, got size %d", size)
	}
}

func TestWorker_StopWaitsForLoops(t *testing.T) {
	w, _, _ := setupTestWorker(t)

	w.Start(2)

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Stop did not return")
	}
}
