package services

import (
	"fmt"
	"time"

	"time-tracker/backend/internal/cache"
	"time-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// CachedTaskService decorates a TaskService with a read-through cache. Every
// lifecycle mutation invalidates the task's entry plus the owner's list and
// stats views, so the "currently open interval" stays a derived query and is
// never served stale across a transition.
type CachedTaskService struct {
	taskService TaskService
	cache       cache.Cache
}

func NewCachedTaskService(taskService TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
	}
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	task, err := s.taskService.CreateTask(db, userID, input)
	if err != nil {
		return task, err
	}

	s.invalidateUser(userID)
	return task, nil
}

func (s *CachedTaskService) UpdateTaskStatus(db *gorm.DB, userID, taskID uuid.UUID, input StatusUpdateInput) (models.Task, error) {
	task, err := s.taskService.UpdateTaskStatus(db, userID, taskID, input)
	if err != nil {
		return task, err
	}

	s.cache.Delete(taskKey(taskID))
	s.invalidateUser(userID)
	return task, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (TaskView, error) {
	key := taskKey(taskID)

	var cached TaskView
	if err := s.cache.Get(key, &cached); err == nil && cached.UserID == userID {
		return cached, nil
	}

	view, err := s.taskService.GetTaskByID(db, userID, taskID)
	if err != nil {
		return view, err
	}

	// An open interval keeps accruing, so the annotated duration of an
	// active task goes stale within a minute.
	ttl := 30 * time.Minute
	if view.IsActive() {
		ttl = time.Minute
	}
	s.cache.Set(key, view, ttl)

	return view, nil
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, limit, skip int) ([]TaskView, int64, error) {
	key := fmt.Sprintf("tasks_page:%s:%d:%d", userID.String(), limit, skip)

	var cached struct {
		Tasks []TaskView `json:"tasks"`
		Total int64      `json:"total"`
	}
	if err := s.cache.Get(key, &cached); err == nil {
		return cached.Tasks, cached.Total, nil
	}

	tasks, total, err := s.taskService.ListTasks(db, userID, limit, skip)
	if err != nil {
		return tasks, total, err
	}

	cached.Tasks = tasks
	cached.Total = total
	s.cache.Set(key, cached, time.Minute)

	return tasks, total, nil
}

func (s *CachedTaskService) GetTaskStats(db *gorm.DB, userID uuid.UUID) (TaskStats, error) {
	key := statsKey(userID)

	var cached TaskStats
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	}

	stats, err := s.taskService.GetTaskStats(db, userID)
	if err != nil {
		return stats, err
	}

	s.cache.Set(key, stats, time.Minute)
	return stats, nil
}

func (s *CachedTaskService) FindLastWorkingTask(db *gorm.DB, userID uuid.UUID) (*TaskView, error) {
	return s.taskService.FindLastWorkingTask(db, userID)
}

func (s *CachedTaskService) FindLastTask(db *gorm.DB, userID uuid.UUID) (*TaskView, error) {
	return s.taskService.FindLastTask(db, userID)
}

func (s *CachedTaskService) invalidateUser(userID uuid.UUID) {
	s.cache.DeletePattern(fmt.Sprintf("tasks_page:%s:*", userID.String()))
	s.cache.Delete(statsKey(userID))
}

func taskKey(taskID uuid.UUID) string {
	return fmt.Sprintf("task:%s", taskID.String())
}

func statsKey(userID uuid.UUID) string {
	return fmt.Sprintf("stats:%s", userID.String())
}
