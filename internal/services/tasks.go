package services

import (
	"strings"
	"time"

	"time-tracker/backend/internal/models"
	"time-tracker/backend/internal/timesheet"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type CreateTaskInput struct {
	Title    string
	Progress string
	Project  string
}

type StatusUpdateInput struct {
	Status   string
	Progress string
	Todo     string
}

// TaskView is a task annotated with its computed working duration.
type TaskView struct {
	models.Task
	Duration timesheet.Duration `json:"duration"`
}

type TaskStats struct {
	TotalTime      string `json:"totalTime"`
	CompletedTasks int64  `json:"completedTasks"`
	ActiveTasks    int64  `json:"activeTasks"`
	ThisWeekTime   string `json:"thisWeekTime"`
}

type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (models.Task, error)
	UpdateTaskStatus(db *gorm.DB, userID, taskID uuid.UUID, input StatusUpdateInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (TaskView, error)
	ListTasks(db *gorm.DB, userID uuid.UUID, limit, skip int) ([]TaskView, int64, error)
	GetTaskStats(db *gorm.DB, userID uuid.UUID) (TaskStats, error)
	FindLastWorkingTask(db *gorm.DB, userID uuid.UUID) (*TaskView, error)
	FindLastTask(db *gorm.DB, userID uuid.UUID) (*TaskView, error)
}

type TaskServiceImpl struct {
	// Now is overridable for tests; zero value means time.Now.
	Now func() time.Time

	// ClipWeekToBoundary switches thisWeekTime to clip straddling intervals
	// at the Sunday boundary instead of counting them in full.
	ClipWeekToBoundary bool
}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateTask opens the task in IN_PROGRESS with exactly one running time log.
// Project and company labels are inherited from the user's stored defaults;
// an explicit project overrides the default, the company never does.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input CreateTaskInput) (models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return models.Task{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return models.Task{}, err
	}

	project := user.CurrentProject
	if input.Project != "" {
		project = input.Project
	}

	now := s.now()
	task := models.Task{
		ID:             uuid.Must(uuid.NewV4()),
		UserID:         userID,
		Title:          title,
		Status:         models.StatusInProgress,
		Progress:       input.Progress,
		CurrentProject: project,
		CurrentCompany: user.CurrentCompany,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	log := models.TimeLog{
		ID:     uuid.Must(uuid.NewV4()),
		TaskID: task.ID,
		From:   now,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		return tx.Create(&log).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

// UpdateTaskStatus is the central lifecycle transition. It runs as a single
// per-task transaction: validate the edge, close the open interval when
// leaving an active state, open a fresh one on resume, and persist the new
// status. A repeated status leaves the logs untouched so a double-clicked
// pause or resume cannot corrupt the single-open-interval invariant.
func (s *TaskServiceImpl) UpdateTaskStatus(db *gorm.DB, userID, taskID uuid.UUID, input StatusUpdateInput) (models.Task, error) {
	if !models.IsValidStatus(input.Status) || input.Status == models.StatusInProgress {
		return models.Task{}, &ValidationError{Field: "status", Reason: "must be one of PAUSED, RESUMED, CANCELLED, COMPLETED"}
	}

	var task models.Task
	now := s.now()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrTaskNotFound
			}
			return err
		}

		// Repeating the current status (a double-clicked pause or resume)
		// must not touch the logs at all: a second RESUMED would otherwise
		// open a second interval alongside the one still running. Everything
		// else must be a legal edge.
		sameStatus := task.Status == input.Status
		if !sameStatus && !models.CanTransition(task.Status, input.Status) {
			return &TransitionError{From: task.Status, To: input.Status}
		}

		if !sameStatus {
			var last models.TimeLog
			err := tx.Where("task_id = ?", task.ID).Order("started_at DESC").First(&last).Error
			if err != nil && err != gorm.ErrRecordNotFound {
				return err
			}
			hasLast := err == nil

			if models.ClosesInterval(input.Status) && hasLast && last.IsOpen() {
				last.To = &now
				if err := tx.Save(&last).Error; err != nil {
					return err
				}
			}

			if input.Status == models.StatusResumed {
				fresh := models.TimeLog{
					ID:     uuid.Must(uuid.NewV4()),
					TaskID: task.ID,
					From:   now,
				}
				if err := tx.Create(&fresh).Error; err != nil {
					return err
				}
			}
		}

		if input.Status == models.StatusCompleted {
			// Only overwrite when the caller supplied text; omission must
			// not erase what is already there.
			if input.Progress != "" {
				task.Progress = input.Progress
			}
			if input.Todo != "" {
				task.Todo = input.Todo
			}
		}

		task.Status = input.Status
		task.UpdatedAt = now
		return tx.Save(&task).Error
	})
	if err != nil {
		return models.Task{}, err
	}

	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (TaskView, error) {
	var task models.Task
	err := preloadLogs(db).Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return TaskView{}, ErrTaskNotFound
		}
		return TaskView{}, err
	}

	return s.annotate(task), nil
}

func (s *TaskServiceImpl) ListTasks(db *gorm.DB, userID uuid.UUID, limit, skip int) ([]TaskView, int64, error) {
	if limit <= 0 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}

	var total int64
	if err := db.Model(&models.Task{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []models.Task
	err := preloadLogs(db).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, err
	}

	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, s.annotate(task))
	}

	return views, total, nil
}

func (s *TaskServiceImpl) GetTaskStats(db *gorm.DB, userID uuid.UUID) (TaskStats, error) {
	var tasks []models.Task
	if err := preloadLogs(db).Where("user_id = ?", userID).Find(&tasks).Error; err != nil {
		return TaskStats{}, err
	}

	now := s.now()
	stats := TaskStats{}
	totalMinutes := 0
	weekMinutes := 0

	for _, task := range tasks {
		totalMinutes += timesheet.ElapsedMinutes(task.LoggedTime, now)
		weekMinutes += timesheet.WeekMinutes(task.LoggedTime, now, s.ClipWeekToBoundary)

		switch {
		case task.Status == models.StatusCompleted:
			stats.CompletedTasks++
		case task.IsActive():
			stats.ActiveTasks++
		}
	}

	stats.TotalTime = timesheet.FormatDuration(totalMinutes)
	stats.ThisWeekTime = timesheet.FormatDuration(weekMinutes)

	return stats, nil
}

// FindLastWorkingTask returns the most recently touched task still in an
// active state, or nil when the user has none.
func (s *TaskServiceImpl) FindLastWorkingTask(db *gorm.DB, userID uuid.UUID) (*TaskView, error) {
	return s.findLastByStatus(db, userID, models.ActiveStatuses)
}

// FindLastTask returns the most recently touched task in a terminal state,
// or nil when the user has none.
func (s *TaskServiceImpl) FindLastTask(db *gorm.DB, userID uuid.UUID) (*TaskView, error) {
	return s.findLastByStatus(db, userID, models.TerminalStatuses)
}

func (s *TaskServiceImpl) findLastByStatus(db *gorm.DB, userID uuid.UUID, statuses []string) (*TaskView, error) {
	var task models.Task
	err := preloadLogs(db).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Order("updated_at DESC").
		First(&task).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	view := s.annotate(task)
	return &view, nil
}

func (s *TaskServiceImpl) annotate(task models.Task) TaskView {
	return TaskView{
		Task:     task,
		Duration: timesheet.Elapsed(task.LoggedTime, s.now()),
	}
}

func preloadLogs(db *gorm.DB) *gorm.DB {
	return db.Preload("LoggedTime", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("started_at ASC")
	})
}
