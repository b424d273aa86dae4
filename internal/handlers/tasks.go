package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"time-tracker/backend/internal/models"
	"time-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var taskInput struct {
		Title    string `json:"title" binding:"required"`
		Progress string `json:"progress"`
		Project  string `json:"project"`
	}
	if err := c.ShouldBindJSON(&taskInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.CreateTask(h.db, userID, services.CreateTaskInput{
		Title:    taskInput.Title,
		Progress: taskInput.Progress,
		Project:  taskInput.Project,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID := uuid.FromStringOrNil(c.Param("id"))
	if taskID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var statusInput struct {
		Status   string `json:"status" binding:"required"`
		Progress string `json:"progress"`
		Todo     string `json:"todo"`
	}
	if err := c.ShouldBindJSON(&statusInput); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.taskService.UpdateTaskStatus(h.db, userID, taskID, services.StatusUpdateInput{
		Status:   statusInput.Status,
		Progress: statusInput.Progress,
		Todo:     statusInput.Todo,
	})
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	taskID := uuid.FromStringOrNil(c.Param("id"))
	if taskID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	view, err := h.taskService.GetTaskByID(h.db, userID, taskID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

type taskListItem struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	DisplayStatus  string    `json:"display_status"`
	CurrentProject string    `json:"current_project"`
	CurrentCompany string    `json:"current_company"`
	Duration       string    `json:"duration"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	tasks, total, err := h.taskService.ListTasks(h.db, userID, limit, skip)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	items := make([]taskListItem, 0, len(tasks))
	for _, view := range tasks {
		items = append(items, taskListItem{
			ID:             view.ID,
			Title:          view.Title,
			Status:         view.Status,
			DisplayStatus:  models.DisplayStatus(view.Status),
			CurrentProject: orDash(view.CurrentProject),
			CurrentCompany: orDash(view.CurrentCompany),
			Duration:       view.Duration.Formatted,
			CreatedAt:      view.CreatedAt,
			UpdatedAt:      view.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"tasks": items,
	})
}

func (h *TaskHandler) GetTaskStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.taskService.GetTaskStats(h.db, userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *TaskHandler) GetLastWorkingTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.taskService.FindLastWorkingTask(h.db, userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if view == nil {
		c.JSON(http.StatusOK, gin.H{"task": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": view})
}

func (h *TaskHandler) GetLastTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.taskService.FindLastTask(h.db, userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	if view == nil {
		c.JSON(http.StatusOK, gin.H{"task": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": view})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}

	userIDStr, ok := userIDInterface.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}

	userID := uuid.FromStringOrNil(userIDStr)
	if userID == uuid.Nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return uuid.Nil, false
	}

	return userID, true
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "task not found",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to process task request",
		})
	}
}
