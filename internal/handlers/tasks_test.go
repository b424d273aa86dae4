package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"time-tracker/backend/internal/handlers"
	"time-tracker/backend/internal/models"
	"time-tracker/backend/internal/services"
	"time-tracker/backend/internal/timesheet"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type MockTaskService struct {
	shouldReturnError bool
	returnNotFound    bool
	tasks             []services.TaskView
	lastStatusInput   services.StatusUpdateInput
}

func (m *MockTaskService) CreateTask(db *gorm.DB, userID uuid.UUID, input services.CreateTaskInput) (models.Task, error) {
	if m.shouldReturnError {
		return models.Task{}, gorm.ErrInvalidData
	}
	if input.Title == "" {
		return models.Task{}, &services.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	task := models.Task{
		ID:     uuid.Must(uuid.NewV4()),
		UserID: userID,
		Title:  input.Title,
		Status: models.StatusInProgress,
	}
	m.tasks = append(m.tasks, services.TaskView{Task: task})
	return task, nil
}

func (m *MockTaskService) UpdateTaskStatus(db *gorm.DB, userID, taskID uuid.UUID, input services.StatusUpdateInput) (models.Task, error) {
	if m.shouldReturnError {
		return models.Task{}, gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return models.Task{}, services.ErrTaskNotFound
	}
	if !models.IsValidStatus(input.Status) || input.Status == models.StatusInProgress {
		return models.Task{}, &services.ValidationError{Field: "status", Reason: "unsupported"}
	}
	m.lastStatusInput = input
	return models.Task{ID: taskID, UserID: userID, Status: input.Status}, nil
}

func (m *MockTaskService) GetTaskByID(db *gorm.DB, userID, taskID uuid.UUID) (services.TaskView, error) {
	if m.shouldReturnError {
		return services.TaskView{}, gorm.ErrInvalidData
	}
	if m.returnNotFound {
		return services.TaskView{}, services.ErrTaskNotFound
	}
	for _, view := range m.tasks {
		if view.ID == taskID {
			return view, nil
		}
	}
	return services.TaskView{
		Task: models.Task{ID: taskID, UserID: userID, Title: "Test Task", Status: models.StatusInProgress},
		Duration: timesheet.Duration{
			TotalMinutes: 90,
			Hours:        1,
			Minutes:      30,
			Formatted:    "1 hours 30 minutes",
		},
	}, nil
}

func (m *MockTaskService) ListTasks(db *gorm.DB, userID uuid.UUID, limit, skip int) ([]services.TaskView, int64, error) {
	if m.shouldReturnError {
		return nil, 0, gorm.ErrInvalidData
	}
	total := int64(len(m.tasks))
	if limit > len(m.tasks) {
		limit = len(m.tasks)
	}
	return m.tasks[:limit], total, nil
}

func (m *MockTaskService) GetTaskStats(db *gorm.DB, userID uuid.UUID) (services.TaskStats, error) {
	if m.shouldReturnError {
		return services.TaskStats{}, gorm.ErrInvalidData
	}
	return services.TaskStats{
		TotalTime:      "2 hours 15 minutes",
		CompletedTasks: 3,
		ActiveTasks:    2,
		ThisWeekTime:   "45 minutes",
	}, nil
}

func (m *MockTaskService) FindLastWorkingTask(db *gorm.DB, userID uuid.UUID) (*services.TaskView, error) {
	if len(m.tasks) == 0 {
		return nil, nil
	}
	return &m.tasks[len(m.tasks)-1], nil
}

func (m *MockTaskService) FindLastTask(db *gorm.DB, userID uuid.UUID) (*services.TaskView, error) {
	return nil, nil
}

func setupTaskHandler() (*handlers.TaskHandler, *MockTaskService, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	mockService := &MockTaskService{}
	handler := handlers.NewTaskHandler(nil, mockService)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Set("user_id", uuid.Must(uuid.NewV4()).String())
		c.Next()
	})

	return handler, mockService, router
}

func TestCreateTask(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.POST("/tasks", handler.CreateTask)

	body, _ := json.Marshal(map[string]string{
		"title":   "Test Task",
		"project": "Apollo",
	})
	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, w.Code)
	}

	var task models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &task); err != nil {
		t.Errorf("Failed to unmarshal response: %v", err)
	}
	if task.Status != models.StatusInProgress {
		t.Errorf("Expected new task in IN_PROGRESS, got '%s'", task.Status)
	}
}

func TestCreateTask_MissingTitle(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.POST("/tasks", handler.CreateTask)

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer([]byte(`{"project":"Apollo"}`)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestCreateTask_InvalidJSON(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.POST("/tasks", handler.CreateTask)

	req, _ := http.NewRequest("POST", "/tasks", bytes.NewBuffer([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	handler, mockService, router := setupTaskHandler()

	router.PATCH("/tasks/:id/status", handler.UpdateTaskStatus)

	taskID := uuid.Must(uuid.NewV4())
	body, _ := json.Marshal(map[string]string{
		"status":   models.StatusCompleted,
		"progress": "done",
		"todo":     "next steps",
	})
	req, _ := http.NewRequest("PATCH", "/tasks/"+taskID.String()+"/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if mockService.lastStatusInput.Progress != "done" || mockService.lastStatusInput.Todo != "next steps" {
		t.Error("Expected progress and todo to be forwarded to the service")
	}
}

func TestUpdateTaskStatus_InvalidStatus(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.PATCH("/tasks/:id/status", handler.UpdateTaskStatus)

	taskID := uuid.Must(uuid.NewV4())
	body, _ := json.Marshal(map[string]string{"status": "pending"})
	req, _ := http.NewRequest("PATCH", "/tasks/"+taskID.String()+"/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestUpdateTaskStatus_NotFound(t *testing.T) {
	handler, mockService, router := setupTaskHandler()

	router.PATCH("/tasks/:id/status", handler.UpdateTaskStatus)

	mockService.returnNotFound = true

	taskID := uuid.Must(uuid.NewV4())
	body, _ := json.Marshal(map[string]string{"status": models.StatusPaused})
	req, _ := http.NewRequest("PATCH", "/tasks/"+taskID.String()+"/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetTaskByID(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.GET("/tasks/:id", handler.GetTaskByID)

	taskID := uuid.Must(uuid.NewV4())

	req, _ := http.NewRequest("GET", "/tasks/"+taskID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var view services.TaskView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Errorf("Failed to unmarshal response: %v", err)
	}

	if view.Title != "Test Task" {
		t.Errorf("Expected title 'Test Task', got '%s'", view.Title)
	}
	if view.Duration.Formatted != "1 hours 30 minutes" {
		t.Errorf("Expected duration '1 hours 30 minutes', got '%s'", view.Duration.Formatted)
	}
}

func TestGetTaskByID_InvalidID(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.GET("/tasks/:id", handler.GetTaskByID)

	req, _ := http.NewRequest("GET", "/tasks/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestGetTasks_DashFillsAndTotal(t *testing.T) {
	handler, mockService, router := setupTaskHandler()

	router.GET("/tasks", handler.GetTasks)

	mockService.tasks = []services.TaskView{
		{
			Task: models.Task{
				ID:        uuid.Must(uuid.NewV4()),
				Title:     "Task 1",
				Status:    models.StatusResumed,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			},
			Duration: timesheet.Duration{TotalMinutes: 30, Minutes: 30, Formatted: "30 minutes"},
		},
	}

	req, _ := http.NewRequest("GET", "/tasks?limit=10&skip=0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response struct {
		Total int64 `json:"total"`
		Tasks []struct {
			CurrentProject string `json:"current_project"`
			CurrentCompany string `json:"current_company"`
			DisplayStatus  string `json:"display_status"`
			Duration       string `json:"duration"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Total != 1 {
		t.Errorf("Expected total 1, got %d", response.Total)
	}
	if len(response.Tasks) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(response.Tasks))
	}
	if response.Tasks[0].CurrentProject != "-" || response.Tasks[0].CurrentCompany != "-" {
		t.Error("Expected empty project/company to render as '-'")
	}
	if response.Tasks[0].DisplayStatus != "In Progress" {
		t.Errorf("Expected RESUMED to display as 'In Progress', got '%s'", response.Tasks[0].DisplayStatus)
	}
	if response.Tasks[0].Duration != "30 minutes" {
		t.Errorf("Expected duration '30 minutes', got '%s'", response.Tasks[0].Duration)
	}
}

func TestGetTaskStats(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.GET("/stats", handler.GetTaskStats)

	req, _ := http.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var stats services.TaskStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if stats.TotalTime != "2 hours 15 minutes" {
		t.Errorf("Expected totalTime '2 hours 15 minutes', got '%s'", stats.TotalTime)
	}
	if stats.CompletedTasks != 3 || stats.ActiveTasks != 2 {
		t.Errorf("Expected 3 completed / 2 active, got %d / %d", stats.CompletedTasks, stats.ActiveTasks)
	}
}

func TestGetLastWorkingTask_Empty(t *testing.T) {
	handler, _, router := setupTaskHandler()

	router.GET("/tasks/last-working", handler.GetLastWorkingTask)

	req, _ := http.NewRequest("GET", "/tasks/last-working", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if string(response["task"]) != "null" {
		t.Errorf("Expected null task, got %s", response["task"])
	}
}

func TestTaskEndpoints_RequireAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := handlers.NewTaskHandler(nil, &MockTaskService{})
	router := gin.New()
	router.GET("/tasks", handler.GetTasks)

	req, _ := http.NewRequest("GET", "/tasks", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}
