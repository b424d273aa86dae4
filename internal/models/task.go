package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type Task struct {
	ID             uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID         uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title          string    `json:"title" gorm:"not null"`
	Status         string    `json:"status" gorm:"not null;default:'IN_PROGRESS';index"`
	Progress       string    `json:"progress"`
	Todo           string    `json:"todo"`
	CurrentProject string    `json:"current_project"`
	CurrentCompany string    `json:"current_company"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"index"`

	LoggedTime []TimeLog `json:"logged_time,omitempty" gorm:"foreignKey:TaskID"`
}

func (t *Task) IsActive() bool {
	return t.Status == StatusInProgress || t.Status == StatusResumed || t.Status == StatusPaused
}
