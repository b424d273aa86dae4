package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// TimeLog records one continuous working session against a task. A null To
// means the session is still running; at most one log per task may be open
// at any moment.
type TimeLog struct {
	ID        uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index"`
	From      time.Time  `json:"from" gorm:"column:started_at;not null;index"`
	To        *time.Time `json:"to" gorm:"column:ended_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (l *TimeLog) IsOpen() bool {
	return l.To == nil
}
