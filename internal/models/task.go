package model

import (
	"time"

	"client-tasks.com/client-tasks/internal/constants"
)

type Task struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	ClientID    string               `gorm:"size:36;not null;index:idx_tasks_client_created,priority:1" json:"client_id"`
	Title       string               `gorm:"type:text;not null" json:"title"`
	Description *string              `gorm:"type:text" json:"description"`
	Status      constants.TaskStatus `gorm:"type:varchar(10);not null" json:"status"`
	DueDate     *time.Time           `json:"due_date"`
	ExternalID  *string              `gorm:"size:255;uniqueIndex" json:"external_id"`
	CreatedAt   time.Time            `gorm:"not null;index:idx_tasks_client_created,priority:2" json:"created_at"`
	UpdatedAt   time.Time            `gorm:"not null" json:"updated_at"`
}

// OverdueCount is a row of the per-client overdue aggregation.
type OverdueCount struct {
	ClientID     string `json:"client_id"`
	OverdueCount int64  `json:"overdue_count"`
}

// OverdueSnapshot is a cached aggregation. It stays exact until ValidUntil,
// the earliest due date among open tasks not yet overdue when it was taken.
type OverdueSnapshot struct {
	Counts     []OverdueCount `json:"counts"`
	ValidUntil *time.Time     `json:"valid_until"`
}

// FreshAt reports whether no open task has crossed its due date since the snapshot.
func (s *OverdueSnapshot) FreshAt(now time.Time) bool {
	return s.ValidUntil == nil || !now.After(*s.ValidUntil)
}
