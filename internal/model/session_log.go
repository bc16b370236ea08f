package model

import "time"

// Session log actions.
const (
	ActionStarted   = "started"
	ActionCompleted = "completed"
	ActionCancelled = "cancelled"
)

// SessionLog records one event in the lifecycle of a paid service session.
type SessionLog struct {
	ID        int64     `gorm:"autoIncrement;primaryKey" json:"id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
	ServiceID int       `gorm:"not null;index" json:"service_id"`
	Action    string    `gorm:"size:32;not null" json:"action"`
	Status    string    `gorm:"size:32;not null" json:"status"`
	Amount    float64   `json:"amount"`
}
