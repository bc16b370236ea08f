package model

import "time"

// StateSnapshot is the durable copy of the kiosk application state,
// stored as a single namespaced JSON blob and rewritten on every mutation.
type StateSnapshot struct {
	Namespace string    `gorm:"primaryKey;size:64"`
	Data      []byte    `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
