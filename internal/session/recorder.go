package session

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"carwash-kiosk-backend/internal/model"
)

// GormRecorder appends session log rows to the database. Write failures
// are logged and swallowed; the session flow never blocks on the log.
type GormRecorder struct {
	db *gorm.DB
}

// NewGormRecorder creates a database-backed session log recorder.
func NewGormRecorder(db *gorm.DB) *GormRecorder {
	return &GormRecorder{db: db}
}

func (r *GormRecorder) Record(ctx context.Context, serviceID int, action, status string, amount float64) {
	entry := model.SessionLog{
		Timestamp: time.Now().UTC(),
		ServiceID: serviceID,
		Action:    action,
		Status:    status,
		Amount:    amount,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		log.Printf("Error writing session log for service %d: %v", serviceID, err)
	}
}
