package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carwash-kiosk-backend/internal/model"
)

// Namespace is the fixed key under which the state blob is stored.
const Namespace = "kiosk-app-state"

// Persister writes and reads the full AppState snapshot.
type Persister interface {
	Save(ctx context.Context, state AppState) error
	// Load returns nil when no snapshot exists yet.
	Load(ctx context.Context) (*AppState, error)
}

// gormPersister stores the snapshot as a single namespaced JSON blob row.
type gormPersister struct {
	db *gorm.DB
}

// NewGormPersister creates a database-backed persister.
func NewGormPersister(db *gorm.DB) Persister {
	return &gormPersister{db: db}
}

func (p *gormPersister) Save(ctx context.Context, state AppState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal app state: %w", err)
	}

	row := model.StateSnapshot{
		Namespace: Namespace,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to persist app state: %w", err)
	}
	return nil
}

func (p *gormPersister) Load(ctx context.Context) (*AppState, error) {
	var row model.StateSnapshot
	err := p.db.WithContext(ctx).First(&row, "namespace = ?", Namespace).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load app state: %w", err)
	}

	var state AppState
	if err := json.Unmarshal(row.Data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal app state: %w", err)
	}
	return &state, nil
}

// MemoryPersister keeps the snapshot in memory. Used in tests.
type MemoryPersister struct {
	Saved *AppState
	Err   error
}

func (p *MemoryPersister) Save(ctx context.Context, state AppState) error {
	if p.Err != nil {
		return p.Err
	}
	p.Saved = &state
	return nil
}

func (p *MemoryPersister) Load(ctx context.Context) (*AppState, error) {
	return p.Saved, p.Err
}
