package repository

import (
	"time"

	"github.com/MarcosViniB/PagSync/app/models"
	"gorm.io/gorm"
)

type gormEventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a GORM-backed event store.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &gormEventRepository{db: db}
}

func (r *gormEventRepository) CreateRawEvent(event *models.RawEvent) error {
	return r.db.Create(event).Error
}

func (r *gormEventRepository) GetRawEventByID(id uint) (*models.RawEvent, error) {
	var event models.RawEvent
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormEventRepository) MarkRawEventProcessed(id uint) error {
	return r.db.Model(&models.RawEvent{}).
		Where("id = ?", id).
		Update("processed", true).Error
}

func (r *gormEventRepository) IncrementRawEventAttempts(id uint) error {
	return r.db.Model(&models.RawEvent{}).
		Where("id = ?", id).
		UpdateColumn("process_attempts", gorm.Expr("process_attempts + 1")).Error
}

func (r *gormEventRepository) ListUnprocessedRawEvents(cutoff time.Time, limit int) ([]models.RawEvent, error) {
	// Dead-lettered events belong to the retry worker, not the sweep.
	deadLettered := r.db.Model(&models.FailedEvent{}).Select("raw_event_id")

	var events []models.RawEvent
	err := r.db.
		Where("processed = ? AND received_at < ?", false, cutoff).
		Where("id NOT IN (?)", deadLettered).
		Order("received_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *gormEventRepository) CreateProcessedEvent(event *models.ProcessedEvent) error {
	return r.db.Create(event).Error
}
