package repository

import (
	"github.com/MarcosViniB/PagSync/app/models"
	"gorm.io/gorm"
)

type gormDeadLetterRepository struct {
	db *gorm.DB
}

// NewDeadLetterRepository creates a GORM-backed dead-letter store.
func NewDeadLetterRepository(db *gorm.DB) DeadLetterRepository {
	return &gormDeadLetterRepository{db: db}
}

func (r *gormDeadLetterRepository) CreateFailedEvent(event *models.FailedEvent) error {
	return r.db.Create(event).Error
}

func (r *gormDeadLetterRepository) SaveFailedEvent(event *models.FailedEvent) error {
	return r.db.Save(event).Error
}

func (r *gormDeadLetterRepository) GetFailedEventByRawEventID(rawEventID uint) (*models.FailedEvent, error) {
	var event models.FailedEvent
	if err := r.db.Where("raw_event_id = ?", rawEventID).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *gormDeadLetterRepository) ListRetryableFailedEvents(maxRetries, limit int) ([]models.FailedEvent, error) {
	var events []models.FailedEvent
	err := r.db.
		Where("processed = ? AND retries < ?", false, maxRetries).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}
