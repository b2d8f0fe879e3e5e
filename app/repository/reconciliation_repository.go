package repository

import (
	"github.com/MarcosViniB/PagSync/app/models"
	"gorm.io/gorm"
)

type gormReconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository creates a GORM-backed reconciliation store.
func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &gormReconciliationRepository{db: db}
}

func (r *gormReconciliationRepository) CreateQueueEntry(entry *models.ReconciliationQueueEntry) error {
	return r.db.Create(entry).Error
}

func (r *gormReconciliationRepository) CreateLogEntry(entry *models.ReconciliationLogEntry) error {
	return r.db.Create(entry).Error
}

func (r *gormReconciliationRepository) CreateAdminJobLog(entry *models.AdminJobLog) error {
	return r.db.Create(entry).Error
}
