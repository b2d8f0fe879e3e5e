package repository

import (
	"github.com/MarcosViniB/PagSync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormProjectionRepository struct {
	db *gorm.DB
}

// NewProjectionRepository creates a GORM-backed projection store.
func NewProjectionRepository(db *gorm.DB) ProjectionRepository {
	return &gormProjectionRepository{db: db}
}

func (r *gormProjectionRepository) GetSubscription(subscriptionID string) (*models.SubscriptionProjection, error) {
	var sub models.SubscriptionProjection
	if err := r.db.Where("subscription_id = ?", subscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormProjectionRepository) UpsertSubscription(sub *models.SubscriptionProjection) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"plan_id",
			"status",
			"next_due_date",
			"value",
			"status_history_json",
			"last_reconciliation_at",
			"last_reconciliation_error",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("subscription_id = ?", sub.SubscriptionID).First(sub).Error
}

func (r *gormProjectionRepository) ListSubscriptions(limit int) ([]models.SubscriptionProjection, error) {
	var subs []models.SubscriptionProjection
	err := r.db.Order("id ASC").Limit(limit).Find(&subs).Error
	return subs, err
}

func (r *gormProjectionRepository) GetPayment(paymentID string) (*models.PaymentProjection, error) {
	var payment models.PaymentProjection
	if err := r.db.Where("payment_id = ?", paymentID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *gormProjectionRepository) UpsertPayment(payment *models.PaymentProjection) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "payment_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"subscription_id",
			"customer_id",
			"status",
			"value",
			"due_date",
			"payment_date",
			"status_history_json",
			"updated_at",
		}),
	}).Create(payment).Error; err != nil {
		return err
	}

	return r.db.Where("payment_id = ?", payment.PaymentID).First(payment).Error
}
