package billing

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gl11tchy/test-project-2/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	// GetByUserID returns the user's subscription row, or nil when none exists.
	GetByUserID(userID uint) (*models.Subscription, error)
	// UpsertCustomerID creates the subscription row for a user on first
	// checkout, or updates the stored customer id if the row already exists.
	UpsertCustomerID(userID uint, customerID string) error
	// UpdateByCustomerID applies a single keyed update to the row matching
	// the external customer id and reports how many rows matched. Zero
	// matched rows is not an error.
	UpdateByCustomerID(customerID string, updates map[string]interface{}) (int64, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByUserID(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) UpsertCustomerID(userID uint, customerID string) error {
	sub := &models.Subscription{
		UserID:           userID,
		StripeCustomerID: &customerID,
	}
	// Conflict on the unique user_id index collapses concurrent first-time
	// checkout attempts into one row.
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"stripe_customer_id",
			"updated_at",
		}),
	}).Create(sub).Error
}

func (r *gormRepository) UpdateByCustomerID(customerID string, updates map[string]interface{}) (int64, error) {
	tx := r.db.Model(&models.Subscription{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}
