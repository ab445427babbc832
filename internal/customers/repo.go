package customers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rangershop/backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes customer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a customers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Ensure creates the customer row if it does not exist. Customer IDs come
// from the caller, so ensuring an existing customer is a no-op.
func (r *Repository) Ensure(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer := models.Customer{ID: id}
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		FirstOrCreate(&customer).
		Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindByID loads a customer by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// Count returns the number of known customers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}
