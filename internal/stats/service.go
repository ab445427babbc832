package stats

import (
	"context"
	"fmt"

	"github.com/rangershop/backend/internal/customers"
	"github.com/rangershop/backend/internal/products"
	"github.com/rangershop/backend/pkg/db/models"
	pkgerrors "github.com/rangershop/backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ShopStats summarizes the shop for dashboard views.
type ShopStats struct {
	ProductCount  int64  `json:"product_count"`
	CustomerCount int64  `json:"customer_count"`
	SalesTotal    string `json:"sales_total"`
}

// Service exposes aggregate shop statistics.
type Service interface {
	ShopStats(ctx context.Context) (*ShopStats, error)
}

type service struct {
	db        *gorm.DB
	products  *products.Repository
	customers *customers.Repository
}

// NewService constructs a stats service bound to the provided GORM DB.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &service{
		db:        db,
		products:  products.NewRepository(db),
		customers: customers.NewRepository(db),
	}, nil
}

func (s *service) ShopStats(ctx context.Context) (*ShopStats, error) {
	productCount, err := s.products.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count products")
	}

	customerCount, err := s.customers.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count customers")
	}

	var salesTotal decimal.NullDecimal
	err = s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0)").
		Scan(&salesTotal).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum sales")
	}

	total := decimal.Zero
	if salesTotal.Valid {
		total = salesTotal.Decimal
	}

	return &ShopStats{
		ProductCount:  productCount,
		CustomerCount: customerCount,
		SalesTotal:    total.StringFixed(2),
	}, nil
}
