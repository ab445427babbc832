package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rangershop/backend/internal/customers"
	"github.com/rangershop/backend/internal/products"
	"github.com/rangershop/backend/pkg/db/models"
	pkgerrors "github.com/rangershop/backend/pkg/errors"
	"github.com/rangershop/backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// TxRunner abstracts transactional execution so tests can supply their own DB.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order lifecycle operations. Every line mutation adjusts
// product stock and the running order total inside one transaction.
type Service interface {
	Start(ctx context.Context, input StartOrderInput) (*OrderDTO, error)
	AddLine(ctx context.Context, orderID, customerID uuid.UUID, input NewLineInput) (*OrderDTO, error)
	UpdateLineQuantity(ctx context.Context, orderID, lineID uuid.UUID, input UpdateLineInput) (*OrderDTO, error)
	RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderDTO, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, params pagination.Params) (*OrderListResult, error)
}

type service struct {
	db   TxRunner
	repo *Repository
}

// NewService constructs an order service instance.
func NewService(db TxRunner, repo *Repository) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{db: db, repo: repo}, nil
}

// Start opens an order with total 0.00 and applies the initial lines.
func (s *service) Start(ctx context.Context, input StartOrderInput) (*OrderDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer_id is required")
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
	}

	var orderID uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)

		if _, err := customers.NewRepository(tx).Ensure(ctx, input.CustomerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: ensure customer")
		}

		order, err := txOrders.CreateOrder(ctx, &models.Order{ID: uuid.New()})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		orderID = order.ID

		for _, line := range input.Lines {
			if err := addLineTx(ctx, tx, txOrders, order.ID, input.CustomerID, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// AddLine appends a line to an existing order, snapshotting the current
// product price and taking stock.
func (s *service) AddLine(ctx context.Context, orderID, customerID uuid.UUID, input NewLineInput) (*OrderDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		if _, err := txOrders.FindByID(ctx, orderID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}
		if _, err := customers.NewRepository(tx).Ensure(ctx, customerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: ensure customer")
		}
		return addLineTx(ctx, tx, txOrders, orderID, customerID, input)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// UpdateLineQuantity replaces a line's quantity, adjusting stock by the
// difference and keeping the order total in sync.
func (s *service) UpdateLineQuantity(ctx context.Context, orderID, lineID uuid.UUID, input UpdateLineInput) (*OrderDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		txProducts := products.NewRepository(tx)

		line, err := txOrders.FindLine(ctx, orderID, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order line")
		}

		delta := input.Quantity - line.Quantity
		switch {
		case delta > 0:
			ok, err := txProducts.DecrementQuantity(ctx, line.ProductID, delta)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: take stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
			}
		case delta < 0:
			if err := txProducts.IncrementQuantity(ctx, line.ProductID, -delta); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: return stock")
			}
		default:
			return nil
		}

		oldTotal := line.LineTotal
		line.Quantity = input.Quantity
		line.LineTotal = line.UnitPrice.Mul(decimalFromInt(input.Quantity)).Round(2)
		if _, err := txOrders.UpdateLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order line")
		}
		if err := txOrders.IncrementTotal(ctx, orderID, line.LineTotal.Sub(oldTotal)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust order total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// RemoveLine deletes a line, returning its stock and decrementing the total.
func (s *service) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderDTO, error) {
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txOrders := s.repo.WithTx(tx)
		txProducts := products.NewRepository(tx)

		line, err := txOrders.FindLine(ctx, orderID, lineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order line")
		}

		if err := txProducts.IncrementQuantity(ctx, line.ProductID, line.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: return stock")
		}
		if err := txOrders.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete order line")
		}
		if err := txOrders.IncrementTotal(ctx, orderID, line.LineTotal.Neg()); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust order total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Get loads an order with its lines.
func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return FromModel(order), nil
}

// List returns a page of orders newest first.
func (s *service) List(ctx context.Context, params pagination.Params) (*OrderListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return &OrderListResult{Orders: dtos, NextCursor: nextCursor}, nil
}

// addLineTx snapshots the product price, takes stock, inserts the line, and
// bumps the running total, all on the supplied transaction.
func addLineTx(ctx context.Context, tx *gorm.DB, txOrders *Repository, orderID, customerID uuid.UUID, input NewLineInput) error {
	txProducts := products.NewRepository(tx)

	product, err := txProducts.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	ok, err := txProducts.DecrementQuantity(ctx, product.ID, input.Quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: take stock")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
	}

	lineTotal := product.Price.Mul(decimalFromInt(input.Quantity)).Round(2)
	line := &models.OrderLine{
		ID:         uuid.New(),
		OrderID:    orderID,
		ProductID:  product.ID,
		CustomerID: customerID,
		Quantity:   input.Quantity,
		UnitPrice:  product.Price,
		LineTotal:  lineTotal,
	}
	if _, err := txOrders.CreateLine(ctx, line); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order line")
	}
	if err := txOrders.IncrementTotal(ctx, orderID, lineTotal); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: adjust order total")
	}
	return nil
}
