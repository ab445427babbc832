package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/rangershop/backend/pkg/db/models"
	"github.com/rangershop/backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository exposes order and order line persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateOrder inserts a new order row.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a page of orders newest first using cursor pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Lines")
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, nextCursor, nil
}

// ListOrderIDs returns every order ID, used by the reconcile job.
func (r *Repository) ListOrderIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Pluck("id", &ids).
		Error
	return ids, err
}

// CreateLine inserts an order line row.
func (r *Repository) CreateLine(ctx context.Context, line *models.OrderLine) (*models.OrderLine, error) {
	if err := r.db.WithContext(ctx).Create(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// FindLine loads a line scoped to its order.
func (r *Repository) FindLine(ctx context.Context, orderID, lineID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := r.db.WithContext(ctx).
		First(&line, "id = ? AND order_id = ?", lineID, orderID).
		Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// UpdateLine saves the full line row.
func (r *Repository) UpdateLine(ctx context.Context, line *models.OrderLine) (*models.OrderLine, error) {
	if err := r.db.WithContext(ctx).Save(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// DeleteLine removes a line by ID.
func (r *Repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.OrderLine{}).Error
}

// IncrementTotal adjusts the running order total atomically. Negative deltas
// decrement. Callers invoke this in the same transaction as the line
// mutation that caused the change.
func (r *Repository) IncrementTotal(ctx context.Context, orderID uuid.UUID, delta decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total", gorm.Expr("total + ?", delta)).
		Error
}

// SetTotal overwrites the stored total, used when reconciling drift.
func (r *Repository) SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total", total).
		Error
}

// RecomputeTotal sums the line totals for the order. This is the
// authoritative value; the stored running total should always match it.
func (r *Repository) RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(line_total), 0)").
		Scan(&raw).
		Error
	if err != nil {
		return decimal.Zero, err
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return raw.Decimal, nil
}
