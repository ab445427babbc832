package cron

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/rangershop/backend/pkg/db/models"
	"github.com/rangershop/backend/pkg/logger"
)

// orderTotalsRepository covers the order operations needed to reconcile totals.
type orderTotalsRepository interface {
	ListOrderIDs(ctx context.Context) ([]uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	RecomputeTotal(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	SetTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
}

// ReconcileOrderTotalsJob resets each order's stored total to the sum of its
// line totals. The running total is adjusted incrementally on every line
// mutation, so drift only appears after partial failures; this job repairs it.
type ReconcileOrderTotalsJob struct {
	orders orderTotalsRepository
	logg   *logger.Logger
}

// NewReconcileOrderTotalsJob builds the totals reconciliation job.
func NewReconcileOrderTotalsJob(orders orderTotalsRepository, logg *logger.Logger) (*ReconcileOrderTotalsJob, error) {
	if orders == nil {
		return nil, errors.New("orders repository required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &ReconcileOrderTotalsJob{orders: orders, logg: logg}, nil
}

// Name implements Job.
func (j *ReconcileOrderTotalsJob) Name() string {
	return "reconcile-order-totals"
}

// Run implements Job.
func (j *ReconcileOrderTotalsJob) Run(ctx context.Context) error {
	ids, err := j.orders.ListOrderIDs(ctx)
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}

	var errs error
	corrected := 0
	for _, id := range ids {
		fixed, err := j.reconcileOrder(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("order %s: %w", id, err))
			continue
		}
		if fixed {
			corrected++
		}
	}

	summaryCtx := j.logg.WithFields(ctx, map[string]any{
		"orders_checked":   len(ids),
		"orders_corrected": corrected,
	})
	j.logg.Info(summaryCtx, "order totals reconciled")
	return errs
}

func (j *ReconcileOrderTotalsJob) reconcileOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	order, err := j.orders.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("load order: %w", err)
	}
	computed, err := j.orders.RecomputeTotal(ctx, id)
	if err != nil {
		return false, fmt.Errorf("recompute total: %w", err)
	}
	if order.Total.Equal(computed) {
		return false, nil
	}
	if err := j.orders.SetTotal(ctx, id, computed); err != nil {
		return false, fmt.Errorf("set total: %w", err)
	}
	driftCtx := j.logg.WithFields(ctx, map[string]any{
		"order_id":     id.String(),
		"stored_total": order.Total.StringFixed(2),
		"line_total":   computed.StringFixed(2),
	})
	j.logg.Warn(driftCtx, "order total drift corrected")
	return true, nil
}
