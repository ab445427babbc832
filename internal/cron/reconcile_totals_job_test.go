package cron

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rangershop/backend/pkg/db/models"
	"github.com/rangershop/backend/pkg/logger"
)

type fakeOrderTotalsRepo struct {
	orders    map[uuid.UUID]*models.Order
	computed  map[uuid.UUID]decimal.Decimal
	setTotals map[uuid.UUID]decimal.Decimal
}

func newFakeOrderTotalsRepo() *fakeOrderTotalsRepo {
	return &fakeOrderTotalsRepo{
		orders:    map[uuid.UUID]*models.Order{},
		computed:  map[uuid.UUID]decimal.Decimal{},
		setTotals: map[uuid.UUID]decimal.Decimal{},
	}
}

func (f *fakeOrderTotalsRepo) ListOrderIDs(context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.orders))
	for id := range f.orders {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeOrderTotalsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	return f.orders[id], nil
}

func (f *fakeOrderTotalsRepo) RecomputeTotal(_ context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	return f.computed[orderID], nil
}

func (f *fakeOrderTotalsRepo) SetTotal(_ context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	f.setTotals[orderID] = total
	return nil
}

func TestReconcileOrderTotalsJobFixesDrift(t *testing.T) {
	repo := newFakeOrderTotalsRepo()
	drifted := uuid.New()
	clean := uuid.New()
	repo.orders[drifted] = &models.Order{ID: drifted, Total: decimal.RequireFromString("10.00")}
	repo.computed[drifted] = decimal.RequireFromString("34.50")
	repo.orders[clean] = &models.Order{ID: clean, Total: decimal.RequireFromString("15.00")}
	repo.computed[clean] = decimal.RequireFromString("15.00")

	job, err := NewReconcileOrderTotalsJob(repo, logger.New(logger.Options{ServiceName: "cron-test"}))
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if job.Name() != "reconcile-order-totals" {
		t.Fatalf("unexpected job name: %s", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.setTotals) != 1 {
		t.Fatalf("expected 1 correction, got %d", len(repo.setTotals))
	}
	fixed, ok := repo.setTotals[drifted]
	if !ok {
		t.Fatal("expected drifted order to be corrected")
	}
	if fixed.StringFixed(2) != "34.50" {
		t.Fatalf("unexpected corrected total: %s", fixed.StringFixed(2))
	}
}

func TestReconcileOrderTotalsJobMatchesEqualScaleDifference(t *testing.T) {
	repo := newFakeOrderTotalsRepo()
	id := uuid.New()
	// 10.5 and 10.50 are the same value; no correction should happen.
	repo.orders[id] = &models.Order{ID: id, Total: decimal.RequireFromString("10.5")}
	repo.computed[id] = decimal.RequireFromString("10.50")

	job, err := NewReconcileOrderTotalsJob(repo, logger.New(logger.Options{ServiceName: "cron-test"}))
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(repo.setTotals) != 0 {
		t.Fatalf("expected no corrections, got %d", len(repo.setTotals))
	}
}
