package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rangershop/backend/pkg/db/models"
	pkgerrors "github.com/rangershop/backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOrderComputesRunningTotal(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)
	ctx := context.Background()

	blaster := mustCreateTestProduct(t, db, "Blaster", "10.00", 5)
	sword := mustCreateTestProduct(t, db, "Sword", "5.50", 3)
	darts := mustCreateTestProduct(t, db, "Darts", "2.25", 9)

	// 20.00 + 5.50 + 9.00 = 34.50
	order, err := svc.Start(ctx, StartOrderInput{
		CustomerID: uuid.New(),
		Lines: []NewLineInput{
			{ProductID: blaster.ID, Quantity: 2},
			{ProductID: sword.ID, Quantity: 1},
			{ProductID: darts.ID, Quantity: 4},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "34.50", order.Total)
	require.Len(t, order.Lines, 3)

	var blasterRow models.Product
	require.NoError(t, db.First(&blasterRow, "id = ?", blaster.ID).Error)
	assert.Equal(t, 3, blasterRow.Quantity)

	var swordRow models.Product
	require.NoError(t, db.First(&swordRow, "id = ?", sword.ID).Error)
	assert.Equal(t, 2, swordRow.Quantity)

	var dartsRow models.Product
	require.NoError(t, db.First(&dartsRow, "id = ?", darts.ID).Error)
	assert.Equal(t, 5, dartsRow.Quantity)
}

func TestStartOrderWithoutLinesIsEmpty(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)

	order, err := svc.Start(context.Background(), StartOrderInput{CustomerID: uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, "0.00", order.Total)
	assert.Empty(t, order.Lines)
}

func TestAddLineRejectsInsufficientStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)
	ctx := context.Background()

	scarce := mustCreateTestProduct(t, db, "Scarce", "9.99", 1)
	customerID := uuid.New()

	order, err := svc.Start(ctx, StartOrderInput{CustomerID: customerID})
	require.NoError(t, err)

	_, err = svc.AddLine(ctx, order.ID, customerID, NewLineInput{ProductID: scarce.ID, Quantity: 2})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	// the failed add must leave both order and stock untouched
	reloaded, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", reloaded.Total)
	assert.Empty(t, reloaded.Lines)

	var row models.Product
	require.NoError(t, db.First(&row, "id = ?", scarce.ID).Error)
	assert.Equal(t, 1, row.Quantity)
}

func TestUpdateLineQuantityAdjustsStockAndTotal(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)
	ctx := context.Background()

	gadget := mustCreateTestProduct(t, db, "Gadget", "5.00", 10)
	customerID := uuid.New()

	order, err := svc.Start(ctx, StartOrderInput{
		CustomerID: customerID,
		Lines:      []NewLineInput{{ProductID: gadget.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	lineID := order.Lines[0].ID

	updated, err := svc.UpdateLineQuantity(ctx, order.ID, lineID, UpdateLineInput{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, "25.00", updated.Total)
	assert.Equal(t, 5, updated.Lines[0].Quantity)

	var row models.Product
	require.NoError(t, db.First(&row, "id = ?", gadget.ID).Error)
	assert.Equal(t, 5, row.Quantity)

	// shrinking the line returns stock
	updated, err = svc.UpdateLineQuantity(ctx, order.ID, lineID, UpdateLineInput{Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "5.00", updated.Total)

	require.NoError(t, db.First(&row, "id = ?", gadget.ID).Error)
	assert.Equal(t, 9, row.Quantity)
}

func TestRemoveLineReturnsStock(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)
	ctx := context.Background()

	widget := mustCreateTestProduct(t, db, "Widget", "7.25", 4)
	customerID := uuid.New()

	order, err := svc.Start(ctx, StartOrderInput{
		CustomerID: customerID,
		Lines:      []NewLineInput{{ProductID: widget.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, "21.75", order.Total)

	removed, err := svc.RemoveLine(ctx, order.ID, order.Lines[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "0.00", removed.Total)
	assert.Empty(t, removed.Lines)

	var row models.Product
	require.NoError(t, db.First(&row, "id = ?", widget.ID).Error)
	assert.Equal(t, 4, row.Quantity)
}

func TestLinePriceSnapshotSurvivesCatalogChange(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)
	ctx := context.Background()

	relic := mustCreateTestProduct(t, db, "Relic", "12.00", 5)
	customerID := uuid.New()

	order, err := svc.Start(ctx, StartOrderInput{
		CustomerID: customerID,
		Lines:      []NewLineInput{{ProductID: relic.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// catalog price change after the fact must not touch the line
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", relic.ID).
		UpdateColumn("price", decimal.RequireFromString("99.99")).Error)

	reloaded, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.00", reloaded.Lines[0].UnitPrice)
	assert.Equal(t, "12.00", reloaded.Total)
}

func TestRecomputeTotalMatchesRunningTotal(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := buildOrderService(t, db)
	repo := NewRepository(db)
	ctx := context.Background()

	itemA := mustCreateTestProduct(t, db, "Item A", "3.10", 10)
	itemB := mustCreateTestProduct(t, db, "Item B", "4.15", 10)
	customerID := uuid.New()

	order, err := svc.Start(ctx, StartOrderInput{
		CustomerID: customerID,
		Lines: []NewLineInput{
			{ProductID: itemA.ID, Quantity: 3},
			{ProductID: itemB.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	recomputed, err := repo.RecomputeTotal(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Total, recomputed.StringFixed(2))
	assert.Equal(t, "17.60", recomputed.StringFixed(2))
}
