package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/rangershop/backend/pkg/db/models"
)

// NewLineInput describes a product and quantity to add to an order.
type NewLineInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// StartOrderInput opens an order for a customer with an initial set of lines.
type StartOrderInput struct {
	CustomerID uuid.UUID      `json:"customer_id" validate:"required"`
	Lines      []NewLineInput `json:"lines" validate:"dive"`
}

// UpdateLineInput carries the replacement quantity for an existing line.
type UpdateLineInput struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

// OrderLineDTO is the transport shape of a single order line.
type OrderLineDTO struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	ProductID  uuid.UUID `json:"product_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  string    `json:"unit_price"`
	LineTotal  string    `json:"line_total"`
	CreatedAt  time.Time `json:"created_at"`
}

// OrderDTO is the transport shape of an order with its lines.
type OrderDTO struct {
	ID        uuid.UUID      `json:"id"`
	Total     string         `json:"total"`
	Lines     []OrderLineDTO `json:"lines"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// OrderListResult carries a page of orders plus the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// LineFromModel converts an order line row into the transport shape.
func LineFromModel(line *models.OrderLine) OrderLineDTO {
	return OrderLineDTO{
		ID:         line.ID,
		OrderID:    line.OrderID,
		ProductID:  line.ProductID,
		CustomerID: line.CustomerID,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice.StringFixed(2),
		LineTotal:  line.LineTotal.StringFixed(2),
		CreatedAt:  line.CreatedAt,
	}
}

// FromModel converts an order row into the transport shape.
func FromModel(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	lines := make([]OrderLineDTO, 0, len(order.Lines))
	for i := range order.Lines {
		lines = append(lines, LineFromModel(&order.Lines[i]))
	}
	return &OrderDTO{
		ID:        order.ID,
		Total:     order.Total.StringFixed(2),
		Lines:     lines,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}
