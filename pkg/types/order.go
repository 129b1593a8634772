package types

import (
	"database/sql/driver"
	"time"

	"github.com/buy2brands/wholesale-api/pkg/enums"
	"github.com/google/uuid"
)

// OrderItem is the immutable snapshot of a purchased line.
type OrderItem struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand"`
	UnitPrice      Money           `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	TotalPrice     Money           `json:"total_price"`
	IsPack         bool            `json:"is_pack"`
	PackMultiplier int             `json:"pack_multiplier,omitempty"`
	Size           string          `json:"size,omitempty"`
	Color          string          `json:"color,omitempty"`
	Variations     []PackVariation `json:"variations,omitempty"`
}

type OrderItems []OrderItem

// Subtotal sums the line totals.
func (o OrderItems) Subtotal() Money {
	var total Money
	for _, item := range o {
		total += item.TotalPrice
	}
	return total
}

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return jsonValue(o, "[]")
}

func (o *OrderItems) Scan(value interface{}) error {
	*o = nil
	return scanJSON(value, o)
}

// StatusEntry records one transition in an order's history.
type StatusEntry struct {
	Status    enums.OrderStatus `json:"status"`
	Note      string            `json:"note,omitempty"`
	ChangedBy *uuid.UUID        `json:"changed_by,omitempty"`
	ChangedAt time.Time         `json:"changed_at"`
}

// StatusHistory is append-only; callers only ever use Append.
type StatusHistory []StatusEntry

// Append returns a new history with entry added at the end.
func (h StatusHistory) Append(entry StatusEntry) StatusHistory {
	out := make(StatusHistory, len(h), len(h)+1)
	copy(out, h)
	return append(out, entry)
}

func (h StatusHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	return jsonValue(h, "[]")
}

func (h *StatusHistory) Scan(value interface{}) error {
	*h = nil
	return scanJSON(value, h)
}
