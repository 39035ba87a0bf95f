package model

import (
	"encoding/json"
	"time"
)

// OrderStatus drives the status-tracker display.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses. Unknown values are
// still carried through and rendered as-is.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Order is a submitted order as returned by the backend. The item snapshot is
// frozen at submission time; the server is the source of truth afterwards.
type Order struct {
	ID            int64       `json:"id"`
	CustomerName  string      `json:"customerName"`
	CustomerEmail string      `json:"customerEmail"`
	TotalAmount   float64     `json:"totalAmount"`
	Items         OrderItems  `json:"items"`
	Status        OrderStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// OrderItems is the order's cart-line snapshot. Some backends return it as a
// JSON array, others as a string containing JSON; a record whose items cannot
// be parsed decodes as an empty list rather than failing the whole order.
type OrderItems []CartLine

func (o *OrderItems) UnmarshalJSON(data []byte) error {
	*o = nil
	var lines []CartLine
	if err := json.Unmarshal(data, &lines); err == nil {
		*o = lines
		return nil
	}
	// double-encoded: a JSON string holding the array
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		if err := json.Unmarshal([]byte(raw), &lines); err == nil {
			*o = lines
		}
		return nil
	}
	// malformed items are tolerated; the order itself still loads
	return nil
}
