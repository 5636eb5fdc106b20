package app

import (
	"github.com/shopspring/decimal"

	"storeledger/internal/core"
)

// ProductRequest is the input for creating or updating a product.
type ProductRequest struct {
	ItemCode string          `json:"item_code"`
	ItemName string          `json:"item_name"`
	Price    decimal.Decimal `json:"price"`
	Stock    *int            `json:"stock,omitempty"`
}

// CustomerRequest is the input for creating or updating a customer.
type CustomerRequest struct {
	FullName      string `json:"full_name"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
}

// OrderItemRequest is one cart line. UnitPrice omitted or zero means "use the
// product's current catalog price".
type OrderItemRequest struct {
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateOrderRequest is the input for creating either order kind.
// InterestRate is required for installment orders and ignored for cash.
type CreateOrderRequest struct {
	CustomerID   int                `json:"customer_id"`
	OrderType    core.OrderType     `json:"order_type"`
	OrderDate    string             `json:"order_date,omitempty"` // YYYY-MM-DD, defaults to today
	InterestRate decimal.Decimal    `json:"interest_rate,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

// ListOrdersRequest narrows the order listing. Empty strings match everything.
type ListOrdersRequest struct {
	OrderType  string `json:"order_type,omitempty"`
	Status     string `json:"status,omitempty"`
	CustomerID int    `json:"customer_id,omitempty"`
}

// MarkPaidRequest records one schedule day as collected.
type MarkPaidRequest struct {
	OrderID       int    `json:"order_id"`
	Day           int    `json:"day"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}
