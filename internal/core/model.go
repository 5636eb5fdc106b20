package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleDays is the fixed length of every installment payment schedule.
const ScheduleDays = 50

// DownpaymentRate is the fixed upfront collection rate applied to the
// pre-interest subtotal of an installment order (2%).
var DownpaymentRate = decimal.NewFromFloat(0.02)

type OrderType string

const (
	OrderTypeCash        OrderType = "cash"
	OrderTypeInstallment OrderType = "installment"
)

type OrderStatus string

const (
	OrderStatusActive    OrderStatus = "active"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Product is a catalog item. Orders snapshot its name and price at creation,
// so later edits never alter historical order lines.
type Product struct {
	ID         int             `json:"id"`
	ItemCode   string          `json:"item_code"`
	ItemName   string          `json:"item_name"`
	Price      decimal.Decimal `json:"price"`
	Stock      *int            `json:"stock,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	ArchivedAt *time.Time      `json:"archived_at,omitempty"`
}

// Archived reports whether the product has been soft-deleted from the catalog.
func (p *Product) Archived() bool { return p.ArchivedAt != nil }

// Customer is a sales customer master record. Customers are referenced by
// orders through customer_id only; archiving a customer leaves orders intact.
type Customer struct {
	ID            int        `json:"id"`
	FullName      string     `json:"full_name"`
	Address       string     `json:"address"`
	ContactNumber string     `json:"contact_number"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ArchivedAt    *time.Time `json:"archived_at,omitempty"`
}

func (c *Customer) Archived() bool { return c.ArchivedAt != nil }

// OrderItem is one line on an order. ProductName and UnitPrice are snapshots
// taken at order time; TotalPrice always equals Quantity × UnitPrice.
type OrderItem struct {
	ID          int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Payment is one day of an installment schedule. Day is unique per order in
// 1..ScheduleDays. The paid transition is one-way: DatePaid, PaymentMethod
// and Notes are set exactly once, when Paid flips to true.
type Payment struct {
	ID            int             `json:"id"`
	OrderID       int             `json:"order_id"`
	Day           int             `json:"day"`
	Amount        decimal.Decimal `json:"amount"`
	Paid          bool            `json:"paid"`
	DatePaid      *time.Time      `json:"date_paid,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// InstallmentTerms holds the fields only installment orders carry. A cash
// order has a nil Terms pointer; an installment order always has one, plus a
// full ScheduleDays-entry payment schedule.
type InstallmentTerms struct {
	InterestRate decimal.Decimal `json:"interest_rate"` // percent, >= 0
	Downpayment  decimal.Decimal `json:"downpayment"`
	DailyPayment decimal.Decimal `json:"daily_payment"`
}

// Order is the aggregate root. Items and Payments are written atomically with
// the header at creation and never re-derived; only Status, TotalCollected and
// the paid fields of individual payments mutate afterwards, through MarkPaid
// and cancellation.
type Order struct {
	ID             int               `json:"id"`
	CustomerID     int               `json:"customer_id"`
	CustomerName   string            `json:"customer_name"` // joined from customers
	OrderType      OrderType         `json:"order_type"`
	OrderDate      time.Time         `json:"order_date"`
	Status         OrderStatus       `json:"status"`
	TotalCost      decimal.Decimal   `json:"total_cost"`
	TotalCollected decimal.Decimal   `json:"total_collected"`
	Terms          *InstallmentTerms `json:"terms,omitempty"`
	Items          []OrderItem       `json:"items"`
	Payments       []Payment         `json:"payments,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// OrderItemInput is one cart line when creating an order. UnitPrice zero means
// "use the product's current catalog price"; either way the resolved price is
// snapshotted onto the stored order item.
type OrderItemInput struct {
	ProductID int
	Quantity  int
	UnitPrice decimal.Decimal
}

// OrderFilter narrows ListOrders results. Nil fields match everything.
type OrderFilter struct {
	OrderType  *OrderType
	Status     *OrderStatus
	CustomerID *int
}
