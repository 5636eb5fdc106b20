package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService owns the order lifecycle: atomic creation of the
// order/items/payments aggregate, the one-way mark-paid transition, and
// cancellation. All writes go through one transaction per call so a partial
// aggregate can never be observed.
type OrderService interface {
	// CreateCashOrder records an immediately-settled sale: status completed,
	// total collected equals total cost, no payment schedule.
	CreateCashOrder(ctx context.Context, customerID int, orderDate time.Time, items []OrderItemInput) (*Order, error)

	// CreateInstallmentOrder prices the cart, generates the 50-day schedule
	// and persists the whole aggregate atomically. The downpayment counts as
	// collected upfront.
	CreateInstallmentOrder(ctx context.Context, customerID int, orderDate time.Time, items []OrderItemInput, interestRatePercent decimal.Decimal) (*Order, error)

	// MarkPaymentPaid flips one schedule day to paid and updates the order's
	// running total in the same transaction. A concurrent duplicate call for
	// the same day observes ErrPaymentAlreadyPaid, never a double count.
	MarkPaymentPaid(ctx context.Context, orderID, day int, method, notes string) (*Order, error)

	// CancelOrder transitions an active order to cancelled. Terminal: no
	// further payments can be recorded.
	CancelOrder(ctx context.Context, orderID int) (*Order, error)

	GetOrder(ctx context.Context, orderID int) (*Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]Order, error)
}

type orderService struct {
	pool   *pgxpool.Pool
	events EventPublisher
}

// NewOrderService constructs an OrderService over the given pool. Events are
// published after successful commits; pass a nop publisher to disable.
func NewOrderService(pool *pgxpool.Pool, events EventPublisher) OrderService {
	return &orderService{pool: pool, events: events}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// resolvedItem is a cart line with the product snapshot applied.
type resolvedItem struct {
	productID   int
	productName string
	quantity    int
	unitPrice   decimal.Decimal
	totalPrice  decimal.Decimal
}

// resolveCart looks up each product, applies the price snapshot (explicit cart
// price wins over the catalog price) and validates quantities. Archived
// products cannot be ordered.
func (s *orderService) resolveCart(ctx context.Context, q pgxQuerier, items []OrderItemInput) ([]resolvedItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}

	resolved := make([]resolvedItem, 0, len(items))
	for i, input := range items {
		if input.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("line %d: %w", i+1, ErrInvalidQuantity)
		}
		if input.UnitPrice.IsNegative() {
			return nil, decimal.Zero, fmt.Errorf("line %d: %w", i+1, ErrInvalidPrice)
		}

		var name string
		var catalogPrice decimal.Decimal
		err := q.QueryRow(ctx,
			"SELECT item_name, price FROM products WHERE id = $1 AND deleted_at IS NULL",
			input.ProductID,
		).Scan(&name, &catalogPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, decimal.Zero, fmt.Errorf("line %d: product %d: %w", i+1, input.ProductID, ErrProductNotFound)
			}
			return nil, decimal.Zero, persistErr("resolve product", err)
		}

		price := catalogPrice
		if !input.UnitPrice.IsZero() {
			price = input.UnitPrice
		}
		resolved = append(resolved, resolvedItem{
			productID:   input.ProductID,
			productName: name,
			quantity:    input.Quantity,
			unitPrice:   price,
			totalPrice:  round2(price.Mul(decimal.NewFromInt(int64(input.Quantity)))),
		})
	}

	priced := make([]OrderItemInput, len(resolved))
	for i, r := range resolved {
		priced[i] = OrderItemInput{ProductID: r.productID, Quantity: r.quantity, UnitPrice: r.unitPrice}
	}
	subtotal, err := PriceCart(priced)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return resolved, subtotal, nil
}

func (s *orderService) resolveCustomer(ctx context.Context, q pgxQuerier, customerID int) error {
	var id int
	err := q.QueryRow(ctx,
		"SELECT id FROM customers WHERE id = $1 AND deleted_at IS NULL", customerID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("customer %d: %w", customerID, ErrCustomerNotFound)
		}
		return persistErr("resolve customer", err)
	}
	return nil
}

// ── Creation ─────────────────────────────────────────────────────────────────

func (s *orderService) CreateCashOrder(ctx context.Context, customerID int, orderDate time.Time, items []OrderItemInput) (*Order, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := s.resolveCustomer(ctx, tx, customerID); err != nil {
		return nil, err
	}
	resolved, subtotal, err := s.resolveCart(ctx, tx, items)
	if err != nil {
		return nil, err
	}
	pricing := PriceCash(subtotal)

	// Cash sales settle on the spot: completed, fully collected, no schedule.
	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, order_type, order_date, status, total_cost, total_collected)
		VALUES ($1, 'cash', $2, 'completed', $3, $3)
		RETURNING id
	`, customerID, orderDate, pricing.TotalCost).Scan(&orderID)
	if err != nil {
		return nil, persistErr("insert order", err)
	}

	if err := insertOrderItems(ctx, tx, orderID, resolved); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit order creation", err)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.PublishOrderCreated(ctx, orderCreatedEvent(order))
	return order, nil
}

func (s *orderService) CreateInstallmentOrder(ctx context.Context, customerID int, orderDate time.Time, items []OrderItemInput, interestRatePercent decimal.Decimal) (*Order, error) {
	// Fail fast on the rate before touching storage.
	if interestRatePercent.IsNegative() {
		return nil, ErrInvalidRate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := s.resolveCustomer(ctx, tx, customerID); err != nil {
		return nil, err
	}
	resolved, subtotal, err := s.resolveCart(ctx, tx, items)
	if err != nil {
		return nil, err
	}
	pricing, err := PriceInstallment(subtotal, interestRatePercent)
	if err != nil {
		return nil, err
	}
	schedule := BuildSchedule(pricing.Remaining)

	// The downpayment is collected at signing, so it seeds total_collected.
	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (customer_id, order_type, order_date, status, total_cost,
		                    interest_rate, downpayment, daily_payment, total_collected)
		VALUES ($1, 'installment', $2, 'active', $3, $4, $5, $6, $5)
		RETURNING id
	`, customerID, orderDate, pricing.TotalCost,
		interestRatePercent, pricing.Downpayment, pricing.DailyPayment).Scan(&orderID)
	if err != nil {
		return nil, persistErr("insert order", err)
	}

	if err := insertOrderItems(ctx, tx, orderID, resolved); err != nil {
		return nil, err
	}

	for _, p := range schedule {
		_, err = tx.Exec(ctx, `
			INSERT INTO payments (order_id, day, amount, paid)
			VALUES ($1, $2, $3, false)
		`, orderID, p.Day, p.Amount)
		if err != nil {
			return nil, persistErr(fmt.Sprintf("insert payment day %d", p.Day), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit order creation", err)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.events.PublishOrderCreated(ctx, orderCreatedEvent(order))
	return order, nil
}

func insertOrderItems(ctx context.Context, tx pgx.Tx, orderID int, items []resolvedItem) error {
	for i, it := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, orderID, it.productID, it.productName, it.quantity, it.unitPrice, it.totalPrice)
		if err != nil {
			return persistErr(fmt.Sprintf("insert order item %d", i+1), err)
		}
	}
	return nil
}

// ── Mark paid ────────────────────────────────────────────────────────────────

func (s *orderService) MarkPaymentPaid(ctx context.Context, orderID, day int, method, notes string) (*Order, error) {
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	// Lock the order row, then load the full aggregate inside the lock so the
	// pure transition sees a consistent schedule.
	var locked int
	err = tx.QueryRow(ctx, "SELECT id FROM orders WHERE id = $1 FOR UPDATE", orderID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
		}
		return nil, persistErr("lock order", err)
	}

	order, err := fetchOrder(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}

	updated, err := order.MarkPaid(day, method, notes, now)
	if err != nil {
		return nil, err
	}

	// Conditional update backs the aggregate-level guard: even if another
	// writer slipped past the row lock, paid = false makes the second marker
	// a no-op we can detect.
	tag, err := tx.Exec(ctx, `
		UPDATE payments
		SET paid = true, date_paid = $1, payment_method = NULLIF($2, ''), notes = NULLIF($3, ''), updated_at = $1
		WHERE order_id = $4 AND day = $5 AND paid = false
	`, now, method, notes, orderID, day)
	if err != nil {
		return nil, persistErr("update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("day %d: %w", day, ErrPaymentAlreadyPaid)
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders SET total_collected = $1, status = $2, updated_at = $3 WHERE id = $4
	`, updated.TotalCollected, updated.Status, now, orderID)
	if err != nil {
		return nil, persistErr("update order totals", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit payment", err)
	}

	paidAmount := decimal.Zero
	for _, p := range updated.Payments {
		if p.Day == day {
			paidAmount = p.Amount
			break
		}
	}
	s.events.PublishPaymentRecorded(ctx, PaymentRecordedEvent{
		OrderID:        orderID,
		Day:            day,
		Amount:         paidAmount,
		PaymentMethod:  method,
		TotalCollected: updated.TotalCollected,
		RecordedAt:     now,
	})
	if updated.Status == OrderStatusCompleted {
		s.events.PublishOrderCompleted(ctx, OrderCompletedEvent{
			OrderID:     orderID,
			TotalCost:   updated.TotalCost,
			CompletedAt: now,
		})
	}
	return updated, nil
}

// ── Cancellation ─────────────────────────────────────────────────────────────

func (s *orderService) CancelOrder(ctx context.Context, orderID int) (*Order, error) {
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, persistErr("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var status OrderStatus
	err = tx.QueryRow(ctx, "SELECT status FROM orders WHERE id = $1 FOR UPDATE", orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
		}
		return nil, persistErr("lock order", err)
	}
	if status != OrderStatusActive {
		return nil, fmt.Errorf("order %d is %s: %w", orderID, status, ErrOrderClosed)
	}

	_, err = tx.Exec(ctx,
		"UPDATE orders SET status = 'cancelled', updated_at = $1 WHERE id = $2", now, orderID)
	if err != nil {
		return nil, persistErr("cancel order", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistErr("commit cancellation", err)
	}

	s.events.PublishOrderCancelled(ctx, OrderCancelledEvent{OrderID: orderID, CancelledAt: now})
	return s.GetOrder(ctx, orderID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*Order, error) {
	return fetchOrder(ctx, s.pool, orderID)
}

func fetchOrder(ctx context.Context, q pgxQuerier, orderID int) (*Order, error) {
	var o Order
	var interestRate, downpayment, dailyPayment *decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT o.id, o.customer_id, c.full_name, o.order_type, o.order_date, o.status,
		       o.total_cost, o.interest_rate, o.downpayment, o.daily_payment,
		       o.total_collected, o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, orderID).Scan(
		&o.ID, &o.CustomerID, &o.CustomerName, &o.OrderType, &o.OrderDate, &o.Status,
		&o.TotalCost, &interestRate, &downpayment, &dailyPayment,
		&o.TotalCollected, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", orderID, ErrOrderNotFound)
		}
		return nil, persistErr("fetch order", err)
	}
	if o.OrderType == OrderTypeInstallment && interestRate != nil && downpayment != nil && dailyPayment != nil {
		o.Terms = &InstallmentTerms{
			InterestRate: *interestRate,
			Downpayment:  *downpayment,
			DailyPayment: *dailyPayment,
		}
	}

	items, err := fetchOrderItems(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	if o.OrderType == OrderTypeInstallment {
		payments, err := fetchPayments(ctx, q, orderID)
		if err != nil {
			return nil, err
		}
		o.Payments = payments
	}
	return &o, nil
}

func fetchOrderItems(ctx context.Context, q pgxQuerier, orderID int) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, persistErr("query order items", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt); err != nil {
			return nil, persistErr("scan order item", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func fetchPayments(ctx context.Context, q pgxQuerier, orderID int) ([]Payment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, day, amount, paid, date_paid, payment_method, notes, created_at, updated_at
		FROM payments
		WHERE order_id = $1
		ORDER BY day
	`, orderID)
	if err != nil {
		return nil, persistErr("query payments", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Day, &p.Amount, &p.Paid,
			&p.DatePaid, &p.PaymentMethod, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, persistErr("scan payment", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *orderService) ListOrders(ctx context.Context, f OrderFilter) ([]Order, error) {
	query := `
		SELECT o.id, o.customer_id, c.full_name, o.order_type, o.order_date, o.status,
		       o.total_cost, o.interest_rate, o.downpayment, o.daily_payment,
		       o.total_collected, o.created_at, o.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE 1 = 1
	`
	var args []any
	if f.OrderType != nil {
		args = append(args, *f.OrderType)
		query += fmt.Sprintf(" AND o.order_type = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		query += fmt.Sprintf(" AND o.customer_id = $%d", len(args))
	}
	query += " ORDER BY o.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, persistErr("query orders", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		var interestRate, downpayment, dailyPayment *decimal.Decimal
		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.CustomerName, &o.OrderType, &o.OrderDate, &o.Status,
			&o.TotalCost, &interestRate, &downpayment, &dailyPayment,
			&o.TotalCollected, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, persistErr("scan order", err)
		}
		if o.OrderType == OrderTypeInstallment && interestRate != nil && downpayment != nil && dailyPayment != nil {
			o.Terms = &InstallmentTerms{
				InterestRate: *interestRate,
				Downpayment:  *downpayment,
				DailyPayment: *dailyPayment,
			}
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func orderCreatedEvent(o *Order) OrderCreatedEvent {
	items := make([]OrderItemEvent, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemEvent{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		}
	}
	return OrderCreatedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		OrderType:  o.OrderType,
		TotalCost:  o.TotalCost,
		Items:      items,
		CreatedAt:  o.CreatedAt,
	}
}
