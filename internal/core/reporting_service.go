package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// DashboardSummary is the at-a-glance view of the whole book.
type DashboardSummary struct {
	ProductCount          int             `json:"product_count"`
	CustomerCount         int             `json:"customer_count"`
	ActiveInstallments    int             `json:"active_installments"`
	CompletedOrders       int             `json:"completed_orders"`
	CancelledOrders       int             `json:"cancelled_orders"`
	TotalSales            decimal.Decimal `json:"total_sales"`            // sum of total_cost, cancelled excluded
	TotalCollected        decimal.Decimal `json:"total_collected"`        // cash + downpayments + paid installments
	OutstandingReceivable decimal.Decimal `json:"outstanding_receivable"` // active orders: total_cost − total_collected
}

// CollectionLine is one installment collected on a given date.
type CollectionLine struct {
	OrderID       int             `json:"order_id"`
	CustomerName  string          `json:"customer_name"`
	Day           int             `json:"day"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// DailyCollections lists everything collected on one calendar date.
type DailyCollections struct {
	Date  string           `json:"date"` // YYYY-MM-DD
	Lines []CollectionLine `json:"lines"`
	Total decimal.Decimal  `json:"total"`
}

// ReceivableLine is the outstanding position of one active installment order.
type ReceivableLine struct {
	OrderID          int             `json:"order_id"`
	CustomerName     string          `json:"customer_name"`
	OrderDate        time.Time       `json:"order_date"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaidDays         int             `json:"paid_days"`
	ProgressPercent  decimal.Decimal `json:"progress_percent"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only queries over the order book. Nothing
// here mutates state; all figures derive from the same columns the order
// lifecycle maintains.
type ReportingService interface {
	GetDashboardSummary(ctx context.Context) (*DashboardSummary, error)

	// GetDailyCollections lists installments whose date_paid falls on the
	// given date (YYYY-MM-DD).
	GetDailyCollections(ctx context.Context, date string) (*DailyCollections, error)

	// GetOutstandingReceivables lists every active installment order with its
	// remaining balance, ordered by remaining balance descending.
	GetOutstandingReceivables(ctx context.Context) ([]ReceivableLine, error)
}

// ── Implementation ────────────────────────────────────────────────────────────

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	var sum DashboardSummary

	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM products  WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM customers WHERE deleted_at IS NULL),
			(SELECT COUNT(*) FROM orders WHERE order_type = 'installment' AND status = 'active'),
			(SELECT COUNT(*) FROM orders WHERE status = 'completed'),
			(SELECT COUNT(*) FROM orders WHERE status = 'cancelled'),
			COALESCE((SELECT SUM(total_cost)      FROM orders WHERE status <> 'cancelled'), 0),
			COALESCE((SELECT SUM(total_collected) FROM orders WHERE status <> 'cancelled'), 0),
			COALESCE((SELECT SUM(total_cost - total_collected) FROM orders WHERE status = 'active'), 0)
	`).Scan(
		&sum.ProductCount, &sum.CustomerCount,
		&sum.ActiveInstallments, &sum.CompletedOrders, &sum.CancelledOrders,
		&sum.TotalSales, &sum.TotalCollected, &sum.OutstandingReceivable,
	)
	if err != nil {
		return nil, persistErr("dashboard summary", err)
	}
	return &sum, nil
}

func (s *reportingService) GetDailyCollections(ctx context.Context, date string) (*DailyCollections, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.order_id, c.full_name, p.day, p.amount,
		       COALESCE(p.payment_method, ''), COALESCE(p.notes, '')
		FROM payments p
		JOIN orders o    ON o.id = p.order_id
		JOIN customers c ON c.id = o.customer_id
		WHERE p.paid = true AND p.date_paid::date = $1::date
		ORDER BY p.order_id, p.day
	`, date)
	if err != nil {
		return nil, persistErr("query daily collections", err)
	}
	defer rows.Close()

	result := &DailyCollections{Date: date, Total: decimal.Zero}
	for rows.Next() {
		var line CollectionLine
		if err := rows.Scan(&line.OrderID, &line.CustomerName, &line.Day,
			&line.Amount, &line.PaymentMethod, &line.Notes); err != nil {
			return nil, persistErr("scan collection line", err)
		}
		result.Lines = append(result.Lines, line)
		result.Total = result.Total.Add(line.Amount)
	}
	return result, rows.Err()
}

func (s *reportingService) GetOutstandingReceivables(ctx context.Context) ([]ReceivableLine, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.id, c.full_name, o.order_date, o.total_cost, o.total_collected,
		       o.total_cost - o.total_collected,
		       (SELECT COUNT(*) FROM payments p WHERE p.order_id = o.id AND p.paid = true)
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.order_type = 'installment' AND o.status = 'active'
		ORDER BY o.total_cost - o.total_collected DESC, o.id
	`)
	if err != nil {
		return nil, persistErr("query receivables", err)
	}
	defer rows.Close()

	hundred := decimal.NewFromInt(100)
	var lines []ReceivableLine
	for rows.Next() {
		var l ReceivableLine
		if err := rows.Scan(&l.OrderID, &l.CustomerName, &l.OrderDate,
			&l.TotalCost, &l.TotalCollected, &l.RemainingBalance, &l.PaidDays); err != nil {
			return nil, persistErr("scan receivable line", err)
		}
		if !l.TotalCost.IsZero() {
			l.ProgressPercent = l.TotalCollected.Div(l.TotalCost).Mul(hundred).Round(2)
			if l.ProgressPercent.GreaterThan(hundred) {
				l.ProgressPercent = hundred
			}
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
