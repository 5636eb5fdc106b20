package core_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"storeledger/internal/core"
	"storeledger/internal/events"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// setupTestDB connects to the dedicated test database, wipes the tables and
// seeds two products and two customers. Run cmd/migrate against
// TEST_DATABASE_URL once before running these tests.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE payments, order_items, orders, customers, products RESTART IDENTITY CASCADE;

		INSERT INTO products (item_code, item_name, price, stock) VALUES
		('P001', 'Rice Cooker',   500.00, 25),
		('P002', 'Electric Fan',  250.00, 10),
		('P003', 'Stock Pot',      75.50, NULL);

		INSERT INTO customers (full_name, address, contact_number) VALUES
		('Maria Santos', 'Quezon City', '+63-917-000-0001'),
		('Jose Ramos',   'Cebu City',   '+63-917-000-0002');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func newTestOrderService(pool *pgxpool.Pool) core.OrderService {
	return core.NewOrderService(pool, events.NopPublisher{})
}

func TestOrderService_InstallmentLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	ctx := context.Background()

	// 2 × Rice Cooker @ 500 at 5% interest
	order, err := svc.CreateInstallmentOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 2}},
		decimal.NewFromInt(5),
	)
	if err != nil {
		t.Fatalf("CreateInstallmentOrder failed: %v", err)
	}

	if order.Status != core.OrderStatusActive {
		t.Errorf("expected active, got %s", order.Status)
	}
	if !order.TotalCost.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("expected total cost 1050, got %s", order.TotalCost)
	}
	if order.Terms == nil {
		t.Fatal("installment order missing terms")
	}
	if !order.Terms.Downpayment.Equal(decimal.NewFromInt(20)) {
		t.Errorf("expected downpayment 20, got %s", order.Terms.Downpayment)
	}
	if !order.TotalCollected.Equal(decimal.NewFromInt(20)) {
		t.Errorf("downpayment should seed total collected, got %s", order.TotalCollected)
	}
	if len(order.Payments) != core.ScheduleDays {
		t.Fatalf("expected %d payment rows, got %d", core.ScheduleDays, len(order.Payments))
	}
	scheduleSum := decimal.Zero
	for _, p := range order.Payments {
		scheduleSum = scheduleSum.Add(p.Amount)
	}
	if want := decimal.NewFromInt(1030); !scheduleSum.Equal(want) {
		t.Errorf("expected schedule sum %s, got %s", want, scheduleSum)
	}

	// Mark day 1 paid
	order, err = svc.MarkPaymentPaid(ctx, order.ID, 1, "Cash", "first collection")
	if err != nil {
		t.Fatalf("MarkPaymentPaid failed: %v", err)
	}
	if want := decimal.RequireFromString("40.60"); !order.TotalCollected.Equal(want) {
		t.Errorf("expected total collected %s, got %s", want, order.TotalCollected)
	}
	if order.Status != core.OrderStatusActive {
		t.Errorf("expected still active, got %s", order.Status)
	}

	// Marking the same day again must be rejected, with no double counting
	_, err = svc.MarkPaymentPaid(ctx, order.ID, 1, "Cash", "")
	if !errors.Is(err, core.ErrPaymentAlreadyPaid) {
		t.Fatalf("expected ErrPaymentAlreadyPaid, got %v", err)
	}
	order, err = svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if want := decimal.RequireFromString("40.60"); !order.TotalCollected.Equal(want) {
		t.Errorf("duplicate mark double-counted: %s", order.TotalCollected)
	}

	// Pay out the remaining days
	for day := 2; day <= core.ScheduleDays; day++ {
		order, err = svc.MarkPaymentPaid(ctx, order.ID, day, "Cash", "")
		if err != nil {
			t.Fatalf("day %d: MarkPaymentPaid failed: %v", day, err)
		}
	}
	if order.Status != core.OrderStatusCompleted {
		t.Errorf("expected completed, got %s", order.Status)
	}
	if !order.TotalCollected.Equal(order.TotalCost) {
		t.Errorf("expected collected %s == cost %s", order.TotalCollected, order.TotalCost)
	}

	// Completed is terminal
	_, err = svc.MarkPaymentPaid(ctx, order.ID, 1, "Cash", "")
	if !errors.Is(err, core.ErrOrderClosed) {
		t.Errorf("expected ErrOrderClosed on completed order, got %v", err)
	}
}

func TestOrderService_CashOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	ctx := context.Background()

	order, err := svc.CreateCashOrder(ctx, 2, time.Now(),
		[]core.OrderItemInput{{ProductID: 2, Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateCashOrder failed: %v", err)
	}

	if order.Status != core.OrderStatusCompleted {
		t.Errorf("cash order must complete immediately, got %s", order.Status)
	}
	if !order.TotalCost.Equal(decimal.NewFromInt(250)) {
		t.Errorf("expected total 250, got %s", order.TotalCost)
	}
	if !order.RemainingBalance().IsZero() {
		t.Errorf("cash order remaining balance must be 0, got %s", order.RemainingBalance())
	}
	if order.Terms != nil {
		t.Error("cash order must not carry installment terms")
	}
	if len(order.Payments) != 0 {
		t.Errorf("cash order must have no payment rows, got %d", len(order.Payments))
	}

	_, err = svc.MarkPaymentPaid(ctx, order.ID, 1, "Cash", "")
	if !errors.Is(err, core.ErrPaymentNotFound) {
		t.Errorf("expected ErrPaymentNotFound for cash order, got %v", err)
	}
}

func TestOrderService_CancelGuards(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	ctx := context.Background()

	order, err := svc.CreateInstallmentOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 3, Quantity: 4}},
		decimal.NewFromInt(10),
	)
	if err != nil {
		t.Fatalf("CreateInstallmentOrder failed: %v", err)
	}

	order, err = svc.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if order.Status != core.OrderStatusCancelled {
		t.Errorf("expected cancelled, got %s", order.Status)
	}

	// No payment can be recorded against a cancelled order, any day
	for _, day := range []int{1, 25, 50} {
		if _, err := svc.MarkPaymentPaid(ctx, order.ID, day, "Cash", ""); !errors.Is(err, core.ErrOrderClosed) {
			t.Errorf("day %d: expected ErrOrderClosed, got %v", day, err)
		}
	}

	// Cancelled is terminal for cancellation too
	if _, err := svc.CancelOrder(ctx, order.ID); !errors.Is(err, core.ErrOrderClosed) {
		t.Errorf("expected ErrOrderClosed on second cancel, got %v", err)
	}
}

func TestOrderService_Validation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	ctx := context.Background()

	_, err := svc.CreateInstallmentOrder(ctx, 1, time.Now(), nil, decimal.NewFromInt(5))
	if !errors.Is(err, core.ErrInvalidCart) {
		t.Errorf("empty cart: expected ErrInvalidCart, got %v", err)
	}

	_, err = svc.CreateInstallmentOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 1}}, decimal.NewFromInt(-5))
	if !errors.Is(err, core.ErrInvalidRate) {
		t.Errorf("negative rate: expected ErrInvalidRate, got %v", err)
	}

	_, err = svc.CreateCashOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 999, Quantity: 1}})
	if !errors.Is(err, core.ErrProductNotFound) {
		t.Errorf("unknown product: expected ErrProductNotFound, got %v", err)
	}

	_, err = svc.CreateCashOrder(ctx, 999, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 1}})
	if !errors.Is(err, core.ErrCustomerNotFound) {
		t.Errorf("unknown customer: expected ErrCustomerNotFound, got %v", err)
	}

	_, err = svc.GetOrder(ctx, 12345)
	if !errors.Is(err, core.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}

	// Nothing was persisted by any of the failed creations
	var n int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders").Scan(&n); err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if n != 0 {
		t.Errorf("failed creations left %d order rows behind", n)
	}
}

func TestOrderService_MarkPaid_DayOutOfRange(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	ctx := context.Background()

	order, err := svc.CreateInstallmentOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 1}}, decimal.NewFromInt(5))
	if err != nil {
		t.Fatalf("CreateInstallmentOrder failed: %v", err)
	}

	if _, err := svc.MarkPaymentPaid(ctx, order.ID, 51, "Cash", ""); !errors.Is(err, core.ErrPaymentNotFound) {
		t.Errorf("day 51: expected ErrPaymentNotFound, got %v", err)
	}
	if _, err := svc.MarkPaymentPaid(ctx, order.ID, 0, "Cash", ""); !errors.Is(err, core.ErrPaymentNotFound) {
		t.Errorf("day 0: expected ErrPaymentNotFound, got %v", err)
	}
}

func TestOrderService_SnapshotIsolation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	catalog := core.NewCatalogService(pool)
	ctx := context.Background()

	order, err := svc.CreateCashOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateCashOrder failed: %v", err)
	}
	if !order.Items[0].UnitPrice.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected snapshot price 500, got %s", order.Items[0].UnitPrice)
	}

	// Reprice and rename the product, then archive it entirely.
	if _, err := catalog.UpdateProduct(ctx, 1, "Rice Cooker Deluxe", decimal.NewFromInt(999), nil); err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if err := catalog.ArchiveProduct(ctx, 1); err != nil {
		t.Fatalf("ArchiveProduct failed: %v", err)
	}

	order, err = svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.Items[0].ProductName != "Rice Cooker" {
		t.Errorf("snapshot name changed: %s", order.Items[0].ProductName)
	}
	if !order.Items[0].UnitPrice.Equal(decimal.NewFromInt(500)) {
		t.Errorf("snapshot price changed: %s", order.Items[0].UnitPrice)
	}

	// Archived products cannot be ordered again
	_, err = svc.CreateCashOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 1}})
	if !errors.Is(err, core.ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound for archived product, got %v", err)
	}
}

func TestOrderService_ExplicitCartPriceWins(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	svc := newTestOrderService(pool)
	ctx := context.Background()

	// Haggled price overrides the catalog price, and the snapshot keeps it.
	order, err := svc.CreateCashOrder(ctx, 1, time.Now(),
		[]core.OrderItemInput{{ProductID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(450)}})
	if err != nil {
		t.Fatalf("CreateCashOrder failed: %v", err)
	}
	if !order.Items[0].UnitPrice.Equal(decimal.NewFromInt(450)) {
		t.Errorf("expected cart price 450, got %s", order.Items[0].UnitPrice)
	}
	if !order.TotalCost.Equal(decimal.NewFromInt(900)) {
		t.Errorf("expected total 900, got %s", order.TotalCost)
	}
}
