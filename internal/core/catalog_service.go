package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CatalogService manages product and customer master data. Records are never
// hard-deleted: Archive* stamps deleted_at, which hides the record from new
// orders while historical order snapshots stay untouched.
type CatalogService interface {
	CreateProduct(ctx context.Context, itemCode, itemName string, price decimal.Decimal, stock *int) (*Product, error)
	// UpdateProduct edits the live catalog row. Existing order items keep the
	// name and price snapshotted at order time.
	UpdateProduct(ctx context.Context, id int, itemName string, price decimal.Decimal, stock *int) (*Product, error)
	ArchiveProduct(ctx context.Context, id int) error
	GetProduct(ctx context.Context, id int) (*Product, error)
	ListProducts(ctx context.Context, includeArchived bool) ([]Product, error)

	CreateCustomer(ctx context.Context, fullName, address, contactNumber string) (*Customer, error)
	UpdateCustomer(ctx context.Context, id int, fullName, address, contactNumber string) (*Customer, error)
	ArchiveCustomer(ctx context.Context, id int) error
	GetCustomer(ctx context.Context, id int) (*Customer, error)
	ListCustomers(ctx context.Context, includeArchived bool) ([]Customer, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

// ── Products ─────────────────────────────────────────────────────────────────

const productColumns = "id, item_code, item_name, price, stock, created_at, updated_at, deleted_at"

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ItemCode, &p.ItemName, &p.Price, &p.Stock,
		&p.CreatedAt, &p.UpdatedAt, &p.ArchivedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, itemCode, itemName string, price decimal.Decimal, stock *int) (*Product, error) {
	itemCode = strings.TrimSpace(itemCode)
	itemName = strings.TrimSpace(itemName)
	if itemCode == "" || itemName == "" {
		return nil, fmt.Errorf("item code and name are required")
	}
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		INSERT INTO products (item_code, item_name, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productColumns, itemCode, itemName, price, stock))
	if err != nil {
		return nil, persistErr("insert product", err)
	}
	return p, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int, itemName string, price decimal.Decimal, stock *int) (*Product, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	p, err := scanProduct(s.pool.QueryRow(ctx, `
		UPDATE products
		SET item_name = $1, price = $2, stock = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING `+productColumns, itemName, price, stock, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return nil, persistErr("update product", err)
	}
	return p, nil
}

func (s *catalogService) ArchiveProduct(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE products SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return persistErr("archive product", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, ErrProductNotFound)
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, id int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return nil, persistErr("fetch product", err)
	}
	return p, nil
}

func (s *catalogService) ListProducts(ctx context.Context, includeArchived bool) ([]Product, error) {
	query := "SELECT " + productColumns + " FROM products"
	if !includeArchived {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY item_code"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, persistErr("query products", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.ItemCode, &p.ItemName, &p.Price, &p.Stock,
			&p.CreatedAt, &p.UpdatedAt, &p.ArchivedAt); err != nil {
			return nil, persistErr("scan product", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// ── Customers ────────────────────────────────────────────────────────────────

const customerColumns = "id, full_name, address, contact_number, created_at, updated_at, deleted_at"

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Address, &c.ContactNumber,
		&c.CreatedAt, &c.UpdatedAt, &c.ArchivedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *catalogService) CreateCustomer(ctx context.Context, fullName, address, contactNumber string) (*Customer, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("customer full name is required")
	}

	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		INSERT INTO customers (full_name, address, contact_number)
		VALUES ($1, $2, $3)
		RETURNING `+customerColumns, fullName, address, contactNumber))
	if err != nil {
		return nil, persistErr("insert customer", err)
	}
	return c, nil
}

func (s *catalogService) UpdateCustomer(ctx context.Context, id int, fullName, address, contactNumber string) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx, `
		UPDATE customers
		SET full_name = $1, address = $2, contact_number = $3, updated_at = now()
		WHERE id = $4 AND deleted_at IS NULL
		RETURNING `+customerColumns, fullName, address, contactNumber, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrCustomerNotFound)
		}
		return nil, persistErr("update customer", err)
	}
	return c, nil
}

func (s *catalogService) ArchiveCustomer(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE customers SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return persistErr("archive customer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("customer %d: %w", id, ErrCustomerNotFound)
	}
	return nil
}

func (s *catalogService) GetCustomer(ctx context.Context, id int) (*Customer, error) {
	c, err := scanCustomer(s.pool.QueryRow(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer %d: %w", id, ErrCustomerNotFound)
		}
		return nil, persistErr("fetch customer", err)
	}
	return c, nil
}

func (s *catalogService) ListCustomers(ctx context.Context, includeArchived bool) ([]Customer, error) {
	query := "SELECT " + customerColumns + " FROM customers"
	if !includeArchived {
		query += " WHERE deleted_at IS NULL"
	}
	query += " ORDER BY full_name"

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, persistErr("query customers", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.Address, &c.ContactNumber,
			&c.CreatedAt, &c.UpdatedAt, &c.ArchivedAt); err != nil {
			return nil, persistErr("scan customer", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}
