package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skyfalke/backoffice/internal/platform/db"
)

// Repository defines data access for invoices.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	List(ctx context.Context, limit, offset int) ([]Invoice, int, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	InsertItems(ctx context.Context, invoiceID int64, items []LineItem) error
	SetStatus(ctx context.Context, id int64, status Status, paidAt *time.Time) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const invoiceColumns = `
	id, invoice_number, quotation_id, client_name, client_email, subtotal,
	tax_rate, tax_amount, discount, total, currency, status, issue_date,
	due_date, paid_at, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.QuotationID, &inv.ClientName, &inv.ClientEmail,
		&inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Discount, &inv.Total,
		&inv.Currency, &inv.Status, &inv.IssueDate, &inv.DueDate, &inv.PaidAt,
		&inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx,
		"SELECT"+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

func (r *repository) loadItems(ctx context.Context, invoiceID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT description, quantity, unit_price, total
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []LineItem
	for rows.Next() {
		var item LineItem
		if err := rows.Scan(&item.Description, &item.Quantity, &item.UnitPrice, &item.Total); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Invoice, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM invoices").Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, "SELECT"+invoiceColumns+`
		FROM invoices
		ORDER BY issue_date DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range list {
		items, err := r.loadItems(ctx, list[i].ID)
		if err != nil {
			return nil, 0, err
		}
		list[i].Items = items
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (
			invoice_number, quotation_id, client_name, client_email, subtotal,
			tax_rate, tax_amount, discount, total, currency, status, issue_date,
			due_date, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id`,
		inv.InvoiceNumber, inv.QuotationID, inv.ClientName, inv.ClientEmail, inv.Subtotal,
		inv.TaxRate, inv.TaxAmount, inv.Discount, inv.Total, inv.Currency, inv.Status,
		inv.IssueDate, inv.DueDate, inv.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) InsertItems(ctx context.Context, invoiceID int64, items []LineItem) error {
	for i, item := range items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, position, description, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			invoiceID, i+1, item.Description, item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func (r *repository) SetStatus(ctx context.Context, id int64, status Status, paidAt *time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE invoices SET status = $1, paid_at = $2, updated_at = NOW()
		WHERE id = $3`, status, paidAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) GenerateNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (doc_type, period, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq`, "INV", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%s-%04d", date.Format("0601"), seq), nil
}
