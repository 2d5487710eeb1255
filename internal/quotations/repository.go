package quotations

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

// ErrNotFound indicates a missing quotation record.
var ErrNotFound = errors.New("quotation not found")

// Repository defines data access for quotations.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Update(ctx context.Context, id int64, q Quotation) error
	InsertItems(ctx context.Context, quotationID int64, items []LineItem) error
	DeleteItems(ctx context.Context, quotationID int64) error
	UpdateStatus(ctx context.Context, id int64, status Status) error
	MarkConverted(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	GenerateNumber(ctx context.Context, date time.Time) (string, error)
	Stats(ctx context.Context) (StatsOverview, error)
	ListExpiryDue(ctx context.Context, asOf time.Time) ([]int64, error)
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

const quotationColumns = `
	id, quotation_number, client_name, client_email, client_phone, client_company,
	client_address, subtotal, tax_rate, tax_amount, discount, total, currency,
	issue_date, expiry_date, status, converted_to_invoice, notes, terms,
	created_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.QuotationNumber, &q.Client.Name, &q.Client.Email, &q.Client.Phone,
		&q.Client.Company, &q.Client.Address, &q.Subtotal, &q.TaxRate, &q.TaxAmount,
		&q.Discount, &q.Total, &q.Currency, &q.IssueDate, &q.ExpiryDate, &q.Status,
		&q.ConvertedToInvoice, &q.Notes, &q.Terms, &q.CreatedBy, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx,
		"SELECT"+quotationColumns+" FROM quotations WHERE id = $1", id))
	if err != nil {
		return nil, err
	}
	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Items = items
	return q, nil
}

func (r *repository) loadItems(ctx context.Context, quotationID int64) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT description, quantity, unit_price, total
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY position`, quotationID)
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

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(quotation_number ILIKE $%d OR client_name ILIKE $%d OR client_email ILIKE $%d)",
			argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotations %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT"+quotationColumns+`
		FROM quotations
		%s
		ORDER BY issue_date DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		quotations = append(quotations, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range quotations {
		items, err := r.loadItems(ctx, quotations[i].ID)
		if err != nil {
			return nil, 0, err
		}
		quotations[i].Items = items
	}

	return quotations, total, nil
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (
			quotation_number, client_name, client_email, client_phone, client_company,
			client_address, subtotal, tax_rate, tax_amount, discount, total, currency,
			issue_date, expiry_date, status, converted_to_invoice, notes, terms, created_by
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		RETURNING id`,
		q.QuotationNumber, q.Client.Name, q.Client.Email, q.Client.Phone, q.Client.Company,
		q.Client.Address, q.Subtotal, q.TaxRate, q.TaxAmount, q.Discount, q.Total, q.Currency,
		q.IssueDate, q.ExpiryDate, q.Status, q.ConvertedToInvoice, q.Notes, q.Terms, q.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, q Quotation) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET
			client_name = $1, client_email = $2, client_phone = $3, client_company = $4,
			client_address = $5, subtotal = $6, tax_rate = $7, tax_amount = $8,
			discount = $9, total = $10, currency = $11, issue_date = $12,
			expiry_date = $13, notes = $14, terms = $15, updated_at = NOW()
		WHERE id = $16`,
		q.Client.Name, q.Client.Email, q.Client.Phone, q.Client.Company, q.Client.Address,
		q.Subtotal, q.TaxRate, q.TaxAmount, q.Discount, q.Total, q.Currency,
		q.IssueDate, q.ExpiryDate, q.Notes, q.Terms, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) InsertItems(ctx context.Context, quotationID int64, items []LineItem) error {
	for i, item := range items {
		_, err := r.db.Exec(ctx, `
			INSERT INTO quotation_items (quotation_id, position, description, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			quotationID, i+1, item.Description, item.Quantity, item.UnitPrice, item.Total)
		if err != nil {
			return fmt.Errorf("insert quotation item: %w", err)
		}
	}
	return nil
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM quotation_items WHERE quotation_id = $1", quotationID)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE quotations SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) MarkConverted(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET converted_to_invoice = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT converted_to_invoice`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyConverted
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM quotations WHERE id = $1", id)
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
		RETURNING seq`, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}

func (r *repository) Stats(ctx context.Context) (StatsOverview, error) {
	var stats StatsOverview
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM quotations
		GROUP BY status`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		var value float64
		if err := rows.Scan(&status, &count, &value); err != nil {
			return stats, err
		}
		stats.Total += count
		stats.TotalValue += value
		switch status {
		case StatusDraft:
			stats.Draft = count
		case StatusSent:
			stats.Sent = count
		case StatusAccepted:
			stats.Accepted = count
		case StatusRejected:
			stats.Rejected = count
		case StatusExpired:
			stats.Expired = count
		}
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	err = r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM quotations WHERE converted_to_invoice").Scan(&stats.Converted)
	return stats, err
}

func (r *repository) ListExpiryDue(ctx context.Context, asOf time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id FROM quotations WHERE status = $1 AND expiry_date < $2", StatusSent, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
