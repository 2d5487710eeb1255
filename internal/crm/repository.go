package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access for contacts.
type Repository interface {
	Get(ctx context.Context, id int64) (*Contact, error)
	List(ctx context.Context, search string, stage *Stage, limit, offset int) ([]Contact, int, error)
	Create(ctx context.Context, c Contact) (int64, error)
	Update(ctx context.Context, id int64, c Contact) error
	SetStage(ctx context.Context, id int64, stage Stage) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const contactColumns = `
	id, name, email, phone, company, stage, notes, created_by, created_at, updated_at`

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Stage,
		&c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Contact, error) {
	return scanContact(r.pool.QueryRow(ctx,
		"SELECT"+contactColumns+" FROM contacts WHERE id = $1", id))
}

func (r *repository) List(ctx context.Context, search string, stage *Stage, limit, offset int) ([]Contact, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+search+"%")
		argPos++
	}
	if stage != nil {
		conditions = append(conditions, fmt.Sprintf("stage = $%d", argPos))
		args = append(args, *stage)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM contacts %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT"+contactColumns+`
		FROM contacts
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, whereClause, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, *c)
	}
	return contacts, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (name, email, phone, company, stage, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		c.Name, c.Email, c.Phone, c.Company, c.Stage, c.Notes, c.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, c Contact) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET
			name = $1, email = $2, phone = $3, company = $4, notes = $5, updated_at = NOW()
		WHERE id = $6`,
		c.Name, c.Email, c.Phone, c.Company, c.Notes, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetStage(ctx context.Context, id int64, stage Stage) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE contacts SET stage = $1, updated_at = NOW() WHERE id = $2", stage, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM contacts WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
