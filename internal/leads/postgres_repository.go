package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corstar/site-intake/internal/inquiry"
)

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores submissions in the relational database.
type PostgresRepository struct {
	db pgxQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithQuerier(db pgxQuerier) *PostgresRepository {
	if db == nil {
		panic("leads: querier required")
	}
	return &PostgresRepository{db: db}
}

const insertInquirySQL = `
	INSERT INTO inquiries (id, full_name, email, phone, company, location, service, timeline, budget_range, details, source, intent)
	VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, $12)
	RETURNING created_at
`

// The leads table predates intents; its free-text column is "message".
const insertLeadSQL = `
	INSERT INTO leads (id, full_name, email, phone, company, service, message, source)
	VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)
	RETURNING created_at
`

// Insert appends one row. There is no uniqueness constraint beyond the id.
func (r *PostgresRepository) Insert(ctx context.Context, table string, sub *inquiry.Submission) (*Record, error) {
	id := uuid.New()
	var row pgx.Row
	switch table {
	case inquiry.TableInquiries:
		row = r.db.QueryRow(ctx, insertInquirySQL,
			id,
			sub.FullName,
			sub.Email,
			sub.Phone,
			sub.Company,
			sub.Location,
			sub.Service,
			sub.Timeline,
			sub.BudgetRange,
			sub.Details,
			sub.Source,
			sub.Intent,
		)
	case inquiry.TableLeads:
		row = r.db.QueryRow(ctx, insertLeadSQL,
			id,
			sub.FullName,
			sub.Email,
			sub.Phone,
			sub.Company,
			sub.Service,
			sub.Details,
			sub.Source,
		)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	var createdAt time.Time
	if err := row.Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert into %s failed: %w", table, err)
	}
	return recordFrom(id.String(), sub, createdAt), nil
}

const selectInquiriesSQL = `
	SELECT id, full_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(company, ''),
		COALESCE(location, ''), COALESCE(service, ''), COALESCE(timeline, ''),
		COALESCE(budget_range, ''), COALESCE(details, ''), source, intent, created_at
	FROM inquiries
	WHERE ($1 = '' OR intent = $1)
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3
`

const countInquiriesSQL = `SELECT COUNT(*) FROM inquiries WHERE ($1 = '' OR intent = $1)`

const selectLeadsSQL = `
	SELECT id, full_name, email, COALESCE(phone, ''), COALESCE(company, ''),
		'', COALESCE(service, ''), '', '', COALESCE(message, ''), source, 'contact', created_at
	FROM leads
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2
`

const countLeadsSQL = `SELECT COUNT(*) FROM leads`

// List returns a page of rows newest first along with the total count.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*Record, int, error) {
	table := filter.table()
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var (
		total     int
		countRow  pgx.Row
		rows      pgx.Rows
		err       error
		queryArgs []any
	)
	switch table {
	case inquiry.TableInquiries:
		countRow = r.db.QueryRow(ctx, countInquiriesSQL, string(filter.Intent))
		queryArgs = []any{string(filter.Intent), limit, filter.Offset}
	case inquiry.TableLeads:
		countRow = r.db.QueryRow(ctx, countLeadsSQL)
		queryArgs = []any{limit, filter.Offset}
	default:
		return nil, 0, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if err := countRow.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("leads: count %s failed: %w", table, err)
	}

	if table == inquiry.TableInquiries {
		rows, err = r.db.Query(ctx, selectInquiriesSQL, queryArgs...)
	} else {
		rows, err = r.db.Query(ctx, selectLeadsSQL, queryArgs...)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("leads: list %s failed: %w", table, err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID,
			&rec.FullName,
			&rec.Email,
			&rec.Phone,
			&rec.Company,
			&rec.Location,
			&rec.Service,
			&rec.Timeline,
			&rec.BudgetRange,
			&rec.Details,
			&rec.Source,
			&rec.Intent,
			&rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("leads: scan %s row: %w", table, err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("leads: iterate %s rows: %w", table, err)
	}
	return records, total, nil
}
