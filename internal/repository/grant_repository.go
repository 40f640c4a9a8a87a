package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grant-notifier/internal/domain"
)

// GrantRepository defines persistence access for the grant corpus.
type GrantRepository interface {
	Upsert(ctx context.Context, grant *domain.Grant) error
	ListEmbedded(ctx context.Context) ([]*domain.Grant, error)
	Count(ctx context.Context) (int64, error)
}

type grantRepository struct {
	pool *pgxpool.Pool
}

// NewGrantRepository returns a Postgres-backed implementation.
func NewGrantRepository(pool *pgxpool.Pool) GrantRepository {
	return &grantRepository{pool: pool}
}

func (r *grantRepository) Upsert(ctx context.Context, grant *domain.Grant) error {
	const query = `
        INSERT INTO grants (
            bdns_code, title, purpose, legal_basis, budget, issuing_body,
            received_at, application_open, application_close, url, embedding
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (bdns_code) DO UPDATE SET
            title=EXCLUDED.title,
            purpose=EXCLUDED.purpose,
            legal_basis=EXCLUDED.legal_basis,
            budget=EXCLUDED.budget,
            issuing_body=EXCLUDED.issuing_body,
            received_at=EXCLUDED.received_at,
            application_open=EXCLUDED.application_open,
            application_close=EXCLUDED.application_close,
            url=EXCLUDED.url,
            embedding=EXCLUDED.embedding,
            updated_at=NOW()
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		grant.BDNSCode,
		grant.Title,
		grant.Purpose,
		grant.LegalBasis,
		grant.Budget,
		grant.IssuingBody,
		grant.ReceivedAt,
		grant.ApplicationOpen,
		grant.ApplicationClose,
		grant.URL,
		grant.Embedding,
	).Scan(&grant.ID, &grant.CreatedAt, &grant.UpdatedAt)
}

func (r *grantRepository) ListEmbedded(ctx context.Context) ([]*domain.Grant, error) {
	const query = `
        SELECT id, bdns_code, title, purpose, legal_basis, budget, issuing_body,
               received_at, application_open, application_close, url, embedding,
               created_at, updated_at
        FROM grants
        WHERE embedding IS NOT NULL
        ORDER BY bdns_code DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []*domain.Grant
	for rows.Next() {
		var g domain.Grant
		if err := rows.Scan(
			&g.ID,
			&g.BDNSCode,
			&g.Title,
			&g.Purpose,
			&g.LegalBasis,
			&g.Budget,
			&g.IssuingBody,
			&g.ReceivedAt,
			&g.ApplicationOpen,
			&g.ApplicationClose,
			&g.URL,
			&g.Embedding,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		grants = append(grants, &g)
	}
	return grants, rows.Err()
}

func (r *grantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM grants`).Scan(&count)
	return count, err
}
