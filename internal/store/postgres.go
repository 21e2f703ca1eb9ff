//go:build integration

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id          BIGSERIAL PRIMARY KEY,
	source_id   TEXT NOT NULL,
	source_name TEXT NOT NULL,
	name        TEXT NOT NULL,
	website     TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	country     TEXT NOT NULL DEFAULT '',
	UNIQUE (source_name, source_id)
);

CREATE TABLE IF NOT EXISTS matches (
	id               BIGSERIAL PRIMARY KEY,
	company_a_id     BIGINT NOT NULL REFERENCES companies(id),
	company_b_id     BIGINT NOT NULL REFERENCES companies(id),
	score            DOUBLE PRECISION NOT NULL,
	success_criteria TEXT NOT NULL DEFAULT '',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_matches_company_a_id ON matches(company_a_id);
CREATE INDEX IF NOT EXISTS idx_matches_company_b_id ON matches(company_b_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) UpsertCompany(ctx context.Context, c Company) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO companies (source_id, source_name, name, website, email, phone, address, postal_code, city, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_name, source_id) DO UPDATE SET
			name = EXCLUDED.name,
			website = EXCLUDED.website,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			address = EXCLUDED.address,
			postal_code = EXCLUDED.postal_code,
			city = EXCLUDED.city,
			country = EXCLUDED.country
		RETURNING id`,
		c.SourceID, c.SourceName, c.Name, c.Website, c.Email, c.Phone, c.Address, c.PostalCode, c.City, c.Country,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: upsert company %s/%s", c.SourceName, c.SourceID)
	}
	return id, nil
}

func (s *PostgresStore) GetCompany(ctx context.Context, id int64) (*Company, error) {
	var c Company
	err := s.pool.QueryRow(ctx, `
		SELECT id, source_id, source_name, name, website, email, phone, address, postal_code, city, country
		FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.SourceID, &c.SourceName, &c.Name, &c.Website, &c.Email, &c.Phone, &c.Address, &c.PostalCode, &c.City, &c.Country)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get company %d", id)
	}
	return &c, nil
}

func (s *PostgresStore) ListCompanies(ctx context.Context, limit, offset int) ([]Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, source_id, source_name, name, website, email, phone, address, postal_code, city, country
		FROM companies ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list companies")
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.SourceID, &c.SourceName, &c.Name, &c.Website, &c.Email, &c.Phone, &c.Address, &c.PostalCode, &c.City, &c.Country); err != nil {
			return nil, eris.Wrap(err, "postgres: scan company")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list companies iterate")
}

func (s *PostgresStore) InsertMatch(ctx context.Context, m Match) (int64, error) {
	var id int64
	var createdAt time.Time
	err := s.pool.QueryRow(ctx, `
		INSERT INTO matches (company_a_id, company_b_id, score, success_criteria)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		m.CompanyAID, m.CompanyBID, m.Score, strings.Join(m.SuccessCriteria, ";"),
	).Scan(&id, &createdAt)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: insert match")
	}
	return id, nil
}

func (s *PostgresStore) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var m Match
	var criteria string
	err := s.pool.QueryRow(ctx, `
		SELECT id, company_a_id, company_b_id, score, success_criteria, created_at
		FROM matches WHERE id = $1`, id,
	).Scan(&m.ID, &m.CompanyAID, &m.CompanyBID, &m.Score, &criteria, &m.CreatedAt)
	if err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get match %d", id)
	}
	m.SuccessCriteria = splitCriteria(criteria)
	return &m, nil
}

func (s *PostgresStore) ListMatches(ctx context.Context, filter MatchFilter) ([]Match, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `SELECT id, company_a_id, company_b_id, score, success_criteria, created_at FROM matches WHERE true`
	args := []any{}
	argIdx := 1

	if filter.CompanyID != nil {
		query += " AND (company_a_id = $1 OR company_b_id = $1)"
		args = append(args, *filter.CompanyID)
		argIdx++
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT $%d", argIdx)
	args = append(args, limit)
	argIdx++
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list matches")
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var criteria string
		if err := rows.Scan(&m.ID, &m.CompanyAID, &m.CompanyBID, &m.Score, &criteria, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan match")
		}
		m.SuccessCriteria = splitCriteria(criteria)
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list matches iterate")
}

func (s *PostgresStore) DeleteMatch(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete match %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("match not found: %d", id)
	}
	return nil
}

func splitCriteria(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
