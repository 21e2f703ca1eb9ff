package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // Register the pure-Go SQLite driver.
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	// Embed pragmas in DSN so every pooled connection gets them.
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	dsn += "_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	db.SetMaxOpenConns(10)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "sqlite: ping")
	}

	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS companies (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id   TEXT NOT NULL,
	source_name TEXT NOT NULL,
	name        TEXT NOT NULL,
	website     TEXT NOT NULL DEFAULT '',
	email       TEXT NOT NULL DEFAULT '',
	phone       TEXT NOT NULL DEFAULT '',
	address     TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL DEFAULT '',
	country     TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_source ON companies(source_name, source_id);

CREATE TABLE IF NOT EXISTS matches (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	company_a_id     INTEGER NOT NULL REFERENCES companies(id),
	company_b_id     INTEGER NOT NULL REFERENCES companies(id),
	score            REAL NOT NULL,
	success_criteria TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_matches_company_a_id ON matches(company_a_id);
CREATE INDEX IF NOT EXISTS idx_matches_company_b_id ON matches(company_b_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCompany(ctx context.Context, c Company) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO companies (source_id, source_name, name, website, email, phone, address, postal_code, city, country)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_name, source_id) DO UPDATE SET
			name = excluded.name,
			website = excluded.website,
			email = excluded.email,
			phone = excluded.phone,
			address = excluded.address,
			postal_code = excluded.postal_code,
			city = excluded.city,
			country = excluded.country`,
		c.SourceID, c.SourceName, c.Name, c.Website, c.Email, c.Phone, c.Address, c.PostalCode, c.City, c.Country,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: upsert company %s/%s", c.SourceName, c.SourceID)
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM companies WHERE source_name = ? AND source_id = ?`, c.SourceName, c.SourceID,
	).Scan(&id)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: fetch upserted company id %s/%s", c.SourceName, c.SourceID)
	}
	return id, nil
}

func (s *SQLiteStore) GetCompany(ctx context.Context, id int64) (*Company, error) {
	var c Company
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, source_name, name, website, email, phone, address, postal_code, city, country
		FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.SourceID, &c.SourceName, &c.Name, &c.Website, &c.Email, &c.Phone, &c.Address, &c.PostalCode, &c.City, &c.Country)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get company %d", id)
	}
	return &c, nil
}

func (s *SQLiteStore) ListCompanies(ctx context.Context, limit, offset int) ([]Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_id, source_name, name, website, email, phone, address, postal_code, city, country
		FROM companies ORDER BY id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list companies")
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.SourceID, &c.SourceName, &c.Name, &c.Website, &c.Email, &c.Phone, &c.Address, &c.PostalCode, &c.City, &c.Country); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan company")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list companies iterate")
}

func (s *SQLiteStore) InsertMatch(ctx context.Context, m Match) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO matches (company_a_id, company_b_id, score, success_criteria)
		VALUES (?, ?, ?, ?)`,
		m.CompanyAID, m.CompanyBID, m.Score, strings.Join(m.SuccessCriteria, ";"),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: insert match")
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetMatch(ctx context.Context, id int64) (*Match, error) {
	var m Match
	var criteria string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, company_a_id, company_b_id, score, success_criteria, created_at
		FROM matches WHERE id = ?`, id,
	).Scan(&m.ID, &m.CompanyAID, &m.CompanyBID, &m.Score, &criteria, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: get match %d", id)
	}
	m.SuccessCriteria = splitCriteria(criteria)
	return &m, nil
}

func (s *SQLiteStore) ListMatches(ctx context.Context, filter MatchFilter) ([]Match, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := `SELECT id, company_a_id, company_b_id, score, success_criteria, created_at FROM matches WHERE 1=1`
	args := []any{}

	if filter.CompanyID != nil {
		query += ` AND (company_a_id = ? OR company_b_id = ?)`
		args = append(args, *filter.CompanyID, *filter.CompanyID)
	}
	query += ` ORDER BY id LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list matches")
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		var criteria string
		if err := rows.Scan(&m.ID, &m.CompanyAID, &m.CompanyBID, &m.Score, &criteria, &m.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan match")
		}
		m.SuccessCriteria = splitCriteria(criteria)
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list matches iterate")
}

func (s *SQLiteStore) DeleteMatch(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete match %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("match not found: %d", id)
	}
	return nil
}
