//go:build integration

// Package sink provides matchengine.Sink implementations: Postgres,
// CSV, and a Notion review queue for low-confidence matches.
package sink

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/db"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// PostgresSink persists matches via BulkUpsert'd company rows followed by
// a COPY'd insert into the matches table. Both companies of every match
// are upserted first (keyed by source name + source id) so the match row
// can reference their assigned ids.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink wraps an existing pool. The companies and matches
// tables must already exist — see store.PostgresStore.Migrate.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

var companyUpsertCfg = db.UpsertConfig{
	Table:        "companies",
	Columns:      []string{"source_id", "source_name", "name", "website", "email", "phone", "address", "postal_code", "city", "country"},
	ConflictKeys: []string{"source_name", "source_id"},
}

func (s *PostgresSink) Add(ctx context.Context, match matchmodel.CompanyMatch) error {
	return s.AddAll(ctx, []matchmodel.CompanyMatch{match})
}

func (s *PostgresSink) AddAll(ctx context.Context, matches []matchmodel.CompanyMatch) error {
	if len(matches) == 0 {
		return nil
	}

	companyRows, dedup := dedupeCompanies(matches)
	if _, err := db.BulkUpsert(ctx, s.pool, companyUpsertCfg, companyRows); err != nil {
		return eris.Wrap(err, "sink: upsert companies")
	}

	ids, err := companyIDs(ctx, s.pool, dedup)
	if err != nil {
		return eris.Wrap(err, "sink: resolve company ids")
	}

	matchRows := make([][]any, 0, len(matches))
	for _, m := range matches {
		aID, ok := ids[companyKey{m.CompanyA.SourceName, m.CompanyA.SourceID}]
		if !ok {
			return eris.Errorf("sink: missing id for company %s/%s", m.CompanyA.SourceName, m.CompanyA.SourceID)
		}
		bID, ok := ids[companyKey{m.CompanyB.SourceName, m.CompanyB.SourceID}]
		if !ok {
			return eris.Errorf("sink: missing id for company %s/%s", m.CompanyB.SourceName, m.CompanyB.SourceID)
		}
		matchRows = append(matchRows, []any{aID, bID, m.Score, strings.Join(m.SuccessCriteria, ";")})
	}

	if _, err := db.CopyFrom(ctx, s.pool, "matches", []string{"company_a_id", "company_b_id", "score", "success_criteria"}, matchRows); err != nil {
		return eris.Wrap(err, "sink: copy matches")
	}
	return nil
}

// Flush is a no-op: Add and AddAll commit directly.
func (s *PostgresSink) Flush(ctx context.Context) error {
	return nil
}

type companyKey struct {
	sourceName, sourceID string
}

func dedupeCompanies(matches []matchmodel.CompanyMatch) ([][]any, []matchmodel.Company) {
	seen := make(map[companyKey]bool)
	var rows [][]any
	var companies []matchmodel.Company

	add := func(c matchmodel.Company) {
		key := companyKey{c.SourceName, c.SourceID}
		if seen[key] {
			return
		}
		seen[key] = true
		companies = append(companies, c)
		rows = append(rows, []any{c.SourceID, c.SourceName, c.Name, c.Website, c.Email, c.Phone, c.Address, c.PostalCode, c.City, c.Country})
	}

	for _, m := range matches {
		add(m.CompanyA)
		add(m.CompanyB)
	}
	return rows, companies
}

func companyIDs(ctx context.Context, pool *pgxpool.Pool, companies []matchmodel.Company) (map[companyKey]int64, error) {
	out := make(map[companyKey]int64, len(companies))
	for _, c := range companies {
		var id int64
		err := pool.QueryRow(ctx,
			`SELECT id FROM companies WHERE source_name = $1 AND source_id = $2`,
			c.SourceName, c.SourceID,
		).Scan(&id)
		if err != nil {
			return nil, eris.Wrapf(err, "sink: lookup company %s/%s", c.SourceName, c.SourceID)
		}
		out[companyKey{c.SourceName, c.SourceID}] = id
	}
	return out, nil
}
