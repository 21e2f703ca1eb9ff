package source

import (
	"context"
	"database/sql"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite" // registers the pure-Go SQLite driver

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// SQLiteSource loads companies from an embedded SQLite database, filtered
// by a source_name column. It completes the original loader's stubbed
// SQLite path: opening the same busy_timeout/WAL/synchronous pragmas the
// rest of this codebase embeds in its SQLite DSNs.
type SQLiteSource struct {
	Path       string
	SourceName string
	Table      string // defaults to "companies"
}

// NewSQLiteSource builds a SQLiteSource reading the "companies" table.
func NewSQLiteSource(path, sourceName string) *SQLiteSource {
	return &SQLiteSource{Path: path, SourceName: sourceName, Table: "companies"}
}

func sqliteDSN(path string) string {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?"
	} else {
		dsn += "&"
	}
	return dsn + "_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

func (s *SQLiteSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, 64)
	errCh := make(chan error, 1)

	table := s.Table
	if table == "" {
		table = "companies"
	}

	go func() {
		defer close(outCh)
		defer close(errCh)

		db, err := sql.Open("sqlite", sqliteDSN(s.Path))
		if err != nil {
			errCh <- eris.Wrapf(err, "source: open sqlite %s", s.Path)
			return
		}
		defer db.Close()

		rows, err := db.QueryContext(ctx, `
			SELECT source_id, name, website, email, phone, address, postal_code, city, country
			FROM `+table+`
			WHERE source_name = ?`, s.SourceName)
		if err != nil {
			errCh <- eris.Wrapf(err, "source: query sqlite table %s", table)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var c matchmodel.Company
			c.SourceName = s.SourceName
			if err := rows.Scan(&c.SourceID, &c.Name, &c.Website, &c.Email,
				&c.Phone, &c.Address, &c.PostalCode, &c.City, &c.Country); err != nil {
				errCh <- eris.Wrap(err, "source: scan sqlite row")
				return
			}

			select {
			case outCh <- c:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- eris.Wrap(err, "source: iterate sqlite rows")
		}
	}()

	return outCh, errCh
}
