// Package source provides Source implementations for the matching engine:
// CSV, SQLite, FTP-delivered CSV, XLSX, and shapefile company catalogs.
package source

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/fetcher"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// csvFields is the fixed column order a company CSV is expected to follow:
// source_id, name, website, email, phone, address, postal_code, city,
// country. There is no header row by default; set HasHeader on CSVSource
// to skip one.
var csvFields = []string{
	"source_id", "name", "website", "email",
	"phone", "address", "postal_code", "city", "country",
}

// CSVSource loads companies from a delimited-text file, re-opening it on
// every Load call so the same CSVSource can serve as either side of a
// SourcesMatcher's cartesian product — including the side that must be
// re-iterated once per outer element.
type CSVSource struct {
	Path      string
	HasHeader bool
	// Shorten reports the source as the file's base name rather than its
	// full path, matching the original loader's default behavior.
	Shorten bool
}

// NewCSVSource builds a CSVSource with Shorten defaulting to true.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path, Shorten: true}
}

func (s *CSVSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, 64)
	errCh := make(chan error, 1)

	sourceName := s.Path
	if s.Shorten {
		sourceName = filepath.Base(s.Path)
	}

	go func() {
		defer close(outCh)
		defer close(errCh)

		f, err := os.Open(s.Path)
		if err != nil {
			errCh <- eris.Wrapf(err, "source: open csv %s", s.Path)
			return
		}
		defer f.Close()

		rowCh, rowErrCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
			HasHeader: s.HasHeader,
			TrimSpace: true,
		})

		for row := range rowCh {
			company := rowToCompany(row, sourceName)
			select {
			case outCh <- company:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}
		}

		if err := <-rowErrCh; err != nil {
			errCh <- eris.Wrapf(err, "source: read csv %s", s.Path)
		}
	}()

	return outCh, errCh
}

// streamCSVReader wraps fetcher.StreamCSV for sources that already hold an
// open io.Reader (FTP, in-memory buffers) rather than a file path.
func streamCSVReader(ctx context.Context, r io.Reader, hasHeader bool) (<-chan []string, <-chan error) {
	return fetcher.StreamCSV(ctx, r, fetcher.CSVOptions{HasHeader: hasHeader, TrimSpace: true})
}

func rowToCompany(row []string, sourceName string) matchmodel.Company {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return matchmodel.Company{
		SourceID:   get(0),
		SourceName: sourceName,
		Name:       get(1),
		Website:    get(2),
		Email:      get(3),
		Phone:      get(4),
		Address:    get(5),
		PostalCode: get(6),
		City:       get(7),
		Country:    get(8),
	}
}
