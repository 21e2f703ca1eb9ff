package source

import (
	"context"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/fetcher"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// XLSXSource loads companies from the first sheet of an XLSX workbook,
// expecting the same nine-column layout as CSVSource. Several of the
// catalogs this engine is run against (state business registries, trade
// association member lists) are only distributed as spreadsheets.
type XLSXSource struct {
	Path      string
	SheetName string
	HasHeader bool
}

// NewXLSXSource builds an XLSXSource reading the workbook's first sheet.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{Path: path}
}

func (s *XLSXSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, 64)
	errCh := make(chan error, 1)

	sourceName := filepath.Base(s.Path)

	go func() {
		defer close(outCh)
		defer close(errCh)

		rowCh, rowErrCh := fetcher.StreamXLSX(ctx, s.Path, fetcher.XLSXOptions{
			SheetName: s.SheetName,
			SkipRows:  skipRows(s.HasHeader),
		})

		for row := range rowCh {
			select {
			case outCh <- rowToCompany(row, sourceName):
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}
		}

		if err := <-rowErrCh; err != nil {
			errCh <- eris.Wrapf(err, "source: read xlsx %s", s.Path)
		}
	}()

	return outCh, errCh
}

func skipRows(hasHeader bool) int {
	if hasHeader {
		return 1
	}
	return 0
}
