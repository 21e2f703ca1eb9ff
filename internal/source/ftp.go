package source

import (
	"context"
	"path"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/fetcher"
	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// FTPCSVSource retrieves a delimited-text company catalog over FTP and
// streams it the same way CSVSource streams a local file. Several of the
// federal and municipal business registries this engine resolves against
// distribute their extracts exclusively over anonymous FTP.
type FTPCSVSource struct {
	URL       string
	HasHeader bool
	Timeout   time.Duration
}

// NewFTPCSVSource builds an FTPCSVSource with a 30 second dial timeout.
func NewFTPCSVSource(url string) *FTPCSVSource {
	return &FTPCSVSource{URL: url, Timeout: 30 * time.Second}
}

func (s *FTPCSVSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		ftpFetcher := fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: s.Timeout})
		rc, err := ftpFetcher.Download(ctx, s.URL)
		if err != nil {
			errCh <- eris.Wrapf(err, "source: ftp download %s", s.URL)
			return
		}
		defer rc.Close()

		sourceName := path.Base(s.URL)

		rowCh, rowErrCh := streamCSVReader(ctx, rc, s.HasHeader)
		for row := range rowCh {
			select {
			case outCh <- rowToCompany(row, sourceName):
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}
		}

		if err := <-rowErrCh; err != nil {
			errCh <- eris.Wrapf(err, "source: read ftp csv %s", s.URL)
		}
	}()

	return outCh, errCh
}
