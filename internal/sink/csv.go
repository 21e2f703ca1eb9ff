package sink

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

var csvHeader = []string{
	"company_a_source", "company_a_id", "company_b_source", "company_b_id",
	"score", "success_criteria",
}

// CSVSink appends matches to a delimited-text file, writing a header row
// once on first use. It is safe for concurrent use by multiple workers.
type CSVSink struct {
	path string

	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink opens (or creates) path for appending.
func NewCSVSink(path string) (*CSVSink, error) {
	exists := true
	if _, err := os.Stat(path); os.IsNotExist(err) {
		exists = false
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "sink: open csv %s", path)
	}

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(csvHeader); err != nil {
			_ = f.Close()
			return nil, eris.Wrap(err, "sink: write csv header")
		}
		w.Flush()
	}

	return &CSVSink{path: path, file: f, writer: w}, nil
}

func (s *CSVSink) Add(ctx context.Context, match matchmodel.CompanyMatch) error {
	return s.AddAll(ctx, []matchmodel.CompanyMatch{match})
}

func (s *CSVSink) AddAll(ctx context.Context, matches []matchmodel.CompanyMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range matches {
		row := []string{
			m.CompanyA.SourceName, m.CompanyA.SourceID,
			m.CompanyB.SourceName, m.CompanyB.SourceID,
			strconv.FormatFloat(m.Score, 'f', 6, 64),
			strings.Join(m.SuccessCriteria, ";"),
		}
		if err := s.writer.Write(row); err != nil {
			return eris.Wrapf(err, "sink: write csv row to %s", s.path)
		}
	}
	return nil
}

func (s *CSVSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return eris.Wrapf(err, "sink: flush csv %s", s.path)
	}
	return eris.Wrap(s.file.Sync(), "sink: sync csv file")
}

// Close releases the underlying file handle.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
