package source

import (
	"context"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
)

// ShapefileFields maps the company fields a ShapefileSource needs onto the
// attribute column names of a .dbf companion file. Business-listing
// shapefiles (parcel/point datasets published by some municipal and
// regional registries) vary in column naming, so the mapping is a
// constructor argument rather than a fixed convention like CSVSource's.
type ShapefileFields struct {
	SourceID, Name, Website, Email, Phone string
	Address, PostalCode, City, Country    string
}

// DefaultShapefileFields matches the attribute names this engine has seen
// in practice on county business-point exports.
func DefaultShapefileFields() ShapefileFields {
	return ShapefileFields{
		SourceID: "id", Name: "bus_name", Website: "website", Email: "email",
		Phone: "phone", Address: "address", PostalCode: "zip", City: "city", Country: "country",
	}
}

// ShapefileSource loads companies from the attribute table of a point
// shapefile — the geometry itself is not consulted, only the per-record
// attributes.
type ShapefileSource struct {
	Path       string
	SourceName string
	Fields     ShapefileFields
}

// NewShapefileSource builds a ShapefileSource with DefaultShapefileFields.
func NewShapefileSource(path, sourceName string) *ShapefileSource {
	return &ShapefileSource{Path: path, SourceName: sourceName, Fields: DefaultShapefileFields()}
}

func (s *ShapefileSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		reader, err := shp.Open(s.Path)
		if err != nil {
			errCh <- eris.Wrapf(err, "source: open shapefile %s", s.Path)
			return
		}
		defer reader.Close()

		fields := reader.Fields()
		fieldIdx := make(map[string]int, len(fields))
		for i, f := range fields {
			name := strings.ToLower(strings.TrimRight(f.String(), "\x00"))
			fieldIdx[name] = i
		}

		get := func(name string) string {
			idx, ok := fieldIdx[strings.ToLower(name)]
			if !ok {
				return ""
			}
			return strings.TrimSpace(strings.TrimRight(reader.Attribute(idx), "\x00"))
		}

		for reader.Next() {
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}

			company := matchmodel.Company{
				SourceID:   get(s.Fields.SourceID),
				SourceName: s.SourceName,
				Name:       get(s.Fields.Name),
				Website:    get(s.Fields.Website),
				Email:      get(s.Fields.Email),
				Phone:      get(s.Fields.Phone),
				Address:    get(s.Fields.Address),
				PostalCode: get(s.Fields.PostalCode),
				City:       get(s.Fields.City),
				Country:    get(s.Fields.Country),
			}

			select {
			case outCh <- company:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "source: context cancelled")
				return
			}
		}
	}()

	return outCh, errCh
}
