package source

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
	"github.com/sells-group/entity-resolver/pkg/notion"
)

// NotionFields maps the company fields a NotionSource needs onto the
// property names of a Notion database, mirroring ShapefileFields'
// constructor-argument approach since database schemas vary per
// workspace.
type NotionFields struct {
	Name, Website, Email, Phone, Address, PostalCode, City, Country string
}

// DefaultNotionFields matches the property names this engine expects on a
// company-catalog database shared with the Notion review-queue sink.
func DefaultNotionFields() NotionFields {
	return NotionFields{
		Name: "Name", Website: "Website", Email: "Email", Phone: "Phone",
		Address: "Address", PostalCode: "Postal Code", City: "City", Country: "Country",
	}
}

// NotionSource loads companies from the pages of a Notion database,
// fetched through notion.QueryAll's paginated, rate-limited, prefetching
// client call.
type NotionSource struct {
	Client     notion.Client
	DatabaseID string
	SourceName string
	Fields     NotionFields
}

// NewNotionSource builds a NotionSource with DefaultNotionFields.
func NewNotionSource(client notion.Client, databaseID, sourceName string) *NotionSource {
	return &NotionSource{Client: client, DatabaseID: databaseID, SourceName: sourceName, Fields: DefaultNotionFields()}
}

func (s *NotionSource) Load(ctx context.Context) (<-chan matchmodel.Company, <-chan error) {
	outCh := make(chan matchmodel.Company, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		pages, err := notion.QueryAll(ctx, s.Client, s.DatabaseID, nil)
		if err != nil {
			errCh <- eris.Wrapf(err, "source: query notion database %s", s.DatabaseID)
			return
		}

		for _, p := range pages {
			company := s.parsePage(p)
			if company.Name == "" {
				zap.L().Warn("source: skipping notion page with no Name property",
					zap.String("page_id", string(p.ID)))
				continue
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

func (s *NotionSource) parsePage(p notionapi.Page) matchmodel.Company {
	c := matchmodel.Company{SourceID: string(p.ID), SourceName: s.SourceName}

	if prop, ok := p.Properties[s.Fields.Name]; ok {
		if tp, ok := prop.(*notionapi.TitleProperty); ok {
			c.Name = plainText(tp.Title)
		}
	}
	if prop, ok := p.Properties[s.Fields.Website]; ok {
		if up, ok := prop.(*notionapi.URLProperty); ok {
			c.Website = up.URL
		}
	}
	if prop, ok := p.Properties[s.Fields.Email]; ok {
		if ep, ok := prop.(*notionapi.EmailProperty); ok {
			c.Email = ep.Email
		}
	}
	if prop, ok := p.Properties[s.Fields.Phone]; ok {
		if pp, ok := prop.(*notionapi.PhoneNumberProperty); ok {
			c.Phone = pp.PhoneNumber
		}
	}
	if prop, ok := p.Properties[s.Fields.Address]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			c.Address = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties[s.Fields.PostalCode]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			c.PostalCode = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties[s.Fields.City]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			c.City = plainText(rtp.RichText)
		}
	}
	if prop, ok := p.Properties[s.Fields.Country]; ok {
		if rtp, ok := prop.(*notionapi.RichTextProperty); ok {
			c.Country = plainText(rtp.RichText)
		}
	}

	return c
}

// plainText concatenates the plain_text values from a slice of RichText.
func plainText(rts []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range rts {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}
