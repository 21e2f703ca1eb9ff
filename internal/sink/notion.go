package sink

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/entity-resolver/internal/matchmodel"
	"github.com/sells-group/entity-resolver/pkg/notion"
)

// NotionSink files matches into a Notion database as a manual review
// queue — useful for scores that cleared a low bar but not the accept
// threshold, where a human should make the final call.
type NotionSink struct {
	client     notion.Client
	databaseID string
}

// NewNotionSink wraps an existing Notion client.
func NewNotionSink(client notion.Client, databaseID string) *NotionSink {
	return &NotionSink{client: client, databaseID: databaseID}
}

func (s *NotionSink) Add(ctx context.Context, match matchmodel.CompanyMatch) error {
	_, err := s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{DatabaseID: notionapi.DatabaseID(s.databaseID)},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: match.CompanyA.Name + " / " + match.CompanyB.Name}}},
			},
			"Company A": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: match.CompanyA.SourceName + ":" + match.CompanyA.SourceID}}},
			},
			"Company B": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: match.CompanyB.SourceName + ":" + match.CompanyB.SourceID}}},
			},
			"Score": notionapi.NumberProperty{Number: match.Score},
			"Success Criteria": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: strings.Join(match.SuccessCriteria, "; ")}}},
			},
		},
	})
	if err != nil {
		return eris.Wrapf(err, "sink: create notion page for %s/%s vs %s/%s",
			match.CompanyA.SourceName, match.CompanyA.SourceID, match.CompanyB.SourceName, match.CompanyB.SourceID)
	}
	return nil
}

func (s *NotionSink) AddAll(ctx context.Context, matches []matchmodel.CompanyMatch) error {
	for _, m := range matches {
		if err := s.Add(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// Flush is a no-op: every Add call creates its page immediately. The
// wrapped client's own rate limiter paces the requests.
func (s *NotionSink) Flush(ctx context.Context) error {
	return nil
}
