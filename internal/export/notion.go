package export

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/notion"
)

// NotionExporter writes one database page per creator. The target database
// needs Name (title), Email, Niche, Followers, and Status properties.
type NotionExporter struct {
	client notion.Client
	dbID   string
}

func NewNotionExporter(client notion.Client, dbID string) *NotionExporter {
	return &NotionExporter{client: client, dbID: dbID}
}

// ExportCreators creates a page per creator. A single page failure is logged
// and counted, not fatal; the count of successfully written pages is
// returned.
func (e *NotionExporter) ExportCreators(ctx context.Context, creators []model.CreatorRecord) (int, error) {
	if e.dbID == "" {
		return 0, eris.New("export: notion database id is not configured")
	}

	written := 0
	for _, c := range creators {
		if _, err := e.client.CreatePage(ctx, e.pageRequest(c)); err != nil {
			zap.L().Warn("notion page create failed",
				zap.String("creator", c.Username),
				zap.Error(err),
			)
			continue
		}
		written++
	}

	zap.L().Info("notion export complete",
		zap.Int("written", written),
		zap.Int("total", len(creators)),
	)
	return written, nil
}

func (e *NotionExporter) pageRequest(c model.CreatorRecord) *notionapi.PageCreateRequest {
	name := c.FullName
	if name == "" {
		name = c.Username
	}

	return &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(e.dbID),
		},
		Properties: notionapi.Properties{
			"Name": notionapi.TitleProperty{
				Title: []notionapi.RichText{{Text: &notionapi.Text{Content: name}}},
			},
			"Email": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: c.PublicEmail}}},
			},
			"Niche": notionapi.RichTextProperty{
				RichText: []notionapi.RichText{{Text: &notionapi.Text{Content: c.Category}}},
			},
			"Followers": notionapi.NumberProperty{
				Number: float64(c.FollowerCount),
			},
			"Status": notionapi.SelectProperty{
				Select: notionapi.Option{Name: "Discovered"},
			},
		},
	}
}
