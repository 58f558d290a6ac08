// Package intake turns free-text campaign briefs into structured
// CampaignContext records via a constrained LLM extraction pass.
package intake

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/llm"
)

const extractSystemPrompt = `You are an expert influencer marketing strategist AI assistant. Given a campaign brief, extract and organize the following information into a JSON object with these keys:

- title: string
- description: string
- category: string
- products_services: list of product or service names
- creator_requirements: list of objects with keys: gender, age_range, niche, follower_range, engagement_min
- budget_per_creator: string or null
- budget_total: string or null
- deliverables: list of objects with keys: type, count, exclusive (true/false or null)
- genre: string or null
- followers_open: true/false
- min_followers: number or null
- location: string or null
- tat: string (deadline text as mentioned)
- notes: string or null
- num_creators_target: dictionary with keys as creator type (like 'Mega') and values as number required
- platforms: list of platforms involved (like 'YouTube', 'Instagram')
- company_name: string or null
- contact_info: string or null

Only respond with the JSON object. No extra commentary.`

// ExtractCampaign asks the model to structure a raw brief. Malformed model
// output is a hard failure; there is no partial fallback.
func ExtractCampaign(ctx context.Context, ai llm.Client, briefText string) (*model.CampaignContext, error) {
	user := fmt.Sprintf("Here is a campaign brief:\n\n%s\n\nExtract and format as JSON.", briefText)

	resp, err := ai.Chat(ctx, extractSystemPrompt, user)
	if err != nil {
		return nil, eris.Wrap(err, "intake: extract campaign")
	}

	var campaign model.CampaignContext
	if err := llm.DecodeJSON(resp, &campaign); err != nil {
		return nil, eris.Wrap(err, "intake: parse campaign JSON")
	}

	if campaign.Category == "" {
		return nil, eris.New("intake: brief extraction returned no category")
	}

	zap.L().Info("campaign brief extracted",
		zap.String("category", campaign.Category),
		zap.Int("deliverables", len(campaign.Deliverables)),
		zap.Strings("platforms", campaign.Platforms),
	)
	return &campaign, nil
}
