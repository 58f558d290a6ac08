package outreach

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/llm"
)

const composeSystemPrompt = `You are an automation bot from MatchBox AI Agent (use this as your name) made for writing emails to influencers for a brand/agency. Please make sure to include every detail about the campaign and write it well so that the creator is impressed. The tone should be respectful, confident, and clear. The email should reflect leadership, professionalism, and purpose. Your response must include a subject line, an appropriate greeting, a concise body with key information or requests, and a professional closing signature. Your goal is to get the contact number of the influencer for further negotiation and finally a deal. Make use of tags in your response and do not provide anything outside these tags: wrap the generated subject in <subject></subject> and the whole body in <body></body>.`

var (
	subjectTag = regexp.MustCompile(`(?s)<subject>(.*?)</subject>`)
	bodyTag    = regexp.MustCompile(`(?s)<body>(.*?)</body>`)
)

// ComposeEmail asks the model to draft the first outreach message for one
// creator. The model must answer in subject/body tags; anything else is a
// parse failure.
func ComposeEmail(ctx context.Context, ai llm.Client, campaign model.CampaignContext, creator model.CreatorRecord) (subject, body string, err error) {
	resp, err := ai.Chat(ctx, composeSystemPrompt, composeUserContent(campaign, creator))
	if err != nil {
		return "", "", eris.Wrap(err, "outreach: compose email")
	}
	return extractEmail(resp)
}

// extractEmail pulls the subject and body out of a tagged model response.
func extractEmail(resp string) (string, string, error) {
	sm := subjectTag.FindStringSubmatch(resp)
	bm := bodyTag.FindStringSubmatch(resp)
	if sm == nil || bm == nil {
		return "", "", eris.New("outreach: compose response missing subject or body tags")
	}

	subject := strings.TrimSpace(sm[1])
	lines := strings.Split(bm[1], "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " \t")
	}
	body := strings.TrimSpace(strings.Join(lines, "\n"))

	if subject == "" || body == "" {
		return "", "", eris.New("outreach: compose response has empty subject or body")
	}
	return subject, body, nil
}

func composeUserContent(campaign model.CampaignContext, creator model.CreatorRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a formal and courteous email to the influencer '%s' (can be a name or a username) to integrate with the marketing campaign.\n", creatorName(creator))
	b.WriteString("Campaign info is as follows:\n")
	fmt.Fprintf(&b, "Campaign name - %s\n", campaign.Title)
	fmt.Fprintf(&b, "Campaign description - %s\n", campaign.Description)
	fmt.Fprintf(&b, "Campaign category - %s\n", campaign.Category)
	fmt.Fprintf(&b, "Campaign products/services - %s\n", strings.Join(campaign.ProductsServices, ", "))
	fmt.Fprintf(&b, "Campaign platforms - %s\n", strings.Join(campaign.Platforms, ", "))
	fmt.Fprintf(&b, "Campaign budget - %s\n", campaign.Budget())
	fmt.Fprintf(&b, "Campaign budget per creator - %s\n", campaign.BudgetPerCreator)
	fmt.Fprintf(&b, "Campaign deliverables - %s\n", deliverablesLine(campaign.Deliverables))
	fmt.Fprintf(&b, "Campaign location - %s\n", campaign.Location)
	fmt.Fprintf(&b, "Campaign deadline - %s\n", campaign.Deadline)
	fmt.Fprintf(&b, "Campaign notes - %s\n", campaign.Notes)
	b.WriteString("\nHere is the influencer info you will be writing to:\n")
	fmt.Fprintf(&b, "Email - %s\n", creator.PublicEmail)
	fmt.Fprintf(&b, "Influencer niche(s) - %s\n", creator.Category)
	fmt.Fprintf(&b, "Number of followers - %d\n", creator.FollowerCount)
	fmt.Fprintf(&b, "Their bio/description - %s\n", creator.Biography)
	return b.String()
}

func creatorName(creator model.CreatorRecord) string {
	if creator.FullName != "" {
		return creator.FullName
	}
	return creator.Username
}

func deliverablesLine(deliverables []model.Deliverable) string {
	parts := make([]string, 0, len(deliverables))
	for _, d := range deliverables {
		if d.Count > 0 {
			parts = append(parts, fmt.Sprintf("%d x %s", d.Count, d.Type))
		} else {
			parts = append(parts, d.Type)
		}
	}
	return strings.Join(parts, ", ")
}
