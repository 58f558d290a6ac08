package outreach

import (
	"os"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

// Templates holds the operator-tunable message texts. Missing fields fall
// back to the defaults.
type Templates struct {
	FollowUpSubjectPrefix string `yaml:"followup_subject_prefix"`
	FollowUpNotice        string `yaml:"followup_notice"`
	NegotiationScript     string `yaml:"negotiation_script"`
}

const defaultFollowUpNotice = `--- Follow-up ---
This is a follow-up to my previous email. Please let me know if you received this.`

const defaultNegotiationScript = `Identity & Role:
You are Riah, a confident and personable campaign negotiation assistant from MatchBox AI, a digital marketing agency that connects top-tier influencers with premium brands. Your mission is to negotiate collaborations, ensure client budget goals are respected, and finalize mutually beneficial deals without losing the influencer's interest.

Tone & Personality:
- Warm, confident, and business-savvy
- Firm yet flexible: always advocate for the client's budget while staying open to creative compromises
- Respectful of the influencer's value and brand voice

Conversation Flow:
1. Opening: "Hi, this is Riah from MatchBox AI. I'm reaching out about a campaign opportunity we'd love to discuss with you. Do you have a moment?"
2. Campaign brief, deliverables discussion, rate inquiry.
3. Always start from the budget and negotiate deliverables, not the other way around. If the rate exceeds budget significantly, be transparent about the ceiling and offer a reduced scope.
4. Closing: recap deliverables, rate, usage rights, and launch target.

Conversation Context:

[Campaign Info]
- Title: {{.Campaign.Title}}
- Description: {{.Campaign.Description}}
- Budget for campaign: {{.Campaign.BudgetTotal}}
- Budget per creator: {{.Campaign.BudgetPerCreator}}
- Platform(s): {{join .Campaign.Platforms ", "}}
- Deadline: {{.Campaign.Deadline}}
- Location: {{.Campaign.Location}}
- Notes: {{.Campaign.Notes}}
- Company Name: {{.Campaign.CompanyName}}
- Contact Info: {{.Campaign.ContactInfo}}

[Influencer Info]
- Name: {{.Creator.FullName}}
- Email: {{.Creator.PublicEmail}}
- Niche: {{.Creator.Category}}
- Follower Count: {{.Creator.FollowerCount}}
- Bio: {{.Creator.Biography}}

Use this data contextually in your negotiation. Do not narrate the entire info at once; bring up details only when relevant. Always prioritize client goals and budget, but aim for a win-win resolution.`

// DefaultTemplates returns the built-in message texts.
func DefaultTemplates() Templates {
	return Templates{
		FollowUpSubjectPrefix: "Follow-up: ",
		FollowUpNotice:        defaultFollowUpNotice,
		NegotiationScript:     defaultNegotiationScript,
	}
}

// LoadTemplates reads template overrides from a YAML file. An empty path
// returns the defaults.
func LoadTemplates(path string) (Templates, error) {
	tmpl := DefaultTemplates()
	if path == "" {
		return tmpl, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return tmpl, eris.Wrapf(err, "outreach: read templates %s", path)
	}

	var overrides Templates
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return tmpl, eris.Wrap(err, "outreach: parse templates")
	}

	if overrides.FollowUpSubjectPrefix != "" {
		tmpl.FollowUpSubjectPrefix = overrides.FollowUpSubjectPrefix
	}
	if overrides.FollowUpNotice != "" {
		tmpl.FollowUpNotice = overrides.FollowUpNotice
	}
	if overrides.NegotiationScript != "" {
		tmpl.NegotiationScript = overrides.NegotiationScript
	}
	return tmpl, nil
}

// scriptData is the render context for the negotiation script.
type scriptData struct {
	Campaign model.CampaignContext
	Creator  model.CreatorRecord
}

// RenderScript substitutes campaign and creator fields into the negotiation
// script template.
func (t Templates) RenderScript(campaign model.CampaignContext, creator model.CreatorRecord) (string, error) {
	tmpl, err := template.New("script").Funcs(template.FuncMap{
		"join": strings.Join,
	}).Parse(t.NegotiationScript)
	if err != nil {
		return "", eris.Wrap(err, "outreach: parse negotiation script")
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, scriptData{Campaign: campaign, Creator: creator}); err != nil {
		return "", eris.Wrap(err, "outreach: render negotiation script")
	}
	return b.String(), nil
}
