// Package model holds the domain types shared across the outreach engine.
package model

// Deliverable is a single content deliverable requested by the campaign.
type Deliverable struct {
	Type      string `json:"type" yaml:"type"`
	Count     int    `json:"count" yaml:"count"`
	Exclusive *bool  `json:"exclusive" yaml:"exclusive"`
}

// CreatorRequirement constrains the kind of creator a campaign wants.
type CreatorRequirement struct {
	Gender        string   `json:"gender" yaml:"gender"`
	AgeRange      string   `json:"age_range" yaml:"age_range"`
	Niche         string   `json:"niche" yaml:"niche"`
	FollowerRange string   `json:"follower_range" yaml:"follower_range"`
	EngagementMin *float64 `json:"engagement_min" yaml:"engagement_min"`
}

// CampaignContext is the structured campaign brief. It is immutable once
// discovery starts for a given outreach attempt.
type CampaignContext struct {
	Title               string               `json:"title" yaml:"title"`
	Description         string               `json:"description" yaml:"description"`
	Category            string               `json:"category" yaml:"category"`
	ProductsServices    []string             `json:"products_services" yaml:"products_services"`
	CreatorRequirements []CreatorRequirement `json:"creator_requirements" yaml:"creator_requirements"`
	BudgetPerCreator    string               `json:"budget_per_creator" yaml:"budget_per_creator"`
	BudgetTotal         string               `json:"budget_total" yaml:"budget_total"`
	Deliverables        []Deliverable        `json:"deliverables" yaml:"deliverables"`
	Genre               string               `json:"genre" yaml:"genre"`
	FollowersOpen       bool                 `json:"followers_open" yaml:"followers_open"`
	MinFollowers        int                  `json:"min_followers" yaml:"min_followers"`
	Location            string               `json:"location" yaml:"location"`
	Deadline            string               `json:"tat" yaml:"tat"`
	Notes               string               `json:"notes" yaml:"notes"`
	NumCreatorsTarget   map[string]int       `json:"num_creators_target" yaml:"num_creators_target"`
	Platforms           []string             `json:"platforms" yaml:"platforms"`
	CompanyName         string               `json:"company_name" yaml:"company_name"`
	ContactInfo         string               `json:"contact_info" yaml:"contact_info"`
}

// Budget returns the most specific budget figure available.
func (c CampaignContext) Budget() string {
	if c.BudgetTotal != "" {
		return c.BudgetTotal
	}
	return c.BudgetPerCreator
}
