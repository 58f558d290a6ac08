package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CreatorRecord is one discovered creator profile. Records are unique per ID
// within a discovery run; later duplicates are discarded in favor of the
// first-seen record.
type CreatorRecord struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	PublicEmail     string `json:"public_email"`
	Category        string `json:"category"`
	Biography       string `json:"biography"`
	MediaCount      int    `json:"media_count"`
	FollowerCount   int    `json:"follower_count"`
	IsBusiness      bool   `json:"is_business"`
	ProfileImageURL string `json:"profile_image_url"`
	Caption         string `json:"caption,omitempty"`
}

var countPrinter = message.NewPrinter(language.English)

// Digest renders a short human-readable profile summary for progress updates.
func (c CreatorRecord) Digest(rank int) string {
	email := c.PublicEmail
	if email == "" {
		email = "N/A"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Creator #%d\n", rank)
	fmt.Fprintf(&b, "Username: @%s\n", c.Username)
	fmt.Fprintf(&b, "Name: %s\n", c.FullName)
	fmt.Fprintf(&b, "Email: %s\n", email)
	fmt.Fprintf(&b, "Category: %s\n", c.Category)
	b.WriteString(countPrinter.Sprintf("Posts: %d\n", c.MediaCount))
	b.WriteString(countPrinter.Sprintf("Followers: %d\n", c.FollowerCount))
	return b.String()
}
