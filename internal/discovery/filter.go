package discovery

import "github.com/matchbox-ai/outreach-cli/pkg/instagram"

// eligible applies the creator eligibility filter: business/creator account,
// public contact email, follower floor, and a minimum body of published work.
// Rejected profiles are dropped, not retried.
func eligible(pr *instagram.Profile, minFollowers, minPosts int) bool {
	if minPosts <= 0 {
		minPosts = 20
	}
	if !pr.IsBusiness {
		return false
	}
	if pr.PublicEmail == "" {
		return false
	}
	if pr.FollowerCount < minFollowers {
		return false
	}
	if pr.MediaCount < minPosts {
		return false
	}
	return true
}
