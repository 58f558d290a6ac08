package discovery

import (
	"context"
	"fmt"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matchbox-ai/outreach-cli/internal/config"
	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/instagram"
)

func testProfile(id string) *instagram.Profile {
	return &instagram.Profile{
		ID:            id,
		Username:      "user" + id,
		Biography:     "fitness coach",
		IsBusiness:    true,
		PublicEmail:   fmt.Sprintf("user%s@example.com", id),
		FollowerCount: 10000,
		MediaCount:    100,
	}
}

func postFor(userID, caption string) instagram.Post {
	return instagram.Post{
		Caption: instagram.Caption{
			Text: caption,
			User: instagram.CaptionUser{ID: userID},
		},
	}
}

func TestDiscover_EndToEnd(t *testing.T) {
	search := new(mockSearch)
	ai := new(mockLLM)

	search.On("SearchHashtags", mock.Anything, "fitness").
		Return([]string{"fit", "gym", "yoga"}, nil)
	ai.On("Chat", mock.Anything, hashtagRankSystemPrompt, mock.Anything).
		Return(`{"result": ["fit", "gym"]}`, nil)

	// "u1" posts under both hashtags; it must yield a single candidate.
	search.On("PostsByHashtag", mock.Anything, "fit").
		Return([]instagram.Post{postFor("u1", "leg day"), postFor("u2", "meal prep")}, nil)
	search.On("PostsByHashtag", mock.Anything, "gym").
		Return([]instagram.Post{postFor("u1", "again"), postFor("u3", "pr day")}, nil)

	for _, id := range []string{"u1", "u2", "u3"} {
		search.On("UserInfo", mock.Anything, id).Return(testProfile(id), nil)
	}

	ai.On("Chat", mock.Anything, bioFilterSystemPrompt, mock.Anything).
		Return(`{"result": [0, 1, 2]}`, nil)

	p := NewPipeline(search, ai, config.DiscoveryConfig{
		MinFollowers: 1000,
		MinPosts:     20,
		MaxHashtags:  10,
		Concurrency:  2,
	}, Reporter{})

	final, err := p.Discover(context.Background(), model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)
	assert.Len(t, final, 3)

	ids := map[string]bool{}
	for _, rec := range final {
		ids[rec.ID] = true
	}
	assert.True(t, ids["u1"] && ids["u2"] && ids["u3"])
}

func TestDiscover_HashtagFailureIsolated(t *testing.T) {
	search := new(mockSearch)
	ai := new(mockLLM)

	search.On("SearchHashtags", mock.Anything, "fitness").
		Return([]string{"fit", "gym"}, nil)
	ai.On("Chat", mock.Anything, hashtagRankSystemPrompt, mock.Anything).
		Return(`{"result": ["fit", "gym"]}`, nil)

	// One hashtag's fetch fails; the other still contributes candidates.
	search.On("PostsByHashtag", mock.Anything, "fit").
		Return(nil, eris.New("rate limited"))
	search.On("PostsByHashtag", mock.Anything, "gym").
		Return([]instagram.Post{postFor("u1", "pr day")}, nil)
	search.On("UserInfo", mock.Anything, "u1").Return(testProfile("u1"), nil)

	ai.On("Chat", mock.Anything, bioFilterSystemPrompt, mock.Anything).
		Return(`{"result": [0]}`, nil)

	p := NewPipeline(search, ai, config.DiscoveryConfig{MinFollowers: 1000}, Reporter{})

	final, err := p.Discover(context.Background(), model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, "u1", final[0].ID)
}

func TestDiscover_MaxUsersPerHashtagCap(t *testing.T) {
	search := new(mockSearch)
	ai := new(mockLLM)

	search.On("SearchHashtags", mock.Anything, "fitness").
		Return([]string{"fit"}, nil)
	ai.On("Chat", mock.Anything, hashtagRankSystemPrompt, mock.Anything).
		Return(`{"result": ["fit"]}`, nil)

	posts := make([]instagram.Post, 0, 5)
	for i := 0; i < 5; i++ {
		posts = append(posts, postFor(fmt.Sprintf("u%d", i), "post"))
	}
	search.On("PostsByHashtag", mock.Anything, "fit").Return(posts, nil)

	// Only the first two users may be looked up.
	search.On("UserInfo", mock.Anything, "u0").Return(testProfile("u0"), nil)
	search.On("UserInfo", mock.Anything, "u1").Return(testProfile("u1"), nil)

	ai.On("Chat", mock.Anything, bioFilterSystemPrompt, mock.Anything).
		Return(`{"result": [0, 1]}`, nil)

	p := NewPipeline(search, ai, config.DiscoveryConfig{
		MinFollowers:       1000,
		MaxUsersPerHashtag: 2,
	}, Reporter{})

	final, err := p.Discover(context.Background(), model.CampaignContext{Category: "fitness"})
	require.NoError(t, err)
	assert.Len(t, final, 2)
	search.AssertNotCalled(t, "UserInfo", mock.Anything, "u2")
}

func TestDiscover_CampaignMinFollowersOverride(t *testing.T) {
	search := new(mockSearch)
	ai := new(mockLLM)

	search.On("SearchHashtags", mock.Anything, "fitness").
		Return([]string{"fit"}, nil)
	ai.On("Chat", mock.Anything, hashtagRankSystemPrompt, mock.Anything).
		Return(`{"result": ["fit"]}`, nil)
	search.On("PostsByHashtag", mock.Anything, "fit").
		Return([]instagram.Post{postFor("u1", "post")}, nil)

	// 10k followers, but the campaign demands 50k.
	search.On("UserInfo", mock.Anything, "u1").Return(testProfile("u1"), nil)

	p := NewPipeline(search, ai, config.DiscoveryConfig{MinFollowers: 1000}, Reporter{})

	final, err := p.Discover(context.Background(), model.CampaignContext{
		Category:     "fitness",
		MinFollowers: 50000,
	})
	require.NoError(t, err)
	assert.Empty(t, final)
}

func TestDiscover_RankingFailureAborts(t *testing.T) {
	search := new(mockSearch)
	ai := new(mockLLM)

	search.On("SearchHashtags", mock.Anything, "fitness").
		Return([]string{"fit"}, nil)
	ai.On("Chat", mock.Anything, hashtagRankSystemPrompt, mock.Anything).
		Return("not json", nil)

	p := NewPipeline(search, ai, config.DiscoveryConfig{}, Reporter{})

	_, err := p.Discover(context.Background(), model.CampaignContext{Category: "fitness"})
	assert.Error(t, err)
	search.AssertNotCalled(t, "PostsByHashtag", mock.Anything, mock.Anything)
}
