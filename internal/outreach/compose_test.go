package outreach

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

func TestExtractEmail(t *testing.T) {
	resp := `<subject>Partnership with FitFuel</subject>
<body>
    Dear Alex,

    We would love to work with you.

    Best,
    MatchBox AI Agent
</body>`

	subject, body, err := extractEmail(resp)
	require.NoError(t, err)
	assert.Equal(t, "Partnership with FitFuel", subject)
	// Leading indentation from the model is stripped per line.
	assert.Contains(t, body, "Dear Alex,")
	assert.NotContains(t, body, "    Dear")
}

func TestExtractEmail_MissingTags(t *testing.T) {
	_, _, err := extractEmail("here is your email: Dear Alex, ...")
	assert.Error(t, err)
}

func TestExtractEmail_EmptySubject(t *testing.T) {
	_, _, err := extractEmail("<subject> </subject><body>hi</body>")
	assert.Error(t, err)
}

func TestComposeEmail_IncludesCampaignAndCreator(t *testing.T) {
	ai := new(mockLLM)
	// Both the campaign facts and the creator facts must reach the model.
	ai.On("Chat", mock.Anything, composeSystemPrompt, mock.MatchedBy(func(user string) bool {
		return strings.Contains(user, "FitFuel Launch") && strings.Contains(user, "alex@example.com")
	})).Return("<subject>Hi</subject><body>Hello Alex</body>", nil)

	campaign := model.CampaignContext{
		Title:    "FitFuel Launch",
		Category: "fitness",
	}
	creator := model.CreatorRecord{
		Username:    "alexfit",
		PublicEmail: "alex@example.com",
	}

	subject, body, err := ComposeEmail(context.Background(), ai, campaign, creator)
	require.NoError(t, err)
	assert.Equal(t, "Hi", subject)
	assert.Equal(t, "Hello Alex", body)
}
