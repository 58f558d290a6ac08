package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matchbox-ai/outreach-cli/internal/model"
)

func TestClampIndex(t *testing.T) {
	tests := []struct {
		name string
		idx  int
		n    int
		want int
		ok   bool
	}{
		{"in range", 2, 5, 2, true},
		{"zero", 0, 5, 0, true},
		{"last valid", 4, 5, 4, true},
		{"out of range clamps to last", 7, 5, 4, true},
		{"negative dropped", -1, 5, 0, false},
		{"empty list", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := clampIndex(tt.idx, tt.n)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRankHashtags_TruncatesToLimit(t *testing.T) {
	ai := new(mockLLM)
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"result": ["a", "b", "c", "d"]}`, nil)

	ranked, err := rankHashtags(context.Background(), ai, "fitness", []string{"a", "b", "c", "d"}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ranked)
}

func TestRankHashtags_MalformedResponseFails(t *testing.T) {
	ai := new(mockLLM)
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("sure, here are the best hashtags: #fit", nil)

	_, err := rankHashtags(context.Background(), ai, "fitness", []string{"fit"}, 10)
	assert.Error(t, err)
}

func TestRankHashtags_StripsCodeFences(t *testing.T) {
	ai := new(mockLLM)
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("```json\n{\"result\": [\"fit\"]}\n```", nil)

	ranked, err := rankHashtags(context.Background(), ai, "fitness", []string{"fit"}, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"fit"}, ranked)
}

func TestFilterByBios_SelectsAndClamps(t *testing.T) {
	records := []model.CreatorRecord{
		{ID: "0", Username: "u0"},
		{ID: "1", Username: "u1"},
		{ID: "2", Username: "u2"},
		{ID: "3", Username: "u3"},
		{ID: "4", Username: "u4"},
	}

	ai := new(mockLLM)
	// Index 7 exceeds the list; it must resolve to the last record, not fail.
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"result": [0, 2, 7]}`, nil)

	final, err := filterByBios(context.Background(), ai, "fitness", records)
	require.NoError(t, err)
	require.Len(t, final, 3)
	assert.Equal(t, "u0", final[0].Username)
	assert.Equal(t, "u2", final[1].Username)
	assert.Equal(t, "u4", final[2].Username)
}

func TestFilterByBios_NegativeIndexDropped(t *testing.T) {
	records := []model.CreatorRecord{{ID: "0", Username: "u0"}}

	ai := new(mockLLM)
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return(`{"result": [-2, 0]}`, nil)

	final, err := filterByBios(context.Background(), ai, "fitness", records)
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, "u0", final[0].Username)
}

func TestFilterByBios_EmptyInput(t *testing.T) {
	ai := new(mockLLM)

	final, err := filterByBios(context.Background(), ai, "fitness", nil)
	require.NoError(t, err)
	assert.Empty(t, final)
	ai.AssertNotCalled(t, "Chat")
}

func TestFilterByBios_MalformedResponseFails(t *testing.T) {
	ai := new(mockLLM)
	ai.On("Chat", mock.Anything, mock.Anything, mock.Anything).
		Return("the best bios are 0 and 2", nil)

	_, err := filterByBios(context.Background(), ai, "fitness", []model.CreatorRecord{{ID: "0"}})
	assert.Error(t, err)
}
