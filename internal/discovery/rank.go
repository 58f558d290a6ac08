package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/llm"
)

const hashtagRankSystemPrompt = `You are a social media expert with advanced data analysis abilities whose one and only task is to filter out the best hashtags (Top 10) out of a bunch given to you as a list, on the basis of how well they fit with the category provided and how probable it is for influencers to post to that hashtag. You only have to reply with a JSON object as follows: {"result": []}`

const bioFilterSystemPrompt = `You are a social media expert with advanced data analysis abilities whose one and only task is to filter out the bios out of a bunch given to you as a numbered list, on the basis of how well they fit with the category provided and how probable it is that the bio is from an influencer, which should be considered a parameter of utmost priority. You only have to reply with a JSON object holding the zero-based indices of the best bios (make SURE the indices do not exceed the length of the list): {"result": []}`

// rankHashtags asks the model for the hashtags most relevant to the campaign
// category. Malformed model output aborts discovery; there is no fallback to
// the unfiltered set.
func rankHashtags(ctx context.Context, ai llm.Client, category string, hashtags []string, limit int) ([]string, error) {
	user := fmt.Sprintf("Category: %s\nHashtags: %s", category, strings.Join(hashtags, ", "))

	resp, err := ai.Chat(ctx, hashtagRankSystemPrompt, user)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: rank hashtags")
	}

	var parsed struct {
		Result []string `json:"result"`
	}
	if err := llm.DecodeJSON(resp, &parsed); err != nil {
		return nil, eris.Wrap(err, "discovery: hashtag ranking unparseable")
	}

	ranked := parsed.Result
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// filterByBios runs the second model pass over surviving biographies and
// returns the records at the model's chosen indices, in the returned order.
func filterByBios(ctx context.Context, ai llm.Client, category string, records []model.CreatorRecord) ([]model.CreatorRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}

	var bios strings.Builder
	for i, rec := range records {
		fmt.Fprintf(&bios, "[%d] %s\n", i, rec.Biography)
	}
	user := fmt.Sprintf("Category: %s\nBios:\n%s", category, bios.String())

	resp, err := ai.Chat(ctx, bioFilterSystemPrompt, user)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: filter bios")
	}

	var parsed struct {
		Result []int `json:"result"`
	}
	if err := llm.DecodeJSON(resp, &parsed); err != nil {
		return nil, eris.Wrap(err, "discovery: bio filter unparseable")
	}

	selected := make([]model.CreatorRecord, 0, len(parsed.Result))
	for _, idx := range parsed.Result {
		clamped, ok := clampIndex(idx, len(records))
		if !ok {
			continue
		}
		if clamped != idx {
			// TODO: out-of-range indices are clamped to the last valid record
			// instead of rejected; revisit whether the model prompt should be
			// tightened to make this path unreachable.
			zap.L().Warn("bio filter index out of range, clamping",
				zap.Int("index", idx),
				zap.Int("records", len(records)),
			)
		}
		selected = append(selected, records[clamped])
	}
	return selected, nil
}

// clampIndex maps an out-of-range index to the largest valid one. Negative
// indices are dropped entirely.
func clampIndex(idx, n int) (int, bool) {
	if n == 0 || idx < 0 {
		return 0, false
	}
	if idx >= n {
		return n - 1, true
	}
	return idx, true
}
