// Package discovery finds candidate creators for a campaign: hashtag search,
// LLM hashtag ranking, concurrent post/profile fan-out, eligibility
// filtering, and a final LLM pass over biographies.
package discovery

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matchbox-ai/outreach-cli/internal/config"
	"github.com/matchbox-ai/outreach-cli/internal/model"
	"github.com/matchbox-ai/outreach-cli/pkg/instagram"
	"github.com/matchbox-ai/outreach-cli/pkg/llm"
)

// Reporter receives progress updates for the end user. Either field may be
// nil.
type Reporter struct {
	Status func(msg string)
	Image  func(url string)
}

func (r Reporter) status(format string, args ...any) {
	if r.Status != nil {
		r.Status(fmt.Sprintf(format, args...))
	}
}

func (r Reporter) image(url string) {
	if r.Image != nil {
		r.Image(url)
	}
}

// Pipeline runs one bounded-latency discovery pass per campaign.
type Pipeline struct {
	search   instagram.Client
	ai       llm.Client
	cfg      config.DiscoveryConfig
	reporter Reporter
}

// NewPipeline creates a discovery pipeline.
func NewPipeline(search instagram.Client, ai llm.Client, cfg config.DiscoveryConfig, reporter Reporter) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.MaxHashtags <= 0 {
		cfg.MaxHashtags = 10
	}
	return &Pipeline{search: search, ai: ai, cfg: cfg, reporter: reporter}
}

// userCaption pairs a post author with the first caption seen for them under
// one hashtag.
type userCaption struct {
	userID  string
	caption string
}

// Discover produces an ordered, bounded candidate list for the campaign.
// Per-item search and profile errors are logged and isolated; unparseable
// model output fails the whole run.
func (p *Pipeline) Discover(ctx context.Context, campaign model.CampaignContext) ([]model.CreatorRecord, error) {
	log := zap.L().With(zap.String("component", "discovery"), zap.String("category", campaign.Category))
	p.reporter.status("Creator search has started ...")

	minFollowers := p.cfg.MinFollowers
	if campaign.MinFollowers > 0 {
		minFollowers = campaign.MinFollowers
	}

	hashtags, err := p.search.SearchHashtags(ctx, campaign.Category)
	if err != nil {
		return nil, eris.Wrap(err, "discovery: hashtag search")
	}
	log.Info("hashtags found", zap.Int("count", len(hashtags)))

	ranked, err := rankHashtags(ctx, p.ai, campaign.Category, hashtags, p.cfg.MaxHashtags)
	if err != nil {
		return nil, err
	}
	log.Info("hashtags ranked", zap.Strings("hashtags", ranked))

	store := NewCandidateStore()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, tag := range ranked {
		g.Go(func() error {
			p.processHashtag(gctx, tag, minFollowers, store, log)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "discovery: hashtag fan-out")
	}
	log.Info("profiles collected", zap.Int("unique", store.Len()))

	final, err := filterByBios(ctx, p.ai, campaign.Category, store.Records())
	if err != nil {
		return nil, err
	}

	p.reporter.status("Creator search has ended.\nSuccessfully found %d creators.", len(final))
	for i, rec := range final {
		if i >= 4 {
			break
		}
		if rec.ProfileImageURL != "" {
			p.reporter.image(rec.ProfileImageURL)
		}
		p.reporter.status("%s", rec.Digest(i+1))
	}

	return final, nil
}

// processHashtag fetches one hashtag's posts and the unique authors' full
// profiles. Errors are logged and only remove that item from consideration.
func (p *Pipeline) processHashtag(ctx context.Context, hashtag string, minFollowers int, store *CandidateStore, log *zap.Logger) {
	log = log.With(zap.String("hashtag", hashtag))

	posts, err := p.search.PostsByHashtag(ctx, hashtag)
	if err != nil {
		log.Warn("hashtag posts fetch failed", zap.Error(err))
		return
	}

	// One profile lookup per user per hashtag; the first caption wins.
	seen := make(map[string]struct{}, len(posts))
	pairs := make([]userCaption, 0, len(posts))
	for _, post := range posts {
		uid := post.Caption.User.ID
		if uid == "" {
			continue
		}
		if _, dup := seen[uid]; dup {
			continue
		}
		seen[uid] = struct{}{}
		pairs = append(pairs, userCaption{userID: uid, caption: post.Caption.Text})
	}
	if p.cfg.MaxUsersPerHashtag > 0 && len(pairs) > p.cfg.MaxUsersPerHashtag {
		pairs = pairs[:p.cfg.MaxUsersPerHashtag]
	}

	// Each worker writes its own slot; the merge below is the only shared
	// write and goes through the store's lock.
	results := make([]*model.CreatorRecord, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, pair := range pairs {
		g.Go(func() error {
			profile, err := p.search.UserInfo(gctx, pair.userID)
			if err != nil {
				log.Warn("profile fetch failed", zap.String("user_id", pair.userID), zap.Error(err))
				return nil
			}
			if !eligible(profile, minFollowers, p.cfg.MinPosts) {
				log.Debug("profile rejected", zap.String("username", profile.Username))
				return nil
			}
			rec := toRecord(profile)
			rec.Caption = pair.caption
			results[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	batch := make([]model.CreatorRecord, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			batch = append(batch, *rec)
		}
	}
	kept := store.AddAll(batch)
	log.Info("hashtag processed", zap.Int("candidates", len(batch)), zap.Int("new", kept))
}

func toRecord(pr *instagram.Profile) model.CreatorRecord {
	return model.CreatorRecord{
		ID:              pr.ID,
		Username:        pr.Username,
		FullName:        pr.FullName,
		PublicEmail:     pr.PublicEmail,
		Category:        pr.Category,
		Biography:       pr.Biography,
		MediaCount:      pr.MediaCount,
		FollowerCount:   pr.FollowerCount,
		IsBusiness:      pr.IsBusiness,
		ProfileImageURL: pr.ProfilePicURLHD,
	}
}
