// Package instagram wraps the social search vendor API: hashtag search,
// posts by hashtag, and profile lookup.
package instagram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://instagram-social-api.p.rapidapi.com/v1"
	defaultHost    = "instagram-social-api.p.rapidapi.com"
)

// Client defines the search operations used by discovery.
type Client interface {
	SearchHashtags(ctx context.Context, query string) ([]string, error)
	PostsByHashtag(ctx context.Context, hashtag string) ([]Post, error)
	UserInfo(ctx context.Context, userID string) (*Profile, error)
}

// Post is a single post under a hashtag. Only the authoring user and caption
// text are consumed downstream.
type Post struct {
	Caption Caption `json:"caption"`
}

// Caption carries the post text and its author.
type Caption struct {
	Text string      `json:"text"`
	User CaptionUser `json:"user"`
}

// CaptionUser identifies the post author.
type CaptionUser struct {
	ID string `json:"id"`
}

// Profile is a full creator profile.
type Profile struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	FullName        string `json:"full_name"`
	Biography       string `json:"biography"`
	Category        string `json:"category"`
	IsBusiness      bool   `json:"is_business"`
	PublicEmail     string `json:"public_email"`
	FollowerCount   int    `json:"follower_count"`
	MediaCount      int    `json:"media_count"`
	ProfilePicURLHD string `json:"profile_pic_url_hd"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHost overrides the RapidAPI host header.
func WithHost(host string) Option {
	return func(c *httpClient) {
		c.host = host
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit overrides the default request rate (5 req/s).
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	host    string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a social search client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		host:    defaultHost,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(5, 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// envelope is the common {"data": {"items": [...]}} response wrapper.
type envelope struct {
	Data struct {
		Items json.RawMessage `json:"items"`
	} `json:"data"`
}

// profileEnvelope wraps profile lookups, which return the record directly
// under "data".
type profileEnvelope struct {
	Data Profile `json:"data"`
}

func (c *httpClient) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "instagram: rate limit")
		}
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return eris.Wrap(err, "instagram: create request")
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "instagram: GET %s", path)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "instagram: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("instagram: GET %s: unexpected status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "instagram: decode %s response", path)
	}
	return nil
}

// SearchHashtags returns hashtag names matching a keyword.
func (c *httpClient) SearchHashtags(ctx context.Context, query string) ([]string, error) {
	var env envelope
	params := url.Values{"search_query": []string{query}}
	if err := c.get(ctx, "/search_hashtags", params, &env); err != nil {
		return nil, err
	}

	var items []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Data.Items, &items); err != nil {
		return nil, eris.Wrap(err, "instagram: decode hashtag items")
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names, nil
}

// PostsByHashtag returns a bounded page of posts for one hashtag.
func (c *httpClient) PostsByHashtag(ctx context.Context, hashtag string) ([]Post, error) {
	var env envelope
	params := url.Values{"hashtag": []string{hashtag}}
	if err := c.get(ctx, "/hashtag", params, &env); err != nil {
		return nil, err
	}

	var posts []Post
	if err := json.Unmarshal(env.Data.Items, &posts); err != nil {
		return nil, eris.Wrap(err, "instagram: decode post items")
	}
	return posts, nil
}

// UserInfo fetches a full profile by user identifier.
func (c *httpClient) UserInfo(ctx context.Context, userID string) (*Profile, error) {
	var env profileEnvelope
	params := url.Values{"username_or_id_or_url": []string{userID}}
	if err := c.get(ctx, "/info", params, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
