package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"researcher/internal/domain"
)

// Label is the source label attached to summaries from this client.
const Label = "Wikipedia"

// ErrNotFound is returned when no article matches the query.
var ErrNotFound = errors.New("wikipedia: no matching article")

// Config configures the MediaWiki API client.
type Config struct {
	// BaseURL is the api.php endpoint. Empty means the public Wikipedia
	// for Language.
	BaseURL   string
	Language  string
	UserAgent string
	Timeout   time.Duration
}

// Client fetches plain-text article intros through the MediaWiki action API.
type Client struct {
	endpoint  string
	userAgent string
	client    *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Language + ".wikipedia.org/w/api.php"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "researcher/1.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{endpoint: cfg.BaseURL, userAgent: cfg.UserAgent, client: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) Name() string { return Label }

// Summary returns the first sentences of the best matching article for
// query. It fails with ErrNotFound when nothing matches and with
// *domain.AmbiguousTopicError when the match is a disambiguation page.
func (c *Client) Summary(ctx context.Context, query string, sentences int) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", ErrNotFound
	}
	if sentences <= 0 {
		sentences = 3
	}
	title, err := c.search(ctx, query)
	if err != nil {
		return "", err
	}
	p, err := c.page(ctx, title, sentences)
	if err != nil {
		return "", err
	}
	if p.Missing {
		return "", ErrNotFound
	}
	if _, ok := p.PageProps["disambiguation"]; ok {
		opts := make([]string, 0, len(p.Links))
		for _, l := range p.Links {
			opts = append(opts, l.Title)
		}
		return "", &domain.AmbiguousTopicError{Query: p.Title, Options: opts}
	}
	extract := strings.TrimSpace(p.Extract)
	if extract == "" {
		return "", ErrNotFound
	}
	return extract, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type pageResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
}

type page struct {
	Title     string            `json:"title"`
	Missing   bool              `json:"missing"`
	Extract   string            `json:"extract"`
	PageProps map[string]string `json:"pageprops"`
	Links     []struct {
		Title string `json:"title"`
	} `json:"links"`
}

func (c *Client) search(ctx context.Context, query string) (string, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {"1"},
		"srprop":   {""},
	}
	var resp searchResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Query.Search) == 0 {
		return "", ErrNotFound
	}
	return resp.Query.Search[0].Title, nil
}

func (c *Client) page(ctx context.Context, title string, sentences int) (page, error) {
	params := url.Values{
		"action":      {"query"},
		"titles":      {title},
		"prop":        {"extracts|pageprops|links"},
		"ppprop":      {"disambiguation"},
		"exsentences": {strconv.Itoa(sentences)},
		"explaintext": {"1"},
		"plnamespace": {"0"},
		"pllimit":     {"max"},
		"redirects":   {"1"},
	}
	var resp pageResponse
	if err := c.get(ctx, params, &resp); err != nil {
		return page{}, err
	}
	if len(resp.Query.Pages) == 0 {
		return page{}, ErrNotFound
	}
	return resp.Query.Pages[0], nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("wikipedia request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("wikipedia status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("wikipedia decode: %w", err)
	}
	return nil
}
