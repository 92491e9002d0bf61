package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Failure classes mirror the completion gateway; an empty query is rejected
// locally before any call is attempted.
var (
	ErrEmptyQuery      = errors.New("search: empty query")
	ErrUnavailable     = errors.New("search: service unavailable")
	ErrRateLimited     = errors.New("search: rate limited")
	ErrInvalidResponse = errors.New("search: invalid response")
)

type Result struct {
	Summary string
	Links   []string
}

// Client queries the DuckDuckGo Instant Answer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	maxLinks   int
}

func New(baseURL string, timeout time.Duration) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.duckduckgo.com/"
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		maxLinks:   5,
	}
}

type instantAnswer struct {
	AbstractText  string         `json:"AbstractText"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	FirstURL string         `json:"FirstURL"`
	Topics   []relatedTopic `json:"Topics"`
}

func (c *Client) Search(ctx context.Context, query string) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}

	base, err := url.Parse(c.baseURL)
	if err != nil {
		return Result{}, fmt.Errorf("invalid search base url: %w", err)
	}
	u := *base
	qs := u.Query()
	qs.Set("q", query)
	qs.Set("format", "json")
	qs.Set("no_html", "1")
	u.RawQuery = qs.Encode()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, fmt.Errorf("%w: status=%d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Result{}, fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	out := Result{Summary: answer.AbstractText}
	out.Links = collectLinks(answer, c.maxLinks)
	return out, nil
}

func collectLinks(answer instantAnswer, max int) []string {
	var links []string
	if answer.AbstractURL != "" {
		links = append(links, answer.AbstractURL)
	}
	var walk func(topics []relatedTopic)
	walk = func(topics []relatedTopic) {
		for _, t := range topics {
			if len(links) >= max {
				return
			}
			if t.FirstURL != "" {
				links = append(links, t.FirstURL)
			}
			if len(t.Topics) > 0 {
				walk(t.Topics)
			}
		}
	}
	walk(answer.RelatedTopics)
	return links
}
