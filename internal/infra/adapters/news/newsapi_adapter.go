// File: internal/infra/adapters/news/newsapi_adapter.go
package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"telegram-ai-chatbot/internal/domain"
	"telegram-ai-chatbot/internal/domain/model"
	"telegram-ai-chatbot/internal/domain/ports/adapter"
	"telegram-ai-chatbot/internal/infra/metrics"
)

var _ adapter.NewsProviderAdapter = (*NewsAPIAdapter)(nil)

// NewsAPIAdapter fetches articles from a NewsAPI-compatible endpoint
// (GET /v2/everything) and caches responses per query for a short TTL so a
// burst of identical questions costs one upstream call.
type NewsAPIAdapter struct {
	apiKey string
	base   string
	client *http.Client
	ttl    time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	articles []model.Article
	fetched  time.Time
}

func NewNewsAPIAdapter(apiKey, base string, ttl time.Duration) (*NewsAPIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("news api key empty")
	}
	if base == "" {
		base = "https://newsapi.org"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &NewsAPIAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
		ttl:    ttl,
		cache:  map[string]cacheEntry{},
		now:    time.Now,
	}, nil
}

func (n *NewsAPIAdapter) FetchEverything(ctx context.Context, query string, limit int) ([]model.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("news query: %w", domain.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = 5
	}

	key := strings.ToLower(query) + "|" + strconv.Itoa(limit)
	if arts, ok := n.cached(key); ok {
		metrics.IncNewsFetch("hit")
		return arts, nil
	}
	metrics.IncNewsFetch("miss")

	q := url.Values{}
	q.Set("q", query)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("sortBy", "publishedAt")
	q.Set("apiKey", n.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.base+"/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("newsapi http %d", resp.StatusCode)
	}

	var payload struct {
		Status   string `json:"status"`
		Articles []struct {
			Source struct {
				Name string `json:"name"`
			} `json:"source"`
			Title       string    `json:"title"`
			Description string    `json:"description"`
			URL         string    `json:"url"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi status %q", payload.Status)
	}

	articles := make([]model.Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		articles = append(articles, model.Article{
			Title:       a.Title,
			Description: a.Description,
			Source:      a.Source.Name,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
		})
	}

	n.store(key, articles)
	return articles, nil
}

func (n *NewsAPIAdapter) cached(key string) ([]model.Article, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	e, ok := n.cache[key]
	if !ok || n.now().Sub(e.fetched) > n.ttl {
		delete(n.cache, key)
		return nil, false
	}
	return e.articles, true
}

func (n *NewsAPIAdapter) store(key string, articles []model.Article) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cache[key] = cacheEntry{articles: articles, fetched: n.now()}
}
