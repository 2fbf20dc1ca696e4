// Package graph is a thin client for the Facebook Graph API endpoints used by
// the app: /me for token checks and /ads_archive for Ad Library searches.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adscout/backend/internal/apperr"
)

// AdFields is the field list requested from ads_archive.
const AdFields = "id,ad_creation_time,ad_creative_bodies,ad_creative_link_titles,ad_creative_link_descriptions," +
	"ad_creative_link_captions,page_name,page_id,ad_delivery_start_time,ad_delivery_stop_time,ad_snapshot_url," +
	"ad_creative_link_url,ad_creative_images,ad_creative_videos"

// Upstream search_type values.
const (
	SearchKeywordUnordered = "KEYWORD_UNORDERED"
	SearchKeywordExact     = "KEYWORD_EXACT_PHRASE"
)

const maxErrorBody = 64 << 10

// SearchParams are the filters of one Ad Library search.
type SearchParams struct {
	Query        string
	SearchType   string // keyword | exact | advertiser
	Countries    []string
	Languages    []string
	Limit        int // 0 = upstream default
	ActiveStatus string
	AdType       string
}

// Client calls the Graph API.
type Client struct {
	baseURL string
	version string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a Graph API client for baseURL (e.g. https://graph.facebook.com) and version (e.g. v20.0).
func NewClient(baseURL, version string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// UpstreamSearchType maps the UI search type to the upstream search_type.
// The Ad Library has no advertiser-name search; "advertiser" falls back to keyword search.
func UpstreamSearchType(searchType string) string {
	if searchType == "exact" {
		return SearchKeywordExact
	}
	return SearchKeywordUnordered
}

// Me calls /me with token. A nil error means the token was accepted.
func (c *Client) Me(ctx context.Context, token string) error {
	q := url.Values{}
	q.Set("access_token", token)
	_, err := c.get(ctx, c.endpoint("me"), q)
	return err
}

// SearchAds calls /ads_archive and returns the response body verbatim.
func (c *Client) SearchAds(ctx context.Context, token string, p SearchParams) ([]byte, error) {
	q := searchQuery(p)
	q.Set("access_token", token)

	redacted := searchQuery(p)
	redacted.Set("access_token", "TOKEN_HIDDEN")
	c.logger.Info("calling ad library", zap.String("url", c.endpoint("ads_archive")+"?"+redacted.Encode()))

	return c.get(ctx, c.endpoint("ads_archive"), q)
}

func searchQuery(p SearchParams) url.Values {
	q := url.Values{}
	q.Set("search_terms", p.Query)
	q.Set("search_type", UpstreamSearchType(p.SearchType))
	q.Set("ad_type", orDefault(p.AdType, "ALL"))
	q.Set("ad_active_status", orDefault(p.ActiveStatus, "ALL"))
	if len(p.Countries) > 0 {
		q.Set("ad_reached_countries", jsonList(p.Countries))
	}
	if len(p.Languages) > 0 {
		q.Set("languages", jsonList(p.Languages))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	q.Set("fields", AdFields)
	return q
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/" + c.version + "/" + path
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &apperr.UpstreamError{Message: redact(err.Error(), q.Get("access_token"))}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &apperr.UpstreamError{Status: resp.StatusCode, Body: body, Message: errorMessage(body, resp.Status)}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.UpstreamError{Status: resp.StatusCode, Message: "read body: " + err.Error()}
	}
	return body, nil
}

// errorMessage extracts error.message from a Graph error payload.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return fallback
}

func jsonList(values []string) string {
	b, _ := json.Marshal(values)
	return string(b)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// redact strips the token from transport error strings, which embed the request URL.
func redact(s, token string) string {
	if token == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(token), "TOKEN_HIDDEN")
}
