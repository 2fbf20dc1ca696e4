// Package search relays Ad Library searches to the Graph API.
package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/adscout/backend/internal/apperr"
	"github.com/adscout/backend/internal/graph"
	"github.com/adscout/backend/internal/metrics"
	"github.com/adscout/backend/internal/token"
)

// Search outcomes reported to metrics.
const (
	statusOK       = "ok"
	statusInvalid  = "invalid"
	statusNoToken  = "no_token"
	statusUpstream = "upstream_error"
)

// AdSearcher calls the ads_archive endpoint.
type AdSearcher interface {
	SearchAds(ctx context.Context, token string, p graph.SearchParams) ([]byte, error)
}

// TokenSource yields the token to search with.
type TokenSource interface {
	Current() string
}

// Gateway validates search input, applies defaults and calls the Ad Library.
type Gateway struct {
	client          AdSearcher
	tokens          TokenSource
	defaultCountry  string
	defaultLanguage string
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

// NewGateway creates a search gateway. defaultCountry and defaultLanguage fill empty filters.
func NewGateway(client AdSearcher, tokens TokenSource, defaultCountry, defaultLanguage string, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		client:          client,
		tokens:          tokens,
		defaultCountry:  defaultCountry,
		defaultLanguage: defaultLanguage,
		logger:          logger,
	}
}

// SetMetrics enables Prometheus metrics. Optional.
func (g *Gateway) SetMetrics(m *metrics.Metrics) { g.metrics = m }

// Search returns the upstream response body verbatim.
func (g *Gateway) Search(ctx context.Context, p graph.SearchParams) ([]byte, error) {
	p.Query = strings.TrimSpace(p.Query)
	if p.Query == "" {
		g.metrics.SearchRequest(statusInvalid)
		return nil, apperr.Validation("query is required")
	}
	if p.Limit < 0 {
		g.metrics.SearchRequest(statusInvalid)
		return nil, apperr.Validation("limit must be a positive integer")
	}
	tok := g.tokens.Current()
	if !token.Usable(tok) {
		g.metrics.SearchRequest(statusNoToken)
		return nil, apperr.Credential("no valid access token configured")
	}

	if len(p.Countries) == 0 && g.defaultCountry != "" {
		p.Countries = []string{g.defaultCountry}
	}
	if len(p.Languages) == 0 && g.defaultLanguage != "" {
		p.Languages = []string{g.defaultLanguage}
	}
	if p.SearchType == "advertiser" {
		g.logger.Info("advertiser search is not supported upstream, using keyword search", zap.String("query", p.Query))
	}

	body, err := g.client.SearchAds(ctx, tok, p)
	if err != nil {
		var ue *apperr.UpstreamError
		if errors.As(err, &ue) {
			g.logger.Warn("ad library search failed", zap.Int("status", ue.Status), zap.String("message", ue.Message))
		}
		g.metrics.SearchRequest(statusUpstream)
		return nil, err
	}
	g.metrics.SearchRequest(statusOK)
	return body, nil
}
