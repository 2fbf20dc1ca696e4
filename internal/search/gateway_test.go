package search

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscout/backend/config"
	"github.com/adscout/backend/internal/apperr"
	"github.com/adscout/backend/internal/graph"
	"github.com/adscout/backend/internal/metrics"
	"github.com/adscout/backend/internal/token"
)

type fakeSearcher struct {
	calls  int
	token  string
	params graph.SearchParams
	body   []byte
	err    error
}

func (f *fakeSearcher) SearchAds(ctx context.Context, tok string, p graph.SearchParams) ([]byte, error) {
	f.calls++
	f.token = tok
	f.params = p
	return f.body, f.err
}

func TestGateway_Validation(t *testing.T) {
	f := &fakeSearcher{}
	g := NewGateway(f, token.NewStore("tok"), "BR", "", nil)

	for _, q := range []string{"", "   "} {
		_, err := g.Search(context.Background(), graph.SearchParams{Query: q})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	}
	_, err := g.Search(context.Background(), graph.SearchParams{Query: "shoes", Limit: -1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Zero(t, f.calls)
}

func TestGateway_NoUsableToken(t *testing.T) {
	f := &fakeSearcher{}
	for _, tok := range []string{"", config.PlaceholderToken} {
		g := NewGateway(f, token.NewStore(tok), "BR", "", nil)
		_, err := g.Search(context.Background(), graph.SearchParams{Query: "shoes"})
		assert.ErrorIs(t, err, apperr.ErrCredential)
	}
	assert.Zero(t, f.calls)
}

func TestGateway_AppliesDefaultsAndUsesCurrentToken(t *testing.T) {
	f := &fakeSearcher{body: []byte(`{"data":[]}`)}
	store := token.NewStore("default-tok")
	store.SetUser("user-tok")
	g := NewGateway(f, store, "BR", "pt", nil)

	body, err := g.Search(context.Background(), graph.SearchParams{Query: " shoes "})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
	assert.Equal(t, "user-tok", f.token)
	assert.Equal(t, "shoes", f.params.Query)
	assert.Equal(t, []string{"BR"}, f.params.Countries)
	assert.Equal(t, []string{"pt"}, f.params.Languages)

	_, err = g.Search(context.Background(), graph.SearchParams{Query: "shoes", Countries: []string{"US"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"US"}, f.params.Countries)
}

func TestGateway_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	f := &fakeSearcher{err: &apperr.UpstreamError{Status: 400, Message: "bad"}}
	g := NewGateway(f, token.NewStore("tok"), "BR", "", nil)
	g.SetMetrics(m)

	_, _ = g.Search(context.Background(), graph.SearchParams{Query: ""})
	_, err := g.Search(context.Background(), graph.SearchParams{Query: "x"})
	require.Error(t, err)

	expected := `
# HELP adscout_search_requests_total Ad Library searches by outcome.
# TYPE adscout_search_requests_total counter
adscout_search_requests_total{status="invalid"} 1
adscout_search_requests_total{status="upstream_error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, stringsReader(expected), "adscout_search_requests_total"))
}
