package token

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adscout/backend/config"
	"github.com/adscout/backend/internal/graph"
)

// stubIdentity accepts only the token "valid".
func stubIdentity(t *testing.T) (*graph.Client, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("access_token") == "valid" {
			_, _ = w.Write([]byte(`{"id":"1"}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Malformed access token"}}`))
	}))
	t.Cleanup(srv.Close)
	return graph.NewClient(srv.URL, "v20.0", 5*time.Second, nil), &calls
}

func TestGuard_Verify(t *testing.T) {
	client, _ := stubIdentity(t)
	g := NewGuard(client, nil)

	assert.True(t, g.Verify(context.Background(), "valid"))
	assert.False(t, g.Verify(context.Background(), "malformed"))
	assert.False(t, g.Verify(context.Background(), "revoked"))
}

func TestGuard_VerifySkipsUnusableTokens(t *testing.T) {
	client, calls := stubIdentity(t)
	g := NewGuard(client, nil)

	assert.False(t, g.Verify(context.Background(), ""))
	assert.False(t, g.Verify(context.Background(), config.PlaceholderToken))
	assert.Equal(t, 0, *calls)
}

func TestGuard_VerifyNetworkFailureIsInvalid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	g := NewGuard(graph.NewClient(base, "v20.0", time.Second, nil), nil)
	assert.False(t, g.Verify(context.Background(), "valid"))
}

func TestGuard_CheckDefault(t *testing.T) {
	client, _ := stubIdentity(t)
	g := NewGuard(client, nil)

	assert.True(t, g.CheckDefault(context.Background(), NewStore("valid")))
	assert.False(t, g.CheckDefault(context.Background(), NewStore(config.PlaceholderToken)))
}
