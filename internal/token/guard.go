package token

import (
	"context"

	"go.uber.org/zap"
)

// Verifier checks a token against the identity endpoint.
type Verifier interface {
	Me(ctx context.Context, token string) error
}

// Guard validates tokens before they are stored or used.
type Guard struct {
	verifier Verifier
	logger   *zap.Logger
}

// NewGuard creates a token guard.
func NewGuard(verifier Verifier, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{verifier: verifier, logger: logger}
}

// Verify returns true only if the identity endpoint accepted tok. Network errors count as invalid.
func (g *Guard) Verify(ctx context.Context, tok string) bool {
	if !Usable(tok) {
		return false
	}
	if err := g.verifier.Me(ctx, tok); err != nil {
		g.logger.Warn("access token rejected", zap.String("token", Fingerprint(tok)), zap.Error(err))
		return false
	}
	g.logger.Info("access token verified", zap.String("token", Fingerprint(tok)))
	return true
}

// CheckDefault verifies the store's default token and logs a warning if it is unusable.
func (g *Guard) CheckDefault(ctx context.Context, store *Store) bool {
	if g.Verify(ctx, store.Default()) {
		return true
	}
	g.logger.Warn("default access token is missing, invalid or expired; provide one through the UI")
	return false
}
