package token

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adscout/backend/pkg/response"
)

// SetTokenRequest is the body for POST /api/set-token.
type SetTokenRequest struct {
	Token string `json:"token"`
}

// Handler handles token endpoints.
type Handler struct {
	store  *Store
	guard  *Guard
	logger *zap.Logger
}

// NewHandler creates a token handler.
func NewHandler(store *Store, guard *Guard, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, guard: guard, logger: logger}
}

// SetToken handles POST /api/set-token.
func (h *Handler) SetToken(c *gin.Context) {
	var req SetTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.JSON(c, http.StatusBadRequest, gin.H{"success": false, "message": "token not provided"})
		return
	}
	if !h.guard.Verify(c.Request.Context(), req.Token) {
		response.JSON(c, http.StatusBadRequest, gin.H{"success": false, "message": "token is invalid or expired"})
		return
	}
	h.store.SetUser(req.Token)
	h.logger.Info("user access token saved", zap.String("token", Fingerprint(req.Token)))
	response.OK(c, gin.H{"success": true, "message": "token is valid and was saved"})
}

// Status handles GET /api/token/status.
func (h *Handler) Status(c *gin.Context) {
	source := h.store.Source()
	response.OK(c, gin.H{"configured": source != SourceNone, "source": source})
}
