package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adscout/backend/internal/apperr"
	"github.com/adscout/backend/internal/graph"
	"github.com/adscout/backend/pkg/response"
)

// Searcher runs one Ad Library search.
type Searcher interface {
	Search(ctx context.Context, p graph.SearchParams) ([]byte, error)
}

// Handler handles GET /api/search.
type Handler struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewHandler creates a search handler.
func NewHandler(searcher Searcher, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{searcher: searcher, logger: logger}
}

// Search handles GET /api/search. The upstream JSON is relayed unchanged.
func (h *Handler) Search(c *gin.Context) {
	p := graph.SearchParams{
		Query:        c.Query("query"),
		SearchType:   c.Query("searchType"),
		Countries:    splitList(strings.ToUpper(c.Query("country"))),
		Languages:    splitList(c.Query("language")),
		ActiveStatus: strings.ToUpper(c.Query("adActiveStatus")),
		AdType:       strings.ToUpper(c.Query("adType")),
	}
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		p.Limit = n
	}

	body, err := h.searcher.Search(c.Request.Context(), p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var ue *apperr.UpstreamError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrCredential):
		response.JSON(c, http.StatusBadRequest, gin.H{
			"error":     "access token required",
			"needToken": true,
			"message":   "No valid Facebook access token is configured. Please provide one.",
		})
	case errors.As(err, &ue):
		var details any = ue.Message
		if json.Valid(ue.Body) {
			details = json.RawMessage(ue.Body)
		}
		response.JSON(c, http.StatusInternalServerError, gin.H{
			"error":      "ad library request failed",
			"details":    details,
			"statusCode": ue.Status,
		})
	default:
		h.logger.Error("search failed", zap.Error(err))
		response.Internal(c, "search failed")
	}
}

// splitList parses "BR, US" into ["BR","US"].
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
