package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	mw "github.com/kasuganosora/middleearth/middleware"
	"github.com/kasuganosora/middleearth/ranking"
)

// RankingHandler handles leaderboard and statistics endpoints.
type RankingHandler struct {
	svc *ranking.Service
}

// NewRankingHandler creates a RankingHandler.
func NewRankingHandler(svc *ranking.Service) *RankingHandler {
	return &RankingHandler{svc: svc}
}

// Leaderboard handles GET /api/leaderboard?limit=20. Bad or missing limits
// fall back to the configured size.
func (h *RankingHandler) Leaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	entries, err := h.svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", entries)
}

// Statistics handles GET /api/characters/statistics.
func (h *RankingHandler) Statistics(c *gin.Context) {
	st, err := h.svc.Statistics(c.Request.Context(), mw.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "", st)
}
