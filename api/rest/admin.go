package rest

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/ranking"
	"github.com/kasuganosora/middleearth/scheduler"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	db     *gorm.DB
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{db: db, sched: sched, logger: logger}
}

// SeedCatalog inserts any missing built-in races and classes.
// POST /api/admin/catalog/seed
func (h *AdminHandler) SeedCatalog(c *gin.Context) {
	res, err := catalog.Seed(c.Request.Context(), h.db)
	if err != nil {
		fail(c, err)
		return
	}
	races, classes, err := catalog.Counts(c.Request.Context(), h.db)
	if err != nil {
		fail(c, err)
		return
	}
	h.logger.Info("admin seeded catalog", zap.Int64("races_added", res.Races), zap.Int64("classes_added", res.Classes))
	respond(c, http.StatusOK, "catalog seeded", gin.H{
		"inserted": res,
		"races":    races,
		"classes":  classes,
	})
}

// RefreshRanking rebuilds the leaderboard cache now instead of waiting for
// the next tick.
// POST /api/admin/ranking/refresh
func (h *AdminHandler) RefreshRanking(c *gin.Context) {
	if err := h.sched.RunNow(c.Request.Context(), ranking.RefreshTask); err != nil {
		fail(c, apperr.Wrap(err, "refresh leaderboard"))
		return
	}
	respond(c, http.StatusOK, "leaderboard refreshed", nil)
}

// ListSchedulerTasks returns every registered task with its run counters.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	respond(c, http.StatusOK, "", h.sched.Tasks())
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"success": false, "message": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(adminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "unauthorized"})
			return
		}
		c.Next()
	}
}
