package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/character"
	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/identity"
	mw "github.com/kasuganosora/middleearth/middleware"
	"github.com/kasuganosora/middleearth/ranking"
	"github.com/kasuganosora/middleearth/scheduler"
	"github.com/kasuganosora/middleearth/session"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Deps is everything the HTTP API needs.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Sessions   *session.Store
	Catalog    *catalog.Catalog
	Identity   *identity.Service
	Characters *character.Service
	Ranking    *ranking.Service
	Scheduler  *scheduler.Scheduler
	Logger     *zap.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(d Deps) *gin.Engine {
	useJSONFieldNames()
	cfg := d.Config

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(d.Logger), mw.Recovery(d.Logger))
	if cfg.Security.RateLimitRPS > 0 {
		r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authH := NewAuthHandler(d.Identity)
	catH := NewCatalogHandler(d.Catalog)
	charH := NewCharacterHandler(d.Characters)
	rankH := NewRankingHandler(d.Ranking)
	adminH := NewAdminHandler(d.DB, d.Scheduler, d.Logger)
	auth := mw.Auth(d.Sessions)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", authH.Logout)
		authG.POST("/change-password", auth, authH.ChangePassword)
		authG.GET("/profile", auth, authH.Profile)
		authG.PATCH("/profile", auth, authH.UpdateProfile)
		authG.DELETE("/account", auth, authH.DeleteAccount)

		api.GET("/races", auth, catH.Races)
		api.GET("/races/:id", auth, catH.Race)
		api.GET("/classes", auth, catH.Classes)
		api.GET("/classes/:id", auth, catH.Class)

		api.GET("/leaderboard", rankH.Leaderboard)

		charsG := api.Group("/characters")
		charsG.Use(auth)
		charsG.GET("", charH.List)
		charsG.POST("", charH.Create)
		charsG.POST("/roll-attributes", charH.RollAttributes)
		charsG.GET("/statistics", rankH.Statistics)
		charsG.GET("/:id", charH.Get)
		charsG.PATCH("/:id", charH.Update)
		charsG.DELETE("/:id", charH.Delete)
		charsG.POST("/:id/level-up", charH.LevelUp)
		charsG.POST("/:id/experience", charH.GrantExperience)
		charsG.GET("/:id/skills", charH.ListSkills)
		charsG.POST("/:id/skills", charH.LearnSkill)
		charsG.GET("/:id/stats", charH.Stats)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Server.AdminIPs), AdminAuth(cfg.Server.AdminKey))
		adminG.POST("/catalog/seed", adminH.SeedCatalog)
		adminG.POST("/ranking/refresh", adminH.RefreshRanking)
		adminG.GET("/scheduler", adminH.ListSchedulerTasks)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "code": apperr.CodeNotFound, "message": "not found"})
	})
	return r
}
