package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/middleearth/api/rest"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/cache"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/character"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/identity"
	"github.com/kasuganosora/middleearth/model"
	"github.com/kasuganosora/middleearth/ranking"
	"github.com/kasuganosora/middleearth/scheduler"
	"github.com/kasuganosora/middleearth/session"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Migrates the schema, makes sure the catalog is seeded and serves the HTTP API until interrupted.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port; overrides server.port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer dbadapter.Close(db)

	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if cfg.Security.JWTSecret == "" {
		return errors.New("security.jwt_secret must be set")
	}

	// ---- Schema and catalog ----
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	if _, err := catalog.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	cat, err := catalog.Load(ctx, db)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", zap.Int("races", len(cat.Races())), zap.Int("classes", len(cat.Classes())))

	// ---- Audit ----
	var recorder audit.Recorder = audit.Nop{}
	if cfg.Audit.Enabled {
		auditSvc := audit.New(db, cfg.Audit, logger)
		defer auditSvc.Stop(context.Background())
		recorder = auditSvc
	}

	// ---- Cache ----
	c, err := cache.NewCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer c.Close()
	logger.Info("cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Services ----
	sessions := session.NewStore(c, cfg.Security)
	board := ranking.NewService(db, c, cfg.Game, logger)
	ids, err := identity.NewService(identity.Config{
		DB: db, Sessions: sessions, Security: cfg.Security, Board: board, Audit: recorder, Logger: logger,
	})
	if err != nil {
		return err
	}
	chars, err := character.NewService(character.Config{
		DB: db, Cache: c, Catalog: cat, Rules: cfg.Game, Audit: recorder, Board: board, Logger: logger,
	})
	if err != nil {
		return err
	}

	// ---- Scheduler ----
	sched := scheduler.New(logger, time.Minute)
	defer sched.Stop()
	sched.AddTicker(ranking.RefreshTask, chars.Rules().LeaderboardRefresh, func(ctx context.Context) error {
		_, err := board.Refresh(ctx)
		return err
	})
	if err := sched.RunNow(ctx, ranking.RefreshTask); err != nil {
		logger.Warn("initial leaderboard refresh failed", zap.Error(err))
	}

	// ---- HTTP ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := rest.NewRouter(rest.Deps{
		Config: cfg, DB: db, Sessions: sessions, Catalog: cat,
		Identity: ids, Characters: chars, Ranking: board, Scheduler: sched, Logger: logger,
	})

	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
