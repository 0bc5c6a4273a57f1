// Package character implements the character engine: attribute rolling,
// creation with racial bonuses, leveling, skills and soft deletion. Every
// operation is scoped to the owning user; another user's character is
// reported as not found.
package character

import (
	"context"
	"fmt"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/cache"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/config"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/mock_roller.go -package=charactermock github.com/KirkDiggler/rpg-toolkit/dice Roller

// Roller is the random source for attribute rolls.
type Roller = dice.Roller

// LeaderboardTracker is told about level and experience changes so the
// cross-user ranking can stay current. Failures are logged, never returned
// to the caller.
type LeaderboardTracker interface {
	Track(ctx context.Context, c *model.Character) error
	Untrack(ctx context.Context, characterID int64) error
}

type nopTracker struct{}

func (nopTracker) Track(context.Context, *model.Character) error { return nil }
func (nopTracker) Untrack(context.Context, int64) error          { return nil }

// Config wires a Service. DB, Cache and Catalog are required.
type Config struct {
	DB      *gorm.DB
	Cache   cache.Cache
	Catalog *catalog.Catalog
	Roller  Roller
	Rules   config.GameConfig
	Audit   audit.Recorder
	Board   LeaderboardTracker
	Logger  *zap.Logger
}

func (cfg *Config) validate() error {
	vb := apperr.NewValidationBuilder()
	if cfg.DB == nil {
		vb.RequiredField("db")
	}
	if cfg.Cache == nil {
		vb.RequiredField("cache")
	}
	if cfg.Catalog == nil {
		vb.RequiredField("catalog")
	}
	return vb.Build()
}

// Service is the character engine.
type Service struct {
	db      *gorm.DB
	cache   cache.Cache
	catalog *catalog.Catalog
	roller  Roller
	rules   config.GameConfig
	audit   audit.Recorder
	board   LeaderboardTracker
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates a character Service. Missing optional collaborators
// fall back to the crypto dice roller, stock rules and no-op audit/ranking.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	svc := &Service{
		db:      cfg.DB,
		cache:   cfg.Cache,
		catalog: cfg.Catalog,
		roller:  cfg.Roller,
		rules:   cfg.Rules.WithDefaults(),
		audit:   cfg.Audit,
		board:   cfg.Board,
		logger:  cfg.Logger,
		now:     time.Now,
	}
	if svc.roller == nil {
		svc.roller = dice.DefaultRoller
	}
	if svc.audit == nil {
		svc.audit = audit.Nop{}
	}
	if svc.board == nil {
		svc.board = nopTracker{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc, nil
}

// Rules returns the game rules in effect.
func (svc *Service) Rules() config.GameConfig { return svc.rules }

func ownedQuery(tx *gorm.DB, ownerID, characterID int64) *gorm.DB {
	return tx.Where("id = ? AND user_id = ? AND is_active = ?", characterID, ownerID, true)
}

// loadOwned reads an active character of ownerID with race and class.
func loadOwned(tx *gorm.DB, ownerID, characterID int64) (*model.Character, error) {
	var c model.Character
	err := ownedQuery(tx, ownerID, characterID).
		Preload("Race").Preload("Class").
		First(&c).Error
	if err != nil {
		if dbadapter.IsNotFound(err) {
			return nil, apperr.NotFoundf("character %d not found", characterID).
				WithMeta("character_id", characterID)
		}
		return nil, apperr.Wrap(err, "load character")
	}
	return &c, nil
}

func (svc *Service) track(ctx context.Context, c *model.Character) {
	if err := svc.board.Track(ctx, c); err != nil {
		svc.logger.Warn("leaderboard track failed",
			zap.Int64("character_id", c.ID), zap.Error(err))
	}
}

func (svc *Service) record(ctx context.Context, ownerID, characterID int64, action string, req any, start time.Time, err error) {
	e := audit.Entry{
		UserID:     audit.Ptr(ownerID),
		Action:     action,
		Request:    req,
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if characterID > 0 {
		e.CharacterID = audit.Ptr(characterID)
	}
	if err != nil {
		e.Error = err.Error()
	}
	svc.audit.Record(ctx, e)
}

func createLockKey(ownerID int64) string {
	return fmt.Sprintf("lock:char_create:%d", ownerID)
}
