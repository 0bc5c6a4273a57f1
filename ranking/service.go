// Package ranking answers read-only questions across characters: per-user
// statistics and the cross-user leaderboard. The leaderboard is kept in a
// cache sorted set; the database answers directly while the set is empty.
package ranking

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/cache"
	"github.com/kasuganosora/middleearth/character"
	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BoardKey is the sorted set holding active character ids by rank score.
const BoardKey = "leaderboard:characters"

// RefreshTask is the scheduler name of the periodic Refresh.
const RefreshTask = "leaderboard_refresh"

// expCap keeps experience below one level step in the packed score.
const expCap = 1e9

const cacheTimeout = 2 * time.Second

var _ character.LeaderboardTracker = (*Service)(nil)

type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	rules  config.GameConfig
	logger *zap.Logger
}

func NewService(db *gorm.DB, c cache.Cache, rules config.GameConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cache: c, rules: rules.WithDefaults(), logger: logger}
}

// Score packs level and experience into one sortable number.
func Score(level int, experience int64) float64 {
	exp := math.Min(float64(experience), expCap-1)
	return float64(level)*expCap + exp
}

// Track records the current level and experience of c. Inactive characters
// are removed instead.
func (svc *Service) Track(ctx context.Context, c *model.Character) error {
	if !c.IsActive {
		return svc.Untrack(ctx, c.ID)
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	return svc.cache.ZAdd(ctx, BoardKey, Score(c.Level, c.Experience), strconv.FormatInt(c.ID, 10))
}

func (svc *Service) Untrack(ctx context.Context, characterID int64) error {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	return svc.cache.ZRem(ctx, BoardKey, strconv.FormatInt(characterID, 10))
}

type scoreRow struct {
	ID         int64
	Level      int
	Experience int64
}

// Refresh rebuilds the sorted set from the database and returns how many
// characters it now holds.
func (svc *Service) Refresh(ctx context.Context) (int, error) {
	var rows []scoreRow
	if err := svc.db.WithContext(ctx).Model(&model.Character{}).
		Select("id, level, experience").
		Where("is_active = ?", true).
		Find(&rows).Error; err != nil {
		return 0, apperr.Wrap(err, "load leaderboard scores")
	}
	if err := svc.cache.Del(ctx, BoardKey); err != nil {
		return 0, apperr.Internal("clear leaderboard", err)
	}
	for _, r := range rows {
		if err := svc.cache.ZAdd(ctx, BoardKey, Score(r.Level, r.Experience), strconv.FormatInt(r.ID, 10)); err != nil {
			return 0, apperr.Internal("fill leaderboard", err)
		}
	}
	svc.logger.Info("leaderboard refreshed", zap.Int("characters", len(rows)))
	return len(rows), nil
}
