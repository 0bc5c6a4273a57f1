package character

import (
	"context"
	"time"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxGrant bounds a single experience grant.
const maxGrant = 1_000_000_000

// LevelUp advances a character by exactly one level. The row is updated only
// if level and experience still hold the values the decision was based on,
// so concurrent calls spending the same experience cannot both succeed. The
// loser re-reads and reports the shortfall from the new state.
func (svc *Service) LevelUp(ctx context.Context, ownerID, characterID int64) (*model.Character, error) {
	start := time.Now()
	c, err := svc.levelUp(ctx, ownerID, characterID)
	svc.record(ctx, ownerID, characterID, audit.ActionLevelUp, nil, start, err)
	if err != nil {
		return nil, err
	}
	svc.track(ctx, c)
	svc.logger.Info("character leveled up",
		zap.Int64("user_id", ownerID),
		zap.Int64("character_id", characterID),
		zap.Int("level", c.Level),
		zap.Int64("experience", c.Experience))
	return c, nil
}

func (svc *Service) levelUp(ctx context.Context, ownerID, characterID int64) (*model.Character, error) {
	cur, err := svc.get(ctx, ownerID, characterID)
	if err != nil {
		return nil, err
	}
	next, err := NextLevel(*cur, svc.rules)
	if err != nil {
		return nil, err
	}

	// One conditional UPDATE; it matches nothing if level or experience moved
	// since the read.
	res := svc.db.WithContext(ctx).Model(&model.Character{}).
		Where("id = ? AND user_id = ? AND is_active = ? AND level = ? AND experience = ?",
			cur.ID, ownerID, true, cur.Level, cur.Experience).
		Updates(map[string]any{
			"level":      next.Level,
			"experience": next.Experience,
			"max_health": next.MaxHealth,
			"health":     next.Health,
			"max_mana":   next.MaxMana,
			"mana":       next.Mana,
		})
	if res.Error != nil {
		return nil, apperr.Wrap(res.Error, "update character level")
	}
	if res.RowsAffected == 1 {
		return &next, nil
	}

	fresh, err := svc.get(ctx, ownerID, characterID)
	if err != nil {
		return nil, err
	}
	if _, err := NextLevel(*fresh, svc.rules); err != nil {
		return nil, err
	}
	return nil, apperr.Conflict("character changed while leveling up, please retry")
}

// GrantExperience adds a positive amount of experience. Leveling stays an
// explicit LevelUp call.
func (svc *Service) GrantExperience(ctx context.Context, ownerID, characterID, amount int64) (*model.Character, error) {
	start := time.Now()
	c, err := svc.grant(ctx, ownerID, characterID, amount)
	svc.record(ctx, ownerID, characterID, audit.ActionGrantExperience, map[string]int64{"amount": amount}, start, err)
	if err != nil {
		return nil, err
	}
	svc.track(ctx, c)
	return c, nil
}

func (svc *Service) grant(ctx context.Context, ownerID, characterID, amount int64) (*model.Character, error) {
	if amount <= 0 || amount > maxGrant {
		return nil, apperr.NewValidationBuilder().
			Fieldf("amount", "must be between 1 and %d", int64(maxGrant)).
			Build()
	}
	var out *model.Character
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := ownedQuery(tx.Model(&model.Character{}), ownerID, characterID).
			Update("experience", gorm.Expr("experience + ?", amount))
		if res.Error != nil {
			return apperr.Wrap(res.Error, "grant experience")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFoundf("character %d not found", characterID).
				WithMeta("character_id", characterID)
		}
		c, err := loadOwned(tx, ownerID, characterID)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
