package character

import (
	"context"
	"time"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
)

func (svc *Service) get(ctx context.Context, ownerID, characterID int64) (*model.Character, error) {
	return loadOwned(svc.db.WithContext(ctx), ownerID, characterID)
}

// Get returns an active character with race, class and skills, and marks it
// as played.
func (svc *Service) Get(ctx context.Context, ownerID, characterID int64) (*model.Character, error) {
	c, err := svc.get(ctx, ownerID, characterID)
	if err != nil {
		return nil, err
	}
	if err := svc.db.WithContext(ctx).
		Where("character_id = ?", c.ID).
		Order("learned_at, id").
		Find(&c.Skills).Error; err != nil {
		return nil, apperr.Wrap(err, "load skills")
	}

	now := svc.now()
	if err := svc.db.WithContext(ctx).Model(&model.Character{}).
		Where("id = ?", c.ID).
		UpdateColumn("last_played_at", now).Error; err != nil {
		svc.logger.Warn("touch last_played_at", zap.Int64("character_id", c.ID), zap.Error(err))
	} else {
		c.LastPlayedAt = &now
	}
	return c, nil
}

// List returns the owner's active characters, newest first.
func (svc *Service) List(ctx context.Context, ownerID int64) ([]model.Character, error) {
	var out []model.Character
	err := svc.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", ownerID, true).
		Preload("Race").Preload("Class").
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Wrap(err, "list characters")
	}
	return out, nil
}

// Delete soft-deletes a character. Its name becomes free for reuse and it
// no longer counts toward the active limit.
func (svc *Service) Delete(ctx context.Context, ownerID, characterID int64) error {
	start := time.Now()
	err := svc.delete(ctx, ownerID, characterID)
	svc.record(ctx, ownerID, characterID, audit.ActionCharacterDelete, nil, start, err)
	if err != nil {
		return err
	}
	if uerr := svc.board.Untrack(ctx, characterID); uerr != nil {
		svc.logger.Warn("leaderboard untrack failed", zap.Int64("character_id", characterID), zap.Error(uerr))
	}
	svc.logger.Info("character deleted",
		zap.Int64("user_id", ownerID), zap.Int64("character_id", characterID))
	return nil
}

func (svc *Service) delete(ctx context.Context, ownerID, characterID int64) error {
	res := ownedQuery(svc.db.WithContext(ctx).Model(&model.Character{}), ownerID, characterID).
		Update("is_active", false)
	if res.Error != nil {
		return apperr.Wrap(res.Error, "delete character")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("character %d not found", characterID).
			WithMeta("character_id", characterID)
	}
	return nil
}

// Stats returns the derived numbers of one character.
func (svc *Service) Stats(ctx context.Context, ownerID, characterID int64) (Stats, error) {
	c, err := svc.get(ctx, ownerID, characterID)
	if err != nil {
		return Stats{}, err
	}
	return DeriveStats(c, svc.rules), nil
}
