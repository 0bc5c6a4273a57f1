package character

import (
	"context"
	"strings"
	"time"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxSkillLevel = 100

// SkillInput describes a skill to learn. Level defaults to 1.
type SkillInput struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	SkillType       string `json:"skill_type"`
	Level           int    `json:"level"`
	Experience      int    `json:"experience"`
	ManaCost        int    `json:"mana_cost"`
	CooldownSeconds int    `json:"cooldown_seconds"`
}

func validateSkill(in SkillInput, vb *apperr.ValidationBuilder) {
	if in.Name == "" {
		vb.RequiredField("name")
	}
	apperr.ValidateMaxLength(vb, "name", in.Name, 100)
	if strings.TrimSpace(in.Description) == "" {
		vb.RequiredField("description")
	}
	apperr.ValidateEnum(vb, "skill_type", in.SkillType, model.SkillTypes)
	apperr.ValidateRange(vb, "level", in.Level, 1, maxSkillLevel)
	if in.Experience < 0 {
		vb.Field("experience", "must not be negative")
	}
	if in.ManaCost < 0 {
		vb.Field("mana_cost", "must not be negative")
	}
	if in.CooldownSeconds < 0 {
		vb.Field("cooldown_seconds", "must not be negative")
	}
}

// LearnSkill adds a skill to a character. Skill names are unique per
// character.
func (svc *Service) LearnSkill(ctx context.Context, ownerID, characterID int64, in SkillInput) (*model.CharacterSkill, error) {
	start := time.Now()
	s, err := svc.learn(ctx, ownerID, characterID, in)
	svc.record(ctx, ownerID, characterID, audit.ActionLearnSkill, in, start, err)
	if err != nil {
		return nil, err
	}
	svc.logger.Info("skill learned",
		zap.Int64("character_id", characterID),
		zap.String("skill", s.Name))
	return s, nil
}

func (svc *Service) learn(ctx context.Context, ownerID, characterID int64, in SkillInput) (*model.CharacterSkill, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Level == 0 {
		in.Level = 1
	}
	if err := apperr.Validate(in, validateSkill); err != nil {
		return nil, err
	}

	var out *model.CharacterSkill
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := ownedQuery(tx.Model(&model.Character{}), ownerID, characterID).
			Count(&owned).Error; err != nil {
			return apperr.Wrap(err, "load character")
		}
		if owned == 0 {
			return apperr.NotFoundf("character %d not found", characterID).
				WithMeta("character_id", characterID)
		}

		var dup int64
		if err := tx.Model(&model.CharacterSkill{}).
			Where("character_id = ? AND name = ?", characterID, in.Name).
			Count(&dup).Error; err != nil {
			return apperr.Wrap(err, "check skill name")
		}
		if dup > 0 {
			return apperr.DuplicateSkill(in.Name)
		}

		s := &model.CharacterSkill{
			CharacterID:     characterID,
			Name:            in.Name,
			Description:     in.Description,
			SkillType:       in.SkillType,
			Level:           in.Level,
			Experience:      in.Experience,
			ManaCost:        in.ManaCost,
			CooldownSeconds: in.CooldownSeconds,
		}
		if err := tx.Create(s).Error; err != nil {
			if dbadapter.IsUniqueViolation(err) {
				return apperr.DuplicateSkill(in.Name)
			}
			return apperr.Wrap(err, "insert skill")
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListSkills returns a character's skills in the order they were learned.
func (svc *Service) ListSkills(ctx context.Context, ownerID, characterID int64) ([]model.CharacterSkill, error) {
	if _, err := svc.get(ctx, ownerID, characterID); err != nil {
		return nil, err
	}
	var out []model.CharacterSkill
	if err := svc.db.WithContext(ctx).
		Where("character_id = ?", characterID).
		Order("learned_at, id").
		Find(&out).Error; err != nil {
		return nil, apperr.Wrap(err, "list skills")
	}
	return out, nil
}
