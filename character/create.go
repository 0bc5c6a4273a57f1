package character

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minNameLength = 2
	minAge        = 15
	maxAge        = 5000
)

// CreateInput carries a new character. Attributes are the base scores before
// racial bonuses.
type CreateInput struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	RaceID   string `json:"race_id"`
	ClassID  string `json:"class_id"`

	model.Attributes

	Age                 int    `json:"age"`
	HeightCm            int    `json:"height_cm"`
	WeightKg            int    `json:"weight_kg"`
	EyeColor            string `json:"eye_color"`
	HairColor           string `json:"hair_color"`
	SkinTone            string `json:"skin_tone"`
	DistinguishingMarks string `json:"distinguishing_marks"`

	Alignment       string `json:"alignment"`
	OriginRegion    string `json:"origin_region"`
	Motivation      string `json:"motivation"`
	BackgroundStory string `json:"background_story"`
	DarkSecret      string `json:"dark_secret"`

	Languages         []string `json:"languages"`
	KnowledgeAreas    []string `json:"knowledge_areas"`
	PersonalityTraits []string `json:"personality_traits"`
	Ideals            []string `json:"ideals"`
	Bonds             []string `json:"bonds"`
	Flaws             []string `json:"flaws"`
}

func attributesInRange(in CreateInput, vb *apperr.ValidationBuilder) {
	for i, v := range in.Attributes.Values() {
		name := model.AttributeNames[i]
		if v < MinAttribute || v > MaxAttribute {
			vb.Fieldf(name, "must be between %d and %d (got %d)", MinAttribute, MaxAttribute, v)
		}
	}
}

func physique(in CreateInput, vb *apperr.ValidationBuilder) {
	apperr.ValidateRange(vb, "age", in.Age, minAge, maxAge)
	if in.HeightCm <= 0 {
		vb.Field("height_cm", "must be positive")
	}
	if in.WeightKg <= 0 {
		vb.Field("weight_kg", "must be positive")
	}
}

func descriptive(in CreateInput, vb *apperr.ValidationBuilder) {
	required := []struct{ field, value string }{
		{"eye_color", in.EyeColor},
		{"hair_color", in.HairColor},
		{"skin_tone", in.SkinTone},
		{"origin_region", in.OriginRegion},
		{"motivation", in.Motivation},
		{"background_story", in.BackgroundStory},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			vb.RequiredField(r.field)
		}
	}
	apperr.ValidateMaxLength(vb, "nickname", in.Nickname, 100)
	apperr.ValidateMaxLength(vb, "eye_color", in.EyeColor, 50)
	apperr.ValidateMaxLength(vb, "hair_color", in.HairColor, 50)
	apperr.ValidateMaxLength(vb, "skin_tone", in.SkinTone, 50)
	apperr.ValidateMaxLength(vb, "origin_region", in.OriginRegion, 100)
	apperr.ValidateEnum(vb, "alignment", in.Alignment, model.Alignments)
}

var createRules = []apperr.Rule[CreateInput]{attributesInRange, physique, descriptive}

// Create validates in and persists a new level 1 character for ownerID.
// Checks run in a fixed order: active limit, duplicate name, name length,
// race and class lookup, then every remaining field rule collected into one
// validation error.
func (svc *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (*model.Character, error) {
	start := time.Now()
	c, err := svc.create(ctx, ownerID, in)
	var id int64
	if c != nil {
		id = c.ID
	}
	svc.record(ctx, ownerID, id, audit.ActionCharacterCreate, in, start, err)
	if err != nil {
		return nil, err
	}
	svc.track(ctx, c)
	svc.logger.Info("character created",
		zap.Int64("user_id", ownerID),
		zap.Int64("character_id", c.ID),
		zap.String("race", c.RaceID),
		zap.String("class", c.ClassID))
	return c, nil
}

func (svc *Service) create(ctx context.Context, ownerID int64, in CreateInput) (*model.Character, error) {
	unlock, err := svc.lockOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	in.Name = strings.TrimSpace(in.Name)
	if in.Alignment == "" {
		in.Alignment = model.AlignNeutralGood
	}

	var created *model.Character
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&model.Character{}).
			Where("user_id = ? AND is_active = ?", ownerID, true).
			Count(&active).Error; err != nil {
			return apperr.Wrap(err, "count active characters")
		}
		if active >= int64(svc.rules.MaxActiveCharacters) {
			return apperr.LimitExceeded(svc.rules.MaxActiveCharacters)
		}

		taken, err := nameTaken(tx, ownerID, in.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.DuplicateName(in.Name)
		}
		if utf8.RuneCountInString(in.Name) < minNameLength {
			return apperr.NewValidationBuilder().
				Fieldf("name", "must be at least %d characters", minNameLength).
				Build()
		}
		if utf8.RuneCountInString(in.Name) > 100 {
			return apperr.NewValidationBuilder().
				Field("name", "must be at most 100 characters").
				Build()
		}

		race, err := svc.catalog.Race(in.RaceID)
		if err != nil {
			return err
		}
		class, err := svc.catalog.Class(in.ClassID)
		if err != nil {
			return err
		}

		if err := apperr.Validate(in, createRules...); err != nil {
			return err
		}

		c := svc.build(ownerID, in, race, class)
		if err := tx.Omit(clause.Associations).Create(c).Error; err != nil {
			return apperr.Wrap(err, "insert character")
		}
		c.Race = &race
		c.Class = &class
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// build applies racial bonuses and derives the starting pools.
func (svc *Service) build(ownerID int64, in CreateInput, race model.Race, class model.CharacterClass) *model.Character {
	final := in.Attributes.Plus(race.Bonuses())
	maxHealth := MaxHealth(class.HitDie, final)
	maxMana := MaxMana(svc.rules.BaseMana, final)
	return &model.Character{
		UserID:              ownerID,
		Name:                in.Name,
		Nickname:            strings.TrimSpace(in.Nickname),
		RaceID:              race.ID,
		ClassID:             class.ID,
		Attributes:          final,
		Level:               1,
		Experience:          0,
		Health:              maxHealth,
		MaxHealth:           maxHealth,
		Mana:                maxMana,
		MaxMana:             maxMana,
		Age:                 in.Age,
		HeightCm:            in.HeightCm,
		WeightKg:            in.WeightKg,
		EyeColor:            in.EyeColor,
		HairColor:           in.HairColor,
		SkinTone:            in.SkinTone,
		DistinguishingMarks: in.DistinguishingMarks,
		Alignment:           in.Alignment,
		OriginRegion:        in.OriginRegion,
		Motivation:          in.Motivation,
		BackgroundStory:     in.BackgroundStory,
		DarkSecret:          in.DarkSecret,
		CurrentLocation:     svc.rules.StartingLocation,
		Gold:                svc.rules.StartingGold,
		Languages:           list(in.Languages),
		KnowledgeAreas:      list(in.KnowledgeAreas),
		PersonalityTraits:   list(in.PersonalityTraits),
		Ideals:              list(in.Ideals),
		Bonds:               list(in.Bonds),
		Flaws:               list(in.Flaws),
		IsAlive:             true,
		IsActive:            true,
	}
}

// nameTaken reports whether ownerID has another active character called
// name. exceptID excludes a character being renamed.
func nameTaken(tx *gorm.DB, ownerID int64, name string, exceptID int64) (bool, error) {
	q := tx.Model(&model.Character{}).
		Where("user_id = ? AND name = ? AND is_active = ?", ownerID, name, true)
	if exceptID > 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, apperr.Wrap(err, "check character name")
	}
	return n > 0, nil
}

// lockOwner serialises creation and renames for one owner.
func (svc *Service) lockOwner(ctx context.Context, ownerID int64) (func(), error) {
	key := createLockKey(ownerID)
	ok, err := svc.cache.SetNX(ctx, key, "1", 30*time.Second)
	if err != nil {
		return nil, apperr.Internal("acquire owner lock", err)
	}
	if !ok {
		return nil, apperr.Conflict("another change to your characters is in progress, please retry")
	}
	return func() {
		if err := svc.cache.Del(context.WithoutCancel(ctx), key); err != nil {
			svc.logger.Warn("release owner lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func list(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
