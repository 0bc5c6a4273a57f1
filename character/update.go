package character

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	"github.com/kasuganosora/middleearth/model"
	"gorm.io/gorm"
)

// UpdateInput changes descriptive fields. Nil fields are left alone. Race,
// class, attributes and progression are not editable.
type UpdateInput struct {
	Name                *string `json:"name"`
	Nickname            *string `json:"nickname"`
	Age                 *int    `json:"age"`
	HeightCm            *int    `json:"height_cm"`
	WeightKg            *int    `json:"weight_kg"`
	EyeColor            *string `json:"eye_color"`
	HairColor           *string `json:"hair_color"`
	SkinTone            *string `json:"skin_tone"`
	DistinguishingMarks *string `json:"distinguishing_marks"`
	Alignment           *string `json:"alignment"`
	OriginRegion        *string `json:"origin_region"`
	Motivation          *string `json:"motivation"`
	BackgroundStory     *string `json:"background_story"`
	DarkSecret          *string `json:"dark_secret"`
	CurrentLocation     *string `json:"current_location"`

	Languages         *[]string `json:"languages"`
	KnowledgeAreas    *[]string `json:"knowledge_areas"`
	PersonalityTraits *[]string `json:"personality_traits"`
	Ideals            *[]string `json:"ideals"`
	Bonds             *[]string `json:"bonds"`
	Flaws             *[]string `json:"flaws"`
}

func validateUpdate(in UpdateInput, vb *apperr.ValidationBuilder) {
	if in.Name != nil {
		n := utf8.RuneCountInString(strings.TrimSpace(*in.Name))
		if n < minNameLength || n > 100 {
			vb.Fieldf("name", "must be between %d and 100 characters", minNameLength)
		}
	}
	if in.Age != nil {
		apperr.ValidateRange(vb, "age", *in.Age, minAge, maxAge)
	}
	if in.HeightCm != nil && *in.HeightCm <= 0 {
		vb.Field("height_cm", "must be positive")
	}
	if in.WeightKg != nil && *in.WeightKg <= 0 {
		vb.Field("weight_kg", "must be positive")
	}
	if in.Alignment != nil {
		apperr.ValidateEnum(vb, "alignment", *in.Alignment, model.Alignments)
	}
	for field, v := range map[string]*string{
		"eye_color": in.EyeColor, "hair_color": in.HairColor, "skin_tone": in.SkinTone,
	} {
		if v != nil {
			apperr.ValidateMaxLength(vb, field, *v, 50)
		}
	}
	for field, v := range map[string]*string{
		"nickname": in.Nickname, "origin_region": in.OriginRegion, "current_location": in.CurrentLocation,
	} {
		if v != nil {
			apperr.ValidateMaxLength(vb, field, *v, 100)
		}
	}
}

func (in UpdateInput) columns() map[string]any {
	cols := make(map[string]any)
	str := func(col string, v *string) {
		if v != nil {
			cols[col] = strings.TrimSpace(*v)
		}
	}
	num := func(col string, v *int) {
		if v != nil {
			cols[col] = *v
		}
	}
	lst := func(col string, v *[]string) {
		if v != nil {
			cols[col] = list(*v)
		}
	}
	str("name", in.Name)
	str("nickname", in.Nickname)
	num("age", in.Age)
	num("height_cm", in.HeightCm)
	num("weight_kg", in.WeightKg)
	str("eye_color", in.EyeColor)
	str("hair_color", in.HairColor)
	str("skin_tone", in.SkinTone)
	str("distinguishing_marks", in.DistinguishingMarks)
	str("alignment", in.Alignment)
	str("origin_region", in.OriginRegion)
	str("motivation", in.Motivation)
	str("background_story", in.BackgroundStory)
	str("dark_secret", in.DarkSecret)
	str("current_location", in.CurrentLocation)
	lst("languages", in.Languages)
	lst("knowledge_areas", in.KnowledgeAreas)
	lst("personality_traits", in.PersonalityTraits)
	lst("ideals", in.Ideals)
	lst("bonds", in.Bonds)
	lst("flaws", in.Flaws)
	return cols
}

// Update applies a partial change to descriptive fields. A rename is checked
// against the owner's other active characters.
func (svc *Service) Update(ctx context.Context, ownerID, characterID int64, in UpdateInput) (*model.Character, error) {
	start := time.Now()
	c, err := svc.update(ctx, ownerID, characterID, in)
	svc.record(ctx, ownerID, characterID, audit.ActionCharacterUpdate, in, start, err)
	return c, err
}

func (svc *Service) update(ctx context.Context, ownerID, characterID int64, in UpdateInput) (*model.Character, error) {
	if err := apperr.Validate(in, validateUpdate); err != nil {
		return nil, err
	}
	cols := in.columns()
	if len(cols) == 0 {
		return svc.get(ctx, ownerID, characterID)
	}
	if in.Name != nil {
		unlock, err := svc.lockOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var out *model.Character
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := loadOwned(tx, ownerID, characterID)
		if err != nil {
			return err
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			taken, err := nameTaken(tx, ownerID, name, cur.ID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.DuplicateName(name)
			}
		}
		if err := tx.Model(&model.Character{}).Where("id = ?", cur.ID).Updates(cols).Error; err != nil {
			return apperr.Wrap(err, "update character")
		}
		out, err = loadOwned(tx, ownerID, characterID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
