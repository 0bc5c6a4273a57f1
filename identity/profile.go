package identity

import (
	"context"
	"strings"
	"time"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/audit"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HighestCharacter summarises the user's best active character.
type HighestCharacter struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Race  string `json:"race"`
	Class string `json:"class"`
	Emoji string `json:"emoji"`
}

// ProfileView is the account page.
type ProfileView struct {
	User                  *model.User        `json:"user"`
	Profile               *model.UserProfile `json:"profile"`
	TotalCharacters       int64              `json:"total_characters"`
	HighestLevel          int                `json:"highest_level"`
	HighestLevelCharacter *HighestCharacter  `json:"highest_level_character"`
}

// ProfileInput is a partial profile update. Nil fields are left alone.
// BirthDate uses YYYY-MM-DD; an empty string clears it.
type ProfileInput struct {
	FirstName         *string `json:"first_name"`
	LastName          *string `json:"last_name"`
	PreferredLanguage *string `json:"preferred_language"`
	Bio               *string `json:"bio"`
	Location          *string `json:"location"`
	BirthDate         *string `json:"birth_date"`
	FavoriteRace      *string `json:"favorite_race"`
	FavoriteClass     *string `json:"favorite_class"`
}

// Profile loads the user, its profile and character summary. A missing
// profile row is created on the fly.
func (svc *Service) Profile(ctx context.Context, userID int64) (*ProfileView, error) {
	user, err := svc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := model.UserProfile{UserID: userID, Achievements: datatypes.JSONSlice[string]{}}
	if err := svc.db.WithContext(ctx).
		Where(model.UserProfile{UserID: userID}).
		FirstOrCreate(&profile).Error; err != nil {
		return nil, apperr.Wrap(err, "load profile")
	}
	view := &ProfileView{User: user, Profile: &profile}

	if err := svc.db.WithContext(ctx).Model(&model.Character{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&view.TotalCharacters).Error; err != nil {
		return nil, apperr.Wrap(err, "count characters")
	}
	if view.TotalCharacters == 0 {
		return view, nil
	}

	var best model.Character
	err = svc.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("level DESC, experience DESC, id ASC").
		Preload("Race").Preload("Class").
		First(&best).Error
	if err != nil && !dbadapter.IsNotFound(err) {
		return nil, apperr.Wrap(err, "load highest character")
	}
	if err == nil {
		h := &HighestCharacter{ID: best.ID, Name: best.Name, Level: best.Level}
		var emoji []string
		if best.Race != nil {
			h.Race = best.Race.Name
			emoji = append(emoji, best.Race.Emoji)
		}
		if best.Class != nil {
			h.Class = best.Class.Name
			emoji = append(emoji, best.Class.Emoji)
		}
		h.Emoji = strings.Join(emoji, " ")
		view.HighestLevel = best.Level
		view.HighestLevelCharacter = h
	}
	return view, nil
}

func validateProfile(in ProfileInput, vb *apperr.ValidationBuilder) {
	limit := func(field string, v *string, n int) {
		if v != nil {
			apperr.ValidateMaxLength(vb, field, *v, n)
		}
	}
	limit("first_name", in.FirstName, maxName)
	limit("last_name", in.LastName, maxName)
	limit("bio", in.Bio, 500)
	limit("location", in.Location, 100)
	limit("favorite_race", in.FavoriteRace, 50)
	limit("favorite_class", in.FavoriteClass, 50)
	if in.PreferredLanguage != nil {
		apperr.ValidateEnum(vb, "preferred_language", *in.PreferredLanguage, model.Languages)
	}
	if in.BirthDate != nil && *in.BirthDate != "" {
		d, err := time.Parse(time.DateOnly, *in.BirthDate)
		switch {
		case err != nil:
			vb.Field("birth_date", "must be a date in YYYY-MM-DD format")
		case d.After(time.Now()):
			vb.Field("birth_date", "must not be in the future")
		}
	}
}

// UpdateProfile applies a partial update to the user and profile rows.
func (svc *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileInput) (*ProfileView, error) {
	start := time.Now()
	if err := apperr.Validate(in, validateProfile); err != nil {
		return nil, err
	}
	user, err := svc.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	userCols := map[string]any{}
	if in.FirstName != nil {
		userCols["first_name"] = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		userCols["last_name"] = strings.TrimSpace(*in.LastName)
	}
	if in.PreferredLanguage != nil {
		userCols["preferred_language"] = *in.PreferredLanguage
	}
	profileCols := map[string]any{}
	if in.Bio != nil {
		profileCols["bio"] = *in.Bio
	}
	if in.Location != nil {
		profileCols["location"] = strings.TrimSpace(*in.Location)
	}
	if in.FavoriteRace != nil {
		profileCols["favorite_race"] = strings.TrimSpace(*in.FavoriteRace)
	}
	if in.FavoriteClass != nil {
		profileCols["favorite_class"] = strings.TrimSpace(*in.FavoriteClass)
	}
	if in.BirthDate != nil {
		if *in.BirthDate == "" {
			profileCols["birth_date"] = nil
		} else {
			d, _ := time.Parse(time.DateOnly, *in.BirthDate)
			profileCols["birth_date"] = d
		}
	}

	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(userCols) > 0 {
			if err := tx.Model(&model.User{}).Where("id = ?", userID).Updates(userCols).Error; err != nil {
				return apperr.Wrap(err, "update user")
			}
		}
		if len(profileCols) > 0 {
			profile := model.UserProfile{UserID: userID, Achievements: datatypes.JSONSlice[string]{}}
			if err := tx.Where(model.UserProfile{UserID: userID}).FirstOrCreate(&profile).Error; err != nil {
				return apperr.Wrap(err, "load profile")
			}
			if err := tx.Model(&model.UserProfile{}).Where("id = ?", profile.ID).Updates(profileCols).Error; err != nil {
				return apperr.Wrap(err, "update profile")
			}
		}
		return nil
	})
	svc.record(ctx, user, audit.ActionUpdateProfile, start, err)
	if err != nil {
		return nil, err
	}
	return svc.Profile(ctx, userID)
}

// DeleteAccount removes the user with profile, characters and skills after
// confirming the password, then ends every session and drops the characters
// from the leaderboard.
func (svc *Service) DeleteAccount(ctx context.Context, userID int64, password string) error {
	start := time.Now()
	user, err := svc.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return apperr.NewValidationBuilder().Field("password", "password is incorrect").Build()
	}

	var charIDs []int64
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Character{}).Where("user_id = ?", userID).Pluck("id", &charIDs).Error; err != nil {
			return apperr.Wrap(err, "list characters")
		}
		owned := tx.Model(&model.Character{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("character_id IN (?)", owned).Delete(&model.CharacterSkill{}).Error; err != nil {
			return apperr.Wrap(err, "delete skills")
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Character{}).Error; err != nil {
			return apperr.Wrap(err, "delete characters")
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.UserProfile{}).Error; err != nil {
			return apperr.Wrap(err, "delete profile")
		}
		if err := tx.Delete(&model.User{}, userID).Error; err != nil {
			return apperr.Wrap(err, "delete user")
		}
		return nil
	})
	svc.record(ctx, user, audit.ActionDeleteAccount, start, err)
	if err != nil {
		return err
	}
	if err := svc.sessions.RevokeAll(ctx, userID); err != nil {
		svc.logger.Warn("revoke sessions of deleted user", zap.Int64("user_id", userID), zap.Error(err))
	}
	if svc.board != nil {
		for _, id := range charIDs {
			if err := svc.board.Untrack(ctx, id); err != nil {
				svc.logger.Warn("leaderboard untrack failed", zap.Int64("character_id", id), zap.Error(err))
			}
		}
	}
	svc.logger.Info("account deleted", zap.Int64("user_id", userID))
	return nil
}
