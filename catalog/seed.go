package catalog

import (
	"context"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedResult counts rows actually inserted by Seed.
type SeedResult struct {
	Races   int64 `json:"races"`
	Classes int64 `json:"classes"`
}

// Seed inserts the built-in races and classes. Existing ids are left as
// they are, so running it again is a no-op.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		races := seedRaces()
		r := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&races)
		if r.Error != nil {
			return r.Error
		}
		res.Races = r.RowsAffected

		classes := seedClasses()
		r = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&classes)
		if r.Error != nil {
			return r.Error
		}
		res.Classes = r.RowsAffected
		return nil
	})
	if err != nil {
		return SeedResult{}, apperr.Wrap(err, "seed catalog")
	}
	return res, nil
}

// Counts reports how many races and classes are stored.
func Counts(ctx context.Context, db *gorm.DB) (races, classes int64, err error) {
	if err = db.WithContext(ctx).Model(&model.Race{}).Count(&races).Error; err != nil {
		return 0, 0, apperr.Wrap(err, "count races")
	}
	if err = db.WithContext(ctx).Model(&model.CharacterClass{}).Count(&classes).Error; err != nil {
		return 0, 0, apperr.Wrap(err, "count classes")
	}
	return races, classes, nil
}
