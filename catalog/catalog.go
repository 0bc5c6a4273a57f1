// Package catalog owns the fixed reference data: playable races and classes.
// The tables are seeded once and then loaded into an immutable Catalog that
// is passed to whoever needs lookups.
package catalog

import (
	"context"
	"sort"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/model"
	"gorm.io/gorm"
)

// Catalog is a read-only view of races and classes. Safe for concurrent use.
type Catalog struct {
	races   []model.Race
	classes []model.CharacterClass
	raceIdx map[string]int
	clsIdx  map[string]int
}

// New builds a Catalog from the given rows. Input slices are copied.
func New(races []model.Race, classes []model.CharacterClass) *Catalog {
	c := &Catalog{
		races:   append([]model.Race(nil), races...),
		classes: append([]model.CharacterClass(nil), classes...),
		raceIdx: make(map[string]int, len(races)),
		clsIdx:  make(map[string]int, len(classes)),
	}
	sort.Slice(c.races, func(i, j int) bool { return c.races[i].ID < c.races[j].ID })
	sort.Slice(c.classes, func(i, j int) bool { return c.classes[i].ID < c.classes[j].ID })
	for i, r := range c.races {
		c.raceIdx[r.ID] = i
	}
	for i, cl := range c.classes {
		c.clsIdx[cl.ID] = i
	}
	return c
}

// Default returns a Catalog over the built-in seed data without touching a
// database.
func Default() *Catalog {
	return New(seedRaces(), seedClasses())
}

// Load reads both tables into a Catalog.
func Load(ctx context.Context, db *gorm.DB) (*Catalog, error) {
	var races []model.Race
	if err := db.WithContext(ctx).Order("id").Find(&races).Error; err != nil {
		return nil, apperr.Wrap(err, "load races")
	}
	var classes []model.CharacterClass
	if err := db.WithContext(ctx).Order("id").Find(&classes).Error; err != nil {
		return nil, apperr.Wrap(err, "load classes")
	}
	return New(races, classes), nil
}

// Races returns every race ordered by id.
func (c *Catalog) Races() []model.Race {
	return append([]model.Race(nil), c.races...)
}

// Classes returns every class ordered by id.
func (c *Catalog) Classes() []model.CharacterClass {
	return append([]model.CharacterClass(nil), c.classes...)
}

// Race looks up a race by id.
func (c *Catalog) Race(id string) (model.Race, error) {
	i, ok := c.raceIdx[id]
	if !ok {
		return model.Race{}, apperr.NotFoundf("race %q not found", id).WithMeta("race_id", id)
	}
	return c.races[i], nil
}

// Class looks up a class by id.
func (c *Catalog) Class(id string) (model.CharacterClass, error) {
	i, ok := c.clsIdx[id]
	if !ok {
		return model.CharacterClass{}, apperr.NotFoundf("class %q not found", id).WithMeta("class_id", id)
	}
	return c.classes[i], nil
}
