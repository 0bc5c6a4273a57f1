package catalog_test

import (
	"context"
	"testing"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/model"
	"github.com/kasuganosora/middleearth/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	first, err := catalog.Seed(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(9), first.Races)
	assert.Equal(t, int64(11), first.Classes)

	second, err := catalog.Seed(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, second.Races)
	assert.Zero(t, second.Classes)

	races, classes, err := catalog.Counts(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(9), races)
	assert.Equal(t, int64(11), classes)
}

func TestSeed_DoesNotOverwrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	_, err := catalog.Seed(ctx, db)
	require.NoError(t, err)

	require.NoError(t, db.Model(&model.Race{}).Where("id = ?", "elf").Update("name", "Eldar").Error)
	_, err = catalog.Seed(ctx, db)
	require.NoError(t, err)

	var elf model.Race
	require.NoError(t, db.First(&elf, "id = ?", "elf").Error)
	assert.Equal(t, "Eldar", elf.Name)
}

func TestLoad_Lookups(t *testing.T) {
	_, cat := testutil.SetupSeededDB(t)

	assert.Len(t, cat.Races(), 9)
	assert.Len(t, cat.Classes(), 11)

	elf, err := cat.Race("elf")
	require.NoError(t, err)
	assert.Equal(t, 2, elf.DexterityBonus)
	assert.Equal(t, -1, elf.ConstitutionBonus)
	assert.Equal(t, []string{"Immortality", "Night Vision", "Magic Resistance"}, []string(elf.SpecialAbilities))

	barb, err := cat.Class("barbarian")
	require.NoError(t, err)
	assert.Equal(t, 12, barb.HitDie)
	assert.Equal(t, model.AttrStrength, barb.PrimaryAttribute)

	_, err = cat.Race("balrog")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = cat.Class("necromancer")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCatalog_SortedAndImmutable(t *testing.T) {
	cat := catalog.Default()

	races := cat.Races()
	for i := 1; i < len(races); i++ {
		assert.Less(t, races[i-1].ID, races[i].ID)
	}

	races[0].Name = "tampered"
	again := cat.Races()
	assert.NotEqual(t, "tampered", again[0].Name)
}

func TestDefault_SeedData(t *testing.T) {
	cat := catalog.Default()
	hitDice := map[string]int{
		"warrior": 10, "archer": 8, "wizard": 4, "rogue": 6, "cleric": 8, "paladin": 10,
		"bard": 6, "barbarian": 12, "druid": 8, "sorcerer": 4, "monk": 8,
	}
	for id, die := range hitDice {
		c, err := cat.Class(id)
		require.NoError(t, err, id)
		assert.Equal(t, die, c.HitDie, id)
		assert.Len(t, c.StartingSkills, 3, id)
		_, ok := model.Attributes{}.Get(c.PrimaryAttribute)
		assert.True(t, ok, id)
	}

	ent, err := cat.Race("ent")
	require.NoError(t, err)
	assert.Equal(t, model.Attributes{Strength: 3, Dexterity: -2, Constitution: 2, Wisdom: 3}, ent.Bonuses())
}
