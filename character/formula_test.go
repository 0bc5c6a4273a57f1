package character

import (
	"testing"

	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModifier(t *testing.T) {
	cases := map[int]int{3: -4, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 17: 3, 18: 4, 20: 5, 1: -5}
	for score, want := range cases {
		assert.Equal(t, want, Modifier(score), "score %d", score)
	}
}

func TestMaxHealthAndMana(t *testing.T) {
	a := model.Attributes{Constitution: 15, Intelligence: 9, Wisdom: 14}
	assert.Equal(t, 12, MaxHealth(10, a))
	assert.Equal(t, 2, MagicModifier(a))
	assert.Equal(t, 12, MaxMana(10, a))

	weak := model.Attributes{Constitution: 7, Intelligence: 5, Wisdom: 4}
	assert.Equal(t, 2, MaxHealth(4, weak))
	assert.Equal(t, 7, MaxMana(10, weak))
}

func TestNextLevel(t *testing.T) {
	rules := config.DefaultGame()

	t.Run("exact threshold", func(t *testing.T) {
		c := model.Character{Level: 1, Experience: 1000, MaxHealth: 12, Health: 3, MaxMana: 11, Mana: 0}
		next, err := NextLevel(c, rules)
		require.NoError(t, err)
		assert.Equal(t, 2, next.Level)
		assert.Equal(t, int64(0), next.Experience)
		assert.Equal(t, 22, next.MaxHealth)
		assert.Equal(t, 22, next.Health)
		assert.Equal(t, 16, next.MaxMana)
		assert.Equal(t, 16, next.Mana)
		assert.Equal(t, 1, c.Level, "input untouched")
	})

	t.Run("remainder carries and only one level is gained", func(t *testing.T) {
		c := model.Character{Level: 2, Experience: 7500}
		next, err := NextLevel(c, rules)
		require.NoError(t, err)
		assert.Equal(t, 3, next.Level)
		assert.Equal(t, int64(5500), next.Experience)
	})

	t.Run("insufficient", func(t *testing.T) {
		c := model.Character{Level: 1, Experience: 999, MaxHealth: 12}
		next, err := NextLevel(c, rules)
		require.Error(t, err)
		assert.ErrorIs(t, err, apperr.ErrInsufficientExperience)
		assert.Equal(t, int64(1), apperr.MetaOf(err)["shortfall"])
		assert.Equal(t, int64(1000), apperr.MetaOf(err)["required"])
		assert.Equal(t, c, next)
	})

	t.Run("max level", func(t *testing.T) {
		_, err := NextLevel(model.Character{Level: MaxLevel, Experience: 1_000_000}, rules)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestPowers(t *testing.T) {
	c := &model.Character{
		Attributes: model.Attributes{Strength: 10, Dexterity: 12, Constitution: 14, Intelligence: 8, Wisdom: 9, Charisma: 11},
		Level:      3,
		Experience: 2999,
	}
	assert.Equal(t, int64(36*3+2), CombatPower(c))
	assert.Equal(t, int64(28*3+2), MagicalPower(c))
}

func TestDeriveStats(t *testing.T) {
	race := model.Race{ID: "elf", DexterityBonus: 2, ConstitutionBonus: -1, IntelligenceBonus: 1, WisdomBonus: 1, CharismaBonus: 1}
	c := &model.Character{
		ID:         7,
		Race:       &race,
		Attributes: model.Attributes{Strength: 10, Dexterity: 18, Constitution: 11, Intelligence: 13, Wisdom: 12, Charisma: 10},
		Level:      1,
		Experience: 400,
	}
	s := DeriveStats(c, config.DefaultGame())
	assert.Equal(t, int64(7), s.CharacterID)
	assert.Equal(t, 4, s.TotalAttributeModifier)
	assert.Equal(t, int64(1000), s.ExpRequired)
	assert.Equal(t, int64(600), s.ExpShortfall)
	assert.False(t, s.CanLevelUp)
	assert.Equal(t, 4, s.Modifiers[model.AttrDexterity])
	assert.Equal(t, int64(39), s.CombatPower)
}
