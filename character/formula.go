package character

import (
	"github.com/kasuganosora/middleearth/apperr"
	"github.com/kasuganosora/middleearth/config"
	"github.com/kasuganosora/middleearth/model"
)

const (
	MinAttribute = 3
	MaxAttribute = 18
	MaxLevel     = 100

	// powerExpDivisor converts experience into flat combat/magic power.
	powerExpDivisor = 1000
)

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Modifier is the ability modifier floor((score-10)/2).
func Modifier(score int) int {
	return floorDiv(score-10, 2)
}

// Modifiers returns the modifier of every attribute keyed by name.
func Modifiers(a model.Attributes) map[string]int {
	out := make(map[string]int, len(model.AttributeNames))
	for i, v := range a.Values() {
		out[model.AttributeNames[i]] = Modifier(v)
	}
	return out
}

// MaxHealth is the starting health for a class hit die and final attributes.
func MaxHealth(hitDie int, a model.Attributes) int {
	return hitDie + Modifier(a.Constitution)
}

// MagicModifier is the better of the intelligence and wisdom modifiers.
func MagicModifier(a model.Attributes) int {
	return max(Modifier(a.Intelligence), Modifier(a.Wisdom))
}

// MaxMana is the starting mana pool.
func MaxMana(baseMana int, a model.Attributes) int {
	return baseMana + MagicModifier(a)
}

func CombatPower(c *model.Character) int64 {
	base := int64(c.Strength+c.Dexterity+c.Constitution) * int64(c.Level)
	return base + c.Experience/powerExpDivisor
}

func MagicalPower(c *model.Character) int64 {
	base := int64(c.Intelligence+c.Wisdom+c.Charisma) * int64(c.Level)
	return base + c.Experience/powerExpDivisor
}

// TotalRacialModifier sums the six racial bonuses.
func TotalRacialModifier(r model.Race) int {
	return r.Bonuses().Total()
}

// ExpRequired is the experience needed to leave level.
func ExpRequired(level int, perLevel int64) int64 {
	return int64(level) * perLevel
}

// NextLevel returns c advanced by exactly one level: the threshold is
// subtracted from experience, health and mana pools grow and refill. c is not
// modified. Fails with INSUFFICIENT_EXPERIENCE when below the threshold.
func NextLevel(c model.Character, rules config.GameConfig) (model.Character, error) {
	required := ExpRequired(c.Level, rules.ExpPerLevel)
	if c.Experience < required {
		return c, apperr.InsufficientExperience(required, required-c.Experience)
	}
	if c.Level >= MaxLevel {
		return c, apperr.NewValidationBuilder().
			Fieldf("level", "character is already at the maximum level %d", MaxLevel).
			Build()
	}
	c.Level++
	c.Experience -= required
	c.MaxHealth += rules.HealthPerLevel
	c.Health = c.MaxHealth
	c.MaxMana += rules.ManaPerLevel
	c.Mana = c.MaxMana
	return c, nil
}

// Stats are the derived numbers shown on a character sheet.
type Stats struct {
	CharacterID            int64          `json:"character_id"`
	Level                  int            `json:"level"`
	Experience             int64          `json:"experience"`
	ExpRequired            int64          `json:"exp_required"`
	ExpShortfall           int64          `json:"exp_shortfall"`
	CanLevelUp             bool           `json:"can_level_up"`
	CombatPower            int64          `json:"combat_power"`
	MagicalPower           int64          `json:"magical_power"`
	TotalAttributeModifier int            `json:"total_attribute_modifier"`
	Modifiers              map[string]int `json:"modifiers"`
}

// DeriveStats computes Stats for c. Race must be loaded for the racial total.
func DeriveStats(c *model.Character, rules config.GameConfig) Stats {
	required := ExpRequired(c.Level, rules.ExpPerLevel)
	s := Stats{
		CharacterID:  c.ID,
		Level:        c.Level,
		Experience:   c.Experience,
		ExpRequired:  required,
		ExpShortfall: max(required-c.Experience, 0),
		CanLevelUp:   c.Experience >= required && c.Level < MaxLevel,
		CombatPower:  CombatPower(c),
		MagicalPower: MagicalPower(c),
		Modifiers:    Modifiers(c.Attributes),
	}
	if c.Race != nil {
		s.TotalAttributeModifier = TotalRacialModifier(*c.Race)
	}
	return s
}
