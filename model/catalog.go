package model

import (
	"time"

	"gorm.io/datatypes"
)

// Race is a playable people. Seeded once, never modified.
type Race struct {
	ID                string                      `gorm:"primaryKey;size:20" json:"id"`
	Name              string                      `gorm:"size:50;not null" json:"name"`
	Description       string                      `gorm:"type:text" json:"description"`
	Emoji             string                      `gorm:"size:16" json:"emoji"`
	StrengthBonus     int                         `gorm:"not null" json:"strength_bonus"`
	DexterityBonus    int                         `gorm:"not null" json:"dexterity_bonus"`
	ConstitutionBonus int                         `gorm:"not null" json:"constitution_bonus"`
	IntelligenceBonus int                         `gorm:"not null" json:"intelligence_bonus"`
	WisdomBonus       int                         `gorm:"not null" json:"wisdom_bonus"`
	CharismaBonus     int                         `gorm:"not null" json:"charisma_bonus"`
	SpecialAbilities  datatypes.JSONSlice[string] `json:"special_abilities"`
	AvgHeightCm       int                         `json:"avg_height_cm"`
	AvgWeightKg       int                         `json:"avg_weight_kg"`
	LifespanYears     int                         `json:"lifespan_years"`
	CreatedAt         time.Time                   `json:"created_at"`
}

// Bonuses returns the racial bonuses as an Attributes delta.
func (r Race) Bonuses() Attributes {
	return Attributes{
		Strength:     r.StrengthBonus,
		Dexterity:    r.DexterityBonus,
		Constitution: r.ConstitutionBonus,
		Intelligence: r.IntelligenceBonus,
		Wisdom:       r.WisdomBonus,
		Charisma:     r.CharismaBonus,
	}
}

// CharacterClass is a playable profession. Seeded once, never modified.
type CharacterClass struct {
	ID               string                      `gorm:"primaryKey;size:20" json:"id"`
	Name             string                      `gorm:"size:50;not null" json:"name"`
	Description      string                      `gorm:"type:text" json:"description"`
	Emoji            string                      `gorm:"size:16" json:"emoji"`
	IconName         string                      `gorm:"size:50" json:"icon_name"`
	PrimaryAttribute string                      `gorm:"size:20;not null" json:"primary_attribute"`
	StartingSkills   datatypes.JSONSlice[string] `json:"starting_skills"`
	HitDie           int                         `gorm:"not null" json:"hit_die"`
	CreatedAt        time.Time                   `json:"created_at"`
}
