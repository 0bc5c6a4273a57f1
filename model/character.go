package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AlignLawfulGood     = "lawful_good"
	AlignNeutralGood    = "neutral_good"
	AlignChaoticGood    = "chaotic_good"
	AlignLawfulNeutral  = "lawful_neutral"
	AlignTrueNeutral    = "true_neutral"
	AlignChaoticNeutral = "chaotic_neutral"
	AlignLawfulEvil     = "lawful_evil"
	AlignNeutralEvil    = "neutral_evil"
	AlignChaoticEvil    = "chaotic_evil"
)

// Alignments lists the nine alignment tags.
var Alignments = []string{
	AlignLawfulGood, AlignNeutralGood, AlignChaoticGood,
	AlignLawfulNeutral, AlignTrueNeutral, AlignChaoticNeutral,
	AlignLawfulEvil, AlignNeutralEvil, AlignChaoticEvil,
}

// Character is a player-owned hero. Race and class are fixed at creation.
// Names are unique per owner among active characters only, so the owner/name
// index is not unique.
type Character struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID   int64           `gorm:"index:idx_char_owner_name,priority:1;not null" json:"user_id"`
	Name     string          `gorm:"index:idx_char_owner_name,priority:2;size:100;not null" json:"name"`
	Nickname string          `gorm:"size:100" json:"nickname"`
	RaceID   string          `gorm:"size:20;not null;index" json:"race_id"`
	Race     *Race           `gorm:"foreignKey:RaceID;constraint:OnDelete:RESTRICT" json:"race,omitempty"`
	ClassID  string          `gorm:"size:20;not null;index" json:"class_id"`
	Class    *CharacterClass `gorm:"foreignKey:ClassID;constraint:OnDelete:RESTRICT" json:"character_class,omitempty"`

	Attributes `gorm:"embedded"`

	Level      int   `gorm:"not null;index:idx_char_rank,priority:1" json:"level"`
	Experience int64 `gorm:"not null;index:idx_char_rank,priority:2" json:"experience"`
	Health     int   `gorm:"not null" json:"health"`
	MaxHealth  int   `gorm:"not null" json:"max_health"`
	Mana       int   `gorm:"not null" json:"mana"`
	MaxMana    int   `gorm:"not null" json:"max_mana"`

	Age      int `json:"age"`
	HeightCm int `json:"height_cm"`
	WeightKg int `json:"weight_kg"`

	EyeColor            string `gorm:"size:50" json:"eye_color"`
	HairColor           string `gorm:"size:50" json:"hair_color"`
	SkinTone            string `gorm:"size:50" json:"skin_tone"`
	DistinguishingMarks string `gorm:"type:text" json:"distinguishing_marks"`

	Alignment       string `gorm:"size:20;not null" json:"alignment"`
	OriginRegion    string `gorm:"size:100" json:"origin_region"`
	Motivation      string `gorm:"type:text" json:"motivation"`
	BackgroundStory string `gorm:"type:text" json:"background_story"`
	DarkSecret      string `gorm:"type:text" json:"dark_secret"`
	CurrentLocation string `gorm:"size:100" json:"current_location"`
	Gold            int    `gorm:"not null" json:"gold"`

	Languages         datatypes.JSONSlice[string] `json:"languages"`
	KnowledgeAreas    datatypes.JSONSlice[string] `json:"knowledge_areas"`
	PersonalityTraits datatypes.JSONSlice[string] `json:"personality_traits"`
	Ideals            datatypes.JSONSlice[string] `json:"ideals"`
	Bonds             datatypes.JSONSlice[string] `json:"bonds"`
	Flaws             datatypes.JSONSlice[string] `json:"flaws"`

	IsAlive      bool       `gorm:"not null" json:"is_alive"`
	IsActive     bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastPlayedAt *time.Time `json:"last_played_at"`

	Skills []CharacterSkill `gorm:"foreignKey:CharacterID;constraint:OnDelete:CASCADE" json:"skills,omitempty"`
}
