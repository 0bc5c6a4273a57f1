package model

import "time"

const (
	SkillCombat   = "combat"
	SkillMagic    = "magic"
	SkillUtility  = "utility"
	SkillSocial   = "social"
	SkillSurvival = "survival"
)

// SkillTypes lists the accepted skill_type values.
var SkillTypes = []string{SkillCombat, SkillMagic, SkillUtility, SkillSocial, SkillSurvival}

// CharacterSkill is an ability learned by a character. Name is unique per
// character.
type CharacterSkill struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharacterID     int64     `gorm:"uniqueIndex:idx_skill_char_name,priority:1;not null" json:"character_id"`
	Name            string    `gorm:"uniqueIndex:idx_skill_char_name,priority:2;size:100;not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	SkillType       string    `gorm:"size:20;not null" json:"skill_type"`
	Level           int       `gorm:"not null" json:"level"`
	Experience      int       `gorm:"not null" json:"experience"`
	ManaCost        int       `gorm:"not null" json:"mana_cost"`
	CooldownSeconds int       `gorm:"not null" json:"cooldown_seconds"`
	LearnedAt       time.Time `gorm:"autoCreateTime" json:"learned_at"`
}
