package catalog

import (
	"github.com/kasuganosora/middleearth/model"
	"gorm.io/datatypes"
)

func abilities(s ...string) datatypes.JSONSlice[string] {
	return datatypes.JSONSlice[string](s)
}

// seedRaces returns the fixed set of playable races in seed order.
func seedRaces() []model.Race {
	return []model.Race{
		{
			ID: "human", Name: "Human", Emoji: "👨‍🦲",
			Description:      "Versatile and ambitious, humans adapt to any situation.",
			SpecialAbilities: abilities("Versatility", "Adaptability", "Natural Leadership"),
			AvgHeightCm:      175, AvgWeightKg: 70, LifespanYears: 80,
			ConstitutionBonus: 1, IntelligenceBonus: 1, CharismaBonus: 1,
		},
		{
			ID: "elf", Name: "Elf", Emoji: "🧝‍♂️",
			Description:      "Immortal beings of great wisdom and grace, masters of magic.",
			SpecialAbilities: abilities("Immortality", "Night Vision", "Magic Resistance"),
			AvgHeightCm:      180, AvgWeightKg: 65, LifespanYears: 10000,
			DexterityBonus: 2, ConstitutionBonus: -1, IntelligenceBonus: 1, WisdomBonus: 1, CharismaBonus: 1,
		},
		{
			ID: "dwarf", Name: "Dwarf", Emoji: "🧔",
			Description:      "Sturdy mountain warriors, masters of forge and hammer.",
			SpecialAbilities: abilities("Endurance", "Stonecunning", "Forge Mastery"),
			AvgHeightCm:      140, AvgWeightKg: 80, LifespanYears: 300,
			StrengthBonus: 1, ConstitutionBonus: 2, WisdomBonus: 1, CharismaBonus: -1,
		},
		{
			ID: "hobbit", Name: "Hobbit", Emoji: "🏠",
			Description:      "Small but brave, lovers of peace and of unexpected adventures.",
			SpecialAbilities: abilities("Silent Hairy Feet", "Luck", "Fear Resistance"),
			AvgHeightCm:      100, AvgWeightKg: 35, LifespanYears: 120,
			StrengthBonus: -1, DexterityBonus: 2, ConstitutionBonus: 1, WisdomBonus: 1, CharismaBonus: 1,
		},
		{
			ID: "orc", Name: "Orc", Emoji: "👹",
			Description:      "Fierce warriors corrupted by darkness, yet capable of redemption.",
			SpecialAbilities: abilities("Battle Fury", "Night Vision", "Pain Resistance"),
			AvgHeightCm:      190, AvgWeightKg: 90, LifespanYears: 60,
			StrengthBonus: 2, DexterityBonus: 1, ConstitutionBonus: 1, IntelligenceBonus: -1, WisdomBonus: -1, CharismaBonus: -2,
		},
		{
			ID: "ent", Name: "Ent", Emoji: "🌳",
			Description:      "Ancient shepherds of the forests, wise and mighty.",
			SpecialAbilities: abilities("Command Plants", "Regeneration", "Longevity"),
			AvgHeightCm:      400, AvgWeightKg: 500, LifespanYears: 50000,
			StrengthBonus: 3, DexterityBonus: -2, ConstitutionBonus: 2, WisdomBonus: 3,
		},
		{
			ID: "eagle", Name: "Great Eagle", Emoji: "🦅",
			Description:      "Noble lords of the skies, allies of the free peoples.",
			SpecialAbilities: abilities("Flight", "Keen Sight", "Speed"),
			AvgHeightCm:      200, AvgWeightKg: 50, LifespanYears: 500,
			StrengthBonus: 1, DexterityBonus: 3, IntelligenceBonus: 2, WisdomBonus: 2, CharismaBonus: 1,
		},
		{
			ID: "wizard", Name: "Istari (Wizard)", Emoji: "🧙‍♂️",
			Description:      "Envoys of the Valar with great magical power and wisdom.",
			SpecialAbilities: abilities("Mighty Magic", "Ancient Wisdom", "Immortality"),
			AvgHeightCm:      180, AvgWeightKg: 75, LifespanYears: 999999,
			StrengthBonus: -1, IntelligenceBonus: 3, WisdomBonus: 3, CharismaBonus: 2,
		},
		{
			ID: "ranger", Name: "Dúnadan (Ranger)", Emoji: "🏹",
			Description:      "Guardians of the wild lands, heirs of Númenor.",
			SpecialAbilities: abilities("Tracking", "Survival", "Longevity"),
			AvgHeightCm:      185, AvgWeightKg: 75, LifespanYears: 150,
			StrengthBonus: 1, DexterityBonus: 2, ConstitutionBonus: 1, IntelligenceBonus: 1, WisdomBonus: 2,
		},
	}
}

// seedClasses returns the fixed set of classes in seed order.
func seedClasses() []model.CharacterClass {
	return []model.CharacterClass{
		{
			ID: "warrior", Name: "Warrior", Emoji: "⚔️", IconName: "sword",
			Description:      "Master of arms and battle, protector of the innocent.",
			PrimaryAttribute: model.AttrStrength, HitDie: 10,
			StartingSkills: abilities("Melee Combat", "Endurance", "Leadership"),
		},
		{
			ID: "archer", Name: "Archer", Emoji: "🏹", IconName: "target",
			Description:      "Precise and deadly at range, guardian of the woods.",
			PrimaryAttribute: model.AttrDexterity, HitDie: 8,
			StartingSkills: abilities("Sure Shot", "Tracking", "Survival"),
		},
		{
			ID: "wizard", Name: "Wizard", Emoji: "🧙‍♂️", IconName: "sparkles",
			Description:      "Scholar of the arcane arts who bends mystic forces.",
			PrimaryAttribute: model.AttrIntelligence, HitDie: 4,
			StartingSkills: abilities("Elemental Magic", "Arcane Lore", "Meditation"),
		},
		{
			ID: "rogue", Name: "Rogue", Emoji: "🗡️", IconName: "eye-off",
			Description:      "Agile and cunning, master of shadows and infiltration.",
			PrimaryAttribute: model.AttrDexterity, HitDie: 6,
			StartingSkills: abilities("Stealth", "Disarm Traps", "Persuasion"),
		},
		{
			ID: "cleric", Name: "Cleric", Emoji: "✨", IconName: "heart",
			Description:      "Divine servant who heals wounds and wards against evil.",
			PrimaryAttribute: model.AttrWisdom, HitDie: 8,
			StartingSkills: abilities("Divine Healing", "Protection", "Religious Lore"),
		},
		{
			ID: "paladin", Name: "Paladin", Emoji: "🛡️", IconName: "shield",
			Description:      "Holy warrior joining strength with divine magic.",
			PrimaryAttribute: model.AttrCharisma, HitDie: 10,
			StartingSkills: abilities("Sacred Combat", "Minor Healing", "Detect Evil"),
		},
		{
			ID: "bard", Name: "Bard", Emoji: "🎵", IconName: "music",
			Description:      "Storyteller who inspires allies with music and magic.",
			PrimaryAttribute: model.AttrCharisma, HitDie: 6,
			StartingSkills: abilities("Inspiration", "Lore", "Diplomacy"),
		},
		{
			ID: "barbarian", Name: "Barbarian", Emoji: "💪", IconName: "zap",
			Description:      "Fierce savage who rages in battle.",
			PrimaryAttribute: model.AttrStrength, HitDie: 12,
			StartingSkills: abilities("Rage", "Survival", "Intimidation"),
		},
		{
			ID: "druid", Name: "Druid", Emoji: "🌿", IconName: "leaf",
			Description:      "Guardian of nature who takes the shape of beasts.",
			PrimaryAttribute: model.AttrWisdom, HitDie: 8,
			StartingSkills: abilities("Wild Shape", "Nature Magic", "Speak with Animals"),
		},
		{
			ID: "sorcerer", Name: "Sorcerer", Emoji: "⚡", IconName: "bolt",
			Description:      "Born with innate magic, shapes reality itself.",
			PrimaryAttribute: model.AttrCharisma, HitDie: 4,
			StartingSkills: abilities("Wild Magic", "Metamagic", "Magic Resistance"),
		},
		{
			ID: "monk", Name: "Monk", Emoji: "🥋", IconName: "hand",
			Description:      "Master of martial arts and inner discipline.",
			PrimaryAttribute: model.AttrWisdom, HitDie: 8,
			StartingSkills: abilities("Martial Arts", "Meditation", "Speed"),
		},
	}
}
