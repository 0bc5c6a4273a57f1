package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	LangPtBR = "pt-br"
	LangEN   = "en"
	LangES   = "es"
)

// Languages lists the accepted preferred_language values.
var Languages = []string{LangPtBR, LangEN, LangES}

// User is a registered player account.
type User struct {
	ID                int64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Username          string       `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email             string       `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash      string       `gorm:"size:72;not null" json:"-"`
	FirstName         string       `gorm:"size:150" json:"first_name"`
	LastName          string       `gorm:"size:150" json:"last_name"`
	IsActive          bool         `gorm:"not null" json:"is_active"`
	IsPremium         bool         `gorm:"not null" json:"is_premium"`
	ExperiencePoints  int64        `gorm:"not null" json:"experience_points"`
	PreferredLanguage string       `gorm:"size:5;not null" json:"preferred_language"`
	DateJoined        time.Time    `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt         time.Time    `json:"updated_at"`
	LastLoginAt       *time.Time   `json:"last_login_at"`
	LastLoginIP       string       `gorm:"size:45" json:"last_login_ip"`
	Profile           *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Characters        []Character  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserProfile carries the optional public details of a user. One per user.
type UserProfile struct {
	ID            int64                       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64                       `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio           string                      `gorm:"size:500" json:"bio"`
	Location      string                      `gorm:"size:100" json:"location"`
	BirthDate     *time.Time                  `json:"birth_date"`
	FavoriteRace  string                      `gorm:"size:50" json:"favorite_race"`
	FavoriteClass string                      `gorm:"size:50" json:"favorite_class"`
	Achievements  datatypes.JSONSlice[string] `json:"achievements"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}
