package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records account and character actions.
type AuditLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID     string         `gorm:"index:idx_audit_trace;size:36;not null" json:"trace_id"`
	UserID      *int64         `gorm:"index:idx_audit_user" json:"user_id"`
	CharacterID *int64         `gorm:"index:idx_audit_char" json:"character_id"`
	Username    string         `gorm:"size:150" json:"username"`
	Action      string         `gorm:"size:64;not null" json:"action"`
	Request     datatypes.JSON `json:"request"`
	Response    datatypes.JSON `json:"response"`
	Error       string         `gorm:"type:text" json:"error"`
	IP          string         `gorm:"size:45" json:"ip"`
	DurationMs  int            `json:"duration_ms"`
	CreatedAt   time.Time      `gorm:"index:idx_audit_created;autoCreateTime:milli" json:"created_at"`
}
