package models

import "time"

// Audit action types.
const (
	AuditCreate       = "create"
	AuditUpdate       = "update"
	AuditStatusChange = "status_change"
	AuditNoteAdded    = "note_added"
)

// SaleAuditLog is an append-only record of a mutation. Entries are never
// updated or deleted.
type SaleAuditLog struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	SaleID        uint       `json:"sale_id" gorm:"index"`
	ActionType    string     `json:"action_type" gorm:"size:30"`
	UserID        uint       `json:"user_id"`
	UserName      string     `json:"user_name" gorm:"size:100"`
	Description   string     `json:"description" gorm:"type:text"`
	ChangedFields StringList `json:"changed_fields" gorm:"type:json"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

func (SaleAuditLog) TableName() string {
	return "sales_audit_log"
}
