package models

import "time"

// Alert types emitted by the notification fan-out.
const (
	AlertNewSale      = "new_sale"
	AlertStatusChange = "status_change"
	AlertSaleUpdated  = "sale_updated"
	AlertNoteAdded    = "note_added"
)

// Alert is written once per sale event with the full recipient set; it is
// only mutated afterwards to append readers to read_by.
type Alert struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Type          string    `json:"type" gorm:"size:20"`
	SaleID        uint      `json:"sale_id" gorm:"index"`
	SaleCode      string    `json:"sale_code" gorm:"size:20"`
	Message       string    `json:"message" gorm:"type:text"`
	UserIDs       UintList  `json:"user_ids" gorm:"type:json"`
	ReadBy        UintList  `json:"read_by" gorm:"type:json"`
	CreatedBy     uint      `json:"created_by"`
	CreatedByName string    `json:"created_by_name" gorm:"size:100"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Alert) TableName() string {
	return "alerts"
}
