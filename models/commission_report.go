package models

import "time"

// CommissionReport records an exported batch of payable commissions for a
// partner and period. Version is monotonic per (partner, month, year) and
// increments when a period is resubmitted.
type CommissionReport struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	PartnerID uint       `json:"partner_id" gorm:"index:idx_report_period"`
	Month     int        `json:"month" gorm:"index:idx_report_period"`
	Year      int        `json:"year" gorm:"index:idx_report_period"`
	Version   int        `json:"version"`
	FileName  string     `json:"file_name" gorm:"size:200"`
	FilePath  string     `json:"file_path" gorm:"size:300"`
	CreatedBy uint       `json:"created_by"`
	EmailedAt *time.Time `json:"emailed_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`

	Partner *Partner `json:"partner,omitempty" gorm:"foreignKey:PartnerID"`
	Creator *User    `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (CommissionReport) TableName() string {
	return "commission_reports"
}
