package models

import "time"

// Partner types determine the partner code prefix and which commission
// tiers apply.
const (
	PartnerTypeD2D     = "D2D"
	PartnerTypeRev     = "Rev"
	PartnerTypeRevPlus = "Rev+"
)

// Partner is a reseller in the network. The partner_code is assigned once
// at onboarding and never changes.
type Partner struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	PartnerCode         string     `json:"partner_code" gorm:"size:20;uniqueIndex"`
	PartnerType         string     `json:"partner_type" gorm:"size:10"`
	Name                string     `json:"name" gorm:"size:100"`
	Email               string     `json:"email" gorm:"size:100"`
	CommunicationEmails StringList `json:"communication_emails" gorm:"type:json"`
	Phone               string     `json:"phone" gorm:"size:20"`
	ContactPerson       string     `json:"contact_person" gorm:"size:100"`
	Street              string     `json:"street" gorm:"size:200"`
	DoorNumber          string     `json:"door_number" gorm:"size:20"`
	PostalCode          string     `json:"postal_code" gorm:"size:8"`
	Locality            string     `json:"locality" gorm:"size:100"`
	NIF                 string     `json:"nif" gorm:"size:20"`
	CRC                 string     `json:"crc" gorm:"size:30"`
	UserID              *uint      `json:"user_id" gorm:"index"` // linked login account
	InitialPassword     string     `json:"-" gorm:"size:100"`
	CreatedAt           time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Partner) TableName() string {
	return "partners"
}

// ValidPartnerType reports whether t is one of the known partner types.
func ValidPartnerType(t string) bool {
	return t == PartnerTypeD2D || t == PartnerTypeRev || t == PartnerTypeRevPlus
}
