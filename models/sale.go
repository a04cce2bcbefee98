package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Sale lifecycle states. Sales created by partner-role actors start in
// "Para registo", staff-created sales start in "Pendente". Transitions
// only move forward, except that any state may go to Cancelado/Recusado.
const (
	StatusForRegistration = "Para registo"
	StatusPending         = "Pendente"
	StatusRegistered      = "Registado"
	StatusActive          = "Ativo"
	StatusCompleted       = "Concluido"
	StatusCancelled       = "Cancelado"
	StatusRejected        = "Recusado"
)

// Note is an immutable comment appended to a sale. Notes are never edited
// or removed.
type Note struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	AuthorRole string    `json:"author_role"`
	CreatedAt  time.Time `json:"created_at"`
}

// NoteList is the ordered notes column, stored as JSON.
type NoteList []Note

func (l NoteList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *NoteList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Sale is the central transactional record. It is only mutated through
// the sale service, never directly by handlers.
type Sale struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	SaleCode        string    `json:"sale_code" gorm:"size:20;uniqueIndex"`
	Date            time.Time `json:"date" gorm:"index"`
	PartnerID       uint      `json:"partner_id" gorm:"index"`
	PartnerName     string    `json:"partner_name" gorm:"size:100"`
	CreatedByUserID uint      `json:"created_by_user_id" gorm:"index"`
	OperatorID      uint      `json:"operator_id" gorm:"index"`
	OperatorName    string    `json:"operator_name" gorm:"size:100"`
	Scope           string    `json:"scope" gorm:"size:20"`
	EnergySaleType  string    `json:"energy_sale_type" gorm:"size:20"` // eletricidade, gas, dual
	CustomerType    string    `json:"customer_type" gorm:"size:20"`    // particular, empresarial

	ClientName          string `json:"client_name" gorm:"size:100"`
	ClientNIF           string `json:"client_nif" gorm:"size:20"`
	ClientContact       string `json:"client_contact" gorm:"size:30"`
	ClientEmail         string `json:"client_email" gorm:"size:100"`
	ClientIBAN          string `json:"client_iban" gorm:"size:34"`
	InstallationAddress string `json:"installation_address" gorm:"size:200"`

	ServiceType    string  `json:"service_type" gorm:"size:10"` // M3, M4 (telecom)
	ActivationType string  `json:"activation_type" gorm:"size:50"`
	MonthlyValue   float64 `json:"monthly_value"`
	Requisition    string  `json:"requisition" gorm:"size:50;index"` // telecom request number
	CPE            string  `json:"cpe" gorm:"size:25"`
	Power          string  `json:"power" gorm:"size:20"`
	EntryType      string  `json:"entry_type" gorm:"size:50"`
	CUI            string  `json:"cui" gorm:"size:25"`
	TierName       string  `json:"tier" gorm:"column:tier;size:50"`

	Status         string     `json:"status" gorm:"size:20;index"`
	StatusDate     *time.Time `json:"status_date"`
	PaidToOperator bool       `json:"paid_to_operator"`
	PaymentDate    *time.Time `json:"payment_date"`

	CalculatedCommission float64  `json:"calculated_commission"`
	ManualCommission     *float64 `json:"manual_commission"`

	HasDirectDebit         bool    `json:"has_direct_debit"`
	DirectDebitValue       float64 `json:"direct_debit_value"`
	HasElectronicInvoice   bool    `json:"has_electronic_invoice"`
	ElectronicInvoiceValue float64 `json:"electronic_invoice_value"`

	Observations string    `json:"observations" gorm:"type:text"`
	Notes        NoteList  `json:"notes" gorm:"type:json"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Sale) TableName() string {
	return "sales"
}

// EffectiveCommission is the payable amount: the manual override when an
// administrator set one, otherwise the engine-calculated value, plus the
// direct-debit and e-invoice add-ons captured at creation.
func (s *Sale) EffectiveCommission() float64 {
	base := s.CalculatedCommission
	if s.ManualCommission != nil {
		base = *s.ManualCommission
	}
	return base + s.DirectDebitValue + s.ElectronicInvoiceValue
}

// SaleQuery carries the list filters handlers accept.
type SaleQuery struct {
	Status    string `json:"status" query:"status"`
	PartnerID uint   `json:"partner_id" query:"partner_id"`
	Scope     string `json:"scope" query:"scope"`
}
