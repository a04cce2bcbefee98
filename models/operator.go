package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Product scopes. "dual" appears on operators that sell bundled
// electricity+gas contracts and in the dashboard scope histogram.
const (
	ScopeTelecom = "telecomunicacoes"
	ScopeEnergy  = "energia"
	ScopeSolar   = "solar"
	ScopeDual    = "dual"
)

// Energy product types.
const (
	EnergyElectricity = "eletricidade"
	EnergyGas         = "gas"
	EnergyDual        = "dual"
)

// Commission modes. In manual mode the engine always returns zero and an
// administrator sets the commission directly on the sale.
const (
	CommissionModeTier   = "tier"
	CommissionModeManual = "manual"
)

// Customer types keying the commission config.
const (
	CustomerParticular = "particular"
	CustomerBusiness   = "empresarial"
)

// Tier is a threshold pricing rule: it applies from the partner's
// min_sales-th sale at the operator onward. Exactly one of Multiplier
// (telecom) or CommissionValue (energy/solar) is meaningful, selected by
// the operator scope.
type Tier struct {
	Name            string  `json:"name,omitempty"`
	MinSales        int     `json:"min_sales"`
	Multiplier      float64 `json:"multiplier,omitempty"`
	CommissionValue float64 `json:"commission_value,omitempty"`
}

// TierList keeps the configured order; the engine falls back to the first
// configured tier when no threshold qualifies.
type TierList []Tier

// ScopeConfig is the pricing table for one customer type. Its shape
// depends on the operator scope: telecom keys tiers by service type,
// energy keys them by product, flat scopes use Tiers directly.
type ScopeConfig struct {
	ByService map[string]TierList `json:"by_service,omitempty"`
	ByProduct map[string]TierList `json:"by_product,omitempty"`
	Tiers     TierList            `json:"tiers,omitempty"`
}

// CommissionConfig maps customer type (particular/empresarial) to that
// customer's pricing table. Stored as a JSON column.
type CommissionConfig map[string]ScopeConfig

func (c CommissionConfig) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *CommissionConfig) Scan(value interface{}) error {
	return scanJSON(value, c)
}

// Operator is a product provider partners sell on behalf of.
type Operator struct {
	ID                     uint             `json:"id" gorm:"primaryKey"`
	Name                   string           `json:"name" gorm:"size:100"`
	Scope                  string           `json:"scope" gorm:"size:20"`
	EnergyType             string           `json:"energy_type" gorm:"size:20"` // only when scope=energia
	CommissionMode         string           `json:"commission_mode" gorm:"size:10;default:tier"`
	CommissionConfig       CommissionConfig `json:"commission_config" gorm:"type:json"`
	ActivationTypes        StringList       `json:"activation_types" gorm:"type:json"`
	PaysDirectDebit        bool             `json:"pays_direct_debit"`
	DirectDebitValue       float64          `json:"direct_debit_value"`
	PaysElectronicInvoice  bool             `json:"pays_electronic_invoice"`
	ElectronicInvoiceValue float64          `json:"electronic_invoice_value"`
	Active                 bool             `json:"active" gorm:"default:true"`
	Hidden                 bool             `json:"hidden"`
	CreatedAt              time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Operator) TableName() string {
	return "operators"
}
