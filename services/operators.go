package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

var validScopes = map[string]bool{
	models.ScopeTelecom: true,
	models.ScopeEnergy:  true,
	models.ScopeSolar:   true,
}

// OperatorService manages the operator catalog and its pricing tables.
type OperatorService struct {
	db *gorm.DB
}

func NewOperatorService(db *gorm.DB) *OperatorService {
	return &OperatorService{db: db}
}

// CreateOperatorInput is the operator creation payload.
type CreateOperatorInput struct {
	Name                   string                  `json:"name"`
	Scope                  string                  `json:"scope"`
	EnergyType             string                  `json:"energy_type"`
	CommissionMode         string                  `json:"commission_mode"`
	CommissionConfig       models.CommissionConfig `json:"commission_config"`
	ActivationTypes        []string                `json:"activation_types"`
	PaysDirectDebit        bool                    `json:"pays_direct_debit"`
	DirectDebitValue       float64                 `json:"direct_debit_value"`
	PaysElectronicInvoice  bool                    `json:"pays_electronic_invoice"`
	ElectronicInvoiceValue float64                 `json:"electronic_invoice_value"`
}

func (s *OperatorService) Create(input CreateOperatorInput) (*models.Operator, error) {
	if input.Name == "" {
		return nil, NewValidationError("Nome da operadora é obrigatório")
	}
	if !validScopes[input.Scope] {
		return nil, NewValidationError("Segmento inválido")
	}
	if input.CommissionMode == "" {
		input.CommissionMode = models.CommissionModeTier
	}
	if input.CommissionMode != models.CommissionModeTier && input.CommissionMode != models.CommissionModeManual {
		return nil, NewValidationError("Modo de comissão inválido")
	}
	if input.Scope == models.ScopeEnergy && input.EnergyType == "" {
		return nil, NewValidationError("Tipo de energia é obrigatório para operadoras de energia")
	}

	operator := models.Operator{
		Name:                   input.Name,
		Scope:                  input.Scope,
		EnergyType:             input.EnergyType,
		CommissionMode:         input.CommissionMode,
		CommissionConfig:       input.CommissionConfig,
		ActivationTypes:        input.ActivationTypes,
		PaysDirectDebit:        input.PaysDirectDebit,
		DirectDebitValue:       input.DirectDebitValue,
		PaysElectronicInvoice:  input.PaysElectronicInvoice,
		ElectronicInvoiceValue: input.ElectronicInvoiceValue,
		Active:                 true,
	}
	if err := s.db.Create(&operator).Error; err != nil {
		return nil, err
	}
	return &operator, nil
}

// UpdateOperatorInput is a patch: nil pointers leave the field untouched.
// The scope is immutable, existing sales depend on it.
type UpdateOperatorInput struct {
	Name                   *string                  `json:"name"`
	EnergyType             *string                  `json:"energy_type"`
	CommissionMode         *string                  `json:"commission_mode"`
	CommissionConfig       *models.CommissionConfig `json:"commission_config"`
	ActivationTypes        *[]string                `json:"activation_types"`
	PaysDirectDebit        *bool                    `json:"pays_direct_debit"`
	DirectDebitValue       *float64                 `json:"direct_debit_value"`
	PaysElectronicInvoice  *bool                    `json:"pays_electronic_invoice"`
	ElectronicInvoiceValue *float64                 `json:"electronic_invoice_value"`
	Active                 *bool                    `json:"active"`
	Hidden                 *bool                    `json:"hidden"`
}

func (s *OperatorService) Update(operatorID uint, input UpdateOperatorInput) (*models.Operator, error) {
	operator, err := s.Get(operatorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		operator.Name = *input.Name
	}
	if input.EnergyType != nil {
		operator.EnergyType = *input.EnergyType
	}
	if input.CommissionMode != nil {
		if *input.CommissionMode != models.CommissionModeTier && *input.CommissionMode != models.CommissionModeManual {
			return nil, NewValidationError("Modo de comissão inválido")
		}
		operator.CommissionMode = *input.CommissionMode
	}
	if input.CommissionConfig != nil {
		operator.CommissionConfig = *input.CommissionConfig
	}
	if input.ActivationTypes != nil {
		operator.ActivationTypes = *input.ActivationTypes
	}
	if input.PaysDirectDebit != nil {
		operator.PaysDirectDebit = *input.PaysDirectDebit
	}
	if input.DirectDebitValue != nil {
		operator.DirectDebitValue = *input.DirectDebitValue
	}
	if input.PaysElectronicInvoice != nil {
		operator.PaysElectronicInvoice = *input.PaysElectronicInvoice
	}
	if input.ElectronicInvoiceValue != nil {
		operator.ElectronicInvoiceValue = *input.ElectronicInvoiceValue
	}
	if input.Active != nil {
		operator.Active = *input.Active
	}
	if input.Hidden != nil {
		operator.Hidden = *input.Hidden
	}

	if err := s.db.Save(operator).Error; err != nil {
		return nil, err
	}
	return operator, nil
}

func (s *OperatorService) Get(operatorID uint) (*models.Operator, error) {
	var operator models.Operator
	if err := s.db.First(&operator, operatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return &operator, nil
}

// List returns operators. Staff see everything; partner-scoped actors
// only see active, non-hidden operators they can sell for.
func (s *OperatorService) List(actor models.ActingUser) ([]models.Operator, error) {
	db := s.db.Model(&models.Operator{})
	if !actor.IsStaff() {
		db = db.Where("active = ?", true).Where("hidden = ?", false)
	}
	var operators []models.Operator
	err := db.Order("name ASC").Find(&operators).Error
	return operators, err
}

// Delete deactivates an operator instead of removing it when sales
// reference it.
func (s *OperatorService) Delete(operatorID uint) error {
	operator, err := s.Get(operatorID)
	if err != nil {
		return err
	}

	var saleCount int64
	if err := s.db.Model(&models.Sale{}).Where("operator_id = ?", operatorID).Count(&saleCount).Error; err != nil {
		return err
	}
	if saleCount > 0 {
		return s.db.Model(operator).Updates(map[string]interface{}{"active": false, "hidden": true}).Error
	}
	return s.db.Delete(operator).Error
}
