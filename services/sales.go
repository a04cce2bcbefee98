package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/utils"
)

// statusRank orders the forward-only lifecycle. Cancelado and Recusado
// are terminal and reachable from any non-terminal state.
var statusRank = map[string]int{
	models.StatusForRegistration: 0,
	models.StatusPending:         1,
	models.StatusRegistered:      2,
	models.StatusActive:          3,
	models.StatusCompleted:       4,
}

// ValidateTransition enforces the sale state machine: forward moves only,
// any non-terminal state may be cancelled or rejected, terminal states
// never leave.
func ValidateTransition(from, to string) error {
	if from == to {
		return nil
	}

	fromRank, fromKnown := statusRank[from]
	toRank, toKnown := statusRank[to]

	if from == models.StatusCancelled || from == models.StatusRejected {
		return &InvalidTransitionError{From: from, To: to}
	}
	if to == models.StatusCancelled || to == models.StatusRejected {
		return nil
	}
	if !fromKnown || !toKnown || toRank <= fromRank {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// SaleService owns the sale lifecycle: creation, patch updates, status
// transitions and notes. Every mutation produces an audit entry and a
// notification fan-out.
type SaleService struct {
	db         *gorm.DB
	commission *CommissionService
	alerts     *AlertService
	audit      *AuditService
}

func NewSaleService(db *gorm.DB, alerts *AlertService, audit *AuditService) *SaleService {
	return &SaleService{
		db:         db,
		commission: NewCommissionService(db),
		alerts:     alerts,
		audit:      audit,
	}
}

// CreateSaleInput is the sale creation payload.
type CreateSaleInput struct {
	Date           time.Time `json:"date"`
	PartnerID      uint      `json:"partner_id"`
	OperatorID     uint      `json:"operator_id"`
	EnergySaleType string    `json:"energy_sale_type"`
	CustomerType   string    `json:"customer_type"`

	ClientName          string `json:"client_name"`
	ClientNIF           string `json:"client_nif"`
	ClientContact       string `json:"client_contact"`
	ClientEmail         string `json:"client_email"`
	ClientIBAN          string `json:"client_iban"`
	InstallationAddress string `json:"installation_address"`

	ServiceType    string  `json:"service_type"`
	ActivationType string  `json:"activation_type"`
	MonthlyValue   float64 `json:"monthly_value"`
	Requisition    string  `json:"requisition"`
	CPE            string  `json:"cpe"`
	Power          string  `json:"power"`
	EntryType      string  `json:"entry_type"`
	CUI            string  `json:"cui"`

	HasDirectDebit       bool   `json:"has_direct_debit"`
	HasElectronicInvoice bool   `json:"has_electronic_invoice"`
	Observations         string `json:"observations"`

	// Force resubmits past the advisory format warnings.
	Force bool `json:"force"`
}

// Create validates and persists a new sale. Advisory warnings (malformed
// CPE/CUI) block the first attempt; resubmitting with Force accepts the
// values as given. Returns the warnings when creation was withheld.
func (s *SaleService) Create(input CreateSaleInput, actor models.ActingUser) (*models.Sale, []string, error) {
	if !actor.IsStaff() {
		input.PartnerID = actor.PartnerID
	}

	var partner models.Partner
	if err := s.db.First(&partner, input.PartnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrPartnerNotFound
		}
		return nil, nil, err
	}

	var operator models.Operator
	if err := s.db.First(&operator, input.OperatorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrOperatorNotFound
		}
		return nil, nil, err
	}
	if !operator.Active {
		return nil, nil, NewValidationError("Operadora inativa")
	}

	if input.Date.IsZero() {
		return nil, nil, NewValidationError("Data da venda é obrigatória")
	}
	if input.Date.After(time.Now()) {
		return nil, nil, NewValidationError("A data da venda não pode ser no futuro")
	}
	if input.ClientName == "" {
		return nil, nil, NewValidationError("Nome do cliente é obrigatório")
	}
	if input.ClientEmail != "" {
		if err := validate.Var(input.ClientEmail, "email"); err != nil {
			return nil, nil, NewValidationError("Email do cliente inválido")
		}
	}

	if operator.Scope == models.ScopeTelecom && input.Requisition != "" {
		if err := s.checkRequisitionUnique(input.Requisition, 0); err != nil {
			return nil, nil, err
		}
	}

	if operator.Scope == models.ScopeEnergy && input.EnergySaleType == "" {
		input.EnergySaleType = operator.EnergyType
	}

	warnings := formatWarnings(input.CPE, input.CUI)
	if len(warnings) > 0 && !input.Force {
		return nil, warnings, nil
	}

	saleCode, err := utils.GenerateSaleCode(s.db, &partner, input.Date)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	initialStatus := models.StatusPending
	if !actor.IsStaff() {
		initialStatus = models.StatusForRegistration
	}

	sale := models.Sale{
		SaleCode:        saleCode,
		Date:            input.Date,
		PartnerID:       partner.ID,
		PartnerName:     partner.Name,
		CreatedByUserID: actor.ID,
		OperatorID:      operator.ID,
		OperatorName:    operator.Name,
		Scope:           operator.Scope,
		EnergySaleType:  input.EnergySaleType,
		CustomerType:    input.CustomerType,

		ClientName:          input.ClientName,
		ClientNIF:           input.ClientNIF,
		ClientContact:       input.ClientContact,
		ClientEmail:         input.ClientEmail,
		ClientIBAN:          input.ClientIBAN,
		InstallationAddress: input.InstallationAddress,

		ServiceType:    input.ServiceType,
		ActivationType: input.ActivationType,
		MonthlyValue:   input.MonthlyValue,
		Requisition:    input.Requisition,
		CPE:            input.CPE,
		Power:          input.Power,
		EntryType:      input.EntryType,
		CUI:            input.CUI,

		Status:     initialStatus,
		StatusDate: &now,

		Observations: input.Observations,
		Notes:        models.NoteList{},
	}

	if input.HasDirectDebit && operator.PaysDirectDebit {
		sale.HasDirectDebit = true
		sale.DirectDebitValue = operator.DirectDebitValue
	}
	if input.HasElectronicInvoice && operator.PaysElectronicInvoice {
		sale.HasElectronicInvoice = true
		sale.ElectronicInvoiceValue = operator.ElectronicInvoiceValue
	}

	sale.CalculatedCommission, sale.TierName = s.commission.Calculate(&sale, &operator)

	if err := s.db.Create(&sale).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, &DuplicateError{Field: "sale_code", Message: "Código de venda já existe no sistema"}
		}
		return nil, nil, err
	}

	s.audit.Record(sale.ID, models.AuditCreate, actor,
		fmt.Sprintf("Venda %s criada", sale.SaleCode), nil)
	s.alerts.Emit(AlertInput{
		Type:    models.AlertNewSale,
		Sale:    &sale,
		Message: fmt.Sprintf("Nova venda %s registada por %s (%s - %s)", sale.SaleCode, actor.Name, sale.PartnerName, sale.OperatorName),
		Actor:   actor,
	})

	return &sale, nil, nil
}

// formatWarnings collects the advisory delivery-point format checks. They
// never block a forced submission, the values may legitimately deviate.
func formatWarnings(cpe, cui string) []string {
	var warnings []string
	if cpe != "" && !utils.ValidateCPE(cpe) {
		warnings = append(warnings, "CPE com formato inválido (esperado: PT seguido de 13 dígitos)")
	}
	if cui != "" && !utils.ValidateCUI(cui) {
		warnings = append(warnings, "CUI com formato inválido (esperado: PT seguido de 16 dígitos)")
	}
	return warnings
}

func (s *SaleService) checkRequisitionUnique(requisition string, excludeSaleID uint) error {
	query := s.db.Model(&models.Sale{}).
		Where("requisition = ?", requisition).
		Where("scope = ?", models.ScopeTelecom)
	if excludeSaleID != 0 {
		query = query.Where("id <> ?", excludeSaleID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &DuplicateError{Field: "requisition", Message: "Número de requisição já existe no sistema"}
	}
	return nil
}

// UpdateSaleInput is a patch: nil pointers leave the field untouched.
type UpdateSaleInput struct {
	Date           *time.Time `json:"date"`
	OperatorID     *uint      `json:"operator_id"`
	EnergySaleType *string    `json:"energy_sale_type"`
	CustomerType   *string    `json:"customer_type"`

	ClientName          *string `json:"client_name"`
	ClientNIF           *string `json:"client_nif"`
	ClientContact       *string `json:"client_contact"`
	ClientEmail         *string `json:"client_email"`
	ClientIBAN          *string `json:"client_iban"`
	InstallationAddress *string `json:"installation_address"`

	ServiceType    *string  `json:"service_type"`
	ActivationType *string  `json:"activation_type"`
	MonthlyValue   *float64 `json:"monthly_value"`
	Requisition    *string  `json:"requisition"`
	CPE            *string  `json:"cpe"`
	Power          *string  `json:"power"`
	EntryType      *string  `json:"entry_type"`
	CUI            *string  `json:"cui"`

	Status           *string    `json:"status"`
	PaidToOperator   *bool      `json:"paid_to_operator"`
	PaymentDate      *time.Time `json:"payment_date"`
	ManualCommission *float64   `json:"manual_commission"`
	ClearManual      bool       `json:"clear_manual_commission"`

	Observations *string `json:"observations"`
}

// Update applies a patch to a sale. Status changes go through the state
// machine; lifecycle fields (status, payment, manual commission) are
// staff-only; commission inputs trigger a recalculation.
func (s *SaleService) Update(saleID uint, input UpdateSaleInput, actor models.ActingUser) (*models.Sale, error) {
	sale, err := s.Get(saleID, actor)
	if err != nil {
		return nil, err
	}

	if !actor.IsStaff() && (input.Status != nil || input.PaidToOperator != nil ||
		input.ManualCommission != nil || input.ClearManual) {
		return nil, &ForbiddenError{Message: "Sem permissão para alterar o estado ou a comissão da venda"}
	}

	var changed []string
	recalc := false
	track := func(field string) { changed = append(changed, field) }

	if input.Date != nil && !input.Date.Equal(sale.Date) {
		if input.Date.After(time.Now()) {
			return nil, NewValidationError("A data da venda não pode ser no futuro")
		}
		sale.Date = *input.Date
		track("date")
	}
	if input.OperatorID != nil && *input.OperatorID != sale.OperatorID {
		var operator models.Operator
		if err := s.db.First(&operator, *input.OperatorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOperatorNotFound
			}
			return nil, err
		}
		if operator.Scope != sale.Scope {
			return nil, NewValidationError("A nova operadora tem de pertencer ao mesmo segmento da venda")
		}
		sale.OperatorID = operator.ID
		sale.OperatorName = operator.Name
		track("operator_id")
		recalc = true
	}
	if input.EnergySaleType != nil && *input.EnergySaleType != sale.EnergySaleType {
		sale.EnergySaleType = *input.EnergySaleType
		track("energy_sale_type")
		recalc = true
	}
	if input.CustomerType != nil && *input.CustomerType != sale.CustomerType {
		sale.CustomerType = *input.CustomerType
		track("customer_type")
		recalc = true
	}

	applyString := func(target *string, value *string, field string) {
		if value != nil && *value != *target {
			*target = *value
			track(field)
		}
	}
	applyString(&sale.ClientName, input.ClientName, "client_name")
	applyString(&sale.ClientNIF, input.ClientNIF, "client_nif")
	applyString(&sale.ClientContact, input.ClientContact, "client_contact")
	applyString(&sale.ClientEmail, input.ClientEmail, "client_email")
	applyString(&sale.ClientIBAN, input.ClientIBAN, "client_iban")
	applyString(&sale.InstallationAddress, input.InstallationAddress, "installation_address")
	applyString(&sale.ActivationType, input.ActivationType, "activation_type")
	applyString(&sale.CPE, input.CPE, "cpe")
	applyString(&sale.Power, input.Power, "power")
	applyString(&sale.EntryType, input.EntryType, "entry_type")
	applyString(&sale.CUI, input.CUI, "cui")
	applyString(&sale.Observations, input.Observations, "observations")

	if input.ServiceType != nil && *input.ServiceType != sale.ServiceType {
		sale.ServiceType = *input.ServiceType
		track("service_type")
		recalc = true
	}
	if input.MonthlyValue != nil && *input.MonthlyValue != sale.MonthlyValue {
		sale.MonthlyValue = *input.MonthlyValue
		track("monthly_value")
		recalc = true
	}
	if input.Requisition != nil && *input.Requisition != sale.Requisition {
		if sale.Scope == models.ScopeTelecom && *input.Requisition != "" {
			if err := s.checkRequisitionUnique(*input.Requisition, sale.ID); err != nil {
				return nil, err
			}
		}
		sale.Requisition = *input.Requisition
		track("requisition")
	}

	if input.ManualCommission != nil {
		if sale.ManualCommission == nil || *sale.ManualCommission != *input.ManualCommission {
			value := *input.ManualCommission
			sale.ManualCommission = &value
			track("manual_commission")
		}
	} else if input.ClearManual && sale.ManualCommission != nil {
		sale.ManualCommission = nil
		track("manual_commission")
	}

	statusChanged := false
	previousStatus := sale.Status
	if input.Status != nil && *input.Status != sale.Status {
		if err := ValidateTransition(sale.Status, *input.Status); err != nil {
			return nil, err
		}
		sale.Status = *input.Status
		now := time.Now()
		sale.StatusDate = &now
		statusChanged = true
		track("status")
	}

	if input.PaidToOperator != nil && *input.PaidToOperator != sale.PaidToOperator {
		if *input.PaidToOperator {
			if sale.Status != models.StatusActive {
				return nil, NewValidationError("A venda tem de estar Ativa para ser marcada como paga à operadora")
			}
			sale.PaidToOperator = true
			if input.PaymentDate != nil {
				sale.PaymentDate = input.PaymentDate
			} else {
				now := time.Now()
				sale.PaymentDate = &now
			}
		} else {
			sale.PaidToOperator = false
			sale.PaymentDate = nil
		}
		track("paid_to_operator")
	} else if input.PaymentDate != nil && sale.PaidToOperator {
		sale.PaymentDate = input.PaymentDate
		track("payment_date")
	}

	if len(changed) == 0 {
		return sale, nil
	}

	if recalc {
		var operator models.Operator
		if err := s.db.First(&operator, sale.OperatorID).Error; err != nil {
			return nil, err
		}
		sale.CalculatedCommission, sale.TierName = s.commission.Calculate(sale, &operator)
	}

	if err := s.db.Save(sale).Error; err != nil {
		return nil, err
	}

	if statusChanged {
		s.audit.Record(sale.ID, models.AuditStatusChange, actor,
			fmt.Sprintf("Estado alterado de %s para %s", previousStatus, sale.Status), changed)
		s.alerts.Emit(AlertInput{
			Type:    models.AlertStatusChange,
			Sale:    sale,
			Message: fmt.Sprintf("Venda %s: estado alterado de %s para %s", sale.SaleCode, previousStatus, sale.Status),
			Actor:   actor,
		})
	} else {
		s.audit.Record(sale.ID, models.AuditUpdate, actor,
			fmt.Sprintf("Venda %s atualizada", sale.SaleCode), changed)
		s.alerts.Emit(AlertInput{
			Type:    models.AlertSaleUpdated,
			Sale:    sale,
			Message: fmt.Sprintf("Venda %s atualizada por %s", sale.SaleCode, actor.Name),
			Actor:   actor,
		})
	}

	return sale, nil
}

// AddNote appends an immutable note to the sale.
func (s *SaleService) AddNote(saleID uint, content string, actor models.ActingUser) (*models.Sale, error) {
	if content == "" {
		return nil, NewValidationError("O conteúdo da nota é obrigatório")
	}

	sale, err := s.Get(saleID, actor)
	if err != nil {
		return nil, err
	}

	note := models.Note{
		ID:         uuid.NewString(),
		Content:    content,
		Author:     actor.Name,
		AuthorRole: actor.Role,
		CreatedAt:  time.Now(),
	}
	sale.Notes = append(sale.Notes, note)

	if err := s.db.Model(sale).Update("notes", sale.Notes).Error; err != nil {
		return nil, err
	}

	s.audit.Record(sale.ID, models.AuditNoteAdded, actor, "Nota adicionada", nil)
	s.alerts.Emit(AlertInput{
		Type:    models.AlertNoteAdded,
		Sale:    sale,
		Message: fmt.Sprintf("Nova nota de %s na venda %s: %s", actor.Name, sale.SaleCode, content),
		Actor:   actor,
	})

	return sale, nil
}

// Get loads a sale, enforcing visibility for non-staff actors: partners
// see their partner's sales, commercials only the ones they created.
func (s *SaleService) Get(saleID uint, actor models.ActingUser) (*models.Sale, error) {
	var sale models.Sale
	if err := s.db.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	if actor.Role == models.RolePartnerCommercial {
		if sale.CreatedByUserID != actor.ID {
			return nil, ErrSaleNotFound
		}
	} else if !actor.IsStaff() && sale.PartnerID != actor.PartnerID {
		return nil, ErrSaleNotFound
	}
	return &sale, nil
}

// List returns sales visible to the actor, newest first. Partner actors
// only ever see their own partner's sales, commercials their own.
func (s *SaleService) List(query models.SaleQuery, actor models.ActingUser) ([]models.Sale, error) {
	db := s.db.Model(&models.Sale{})

	if actor.Role == models.RolePartnerCommercial {
		db = db.Where("created_by_user_id = ?", actor.ID)
	} else if !actor.IsStaff() {
		db = db.Where("partner_id = ?", actor.PartnerID)
	} else if query.PartnerID != 0 {
		db = db.Where("partner_id = ?", query.PartnerID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Scope != "" {
		db = db.Where("scope = ?", query.Scope)
	}

	var sales []models.Sale
	err := db.Order("date DESC, id DESC").Find(&sales).Error
	return sales, err
}

// Delete removes a sale. Admin only; the audit trail rows remain.
func (s *SaleService) Delete(saleID uint, actor models.ActingUser) error {
	if actor.Role != models.RoleAdmin {
		return &ForbiddenError{Message: "Apenas administradores podem eliminar vendas"}
	}
	var sale models.Sale
	if err := s.db.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSaleNotFound
		}
		return err
	}
	return s.db.Delete(&sale).Error
}
