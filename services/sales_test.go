package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

func TestValidateTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.StatusForRegistration, models.StatusPending, true},
		{models.StatusPending, models.StatusRegistered, true},
		{models.StatusRegistered, models.StatusActive, true},
		{models.StatusActive, models.StatusCompleted, true},
		{models.StatusForRegistration, models.StatusActive, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusActive, models.StatusRejected, true},
		{models.StatusPending, models.StatusPending, true},
		{models.StatusActive, models.StatusPending, false},
		{models.StatusCompleted, models.StatusActive, false},
		{models.StatusCancelled, models.StatusPending, false},
		{models.StatusRejected, models.StatusCancelled, false},
	}

	for _, tc := range cases {
		err := ValidateTransition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			var transitionErr *InvalidTransitionError
			assert.ErrorAs(t, err, &transitionErr, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestCreateSaleInitialStatusByRole(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, partnerUser := createTestPartner(t, db, "Guimarães Redes")
	operator := createTelecomOperator(t, db, models.TierList{{Name: "Base", MinSales: 0, Multiplier: 1.0}})
	admin := createTestUser(t, db, models.RoleAdmin)

	input := CreateSaleInput{
		Date:         time.Now().AddDate(0, 0, -1),
		PartnerID:    partner.ID,
		OperatorID:   operator.ID,
		CustomerType: models.CustomerParticular,
		ClientName:   "Cliente A",
		ServiceType:  "M3",
		MonthlyValue: 30,
		Requisition:  "REQ-1001",
	}

	sale, warnings, err := service.Create(input, partnerActor(partnerUser, partner))
	require.NoError(t, err)
	require.Empty(t, warnings)
	assert.Equal(t, models.StatusForRegistration, sale.Status)
	assert.Equal(t, partnerUser.ID, sale.CreatedByUserID)
	assert.NotEmpty(t, sale.SaleCode)
	assert.Equal(t, 30.0, sale.CalculatedCommission)

	input.Requisition = "REQ-1002"
	sale, _, err = service.Create(input, staffActor(admin))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sale.Status)
}

func TestCreateSaleRejectsFutureDate(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Évora Telecom")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})

	input := CreateSaleInput{
		Date:        time.Now().AddDate(0, 0, 2),
		OperatorID:  operator.ID,
		ClientName:  "Cliente B",
		Requisition: "REQ-2001",
	}

	sale, _, err := service.Create(input, partnerActor(user, partner))
	assert.Nil(t, sale)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	var count int64
	db.Model(&models.Sale{}).Count(&count)
	assert.Zero(t, count, "nothing may be persisted on a rejected create")
}

func TestCreateSaleDuplicateRequisition(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Leiria Fibra")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	actor := partnerActor(user, partner)

	input := CreateSaleInput{
		Date:        time.Now().AddDate(0, 0, -1),
		OperatorID:  operator.ID,
		ClientName:  "Cliente C",
		Requisition: "REQ-3001",
	}

	_, _, err := service.Create(input, actor)
	require.NoError(t, err)

	input.ClientName = "Cliente D"
	_, _, err = service.Create(input, actor)
	var duplicateErr *DuplicateError
	require.ErrorAs(t, err, &duplicateErr)
	assert.Equal(t, "requisition", duplicateErr.Field)
	assert.Equal(t, "Número de requisição já existe no sistema", duplicateErr.Message)
}

func TestCreateSaleWarningsRequireForce(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Viseu Energia")
	operator := createEnergyOperator(t, db, models.EnergyElectricity, map[string]models.TierList{
		models.EnergyElectricity: {{Name: "Base", MinSales: 0, CommissionValue: 30}},
	})
	actor := partnerActor(user, partner)

	input := CreateSaleInput{
		Date:         time.Now().AddDate(0, 0, -1),
		OperatorID:   operator.ID,
		CustomerType: models.CustomerParticular,
		ClientName:   "Cliente E",
		CPE:          "XX123",
	}

	sale, warnings, err := service.Create(input, actor)
	require.NoError(t, err)
	assert.Nil(t, sale)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "CPE com formato inválido")

	var count int64
	db.Model(&models.Sale{}).Count(&count)
	assert.Zero(t, count)

	input.Force = true
	sale, warnings, err = service.Create(input, actor)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotNil(t, sale)
	assert.Equal(t, "XX123", sale.CPE)
}

func TestCreateSaleAppliesOperatorAddOns(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Beja Luz")
	operator := &models.Operator{
		Name:             "Energia AddOns",
		Scope:            models.ScopeEnergy,
		EnergyType:       models.EnergyElectricity,
		CommissionMode:   models.CommissionModeTier,
		PaysDirectDebit:  true,
		DirectDebitValue: 2.5,
		CommissionConfig: models.CommissionConfig{
			models.CustomerParticular: {
				Tiers: models.TierList{{Name: "Base", MinSales: 0, CommissionValue: 30}},
			},
		},
		Active: true,
	}
	require.NoError(t, db.Create(operator).Error)

	input := CreateSaleInput{
		Date:                 time.Now().AddDate(0, 0, -1),
		OperatorID:           operator.ID,
		CustomerType:         models.CustomerParticular,
		ClientName:           "Cliente F",
		HasDirectDebit:       true,
		HasElectronicInvoice: true, // operator does not pay this one
	}

	sale, _, err := service.Create(input, partnerActor(user, partner))
	require.NoError(t, err)
	assert.True(t, sale.HasDirectDebit)
	assert.Equal(t, 2.5, sale.DirectDebitValue)
	assert.False(t, sale.HasElectronicInvoice)
	assert.Zero(t, sale.ElectronicInvoiceValue)
	assert.Equal(t, models.EnergyElectricity, sale.EnergySaleType)
	assert.Equal(t, 32.5, sale.EffectiveCommission())
}

func TestCreateSaleRequisitionIsOptional(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Portimão Fibra")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})

	input := CreateSaleInput{
		Date:         time.Now().AddDate(0, 0, -1),
		OperatorID:   operator.ID,
		CustomerType: models.CustomerParticular,
		ClientName:   "Cliente sem requisição",
		ServiceType:  "M3",
		MonthlyValue: 20,
	}

	sale, warnings, err := service.Create(input, partnerActor(user, partner))
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NotNil(t, sale)
	assert.Empty(t, sale.Requisition)
}

func TestRequisitionUniquenessIsTelecomScoped(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Lagos Misto")
	telecom := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	energy := createEnergyOperator(t, db, models.EnergyElectricity, map[string]models.TierList{})

	// A requisition value held by an energy sale does not block telecom.
	seedSale(t, db, partner, energy, func(s *models.Sale) {
		s.Requisition = "REQ-CRUZADA"
		s.EnergySaleType = models.EnergyElectricity
	})

	input := CreateSaleInput{
		Date:         time.Now().AddDate(0, 0, -1),
		OperatorID:   telecom.ID,
		CustomerType: models.CustomerParticular,
		ClientName:   "Cliente Misto",
		ServiceType:  "M3",
		MonthlyValue: 20,
		Requisition:  "REQ-CRUZADA",
	}
	sale, _, err := service.Create(input, partnerActor(user, partner))
	require.NoError(t, err)
	require.NotNil(t, sale)
}

func TestUpdateSaleStatusTransition(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, _ := createTestPartner(t, db, "Santarém Telecom")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	admin := createTestUser(t, db, models.RoleAdmin)
	sale := seedSale(t, db, partner, operator, nil)

	status := models.StatusRegistered
	updated, err := service.Update(sale.ID, UpdateSaleInput{Status: &status}, staffActor(admin))
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistered, updated.Status)
	assert.NotNil(t, updated.StatusDate)

	var entries []models.SaleAuditLog
	require.NoError(t, db.Where("sale_id = ?", sale.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditStatusChange, entries[0].ActionType)
	assert.Equal(t, models.StringList{"status"}, entries[0].ChangedFields)

	backward := models.StatusPending
	_, err = service.Update(sale.ID, UpdateSaleInput{Status: &backward}, staffActor(admin))
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusRegistered, transitionErr.From)
	assert.Equal(t, models.StatusPending, transitionErr.To)
}

func TestUpdateSalePaidRequiresActive(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, _ := createTestPartner(t, db, "Funchal Redes")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	admin := createTestUser(t, db, models.RoleAdmin)
	sale := seedSale(t, db, partner, operator, nil)

	paid := true
	_, err := service.Update(sale.ID, UpdateSaleInput{PaidToOperator: &paid}, staffActor(admin))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	status := models.StatusActive
	_, err = service.Update(sale.ID, UpdateSaleInput{Status: &status}, staffActor(admin))
	require.NoError(t, err)

	updated, err := service.Update(sale.ID, UpdateSaleInput{PaidToOperator: &paid}, staffActor(admin))
	require.NoError(t, err)
	assert.True(t, updated.PaidToOperator)
	assert.NotNil(t, updated.PaymentDate)
}

func TestUpdateSaleLifecycleFieldsAreStaffOnly(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Braga Fibra")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	sale := seedSale(t, db, partner, operator, nil)

	status := models.StatusRegistered
	_, err := service.Update(sale.ID, UpdateSaleInput{Status: &status}, partnerActor(user, partner))
	var forbiddenErr *ForbiddenError
	require.ErrorAs(t, err, &forbiddenErr)
}

func TestUpdateSaleRequisitionSelfExclusion(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, _ := createTestPartner(t, db, "Almada Telecom")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	admin := createTestUser(t, db, models.RoleAdmin)

	first := seedSale(t, db, partner, operator, func(s *models.Sale) { s.Requisition = "REQ-A" })
	second := seedSale(t, db, partner, operator, func(s *models.Sale) { s.Requisition = "REQ-B" })

	// Re-submitting a sale's own requisition is not a duplicate.
	same := "REQ-A"
	_, err := service.Update(first.ID, UpdateSaleInput{Requisition: &same}, staffActor(admin))
	require.NoError(t, err)

	// Taking another sale's requisition is.
	_, err = service.Update(second.ID, UpdateSaleInput{Requisition: &same}, staffActor(admin))
	var duplicateErr *DuplicateError
	require.ErrorAs(t, err, &duplicateErr)
}

func TestUpdateSaleRecalculatesCommission(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, _ := createTestPartner(t, db, "Cascais Telecom")
	operator := createTelecomOperator(t, db, models.TierList{{Name: "Base", MinSales: 0, Multiplier: 1.0}})
	admin := createTestUser(t, db, models.RoleAdmin)
	sale := seedSale(t, db, partner, operator, func(s *models.Sale) {
		s.CustomerType = models.CustomerParticular
		s.ServiceType = "M3"
		s.MonthlyValue = 30
		s.CalculatedCommission = 30
	})

	monthly := 55.0
	updated, err := service.Update(sale.ID, UpdateSaleInput{MonthlyValue: &monthly}, staffActor(admin))
	require.NoError(t, err)
	assert.Equal(t, 55.0, updated.CalculatedCommission)

	manual := 70.0
	updated, err = service.Update(sale.ID, UpdateSaleInput{ManualCommission: &manual}, staffActor(admin))
	require.NoError(t, err)
	require.NotNil(t, updated.ManualCommission)
	assert.Equal(t, 70.0, updated.EffectiveCommission())
	assert.Equal(t, 55.0, updated.CalculatedCommission, "manual override keeps the calculated value")
}

func TestAddNote(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, user := createTestPartner(t, db, "Sintra Luz")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	sale := seedSale(t, db, partner, operator, nil)
	actor := partnerActor(user, partner)

	updated, err := service.AddNote(sale.ID, "Cliente pediu nova visita", actor)
	require.NoError(t, err)
	require.Len(t, updated.Notes, 1)
	assert.NotEmpty(t, updated.Notes[0].ID)
	assert.Equal(t, "Cliente pediu nova visita", updated.Notes[0].Content)
	assert.Equal(t, user.Name, updated.Notes[0].Author)
	assert.Equal(t, models.RolePartner, updated.Notes[0].AuthorRole)

	updated, err = service.AddNote(sale.ID, "Segunda nota", actor)
	require.NoError(t, err)
	assert.Len(t, updated.Notes, 2)

	var entries []models.SaleAuditLog
	require.NoError(t, db.Where("sale_id = ? AND action_type = ?", sale.ID, models.AuditNoteAdded).Find(&entries).Error)
	assert.Len(t, entries, 2)

	_, err = service.AddNote(sale.ID, "", actor)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestSaleScoping(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partnerA, userA := createTestPartner(t, db, "Parceiro A")
	partnerB, userB := createTestPartner(t, db, "Parceiro B")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	admin := createTestUser(t, db, models.RoleAdmin)

	saleA := seedSale(t, db, partnerA, operator, nil)
	seedSale(t, db, partnerB, operator, nil)

	sales, err := service.List(models.SaleQuery{}, partnerActor(userA, partnerA))
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, partnerA.ID, sales[0].PartnerID)

	sales, err = service.List(models.SaleQuery{}, staffActor(admin))
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	_, err = service.Get(saleA.ID, partnerActor(userB, partnerB))
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestSaleScopingCommercial(t *testing.T) {
	db := setupTestDB(t)
	service := newSaleService(db)

	partner, partnerUser := createTestPartner(t, db, "Parceiro Comercial")
	commercial := createTestUser(t, db, models.RolePartnerCommercial)
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})

	own := seedSale(t, db, partner, operator, func(s *models.Sale) {
		s.CreatedByUserID = commercial.ID
	})
	other := seedSale(t, db, partner, operator, func(s *models.Sale) {
		s.CreatedByUserID = partnerUser.ID
	})

	actor := models.ActingUser{
		ID:        commercial.ID,
		Name:      commercial.Name,
		Role:      models.RolePartnerCommercial,
		PartnerID: partner.ID,
	}

	sales, err := service.List(models.SaleQuery{}, actor)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, own.ID, sales[0].ID)

	_, err = service.Get(own.ID, actor)
	require.NoError(t, err)
	_, err = service.Get(other.ID, actor)
	assert.ErrorIs(t, err, ErrSaleNotFound)

	// The partner account still sees both.
	sales, err = service.List(models.SaleQuery{}, partnerActor(partnerUser, partner))
	require.NoError(t, err)
	assert.Len(t, sales, 2)
}
