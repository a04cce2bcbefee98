package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Partner{},
		&models.Operator{},
		&models.Sale{},
		&models.Alert{},
		&models.SaleAuditLog{},
		&models.CommissionReport{},
		&models.Counter{},
	))

	return db
}

var testSeq struct {
	sync.Mutex
	n int
}

func nextSeq() int {
	testSeq.Lock()
	defer testSeq.Unlock()
	testSeq.n++
	return testSeq.n
}

func createTestUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	n := nextSeq()
	user := &models.User{
		Name:  fmt.Sprintf("User %d", n),
		Email: fmt.Sprintf("user%d@example.pt", n),
		Role:  role,
	}
	require.NoError(t, user.SetPassword("Teste123!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestPartner(t *testing.T, db *gorm.DB, name string) (*models.Partner, *models.User) {
	t.Helper()
	user := createTestUser(t, db, models.RolePartner)
	partner := &models.Partner{
		PartnerCode: fmt.Sprintf("D2D%d", 1000+nextSeq()),
		PartnerType: models.PartnerTypeD2D,
		Name:        name,
		Email:       user.Email,
		UserID:      &user.ID,
	}
	require.NoError(t, db.Create(partner).Error)
	return partner, user
}

func createTelecomOperator(t *testing.T, db *gorm.DB, tiers models.TierList) *models.Operator {
	t.Helper()
	operator := &models.Operator{
		Name:           fmt.Sprintf("Telco %d", nextSeq()),
		Scope:          models.ScopeTelecom,
		CommissionMode: models.CommissionModeTier,
		CommissionConfig: models.CommissionConfig{
			models.CustomerParticular: {
				ByService: map[string]models.TierList{"M3": tiers},
			},
		},
		Active: true,
	}
	require.NoError(t, db.Create(operator).Error)
	return operator
}

func createEnergyOperator(t *testing.T, db *gorm.DB, energyType string, byProduct map[string]models.TierList) *models.Operator {
	t.Helper()
	operator := &models.Operator{
		Name:           fmt.Sprintf("Energia %d", nextSeq()),
		Scope:          models.ScopeEnergy,
		EnergyType:     energyType,
		CommissionMode: models.CommissionModeTier,
		CommissionConfig: models.CommissionConfig{
			models.CustomerParticular: {
				ByProduct: byProduct,
			},
		},
		Active: true,
	}
	require.NoError(t, db.Create(operator).Error)
	return operator
}

func seedSale(t *testing.T, db *gorm.DB, partner *models.Partner, operator *models.Operator, mutate func(*models.Sale)) *models.Sale {
	t.Helper()
	now := time.Now()
	sale := &models.Sale{
		SaleCode:     fmt.Sprintf("TST%04d%s", nextSeq(), now.Format("01")),
		Date:         now.AddDate(0, 0, -1),
		PartnerID:    partner.ID,
		PartnerName:  partner.Name,
		OperatorID:   operator.ID,
		OperatorName: operator.Name,
		Scope:        operator.Scope,
		ClientName:   "Cliente Teste",
		Status:       models.StatusPending,
		StatusDate:   &now,
	}
	if mutate != nil {
		mutate(sale)
	}
	require.NoError(t, db.Create(sale).Error)
	return sale
}

func staffActor(user *models.User) models.ActingUser {
	return models.ActingUser{ID: user.ID, Name: user.Name, Role: user.Role}
}

func partnerActor(user *models.User, partner *models.Partner) models.ActingUser {
	return models.ActingUser{ID: user.ID, Name: user.Name, Role: user.Role, PartnerID: partner.ID}
}

func newSaleService(db *gorm.DB) *SaleService {
	return NewSaleService(db, NewAlertService(db, nil), NewAuditService(db))
}
