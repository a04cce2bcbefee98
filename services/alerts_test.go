package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

func TestAlertRecipients(t *testing.T) {
	db := setupTestDB(t)
	service := NewAlertService(db, nil)

	admin := createTestUser(t, db, models.RoleAdmin)
	backOffice := createTestUser(t, db, models.RoleBackOffice)
	partner, partnerUser := createTestPartner(t, db, "Parceiro Alertas")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})

	sale := seedSale(t, db, partner, operator, func(s *models.Sale) {
		s.CreatedByUserID = partnerUser.ID
	})

	// Partner user caused the event: staff get notified, the actor does
	// not, and the creator/partner overlap is deduplicated.
	recipients := service.Recipients(sale, partnerUser.ID)
	ids := make([]uint, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []uint{admin.ID, backOffice.ID}, ids)

	// Admin caused the event: the partner user is notified once.
	recipients = service.Recipients(sale, admin.ID)
	ids = ids[:0]
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []uint{backOffice.ID, partnerUser.ID}, ids)
}

func TestAlertEmitAndRead(t *testing.T) {
	db := setupTestDB(t)
	service := NewAlertService(db, nil)

	admin := createTestUser(t, db, models.RoleAdmin)
	partner, partnerUser := createTestPartner(t, db, "Parceiro Leitura")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	sale := seedSale(t, db, partner, operator, func(s *models.Sale) {
		s.CreatedByUserID = partnerUser.ID
	})

	service.Emit(AlertInput{
		Type:    models.AlertNewSale,
		Sale:    sale,
		Message: "Nova venda",
		Actor:   staffActor(admin),
	})

	alerts, err := service.ListForUser(partnerUser.ID, true, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.AlertNewSale, alerts[0].Type)
	assert.Equal(t, sale.SaleCode, alerts[0].SaleCode)

	// The actor is not a recipient of their own event.
	adminAlerts, err := service.ListForUser(admin.ID, false, 0)
	require.NoError(t, err)
	assert.Empty(t, adminAlerts)

	count, err := service.UnreadCount(partnerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, service.MarkRead(alerts[0].ID, partnerUser.ID))
	require.NoError(t, service.MarkRead(alerts[0].ID, partnerUser.ID), "marking twice is idempotent")

	count, err = service.UnreadCount(partnerUser.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	all, err := service.ListForUser(partnerUser.ID, false, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1, "read alerts stay listed")
}

func TestAlertMarkReadForeignUser(t *testing.T) {
	db := setupTestDB(t)
	service := NewAlertService(db, nil)

	admin := createTestUser(t, db, models.RoleAdmin)
	outsider := createTestUser(t, db, models.RolePartner)
	partner, partnerUser := createTestPartner(t, db, "Parceiro Estrito")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	sale := seedSale(t, db, partner, operator, func(s *models.Sale) {
		s.CreatedByUserID = partnerUser.ID
	})

	service.Emit(AlertInput{Type: models.AlertNewSale, Sale: sale, Message: "m", Actor: staffActor(admin)})

	alerts, err := service.ListForUser(partnerUser.ID, false, 0)
	require.NoError(t, err)
	require.Len(t, alerts, 1)

	err = service.MarkRead(alerts[0].ID, outsider.ID)
	var forbiddenErr *ForbiddenError
	assert.ErrorAs(t, err, &forbiddenErr)

	assert.ErrorIs(t, service.MarkRead(9999, partnerUser.ID), ErrAlertNotFound)
}

type stubMailer struct {
	sent []string
	fail bool
}

func (m *stubMailer) Send(to, subject, html string) (string, error) {
	if m.fail {
		return "", assert.AnError
	}
	m.sent = append(m.sent, to)
	return "stub", nil
}

func TestAlertDispatchSendsToEveryRecipient(t *testing.T) {
	db := setupTestDB(t)
	mailer := &stubMailer{}
	service := NewAlertService(db, mailer)

	admin := createTestUser(t, db, models.RoleAdmin)
	backOffice := createTestUser(t, db, models.RoleBackOffice)
	partner, partnerUser := createTestPartner(t, db, "Parceiro Email")
	operator := createTelecomOperator(t, db, models.TierList{{MinSales: 0, Multiplier: 1.0}})
	sale := seedSale(t, db, partner, operator, nil)

	input := AlertInput{
		Type:    models.AlertStatusChange,
		Sale:    sale,
		Message: "Estado alterado",
		Actor:   partnerActor(partnerUser, partner),
	}
	service.Dispatch(input, []models.User{*admin, *backOffice})

	assert.ElementsMatch(t, []string{admin.Email, backOffice.Email}, mailer.sent)
}
