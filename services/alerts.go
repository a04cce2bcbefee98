package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/email"
	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

// Mailer is what the alert fan-out needs from the email package.
type Mailer interface {
	Send(to, subject, html string) (string, error)
}

// AlertService creates in-app alerts for sale events and dispatches the
// matching emails. Everything here is best-effort: an alert or email that
// cannot be delivered is logged and dropped, the sale operation that
// produced it has already succeeded.
type AlertService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewAlertService(db *gorm.DB, mailer Mailer) *AlertService {
	return &AlertService{db: db, mailer: mailer}
}

// AlertInput describes one sale event to notify about.
type AlertInput struct {
	Type    string
	Sale    *models.Sale
	Message string
	Actor   models.ActingUser
}

// Emit computes the recipient set, stores the alert row and dispatches the
// emails in the background.
func (s *AlertService) Emit(input AlertInput) {
	recipients := s.Recipients(input.Sale, input.Actor.ID)
	if len(recipients) == 0 {
		return
	}

	ids := make(models.UintList, 0, len(recipients))
	for _, user := range recipients {
		ids = append(ids, user.ID)
	}

	alert := models.Alert{
		Type:          input.Type,
		SaleID:        input.Sale.ID,
		SaleCode:      input.Sale.SaleCode,
		Message:       input.Message,
		UserIDs:       ids,
		ReadBy:        models.UintList{},
		CreatedBy:     input.Actor.ID,
		CreatedByName: input.Actor.Name,
	}
	if err := s.db.Create(&alert).Error; err != nil {
		log.Printf("alerts: failed to store %s alert for sale %s: %v", input.Type, input.Sale.SaleCode, err)
	}

	if s.mailer != nil {
		go s.Dispatch(input, recipients)
	}
}

// Recipients resolves who is notified about a sale event: the sale's
// partner account, the user who created the sale and every admin and
// back-office user, deduplicated, minus the actor who caused the event.
func (s *AlertService) Recipients(sale *models.Sale, actorID uint) []models.User {
	var staff []models.User
	if err := s.db.Where("role IN ?", []string{models.RoleAdmin, models.RoleBackOffice}).Find(&staff).Error; err != nil {
		log.Printf("alerts: failed to load staff recipients: %v", err)
	}

	seen := make(map[uint]bool)
	var recipients []models.User
	add := func(user models.User) {
		if user.ID == 0 || user.ID == actorID || seen[user.ID] {
			return
		}
		seen[user.ID] = true
		recipients = append(recipients, user)
	}

	for _, user := range staff {
		add(user)
	}

	var partner models.Partner
	if err := s.db.First(&partner, sale.PartnerID).Error; err == nil && partner.UserID != nil {
		var partnerUser models.User
		if err := s.db.First(&partnerUser, *partner.UserID).Error; err == nil {
			add(partnerUser)
		}
	}

	if sale.CreatedByUserID != 0 {
		var creator models.User
		if err := s.db.First(&creator, sale.CreatedByUserID).Error; err == nil {
			add(creator)
		}
	}

	return recipients
}

// Dispatch sends the alert email to each recipient. One attempt per
// recipient, failures are logged.
func (s *AlertService) Dispatch(input AlertInput, recipients []models.User) {
	subject, body := email.RenderAlert(email.AlertContent{
		Title:    alertTitle(input.Type),
		Message:  input.Message,
		SaleCode: input.Sale.SaleCode,
		Partner:  input.Sale.PartnerName,
		Operator: input.Sale.OperatorName,
		Author:   input.Actor.Name,
	})

	for _, user := range recipients {
		if user.Email == "" {
			continue
		}
		if _, err := s.mailer.Send(user.Email, subject, body); err != nil {
			log.Printf("alerts: email to %s failed: %v", user.Email, err)
		}
	}
}

func alertTitle(alertType string) string {
	switch alertType {
	case models.AlertNewSale:
		return "Nova venda registada"
	case models.AlertStatusChange:
		return "Estado da venda atualizado"
	case models.AlertSaleUpdated:
		return "Venda atualizada"
	case models.AlertNoteAdded:
		return "Nova nota na venda"
	default:
		return "Notificação"
	}
}

// ListForUser returns the alerts addressed to a user, newest first.
// Read/unread is derived from read_by. JSON membership is filtered in Go
// to stay portable across MySQL and SQLite. limit <= 0 means no limit.
func (s *AlertService) ListForUser(userID uint, onlyUnread bool, limit int) ([]models.Alert, error) {
	var all []models.Alert
	if err := s.db.Order("created_at DESC, id DESC").Find(&all).Error; err != nil {
		return nil, err
	}

	var alerts []models.Alert
	for _, alert := range all {
		if !alert.UserIDs.Contains(userID) {
			continue
		}
		if onlyUnread && alert.ReadBy.Contains(userID) {
			continue
		}
		alerts = append(alerts, alert)
		if limit > 0 && len(alerts) >= limit {
			break
		}
	}
	return alerts, nil
}

// MarkRead appends the user to the alert's read_by list. Idempotent.
func (s *AlertService) MarkRead(alertID, userID uint) error {
	var alert models.Alert
	if err := s.db.First(&alert, alertID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrAlertNotFound
		}
		return err
	}
	if !alert.UserIDs.Contains(userID) {
		return &ForbiddenError{Message: "alerta não pertence ao utilizador"}
	}
	if alert.ReadBy.Contains(userID) {
		return nil
	}
	alert.ReadBy = append(alert.ReadBy, userID)
	return s.db.Model(&alert).Update("read_by", alert.ReadBy).Error
}

// MarkAllRead marks every alert addressed to the user as read.
func (s *AlertService) MarkAllRead(userID uint) error {
	var all []models.Alert
	if err := s.db.Find(&all).Error; err != nil {
		return err
	}
	for i := range all {
		alert := &all[i]
		if !alert.UserIDs.Contains(userID) || alert.ReadBy.Contains(userID) {
			continue
		}
		alert.ReadBy = append(alert.ReadBy, userID)
		if err := s.db.Model(alert).Update("read_by", alert.ReadBy).Error; err != nil {
			return err
		}
	}
	return nil
}

// UnreadCount returns how many alerts addressed to the user are unread.
func (s *AlertService) UnreadCount(userID uint) (int, error) {
	alerts, err := s.ListForUser(userID, true, 0)
	if err != nil {
		return 0, err
	}
	return len(alerts), nil
}
