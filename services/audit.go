package services

import (
	"log"

	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

// AuditService appends to the sale audit trail. Recording is best-effort:
// a failed insert is logged and never propagated, the sale mutation that
// triggered it has already been committed.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends one audit entry for a sale mutation.
func (s *AuditService) Record(saleID uint, actionType string, actor models.ActingUser, description string, changedFields []string) {
	entry := models.SaleAuditLog{
		SaleID:        saleID,
		ActionType:    actionType,
		UserID:        actor.ID,
		UserName:      actor.Name,
		Description:   description,
		ChangedFields: changedFields,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("audit: failed to record %s for sale %d: %v", actionType, saleID, err)
	}
}

// History returns a sale's audit entries, newest first.
func (s *AuditService) History(saleID uint) ([]models.SaleAuditLog, error) {
	var entries []models.SaleAuditLog
	err := s.db.Where("sale_id = ?", saleID).Order("created_at DESC, id DESC").Find(&entries).Error
	return entries, err
}
