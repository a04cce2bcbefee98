package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

// ErrSequenceContention is returned when a sequence could not be advanced
// after several compare-and-swap attempts.
var ErrSequenceContention = errors.New("sequence allocation failed after retries")

const sequenceRetries = 5

// NextSequence atomically advances the named counter and returns the new
// value. The update only succeeds when the row still holds the value we
// read, so two concurrent callers can never get the same number.
func NextSequence(db *gorm.DB, name string) (int64, error) {
	for attempt := 0; attempt < sequenceRetries; attempt++ {
		var counter models.Counter
		err := db.Where("name = ?", name).First(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = models.Counter{Name: name, Value: 1}
			if createErr := db.Create(&counter).Error; createErr != nil {
				// Lost the race to create the row; re-read and CAS.
				continue
			}
			return 1, nil
		}
		if err != nil {
			return 0, err
		}

		res := db.Model(&models.Counter{}).
			Where("name = ? AND value = ?", name, counter.Value).
			Update("value", counter.Value+1)
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return counter.Value + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrSequenceContention, name)
}

// GeneratePartnerCode allocates the next code for a partner type:
// D2D1001, Rev1002, Rev+1003, ...
func GeneratePartnerCode(db *gorm.DB, partnerType string) (string, error) {
	seq, err := NextSequence(db, "partner_code:"+partnerType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", partnerType, 1000+seq), nil
}

// GenerateSaleCode allocates the next code for a partner and sale month:
// 3-letter partner-name prefix + 4-digit sequence + 2-digit month, e.g.
// ALB000311. The sequence resets every calendar month per partner.
func GenerateSaleCode(db *gorm.DB, partner *models.Partner, saleDate time.Time) (string, error) {
	prefix := namePrefix(partner.Name)
	key := fmt.Sprintf("sale_code:%d:%s", partner.ID, saleDate.Format("2006-01"))
	seq, err := NextSequence(db, key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d%s", prefix, seq, saleDate.Format("01")), nil
}

func namePrefix(name string) string {
	runes := []rune(strings.ToUpper(name))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}
