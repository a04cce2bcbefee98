package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

// VATRate is the Portuguese standard VAT rate applied to commission
// invoices.
const VATRate = 0.23

// ReportService builds the monthly commission spreadsheets partners
// invoice against. A period can be regenerated; each run gets a new
// version number.
type ReportService struct {
	db     *gorm.DB
	mailer Mailer
	dir    string
}

func NewReportService(db *gorm.DB, mailer Mailer, dir string) *ReportService {
	if dir == "" {
		dir = "reports"
	}
	return &ReportService{db: db, mailer: mailer, dir: dir}
}


// Generate builds the commission report for a partner and period, writes
// the xlsx file and records the report row. Returns the stored record.
func (s *ReportService) Generate(partnerID uint, month, year int, actor models.ActingUser) (*models.CommissionReport, error) {
	if month < 1 || month > 12 {
		return nil, NewValidationError("Mês inválido")
	}
	if year < 2000 || year > 2100 {
		return nil, NewValidationError("Ano inválido")
	}

	var partner models.Partner
	if err := s.db.First(&partner, partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPartnerNotFound
		}
		return nil, err
	}

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	// Only sales already paid by the operator are invoiced.
	var sales []models.Sale
	err := s.db.
		Where("partner_id = ?", partnerID).
		Where("paid_to_operator = ?", true).
		Where("date >= ? AND date < ?", periodStart, periodEnd).
		Order("date ASC, id ASC").
		Find(&sales).Error
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, NewValidationError("Sem vendas elegíveis no período selecionado")
	}

	version, err := s.nextVersion(partnerID, month, year)
	if err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("comissoes_%s_%04d-%02d_v%d.xlsx", partner.PartnerCode, year, month, version)
	filePath := filepath.Join(s.dir, fileName)
	if err := s.writeWorkbook(filePath, &partner, sales, month, year); err != nil {
		return nil, err
	}

	report := models.CommissionReport{
		PartnerID: partnerID,
		Month:     month,
		Year:      year,
		Version:   version,
		FileName:  fileName,
		FilePath:  filePath,
		CreatedBy: actor.ID,
	}
	if err := s.db.Create(&report).Error; err != nil {
		return nil, err
	}
	report.Partner = &partner
	return &report, nil
}

func (s *ReportService) nextVersion(partnerID uint, month, year int) (int, error) {
	var last models.CommissionReport
	err := s.db.
		Where("partner_id = ? AND month = ? AND year = ?", partnerID, month, year).
		Order("version DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last.Version + 1, nil
}

// writeWorkbook renders the commission sheet: one row per sale plus the
// subtotal, VAT and grand total footer.
func (s *ReportService) writeWorkbook(path string, partner *models.Partner, sales []models.Sale, month, year int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Comissões"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Relatório de comissões - %s (%s)", partner.Name, partner.PartnerCode))
	f.SetCellValue(sheet, "A2", fmt.Sprintf("Período: %02d/%04d", month, year))

	headers := []string{"Venda", "Data", "Cliente", "Operadora", "Segmento", "Estado", "Comissão (€)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 5
	var subtotal float64
	for i := range sales {
		sale := &sales[i]
		commission := sale.EffectiveCommission()
		subtotal += commission

		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sale.SaleCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sale.Date.Format("02-01-2006"))
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sale.ClientName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), sale.OperatorName)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), sale.Scope)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), sale.Status)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), commission)
		f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), moneyStyle)
		row++
	}

	vat := subtotal * VATRate
	row++
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), "Subtotal")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", row), subtotal)
	f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), moneyStyle)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), fmt.Sprintf("IVA (%.0f%%)", VATRate*100))
	f.SetCellValue(sheet, fmt.Sprintf("G%d", row), vat)
	f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), moneyStyle)
	row++
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("G%d", row), subtotal+vat)
	f.SetCellStyle(sheet, fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), moneyStyle)

	f.SetColWidth(sheet, "A", "A", 14)
	f.SetColWidth(sheet, "B", "B", 12)
	f.SetColWidth(sheet, "C", "D", 24)
	f.SetColWidth(sheet, "E", "F", 16)
	f.SetColWidth(sheet, "G", "G", 14)

	return f.SaveAs(path)
}

// Email sends a stored report to the partner's communication emails (or
// the main partner email when none are configured) and stamps emailed_at.
func (s *ReportService) Email(reportID uint) error {
	if s.mailer == nil {
		return NewValidationError("Envio de email não configurado")
	}

	var report models.CommissionReport
	if err := s.db.Preload("Partner").First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		return err
	}
	if report.Partner == nil {
		return ErrPartnerNotFound
	}

	recipients := report.Partner.CommunicationEmails
	if len(recipients) == 0 && report.Partner.Email != "" {
		recipients = []string{report.Partner.Email}
	}
	if len(recipients) == 0 {
		return NewValidationError("O parceiro não tem emails de comunicação configurados")
	}

	subject := fmt.Sprintf("Relatório de comissões %02d/%04d", report.Month, report.Year)
	body := fmt.Sprintf(
		"<p>Segue o relatório de comissões do período %02d/%04d (versão %d).</p><p>Ficheiro: %s</p>",
		report.Month, report.Year, report.Version, report.FileName)

	sent := false
	for _, to := range recipients {
		if _, err := s.mailer.Send(to, subject, body); err != nil {
			log.Printf("reports: email to %s failed: %v", to, err)
			continue
		}
		sent = true
	}
	if !sent {
		return NewValidationError("Não foi possível enviar o relatório")
	}

	now := time.Now()
	return s.db.Model(&report).Update("emailed_at", &now).Error
}

// List returns report records, optionally filtered by partner, newest
// first.
func (s *ReportService) List(partnerID uint) ([]models.CommissionReport, error) {
	db := s.db.Preload("Partner").Order("year DESC, month DESC, version DESC")
	if partnerID != 0 {
		db = db.Where("partner_id = ?", partnerID)
	}
	var reports []models.CommissionReport
	err := db.Find(&reports).Error
	return reports, err
}

// Get loads one report record.
func (s *ReportService) Get(reportID uint) (*models.CommissionReport, error) {
	var report models.CommissionReport
	if err := s.db.Preload("Partner").First(&report, reportID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	return &report, nil
}
