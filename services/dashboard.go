package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

// DashboardService aggregates sale statistics for the home screen.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// PartnerStats is one row of the per-partner ranking.
type PartnerStats struct {
	PartnerID   uint    `json:"partner_id"`
	PartnerName string  `json:"partner_name"`
	Count       int     `json:"count"`
	Commission  float64 `json:"commission"`
}

// MonthlyStats is one bucket of the 12-month trend, keyed YYYY-MM.
type MonthlyStats struct {
	Month      string  `json:"month"`
	Count      int     `json:"count"`
	Commission float64 `json:"commission"`
}

// DashboardStats is the aggregated home-screen payload.
type DashboardStats struct {
	Year              int            `json:"year"`
	Month             int            `json:"month"`
	TotalSales        int            `json:"total_sales"`
	TotalCommission   float64        `json:"total_commission"`
	PaidCommission    float64        `json:"paid_commission"`
	PendingCommission float64        `json:"pending_commission"`
	ByStatus          map[string]int `json:"by_status"`
	ByScope           map[string]int `json:"by_scope"`
	ByPartner         []PartnerStats `json:"by_partner,omitempty"`
	Last12Months      []MonthlyStats `json:"last_12_months"`
}

// Stats computes the dashboard for the acting user over one calendar
// month; zero year/month mean the current one. Partner actors only see
// their own partner's numbers, commercials their own sales; the
// per-partner ranking is staff only. The monthly trend feeds a global
// activity chart and is neither windowed nor partner scoped.
func (s *DashboardService) Stats(actor models.ActingUser, year, month int) (*DashboardStats, error) {
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}
	windowStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, now.Location())
	windowEnd := windowStart.AddDate(0, 1, 0)

	db := s.db.Model(&models.Sale{}).
		Where("date >= ? AND date < ?", windowStart, windowEnd)
	if actor.Role == models.RolePartnerCommercial {
		db = db.Where("created_by_user_id = ?", actor.ID)
	} else if !actor.IsStaff() {
		db = db.Where("partner_id = ?", actor.PartnerID)
	}

	var sales []models.Sale
	if err := db.Find(&sales).Error; err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		Year:  year,
		Month: month,
		ByStatus: map[string]int{
			models.StatusForRegistration: 0,
			models.StatusPending:         0,
			models.StatusRegistered:      0,
			models.StatusActive:          0,
			models.StatusCompleted:       0,
			models.StatusCancelled:       0,
			models.StatusRejected:        0,
		},
		ByScope: map[string]int{
			models.ScopeTelecom: 0,
			models.ScopeEnergy:  0,
			models.ScopeSolar:   0,
			models.ScopeDual:    0,
		},
	}

	perPartner := make(map[uint]*PartnerStats)
	for i := range sales {
		sale := &sales[i]
		stats.TotalSales++
		stats.ByStatus[sale.Status]++
		stats.ByScope[scopeBucket(sale)]++

		commission := sale.EffectiveCommission()
		stats.TotalCommission += commission
		if sale.PaidToOperator {
			stats.PaidCommission += commission
		} else {
			stats.PendingCommission += commission
		}

		entry, ok := perPartner[sale.PartnerID]
		if !ok {
			entry = &PartnerStats{PartnerID: sale.PartnerID, PartnerName: sale.PartnerName}
			perPartner[sale.PartnerID] = entry
		}
		entry.Count++
		entry.Commission += commission
	}

	if actor.IsStaff() {
		for _, entry := range perPartner {
			stats.ByPartner = append(stats.ByPartner, *entry)
		}
		sortPartnerStats(stats.ByPartner)
	}

	trend, err := s.monthlyTrend()
	if err != nil {
		return nil, err
	}
	stats.Last12Months = trend

	return stats, nil
}

// scopeBucket maps a sale into the scope histogram: dual energy contracts
// get their own bucket.
func scopeBucket(sale *models.Sale) string {
	if sale.Scope == models.ScopeEnergy && sale.EnergySaleType == models.EnergyDual {
		return models.ScopeDual
	}
	return sale.Scope
}

// monthlyTrend returns the last 12 calendar months, oldest first, with
// empty months zero-filled.
func (s *DashboardService) monthlyTrend() ([]MonthlyStats, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	var sales []models.Sale
	if err := s.db.Where("date >= ?", start).Find(&sales).Error; err != nil {
		return nil, err
	}

	buckets := make(map[string]*MonthlyStats, 12)
	trend := make([]MonthlyStats, 12)
	for i := 0; i < 12; i++ {
		month := start.AddDate(0, i, 0).Format("2006-01")
		trend[i] = MonthlyStats{Month: month}
		buckets[month] = &trend[i]
	}

	for i := range sales {
		sale := &sales[i]
		bucket, ok := buckets[sale.Date.Format("2006-01")]
		if !ok {
			continue
		}
		bucket.Count++
		bucket.Commission += sale.EffectiveCommission()
	}

	return trend, nil
}

func sortPartnerStats(stats []PartnerStats) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].PartnerName < stats[j].PartnerName
	})
}
