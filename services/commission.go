package services

import (
	"sort"

	"gorm.io/gorm"

	"github.com/hugoalbmartins/MPGrupo-CRM-sub000/models"
)

// defaultServiceType applies when a telecom sale carries no service type.
const defaultServiceType = "M3"

// CommissionService resolves the commission of a sale from the operator
// pricing tables. It never fails a sale: any gap in the configuration
// yields a zero commission.
type CommissionService struct {
	db *gorm.DB
}

func NewCommissionService(db *gorm.DB) *CommissionService {
	return &CommissionService{db: db}
}

// Calculate returns the commission amount and the name of the tier that
// produced it. Operators in manual mode always yield zero; the amount is
// then set by an administrator directly on the sale.
func (s *CommissionService) Calculate(sale *models.Sale, operator *models.Operator) (float64, string) {
	if operator.CommissionMode == models.CommissionModeManual {
		return 0, ""
	}
	if len(operator.CommissionConfig) == 0 {
		return 0, ""
	}

	customerType := sale.CustomerType
	if customerType == "" {
		customerType = models.CustomerParticular
	}
	scopeConfig, ok := operator.CommissionConfig[customerType]
	if !ok {
		return 0, ""
	}

	product := s.energyProduct(sale, operator)
	tiers := resolveTiers(sale.Scope, scopeConfig, sale.ServiceType, product)
	if len(tiers) == 0 {
		return 0, ""
	}

	priorCount := s.priorSalesCount(sale, product)
	tier := SelectTier(tiers, priorCount)

	if sale.Scope == models.ScopeTelecom {
		return tier.Multiplier * sale.MonthlyValue, tier.Name
	}
	return tier.CommissionValue, tier.Name
}

// energyProduct picks the product the tiers are keyed by: the sale's own
// energy type when set, otherwise the operator's configured type,
// otherwise electricity.
func (s *CommissionService) energyProduct(sale *models.Sale, operator *models.Operator) string {
	if sale.EnergySaleType != "" {
		return sale.EnergySaleType
	}
	if operator.EnergyType != "" {
		return operator.EnergyType
	}
	return models.EnergyElectricity
}

// resolveTiers walks the config shape for the scope. Telecom keys tiers
// by service type with "default" as the catch-all entry; energy keys them
// by product and falls back to the flat customer tiers; every other scope
// uses the flat tiers directly.
func resolveTiers(scope string, config models.ScopeConfig, serviceType, product string) models.TierList {
	switch scope {
	case models.ScopeTelecom:
		if serviceType == "" {
			serviceType = defaultServiceType
		}
		if tiers, ok := config.ByService[serviceType]; ok && len(tiers) > 0 {
			return tiers
		}
		if tiers, ok := config.ByService["default"]; ok {
			return tiers
		}
		return nil
	case models.ScopeEnergy:
		if tiers, ok := config.ByProduct[product]; ok && len(tiers) > 0 {
			return tiers
		}
		return config.Tiers
	default:
		return config.Tiers
	}
}

// priorSalesCount counts the partner's existing sales at the operator, in
// the same scope. Dual energy contracts count toward both the electricity
// and the gas thresholds, so the energy filter matches the product or
// "dual"; for a dual sale only prior duals count. The sale being
// (re)calculated is excluded.
func (s *CommissionService) priorSalesCount(sale *models.Sale, product string) int {
	query := s.db.Model(&models.Sale{}).
		Where("partner_id = ?", sale.PartnerID).
		Where("operator_id = ?", sale.OperatorID).
		Where("scope = ?", sale.Scope)

	if sale.Scope == models.ScopeEnergy && product != "" {
		query = query.Where("(energy_sale_type = ? OR energy_sale_type = ?)", product, models.EnergyDual)
	}
	if sale.ID != 0 {
		query = query.Where("id <> ?", sale.ID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0
	}
	return int(count)
}

// SelectTier picks the highest threshold the partner has reached: tiers
// are ranked by min_sales descending and the first one whose threshold is
// at or below the prior sale count wins. When no threshold qualifies the
// first tier in configured order applies.
func SelectTier(tiers models.TierList, priorCount int) models.Tier {
	ranked := make(models.TierList, len(tiers))
	copy(ranked, tiers)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].MinSales > ranked[j].MinSales
	})

	for _, tier := range ranked {
		if tier.MinSales <= priorCount {
			return tier
		}
	}
	return tiers[0]
}
