package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Stats is the landing-page summary across the whole portfolio.
// CollectionRate compares money collected against money invoiced for the
// current calendar month, as a percentage.
type Stats struct {
	TotalProperties int64           `json:"total_properties"`
	TotalUnits      int64           `json:"total_units"`
	OccupiedUnits   int64           `json:"occupied_units"`
	VacantUnits     int64           `json:"vacant_units"`
	TotalTenants    int64           `json:"total_tenants"`
	ActiveLeases    int64           `json:"active_leases"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue"`
	CollectionRate  decimal.Decimal `json:"collection_rate"`
}

type Service interface {
	Stats(ctx context.Context) (Stats, error)
}
