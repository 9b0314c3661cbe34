package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard.
type DashboardSummaryDTO struct {
	TotalAssets    int             `json:"total_assets"`
	AssignedAssets int             `json:"assigned_assets"`
	ByStatus       map[string]int  `json:"by_status"`   // Available, In Use, In Repair, Decommissioned
	ByCategory     map[string]int  `json:"by_category"` // Laptop, Desktop, ...
	TotalValue     decimal.Decimal `json:"total_value"` // excluye activos dados de baja
	Employees      int             `json:"employees"`
	ActiveUsers    int             `json:"active_users"`
	PendingUsers   int             `json:"pending_users"`
	Companies      int             `json:"companies"`
	// Garantías que vencen en los próximos 30 días (activos no dados de baja).
	WarrantiesExpiring int                `json:"warranties_expiring"`
	RecentActivity     []ActivityResponse `json:"recent_activity"`
}

// RefreshResponse versión actual de la señal de refresco.
type RefreshResponse struct {
	Version uint64 `json:"version"`
}
