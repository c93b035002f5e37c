package domain

import "time"

// DashboardStats is the aggregate served by the stats endpoint.
type DashboardStats struct {
	TotalClients       int
	ActiveClients      int
	InactiveClients    int
	TotalAssets        int
	ExpiringSoon       int
	TotalRenewalAmount float64
}

func (s DashboardStats) ActivePercent() int   { return percent(s.ActiveClients, s.TotalClients) }
func (s DashboardStats) InactivePercent() int { return percent(s.InactiveClients, s.TotalClients) }

func percent(part, total int) int {
	if total == 0 {
		total = 1
	}
	return part * 100 / total
}

// RevealEvent is one audited secret reveal.
type RevealEvent struct {
	At          time.Time
	Actor       string
	AssetID     string
	ServiceName string
	SessionID   string
}
