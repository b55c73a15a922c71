package model

// Statistics is the admin overview of license and account state.
type Statistics struct {
	TotalLicenses     int64   `json:"total_licenses"`
	UsedLicenses      int64   `json:"used_licenses"`
	UnusedLicenses    int64   `json:"unused_licenses"`
	ExpiredLicenses   int64   `json:"expired_licenses"`
	TotalAccounts     int64   `json:"total_accounts"`
	ExpiredAccounts   int64   `json:"expired_accounts"`
	ExpiringAccounts  int64   `json:"expiring_accounts"` // within the next 30 days
	LoginsToday       int64   `json:"logins_today"`
	FailedLoginsToday int64   `json:"failed_logins_today"`
	RedemptionRate    float64 `json:"redemption_rate"`
}

// ComputeRate fills RedemptionRate from the license counters.
func (s *Statistics) ComputeRate() {
	if s.TotalLicenses == 0 {
		s.RedemptionRate = 0
		return
	}
	s.RedemptionRate = float64(s.UsedLicenses) / float64(s.TotalLicenses)
}
