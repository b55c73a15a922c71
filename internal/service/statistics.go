package service

import (
	"context"

	"coreauth/internal/apperr"
	"coreauth/internal/keygen"
	"coreauth/internal/model"
)

// Statistics counts licenses, accounts and today's logins.
func (s *AdminService) Statistics(ctx context.Context, adminKey string) (stats *model.Statistics, err error) {
	const op = "admin.statistics"
	defer s.observe(ctx, OpStatistics, &err)
	if err = s.Authorize(adminKey); err != nil {
		return nil, err
	}

	today := keygen.Date(s.deps.Clock.Now())
	soon := today.AddDate(0, 0, 30)
	db := s.stores.DB().WithContext(ctx)
	stats = &model.Statistics{}

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&stats.TotalLicenses, &model.License{}, "", nil},
		{&stats.UsedLicenses, &model.License{}, "used = ?", []any{true}},
		{&stats.UnusedLicenses, &model.License{}, "used = ?", []any{false}},
		{&stats.ExpiredLicenses, &model.License{}, "expiry_date < ?", []any{today}},
		{&stats.TotalAccounts, &model.Account{}, "", nil},
		{&stats.ExpiredAccounts, &model.Account{}, "expiry_date < ?", []any{today}},
		{&stats.ExpiringAccounts, &model.Account{}, "expiry_date >= ? AND expiry_date < ?", []any{today, soon}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, apperr.E(op, apperr.Storage, err)
		}
	}

	if s.deps.Audit != nil {
		stats.LoginsToday, stats.FailedLoginsToday, err = s.deps.Audit.LoginCounts(ctx, today)
		if err != nil {
			return nil, err
		}
	}

	stats.ComputeRate()
	return stats, nil
}
