package store

import (
	"context"
	"errors"
	"fmt"

	"coreauth/internal/apperr"
	"coreauth/internal/keygen"
	"coreauth/internal/model"

	"gorm.io/gorm"
)

// maxIssueAttempts bounds key regeneration after a uniqueness collision.
const maxIssueAttempts = 5

type LicenseStore struct {
	db    *gorm.DB
	keys  keygen.Generator
	clock keygen.Clock
}

func NewLicenseStore(db *gorm.DB, keys keygen.Generator, clock keygen.Clock) *LicenseStore {
	return &LicenseStore{db: db, keys: keys, clock: clock}
}

// WithTx returns a copy of the store that runs on tx.
func (s *LicenseStore) WithTx(tx *gorm.DB) *LicenseStore {
	return &LicenseStore{db: tx, keys: s.keys, clock: s.clock}
}

// Issue creates an unused license valid for validityDays from today. A key
// collision is retried with a fresh key and never reaches the caller.
func (s *LicenseStore) Issue(ctx context.Context, validityDays int) (*model.License, error) {
	const op = "license.issue"
	if validityDays < 1 {
		return nil, apperr.Errorf(op, apperr.InvalidInput, "validity days must be positive, got %d", validityDays)
	}

	expiry := keygen.ExpiryFrom(s.clock.Now(), validityDays)
	var lastErr error
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		key, err := s.keys.Generate()
		if err != nil {
			return nil, apperr.E(op, apperr.Storage, err)
		}

		license := &model.License{Key: key, ExpiryDate: expiry}
		err = s.db.WithContext(ctx).Create(license).Error
		if err == nil {
			return license, nil
		}
		if !isDuplicate(err) {
			return nil, apperr.E(op, apperr.Storage, err)
		}
		lastErr = err
	}
	return nil, apperr.E(op, apperr.Storage, fmt.Errorf("no unique key after %d attempts: %w", maxIssueAttempts, lastErr))
}

// Redeem marks an unused license as used. The update only matches while used is
// still false, so of several concurrent callers at most one sees a changed row.
func (s *LicenseStore) Redeem(ctx context.Context, key string) (*model.License, error) {
	const op = "license.redeem"
	db := s.db.WithContext(ctx)

	result := db.Model(&model.License{}).
		Where("license_key = ? AND used = ?", key, false).
		Update("used", true)
	if result.Error != nil {
		return nil, apperr.E(op, apperr.Storage, result.Error)
	}

	license, err := s.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Errorf(op, apperr.AlreadyUsed, "license %s already redeemed", key)
	}
	return license, nil
}

// Lookup returns the license for key in any state.
func (s *LicenseStore) Lookup(ctx context.Context, key string) (*model.License, error) {
	const op = "license.lookup"
	var license model.License
	err := s.db.WithContext(ctx).Where("license_key = ?", key).First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Errorf(op, apperr.NotFound, "license %s not found", key)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Storage, err)
	}
	return &license, nil
}

// List returns every license, newest first.
func (s *LicenseStore) List(ctx context.Context) ([]model.License, error) {
	var licenses []model.License
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&licenses).Error; err != nil {
		return nil, apperr.E("license.list", apperr.Storage, err)
	}
	return licenses, nil
}
