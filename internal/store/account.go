package store

import (
	"context"
	"errors"
	"time"

	"coreauth/internal/apperr"
	"coreauth/internal/credential"
	"coreauth/internal/model"

	"gorm.io/gorm"
)

type AccountStore struct {
	db       *gorm.DB
	verifier credential.Verifier
}

func NewAccountStore(db *gorm.DB, verifier credential.Verifier) *AccountStore {
	return &AccountStore{db: db, verifier: verifier}
}

// WithTx returns a copy of the store that runs on tx.
func (s *AccountStore) WithTx(tx *gorm.DB) *AccountStore {
	return &AccountStore{db: tx, verifier: s.verifier}
}

// Seal turns secret into the form Create stores. It runs outside any transaction.
func (s *AccountStore) Seal(secret string) (string, error) {
	const op = "account.seal"
	stored, err := s.verifier.Hash(secret)
	if errors.Is(err, credential.ErrTooLong) {
		return "", apperr.E(op, apperr.InvalidInput, err)
	}
	if err != nil {
		return "", apperr.E(op, apperr.Storage, err)
	}
	return stored, nil
}

// Create inserts an account bound to licenseKey. stored must come from Seal.
func (s *AccountStore) Create(ctx context.Context, username, stored, email, licenseKey string, expiry time.Time) (*model.Account, error) {
	const op = "account.create"
	account := &model.Account{
		Username:   username,
		Credential: stored,
		Email:      email,
		LicenseKey: licenseKey,
		ExpiryDate: expiry,
	}
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Errorf(op, apperr.DuplicateUsername, "username %q already exists", username)
		}
		return nil, apperr.E(op, apperr.Storage, err)
	}
	return account, nil
}

// FindByCredentials returns the account whose username matches exactly and whose
// stored credential accepts secret. Unknown usernames and wrong credentials are
// both NotFound.
func (s *AccountStore) FindByCredentials(ctx context.Context, username, secret string) (*model.Account, error) {
	const op = "account.find_by_credentials"
	account, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.Verify(account.Credential, secret); err != nil {
		if errors.Is(err, credential.ErrMismatch) {
			return nil, apperr.E(op, apperr.NotFound, nil)
		}
		return nil, apperr.E(op, apperr.Storage, err)
	}
	return account, nil
}

// FindByUsername returns the account with exactly this username.
func (s *AccountStore) FindByUsername(ctx context.Context, username string) (*model.Account, error) {
	const op = "account.find"
	var account model.Account
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.E(op, apperr.NotFound, nil)
	}
	if err != nil {
		return nil, apperr.E(op, apperr.Storage, err)
	}
	return &account, nil
}

// List returns all accounts ordered by creation. The credential column is never
// selected.
func (s *AccountStore) List(ctx context.Context) ([]model.Account, error) {
	accounts := make([]model.Account, 0)
	err := s.db.WithContext(ctx).
		Select("username", "email", "license_key", "expiry_date").
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, apperr.E("account.list", apperr.Storage, err)
	}
	return accounts, nil
}

// Remove deletes the account and reports whether a row existed. The license the
// account was created from stays used.
func (s *AccountStore) Remove(ctx context.Context, username string) (bool, error) {
	result := s.db.WithContext(ctx).Where("username = ?", username).Delete(&model.Account{})
	if result.Error != nil {
		return false, apperr.E("account.remove", apperr.Storage, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateExpiry overwrites the account's own expiry date and reports whether the
// account exists.
func (s *AccountStore) UpdateExpiry(ctx context.Context, username string, expiry time.Time) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ?", username).
		Update("expiry_date", expiry)
	if result.Error != nil {
		return false, apperr.E("account.update_expiry", apperr.Storage, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// TouchLogin records the time of the latest successful login.
func (s *AccountStore) TouchLogin(ctx context.Context, username string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&model.Account{}).
		Where("username = ?", username).
		Update("last_login", at).Error
	if err != nil {
		return apperr.E("account.touch_login", apperr.Storage, err)
	}
	return nil
}
