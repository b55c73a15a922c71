package service

import (
	"context"
	"log/slog"

	"coreauth/internal/apperr"
	"coreauth/internal/model"
	"coreauth/internal/store"
)

// RegisterParams is the input of AuthService.Register.
type RegisterParams struct {
	Username   string
	Credential string
	Email      string
	LicenseKey string
}

// AuthService redeems licenses into accounts and authenticates accounts.
type AuthService struct {
	stores        *store.Stores
	deps          Deps
	logger        *slog.Logger
	enforceExpiry bool
}

// NewAuthService builds the service. When enforceExpiry is set, accounts whose
// expiry date has passed cannot log in.
func NewAuthService(deps Deps, enforceExpiry bool) *AuthService {
	return &AuthService{
		stores:        deps.Stores,
		deps:          deps,
		logger:        deps.logger("auth"),
		enforceExpiry: enforceExpiry,
	}
}

// Register consumes licenseKey and creates the account in one transaction. If the
// account cannot be created the license stays unused.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (account *model.Account, err error) {
	const op = "auth.register"
	defer func() {
		s.deps.Metrics.observeRegistration(err)
		logFault(ctx, s.logger, op, err)
	}()

	if p.Username == "" || p.Credential == "" || p.LicenseKey == "" {
		return nil, apperr.Errorf(op, apperr.InvalidInput, "username, credential and license key are required")
	}

	// Hash before the transaction so the write lock is not held across bcrypt.
	stored, err := s.stores.Accounts.Seal(p.Credential)
	if err != nil {
		return nil, err
	}

	var license *model.License
	err = s.stores.InTx(ctx, func(tx *store.Stores) error {
		lic, err := tx.Licenses.Redeem(ctx, p.LicenseKey)
		if err != nil {
			if apperr.IsBusiness(err) {
				return apperr.E(op, apperr.InvalidLicense, err)
			}
			return err
		}

		acc, err := tx.Accounts.Create(ctx, p.Username, stored, p.Email, lic.Key, lic.ExpiryDate)
		if err != nil {
			return err
		}
		license, account = lic, acc
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("username", account.Username),
		slog.String("license_key", license.Key),
	)
	s.deps.Sheets.Go(*license, account.Username)
	return account, nil
}

// Login authenticates by exact credential match. Unknown usernames and wrong
// credentials both fail with InvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, secret string) (account *model.Account, err error) {
	const op = "auth.login"
	defer func() {
		s.deps.Metrics.observeLogin(err)
		logFault(ctx, s.logger, op, err)
	}()

	account, err = s.stores.Accounts.FindByCredentials(ctx, username, secret)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			err = apperr.E(op, apperr.InvalidCredentials, nil)
			s.recordLogin(ctx, username, model.LoginFailed)
		}
		return nil, err
	}

	now := s.deps.Clock.Now()
	if s.enforceExpiry && account.Expired(now) {
		s.recordLogin(ctx, username, model.LoginFailed)
		return nil, apperr.Errorf(op, apperr.AccountExpired, "account %q expired", username)
	}

	s.recordLogin(ctx, username, model.LoginSuccess)
	if err := s.stores.Accounts.TouchLogin(ctx, username, now); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}
	return account, nil
}

// CheckLicense reports a license's expiry whether or not it has been redeemed.
func (s *AuthService) CheckLicense(ctx context.Context, key string) (*model.License, error) {
	const op = "auth.check_license"
	license, err := s.stores.Licenses.Lookup(ctx, key)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, apperr.E(op, apperr.InvalidLicense, err)
		}
		logFault(ctx, s.logger, op, err)
		return nil, err
	}
	return license, nil
}

// Account returns the account for username.
func (s *AuthService) Account(ctx context.Context, username string) (*model.Account, error) {
	account, err := s.stores.Accounts.FindByUsername(ctx, username)
	logFault(ctx, s.logger, "auth.account", err)
	return account, err
}

// Expired reports whether account has passed its expiry date.
func (s *AuthService) Expired(account *model.Account) bool {
	return account.Expired(s.deps.Clock.Now())
}

func (s *AuthService) recordLogin(ctx context.Context, username, status string) {
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.RecordLogin(ctx, username, status); err != nil {
		s.logger.WarnContext(ctx, "failed to record login", slog.Any("error", err))
	}
}
