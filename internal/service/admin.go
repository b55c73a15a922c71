package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"time"

	"coreauth/internal/apperr"
	"coreauth/internal/keygen"
	"coreauth/internal/model"
	"coreauth/internal/store"
)

// Operation names used for metrics labels and the operation log.
const (
	OpIssueLicense  = "create_license"
	OpListAccounts  = "list_users"
	OpRemoveAccount = "remove_user"
	OpUpdateExpiry  = "update_expiry"
	OpListLicenses  = "list_licenses"
	OpStatistics    = "statistics"
	OpOperationLogs = "operation_logs"
)

// AdminService gates privileged operations behind the administrator secret.
// Every method checks the presented key first and touches nothing on mismatch.
type AdminService struct {
	secret [sha256.Size]byte
	stores *store.Stores
	deps   Deps
	logger *slog.Logger
}

// NewAdminService fixes the administrator secret for the lifetime of the service.
func NewAdminService(secret string, deps Deps) *AdminService {
	return &AdminService{
		secret: sha256.Sum256([]byte(secret)),
		stores: deps.Stores,
		deps:   deps,
		logger: deps.logger("admin"),
	}
}

// Authorize compares presented with the administrator secret in constant time.
// Both sides are hashed first so the comparison does not leak the secret's length.
func (s *AdminService) Authorize(presented string) error {
	sum := sha256.Sum256([]byte(presented))
	if presented == "" || subtle.ConstantTimeCompare(sum[:], s.secret[:]) != 1 {
		return apperr.E("admin.authorize", apperr.Unauthorized, nil)
	}
	return nil
}

// Gate authorizes presented for operation ahead of the operation itself, so a
// caller can reject a request before reading its input. A rejection is counted
// like one from the operation.
func (s *AdminService) Gate(ctx context.Context, operation, presented string) (err error) {
	if err = s.Authorize(presented); err != nil {
		s.observe(ctx, operation, &err)
	}
	return err
}

// IssueLicense creates a new unused license valid for days.
func (s *AdminService) IssueLicense(ctx context.Context, adminKey string, days int) (license *model.License, err error) {
	defer s.observe(ctx, OpIssueLicense, &err)
	if err = s.Authorize(adminKey); err != nil {
		return nil, err
	}

	license, err = s.stores.Licenses.Issue(ctx, days)
	if err != nil {
		return nil, err
	}

	s.record(ctx, OpIssueLicense, "license", license.Key, map[string]any{
		"days":        days,
		"expiry_date": keygen.FormatDate(license.ExpiryDate),
	})
	s.deps.Sheets.Go(*license, "")
	return license, nil
}

// ListAccounts returns every account without credentials.
func (s *AdminService) ListAccounts(ctx context.Context, adminKey string) (accounts []model.Account, err error) {
	defer s.observe(ctx, OpListAccounts, &err)
	if err = s.Authorize(adminKey); err != nil {
		return nil, err
	}
	return s.stores.Accounts.List(ctx)
}

// RemoveAccount deletes username. The license it was created from is not freed.
func (s *AdminService) RemoveAccount(ctx context.Context, adminKey, username string) (err error) {
	defer s.observe(ctx, OpRemoveAccount, &err)
	if err = s.Authorize(adminKey); err != nil {
		return err
	}

	removed, err := s.stores.Accounts.Remove(ctx, username)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.Errorf("admin.remove_account", apperr.NotFound, "account %q not found", username)
	}

	s.record(ctx, OpRemoveAccount, "account", username, nil)
	return nil
}

// UpdateExpiry sets username's expiry to days from today and returns the new date.
func (s *AdminService) UpdateExpiry(ctx context.Context, adminKey, username string, days int) (expiry time.Time, err error) {
	const op = "admin.update_expiry"
	defer s.observe(ctx, OpUpdateExpiry, &err)
	if err = s.Authorize(adminKey); err != nil {
		return time.Time{}, err
	}
	if days < 1 {
		return time.Time{}, apperr.Errorf(op, apperr.InvalidInput, "validity days must be positive, got %d", days)
	}

	expiry = keygen.ExpiryFrom(s.deps.Clock.Now(), days)
	updated, err := s.stores.Accounts.UpdateExpiry(ctx, username, expiry)
	if err != nil {
		return time.Time{}, err
	}
	if !updated {
		return time.Time{}, apperr.Errorf(op, apperr.NotFound, "account %q not found", username)
	}

	s.record(ctx, OpUpdateExpiry, "account", username, map[string]any{
		"days":        days,
		"expiry_date": keygen.FormatDate(expiry),
	})
	return expiry, nil
}

// ListLicenses returns every license in any state.
func (s *AdminService) ListLicenses(ctx context.Context, adminKey string) (licenses []model.License, err error) {
	defer s.observe(ctx, OpListLicenses, &err)
	if err = s.Authorize(adminKey); err != nil {
		return nil, err
	}
	return s.stores.Licenses.List(ctx)
}

// OperationLogs returns one page of the operation log.
func (s *AdminService) OperationLogs(ctx context.Context, adminKey string, page, pageSize int) (logs []model.OperationLog, total int64, err error) {
	defer s.observe(ctx, OpOperationLogs, &err)
	if err = s.Authorize(adminKey); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if s.deps.Audit == nil {
		return []model.OperationLog{}, 0, nil
	}
	return s.deps.Audit.OperationLogs(ctx, page, pageSize)
}

func (s *AdminService) observe(ctx context.Context, operation string, err *error) {
	s.deps.Metrics.observeAdmin(operation, *err)
	logFault(ctx, s.logger, "admin."+operation, *err)
}

// record appends to the operation log. The operation has already committed, so a
// failure here is logged rather than returned.
func (s *AdminService) record(ctx context.Context, action, target, targetID string, details any) {
	s.logger.InfoContext(ctx, "admin operation",
		slog.String("action", action),
		slog.String("target_id", targetID),
	)
	if s.deps.Audit == nil {
		return
	}
	if err := s.deps.Audit.LogOperation(ctx, action, target, targetID, details); err != nil {
		s.logger.WarnContext(ctx, "failed to write operation log", slog.Any("error", err))
	}
}
