// Package service implements registration, login and license checks, and the
// administrator-gated operations, on top of the stores.
package service

import (
	"context"
	"log/slog"

	"coreauth/internal/apperr"
	"coreauth/internal/keygen"
	"coreauth/internal/store"
)

// Deps are the collaborators shared by AuthService and AdminService. Audit, Metrics
// and Sheets may be nil.
type Deps struct {
	Stores  *store.Stores
	Clock   keygen.Clock
	Audit   *AuditLog
	Metrics *Metrics
	Sheets  *SheetSync
	Logger  *slog.Logger
}

func (d Deps) logger(component string) *slog.Logger {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("component", component))
}

// logFault logs err when it is a storage fault. Business failures are expected
// and stay quiet.
func logFault(ctx context.Context, logger *slog.Logger, op string, err error) {
	if err == nil || apperr.IsBusiness(err) {
		return
	}
	logger.ErrorContext(ctx, "operation failed",
		slog.String("op", op),
		slog.String("request_id", ClientFrom(ctx).RequestID),
		slog.Any("error", err),
	)
}
