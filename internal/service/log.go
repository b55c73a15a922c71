package service

import (
	"context"
	"encoding/json"
	"time"

	"coreauth/internal/apperr"
	"coreauth/internal/keygen"
	"coreauth/internal/model"

	"gorm.io/gorm"
)

// AuditLog persists administrative operations and login attempts.
type AuditLog struct {
	db    *gorm.DB
	clock keygen.Clock
}

func NewAuditLog(db *gorm.DB, clock keygen.Clock) *AuditLog {
	return &AuditLog{db: db, clock: clock}
}

// LogOperation records one administrative mutation. details is stored as JSON.
func (a *AuditLog) LogOperation(ctx context.Context, action, target, targetID string, details any) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return err
	}

	entry := &model.OperationLog{
		Action:    action,
		Target:    target,
		TargetID:  targetID,
		Details:   string(detailsJSON),
		IP:        ClientFrom(ctx).IP,
		CreatedAt: a.clock.Now(),
	}
	if err := a.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.E("audit.log_operation", apperr.Storage, err)
	}
	return nil
}

// RecordLogin stores the outcome of a login attempt.
func (a *AuditLog) RecordLogin(ctx context.Context, username, status string) error {
	client := ClientFrom(ctx)
	entry := &model.LoginLog{
		Username:  username,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		Status:    status,
		CreatedAt: a.clock.Now(),
	}
	if err := a.db.WithContext(ctx).Create(entry).Error; err != nil {
		return apperr.E("audit.record_login", apperr.Storage, err)
	}
	return nil
}

// OperationLogs returns one page of the operation log, newest first.
func (a *AuditLog) OperationLogs(ctx context.Context, page, pageSize int) ([]model.OperationLog, int64, error) {
	var logs []model.OperationLog
	var total int64

	db := a.db.WithContext(ctx)
	if err := db.Model(&model.OperationLog{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.E("audit.operation_logs", apperr.Storage, err)
	}

	offset := (page - 1) * pageSize
	if err := db.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&logs).Error; err != nil {
		return nil, 0, apperr.E("audit.operation_logs", apperr.Storage, err)
	}
	return logs, total, nil
}

// LoginCounts returns successful and failed logins since the given instant.
func (a *AuditLog) LoginCounts(ctx context.Context, since time.Time) (success, failed int64, err error) {
	db := a.db.WithContext(ctx).Model(&model.LoginLog{})
	if err = db.Where("created_at >= ? AND status = ?", since, model.LoginSuccess).Count(&success).Error; err != nil {
		return 0, 0, apperr.E("audit.login_counts", apperr.Storage, err)
	}
	db = a.db.WithContext(ctx).Model(&model.LoginLog{})
	if err = db.Where("created_at >= ? AND status = ?", since, model.LoginFailed).Count(&failed).Error; err != nil {
		return 0, 0, apperr.E("audit.login_counts", apperr.Storage, err)
	}
	return success, failed, nil
}
