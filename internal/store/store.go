// Package store owns the license and account tables. All writes go through the
// methods here; Stores.InTx binds both stores to one transaction so compound
// operations commit or roll back as a unit.
package store

import (
	"context"
	"errors"
	"strings"

	"coreauth/internal/credential"
	"coreauth/internal/keygen"

	"gorm.io/gorm"
)

// Stores groups the stores that share one database handle.
type Stores struct {
	db       *gorm.DB
	Licenses *LicenseStore
	Accounts *AccountStore
}

// New builds both stores on db.
func New(db *gorm.DB, keys keygen.Generator, clock keygen.Clock, verifier credential.Verifier) *Stores {
	return &Stores{
		db:       db,
		Licenses: NewLicenseStore(db, keys, clock),
		Accounts: NewAccountStore(db, verifier),
	}
}

// DB exposes the handle for read-only reporting queries.
func (s *Stores) DB() *gorm.DB {
	return s.db
}

// InTx runs fn with both stores bound to a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (s *Stores) InTx(ctx context.Context, fn func(tx *Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Stores{
			db:       tx,
			Licenses: s.Licenses.WithTx(tx),
			Accounts: s.Accounts.WithTx(tx),
		})
	})
}

// isDuplicate recognizes unique-constraint violations. Drivers that translate
// errors return gorm.ErrDuplicatedKey; the message checks cover the rest.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
