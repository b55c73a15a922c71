package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"coreauth/internal/apperr"
	"coreauth/internal/credential"
	"coreauth/internal/database"
	"coreauth/internal/keygen"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC)

func newTestStores(t *testing.T, keys keygen.Generator) *Stores {
	t.Helper()
	if keys == nil {
		keys = keygen.NewRandomGenerator()
	}
	return New(database.OpenTest(t), keys, keygen.FixedClock(day), credential.Plain{})
}

// sequence yields the given keys in order, then random ones.
func sequence(keys ...string) keygen.Generator {
	fallback := keygen.NewRandomGenerator()
	i := 0
	return keygen.GeneratorFunc(func() (string, error) {
		if i < len(keys) {
			i++
			return keys[i-1], nil
		}
		return fallback.Generate()
	})
}

func TestInTxRollsBackOnError(t *testing.T) {
	s := newTestStores(t, nil)
	ctx := context.Background()

	lic, err := s.Licenses.Issue(ctx, 30)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = s.InTx(ctx, func(tx *Stores) error {
		_, err := tx.Licenses.Redeem(ctx, lic.Key)
		require.NoError(t, err)
		_, err = tx.Accounts.Create(ctx, "alice", "p1", "a@x.com", lic.Key, lic.ExpiryDate)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Licenses.Lookup(ctx, lic.Key)
	require.NoError(t, err)
	assert.False(t, got.Used)

	_, err = s.Accounts.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInTxCommits(t *testing.T) {
	s := newTestStores(t, nil)
	ctx := context.Background()

	lic, err := s.Licenses.Issue(ctx, 30)
	require.NoError(t, err)

	err = s.InTx(ctx, func(tx *Stores) error {
		if _, err := tx.Licenses.Redeem(ctx, lic.Key); err != nil {
			return err
		}
		_, err := tx.Accounts.Create(ctx, "alice", "p1", "", lic.Key, lic.ExpiryDate)
		return err
	})
	require.NoError(t, err)

	got, err := s.Licenses.Lookup(ctx, lic.Key)
	require.NoError(t, err)
	assert.True(t, got.Used)
}
