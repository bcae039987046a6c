package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2go/internal/testutil"
)

func TestAccountDataCreateAndLookup(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	ctx := context.Background()

	acc, err := accounts.Create(ctx, "Hero", "hero@example.com", "bcrypt-hash")
	require.NoError(t, err)
	assert.Equal(t, "hero", acc.Username)
	assert.NotZero(t, acc.AccountID)

	byUsername, err := accounts.GetByUsername(ctx, "HERO")
	require.NoError(t, err)
	assert.Equal(t, acc.AccountID, byUsername.AccountID)

	byID, err := accounts.GetByID(ctx, acc.AccountID)
	require.NoError(t, err)
	assert.Equal(t, acc.Username, byID.Username)
}

func TestAccountDataCreateDuplicateUsername(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	ctx := context.Background()

	_, err := accounts.Create(ctx, "dup", "a@example.com", "hash")
	require.NoError(t, err)

	_, err = accounts.Create(ctx, "dup", "b@example.com", "hash2")
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestAccountDataGetByUsernameNotFound(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})

	_, err := accounts.GetByUsername(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountDataCheckBan(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	ctx := context.Background()

	acc, err := accounts.Create(ctx, "banme", "c@example.com", "hash")
	require.NoError(t, err)

	banned, err := accounts.CheckBan(ctx, acc.AccountID)
	require.NoError(t, err)
	assert.False(t, banned)
}
