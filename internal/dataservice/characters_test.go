package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/testutil"
)

func seedAccount(t *testing.T, accounts *AccountData, username string) int64 {
	t.Helper()
	acc, err := accounts.Create(context.Background(), username, username+"@example.com", "hash")
	require.NoError(t, err)
	return acc.AccountID
}

func TestCharacterDataCreateGetSave(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	characters := NewCharacterData(&DB{pool: pool})
	ctx := context.Background()

	accountID := seedAccount(t, accounts, "warrior")

	created, err := characters.Create(ctx, model.CharacterRecord{
		AccountID: accountID, Name: "Conan", Class: "Warrior",
		Level: 1, MaxHP: 100, CurrentHP: 100, Attack: 10, Defense: 5, Dex: 3,
		ZoneID: 1, X: 0, Y: 0, Z: 0,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.CharacterID)

	loaded, err := characters.Get(ctx, created.CharacterID)
	require.NoError(t, err)
	assert.Equal(t, "Conan", loaded.Name)

	loaded.Level = 2
	loaded.CurrentHP = 80
	loaded.Gold = 500
	require.NoError(t, characters.Save(ctx, loaded))

	reloaded, err := characters.Get(ctx, created.CharacterID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, reloaded.Level)
	assert.EqualValues(t, 80, reloaded.CurrentHP)
	assert.EqualValues(t, 500, reloaded.Gold)
}

func TestCharacterDataGetByAccount(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	characters := NewCharacterData(&DB{pool: pool})
	ctx := context.Background()

	accountID := seedAccount(t, accounts, "altaholic")
	for _, name := range []string{"Alt1", "Alt2"} {
		_, err := characters.Create(ctx, model.CharacterRecord{
			AccountID: accountID, Name: name, Class: "Mage",
			Level: 1, MaxHP: 80, CurrentHP: 80, Attack: 8, Defense: 4, ZoneID: 1,
		})
		require.NoError(t, err)
	}

	list, err := characters.GetByAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCharacterDataDelete(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	characters := NewCharacterData(&DB{pool: pool})
	ctx := context.Background()

	accountID := seedAccount(t, accounts, "deleteme")
	created, err := characters.Create(ctx, model.CharacterRecord{
		AccountID: accountID, Name: "Gone", Class: "Rogue",
		Level: 1, MaxHP: 60, CurrentHP: 60, Attack: 6, Defense: 3, ZoneID: 1,
	})
	require.NoError(t, err)

	require.NoError(t, characters.Delete(ctx, created.CharacterID))

	_, err = characters.Get(ctx, created.CharacterID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = characters.Delete(ctx, created.CharacterID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharacterDataCreateDuplicateName(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	characters := NewCharacterData(&DB{pool: pool})
	ctx := context.Background()

	accountID := seedAccount(t, accounts, "dupname")
	_, err := characters.Create(ctx, model.CharacterRecord{
		AccountID: accountID, Name: "Shared", Class: "Warrior", Level: 1, MaxHP: 1, CurrentHP: 1, ZoneID: 1,
	})
	require.NoError(t, err)

	_, err = characters.Create(ctx, model.CharacterRecord{
		AccountID: accountID, Name: "Shared", Class: "Mage", Level: 1, MaxHP: 1, CurrentHP: 1, ZoneID: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}
