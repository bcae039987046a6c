package dataservice

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/testutil"
)

func newTestStoreClient(t *testing.T) *store.Client {
	t.Helper()
	ctx := context.Background()

	addr := os.Getenv("STORE_ADDR")
	if addr == "" {
		container, err := tcredis.Run(ctx, "redis:7-alpine")
		require.NoError(t, err)
		t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

		connStr, err := container.ConnectionString(ctx)
		require.NoError(t, err)
		addr = connStr
	}

	client, err := store.New(addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(ctx))
	return client
}

func TestWritebackSweepSavesDirtyCharacter(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	characters := NewCharacterData(&DB{pool: pool})
	storeClient := newTestStoreClient(t)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, "sweepme")
	created, err := characters.Create(ctx, model.CharacterRecord{
		AccountID: accountID, Name: "Dirty", Class: "Warrior",
		Level: 1, MaxHP: 100, CurrentHP: 100, Attack: 10, Defense: 5, ZoneID: 1,
	})
	require.NoError(t, err)

	created.Level = 9
	created.CurrentHP = 42
	created.Gold = 777
	require.NoError(t, storeClient.SaveCharacterSnapshot(ctx, created.CharacterID, created, time.Minute))
	require.NoError(t, storeClient.MarkCharacterDirty(ctx, created.CharacterID))

	wb := NewWriteback(storeClient, characters, time.Minute, slog.Default())
	wb.sweep(ctx)

	reloaded, err := characters.Get(ctx, created.CharacterID)
	require.NoError(t, err)
	require.EqualValues(t, 9, reloaded.Level)
	require.EqualValues(t, 42, reloaded.CurrentHP)
	require.EqualValues(t, 777, reloaded.Gold)

	ids, err := storeClient.ScanDirtyCharacters(ctx)
	require.NoError(t, err)
	require.NotContains(t, ids, created.CharacterID)
}

func TestWritebackSweepSkipsMissingSnapshot(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	accounts := NewAccountData(&DB{pool: pool})
	characters := NewCharacterData(&DB{pool: pool})
	storeClient := newTestStoreClient(t)
	ctx := context.Background()

	accountID := seedAccount(t, accounts, "ghostsweep")
	created, err := characters.Create(ctx, model.CharacterRecord{
		AccountID: accountID, Name: "Ghost", Class: "Rogue",
		Level: 1, MaxHP: 50, CurrentHP: 50, ZoneID: 1,
	})
	require.NoError(t, err)

	// Dirty marker with no corresponding snapshot in the store: the sweep
	// must skip it rather than abort.
	require.NoError(t, storeClient.MarkCharacterDirty(ctx, created.CharacterID))
	require.NoError(t, storeClient.MarkCharacterDirty(ctx, created.CharacterID+1000))

	wb := NewWriteback(storeClient, characters, time.Minute, slog.Default())
	require.NotPanics(t, func() { wb.sweep(ctx) })

	reloaded, err := characters.Get(ctx, created.CharacterID)
	require.NoError(t, err)
	require.EqualValues(t, 1, reloaded.Level)
}
