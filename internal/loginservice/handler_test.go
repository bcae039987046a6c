package loginservice

import (
	"context"
	"log/slog"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/security"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/testutil"
	"github.com/udisondev/la2go/internal/wire"
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

func newTestHandler(t *testing.T) (*Handler, *store.Client) {
	t.Helper()
	pool := testutil.SetupTestDB(t)

	accounts := dataservice.NewAccountData(dataservice.NewDBFromPool(pool))
	characters := dataservice.NewCharacterData(dataservice.NewDBFromPool(pool))
	inventory := dataservice.NewInventoryData(dataservice.NewDBFromPool(pool))
	gamedata := dataservice.NewGameData(dataservice.NewDBFromPool(pool))

	rpcServer, err := dataservice.NewServer(accounts, characters, inventory, gamedata)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go rpcServer.Serve(ln)

	client, err := dataservice.Dial(ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	storeClient := newTestStoreClient(t)
	hasher, err := security.NewPasswordHasher(security.MinWorkFactor)
	require.NoError(t, err)
	signer := security.NewTokenSigner("test-secret", "flyagain-login", time.Hour)

	registerLimit := netutil.NewRateLimit(storeClient, 3, 3600)
	loginLimit := netutil.NewRateLimit(storeClient, 5, 60)

	h := NewHandler(client, storeClient, hasher, signer, registerLimit, loginLimit, time.Hour, "127.0.0.1:7779", slog.Default())
	return h, storeClient
}

func TestHandleRegisterAndLogin(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	resp := h.HandleRegister(ctx, "1.2.3.4", wire.RegisterRequest{
		Username: "hero1", Email: "hero1@example.com", Password: "supersecret",
	})
	require.True(t, resp.OK, resp.ErrorMessage)

	login := h.HandleLogin(ctx, "1.2.3.4", wire.LoginRequest{Username: "hero1", Password: "supersecret"})
	require.True(t, login.OK, login.ErrorMessage)
	require.NotEmpty(t, login.Token)
	require.NotEmpty(t, login.HMACSecret)
	require.Equal(t, "127.0.0.1:7779", login.AccountServiceAddr)
}

func TestHandleLoginWrongPassword(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	resp := h.HandleRegister(ctx, "1.2.3.5", wire.RegisterRequest{
		Username: "hero2", Email: "hero2@example.com", Password: "supersecret",
	})
	require.True(t, resp.OK, resp.ErrorMessage)

	login := h.HandleLogin(ctx, "1.2.3.5", wire.LoginRequest{Username: "hero2", Password: "wrongpass"})
	require.False(t, login.OK)
	require.Equal(t, "invalid username or password", login.ErrorMessage)
}

func TestHandleRegisterDuplicateUsername(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	first := h.HandleRegister(ctx, "1.2.3.6", wire.RegisterRequest{
		Username: "dupe", Email: "a@example.com", Password: "supersecret",
	})
	require.True(t, first.OK)

	second := h.HandleRegister(ctx, "1.2.3.6", wire.RegisterRequest{
		Username: "dupe", Email: "b@example.com", Password: "supersecret",
	})
	require.False(t, second.OK)
	require.Contains(t, second.ErrorMessage, "already registered")
}

func TestHandleRegisterRateLimit(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		resp := h.HandleRegister(ctx, "9.9.9.9", wire.RegisterRequest{
			Username: "user0" + string(rune('a'+i)), Email: "x@example.com", Password: "supersecret",
		})
		require.True(t, resp.OK, resp.ErrorMessage)
	}

	blocked := h.HandleRegister(ctx, "9.9.9.9", wire.RegisterRequest{
		Username: "userextra", Email: "x2@example.com", Password: "supersecret",
	})
	require.False(t, blocked.OK)
	require.Contains(t, blocked.ErrorMessage, "too many")
}

func TestHandleLoginEvictsExistingSession(t *testing.T) {
	h, storeClient := newTestHandler(t)
	ctx := context.Background()

	resp := h.HandleRegister(ctx, "1.2.3.7", wire.RegisterRequest{
		Username: "multi", Email: "multi@example.com", Password: "supersecret",
	})
	require.True(t, resp.OK)

	first := h.HandleLogin(ctx, "1.2.3.7", wire.LoginRequest{Username: "multi", Password: "supersecret"})
	require.True(t, first.OK)

	second := h.HandleLogin(ctx, "1.2.3.7", wire.LoginRequest{Username: "multi", Password: "supersecret"})
	require.True(t, second.OK)
	require.NotEqual(t, first.Token, second.Token)

	_, err := storeClient.GetSession(ctx, sessionIDFromToken(t, h, first.Token))
	require.Error(t, err)
}

// sessionIDFromToken decodes a token to recover its session id for
// assertion purposes only.
func sessionIDFromToken(t *testing.T, h *Handler, token string) string {
	t.Helper()
	claims, err := h.signer.Verify(token)
	require.NoError(t, err)
	return claims.SessionID
}

