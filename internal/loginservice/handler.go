package loginservice

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"regexp"
	"time"

	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/security"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,16}$`)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
	maxEmailLength    = 254
)

// Handler implements LoginService's two request/response operations:
// account registration and authentication. Every handler may suspend on
// DataService RPC or shared-store I/O, so callers run it off the read loop
// in its own goroutine per frame... except that here, one connection
// handles one handshake at a time, so direct synchronous calls are fine.
type Handler struct {
	data           *dataservice.Client
	store          *store.Client
	hasher         *security.PasswordHasher
	signer         *security.TokenSigner
	registerLimit  *netutil.RateLimit
	loginLimit     *netutil.RateLimit
	tokenTTL       time.Duration
	accountSvcAddr string
	logger         *slog.Logger
}

// NewHandler constructs a Handler wired to DataService, the shared store,
// and the account-wide security primitives.
func NewHandler(
	data *dataservice.Client,
	s *store.Client,
	hasher *security.PasswordHasher,
	signer *security.TokenSigner,
	registerLimit, loginLimit *netutil.RateLimit,
	tokenTTL time.Duration,
	accountSvcAddr string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		data: data, store: s, hasher: hasher, signer: signer,
		registerLimit: registerLimit, loginLimit: loginLimit,
		tokenTTL: tokenTTL, accountSvcAddr: accountSvcAddr, logger: logger,
	}
}

// HandleRegister validates and creates a new account.
func (h *Handler) HandleRegister(ctx context.Context, clientAddr string, req wire.RegisterRequest) wire.RegisterResponse {
	allowed, err := h.registerLimit.Allow(ctx, "ratelimit:register:"+clientAddr)
	if err != nil {
		return wire.RegisterResponse{OK: false, ErrorMessage: "internal error"}
	}
	if !allowed {
		return wire.RegisterResponse{OK: false, ErrorMessage: "too many registration attempts, try again later"}
	}

	if !usernamePattern.MatchString(req.Username) {
		return wire.RegisterResponse{OK: false, ErrorMessage: "username must be 3-16 characters: letters, digits, hyphen"}
	}
	if len(req.Email) > maxEmailLength {
		return wire.RegisterResponse{OK: false, ErrorMessage: "email too long"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return wire.RegisterResponse{OK: false, ErrorMessage: "invalid email address"}
	}
	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		return wire.RegisterResponse{OK: false, ErrorMessage: "password must be 8-72 characters"}
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return wire.RegisterResponse{OK: false, ErrorMessage: "internal error"}
	}

	_, err = h.data.CreateAccount(req.Username, req.Email, hash)
	if err != nil {
		if errors.Is(err, dataservice.ErrDuplicateUsername) {
			return wire.RegisterResponse{OK: false, ErrorMessage: "username already registered"}
		}
		return wire.RegisterResponse{OK: false, ErrorMessage: "internal error"}
	}

	return wire.RegisterResponse{OK: true}
}

// HandleLogin authenticates a username/password pair, evicts any existing
// session for the account, mints a fresh session and token, and returns the
// account's character list.
func (h *Handler) HandleLogin(ctx context.Context, clientAddr string, req wire.LoginRequest) wire.LoginResponse {
	allowed, err := h.loginLimit.Allow(ctx, "ratelimit:login:"+clientAddr)
	if err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: "internal error"}
	}
	if !allowed {
		return wire.LoginResponse{OK: false, ErrorMessage: "too many login attempts, try again later"}
	}

	const invalidCreds = "invalid username or password"

	acc, err := h.data.GetAccountByUsername(req.Username)
	if err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: invalidCreds}
	}
	if !h.hasher.Verify(req.Password, acc.PasswordHash) {
		return wire.LoginResponse{OK: false, ErrorMessage: invalidCreds}
	}
	if acc.Banned {
		return wire.LoginResponse{OK: false, ErrorMessage: "this account has been banned"}
	}

	// 1. Evict any existing session for this account.
	if existingID, err := h.store.GetSessionByAccount(ctx, acc.AccountID); err == nil {
		_ = h.store.DeleteSession(ctx, store.Session{SessionID: existingID, AccountID: acc.AccountID})
	}

	// 2. Generate session id and HMAC secret.
	sessionID, err := security.NewSessionID()
	if err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: "internal error"}
	}
	hmacSecret, err := security.NewSessionSecret()
	if err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: "internal error"}
	}

	// 3. Store the session and its reverse lookup.
	now := time.Now()
	sess := store.Session{
		SessionID: sessionID, AccountID: acc.AccountID, Username: acc.Username,
		HMACSecret: hmacSecret, CreatedAt: now,
	}
	if err := h.store.SaveSession(ctx, sess, 24*time.Hour); err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: "internal error"}
	}

	// 4. Mint the signed token.
	token, err := h.signer.Mint(acc.AccountID, sessionID, acc.Username)
	if err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: "internal error"}
	}

	// 5. Fetch characters.
	records, err := h.data.GetCharactersByAccount(acc.AccountID)
	if err != nil {
		return wire.LoginResponse{OK: false, ErrorMessage: "internal error"}
	}
	summaries := make([]wire.CharacterSummary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, summaryOf(rec))
	}

	// 6. Fire-and-forget last-login stamp.
	go func() {
		if err := h.data.UpdateLastLogin(acc.AccountID, now); err != nil {
			h.logger.Warn("updating last login failed", "account_id", acc.AccountID, "error", err)
		}
	}()

	return wire.LoginResponse{
		OK: true, Token: token, HMACSecret: hmacSecret,
		Characters: summaries, AccountServiceAddr: h.accountSvcAddr,
	}
}

func summaryOf(rec model.CharacterRecord) wire.CharacterSummary {
	return wire.CharacterSummary{
		CharacterID: rec.CharacterID,
		Name:        rec.Name,
		ClassName:   rec.Class,
		Level:       rec.Level,
	}
}
