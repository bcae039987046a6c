package accountservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/udisondev/la2go/internal/dataservice"
	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/security"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

// namePattern matches a 2-16 code point character name: first character an
// alphabetic letter (including the extended Latin set ä/ö/ü/ß), the rest
// alphanumeric from the same set.
var namePattern = regexp.MustCompile(`^\p{L}[\p{L}\p{N}]{1,15}$`)

const maxCharactersPerAccount = 4

// classDefinition is the starting-stat table for the four playable classes.
// German labels are the canonical client-facing input; the stored Class
// field uses the English names from the data model.
type classDefinition struct {
	englishName string
	maxHP       int32
	attack      int32
	defense     int32
	dex         int32
}

var classTable = map[string]classDefinition{
	"krieger":   {englishName: "warrior", maxHP: 120, attack: 12, defense: 8, dex: 3},
	"magier":    {englishName: "mage", maxHP: 70, attack: 14, defense: 3, dex: 4},
	"assassine": {englishName: "assassin", maxHP: 85, attack: 11, defense: 4, dex: 8},
	"kleriker":  {englishName: "cleric", maxHP: 95, attack: 8, defense: 6, dex: 4},
}

// defaultZoneID mirrors WorldService's zone 1 ("Aerheim") entry in
// FixedZones; a freshly created character always starts there, at the origin.
const defaultZoneID = 1

// Handler implements AccountService's two token-gated operations:
// character creation and character selection.
type Handler struct {
	data         *dataservice.Client
	store        *store.Client
	signer       *security.TokenSigner
	cacheTTL     time.Duration
	worldTCPAddr string
	worldUDPAddr string
	logger       *slog.Logger
}

// NewHandler constructs a Handler wired to DataService, the shared store,
// and the token signer.
func NewHandler(data *dataservice.Client, s *store.Client, signer *security.TokenSigner, cacheTTL time.Duration, worldTCPAddr, worldUDPAddr string, logger *slog.Logger) *Handler {
	return &Handler{
		data: data, store: s, signer: signer, cacheTTL: cacheTTL,
		worldTCPAddr: worldTCPAddr, worldUDPAddr: worldUDPAddr, logger: logger,
	}
}

// Authenticate verifies a token and returns the bound account id.
func (h *Handler) Authenticate(token string) (int64, error) {
	claims, err := h.signer.Verify(token)
	if err != nil {
		return 0, fmt.Errorf("verifying token: %w", err)
	}
	return claims.AccountID()
}

// HandleCharacterCreate validates name/class and creates a new character
// for accountID.
func (h *Handler) HandleCharacterCreate(ctx context.Context, accountID int64, req wire.CharacterCreate) wire.ErrorResponse {
	if !namePattern.MatchString(req.Name) {
		return errResp(wire.ErrBusiness, "character name must be 2-16 letters/digits, starting with a letter")
	}

	def, ok := classTable[req.Class]
	if !ok {
		return errResp(wire.ErrBusiness, "unknown class, must be one of krieger, magier, assassine, kleriker")
	}

	existing, err := h.data.GetCharactersByAccount(accountID)
	if err != nil {
		return errResp(wire.ErrTransient, "internal error")
	}
	if len(existing) >= maxCharactersPerAccount {
		return errResp(wire.ErrBusiness, "maximum of 4 characters per account reached")
	}

	_, err = h.data.CreateCharacter(model.CharacterRecord{
		AccountID: accountID, Name: req.Name, Class: def.englishName,
		Level: 1, MaxHP: def.maxHP, CurrentHP: def.maxHP,
		Attack: def.attack, Defense: def.defense, Dex: def.dex,
		ZoneID: defaultZoneID, X: 0, Y: 0, Z: 0,
	})
	if err != nil {
		if errors.Is(err, dataservice.ErrDuplicateName) {
			return errResp(wire.ErrBusiness, "character name already taken")
		}
		return errResp(wire.ErrTransient, "internal error")
	}

	return wire.ErrorResponse{}
}

// HandleCharacterSelect validates ownership, primes the shared-store
// character cache, and returns the WorldService handoff.
func (h *Handler) HandleCharacterSelect(ctx context.Context, accountID int64, req wire.CharacterSelect) (wire.CharacterSelectResponse, *wire.ErrorResponse) {
	rec, err := h.data.GetCharacter(req.CharacterID)
	if err != nil {
		resp := errResp(wire.ErrBusiness, "character not found")
		return wire.CharacterSelectResponse{}, &resp
	}
	if rec.AccountID != accountID {
		resp := errResp(wire.ErrAuthorization, "character does not belong to this account")
		return wire.CharacterSelectResponse{}, &resp
	}

	if err := h.store.SaveCharacterSnapshot(ctx, rec.CharacterID, rec, h.cacheTTL); err != nil {
		h.logger.Error("priming character cache failed", "character_id", rec.CharacterID, "error", err)
		resp := errResp(wire.ErrTransient, "internal error")
		return wire.CharacterSelectResponse{}, &resp
	}

	return wire.CharacterSelectResponse{
		CharacterID: rec.CharacterID, Name: rec.Name, ClassName: rec.Class, Level: rec.Level,
		X: rec.X, Y: rec.Y, Z: rec.Z,
		WorldTCPAddr: h.worldTCPAddr, WorldUDPAddr: h.worldUDPAddr,
	}, nil
}

func errResp(code wire.ErrorCode, message string) wire.ErrorResponse {
	return wire.ErrorResponse{Code: code, Message: message}
}
