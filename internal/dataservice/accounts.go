package dataservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/udisondev/la2go/internal/model"
)

// ErrNotFound is returned by lookups that find no matching row.
var ErrNotFound = errors.New("dataservice: not found")

// ErrDuplicateUsername is returned by AccountData.Create when the username
// is already taken.
var ErrDuplicateUsername = errors.New("dataservice: username already registered")

// ErrDuplicateName is returned by CharacterData.Create when the character
// name is already taken.
var ErrDuplicateName = errors.New("dataservice: character name already taken")

// AccountData is DataService's sole entry point into the accounts table.
type AccountData struct {
	db *DB
}

// NewAccountData constructs an AccountData repository.
func NewAccountData(db *DB) *AccountData {
	return &AccountData{db: db}
}

// GetByUsername returns the account for a login name, or ErrNotFound.
func (a *AccountData) GetByUsername(ctx context.Context, username string) (model.Account, error) {
	username = strings.ToLower(username)
	var acc model.Account
	err := a.db.pool.QueryRow(ctx,
		`SELECT account_id, username, email, password_hash, banned, created_at, last_login_at
		 FROM accounts WHERE username = $1`, username,
	).Scan(&acc.AccountID, &acc.Username, &acc.Email, &acc.PasswordHash, &acc.Banned, &acc.CreatedAt, &acc.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("querying account %q: %w", username, err)
	}
	return acc, nil
}

// GetByID returns the account for an account id, or ErrNotFound.
func (a *AccountData) GetByID(ctx context.Context, accountID int64) (model.Account, error) {
	var acc model.Account
	err := a.db.pool.QueryRow(ctx,
		`SELECT account_id, username, email, password_hash, banned, created_at, last_login_at
		 FROM accounts WHERE account_id = $1`, accountID,
	).Scan(&acc.AccountID, &acc.Username, &acc.Email, &acc.PasswordHash, &acc.Banned, &acc.CreatedAt, &acc.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("querying account %d: %w", accountID, err)
	}
	return acc, nil
}

// Create inserts a new account with an already-hashed password verifier.
func (a *AccountData) Create(ctx context.Context, username, email, passwordHash string) (model.Account, error) {
	username = strings.ToLower(username)
	var acc model.Account
	err := a.db.pool.QueryRow(ctx,
		`INSERT INTO accounts (username, email, password_hash, created_at)
		 VALUES ($1, $2, $3, now())
		 RETURNING account_id, username, email, password_hash, banned, created_at, last_login_at`,
		username, email, passwordHash,
	).Scan(&acc.AccountID, &acc.Username, &acc.Email, &acc.PasswordHash, &acc.Banned, &acc.CreatedAt, &acc.LastLoginAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.Account{}, ErrDuplicateUsername
		}
		return model.Account{}, fmt.Errorf("creating account %q: %w", username, err)
	}
	return acc, nil
}

// UpdateLastLogin stamps an account's last-login timestamp.
func (a *AccountData) UpdateLastLogin(ctx context.Context, accountID int64, at time.Time) error {
	_, err := a.db.pool.Exec(ctx,
		`UPDATE accounts SET last_login_at = $2 WHERE account_id = $1`, accountID, at)
	if err != nil {
		return fmt.Errorf("updating last login for account %d: %w", accountID, err)
	}
	return nil
}

// CheckBan reports whether accountID is currently banned.
func (a *AccountData) CheckBan(ctx context.Context, accountID int64) (bool, error) {
	var banned bool
	err := a.db.pool.QueryRow(ctx, `SELECT banned FROM accounts WHERE account_id = $1`, accountID).Scan(&banned)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("checking ban for account %d: %w", accountID, err)
	}
	return banned, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
