package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 24 * time.Hour

// Session is the shared-store record created by LoginService and read by
// AccountService/WorldService to resolve a connecting client without a
// round trip to DataService.
type Session struct {
	SessionID  string
	AccountID  int64
	Username   string
	HMACSecret string // base64url, used to authenticate WorldService UDP frames
	CreatedAt  time.Time
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func sessionByAccountKey(accountID int64) string {
	return fmt.Sprintf("session:account:%d", accountID)
}

// SaveSession writes a session hash and its accountID->sessionID reverse
// lookup, both with the given TTL.
func (c *Client) SaveSession(ctx context.Context, sess Session, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	key := sessionKey(sess.SessionID)
	fields := map[string]any{
		"account_id":  sess.AccountID,
		"username":    sess.Username,
		"hmac_secret": sess.HMACSecret,
		"created_at":  sess.CreatedAt.Unix(),
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	pipe.Set(ctx, sessionByAccountKey(sess.AccountID), sess.SessionID, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("saving session %s: %w", sess.SessionID, err)
	}
	return nil
}

// GetSession loads a session by id. Returns an error satisfying
// errors.Is(err, ErrNotFound) if the session does not exist or has expired.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Session, error) {
	fields, err := c.rdb.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return Session{}, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	if len(fields) == 0 {
		return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}

	accountID, err := strconv.ParseInt(fields["account_id"], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("parsing account_id for session %s: %w", sessionID, err)
	}
	createdUnix, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return Session{}, fmt.Errorf("parsing created_at for session %s: %w", sessionID, err)
	}

	return Session{
		SessionID:  sessionID,
		AccountID:  accountID,
		Username:   fields["username"],
		HMACSecret: fields["hmac_secret"],
		CreatedAt:  time.Unix(createdUnix, 0),
	}, nil
}

// GetSessionByAccount resolves the active session id for an account, if any.
func (c *Client) GetSessionByAccount(ctx context.Context, accountID int64) (string, error) {
	sessionID, err := c.rdb.Get(ctx, sessionByAccountKey(accountID)).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("account %d: %w", accountID, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loading session for account %d: %w", accountID, err)
	}
	return sessionID, nil
}

// DeleteSession removes a session and its reverse lookup, and publishes an
// eviction notice so other services holding a cached reference can drop it.
func (c *Client) DeleteSession(ctx context.Context, sess Session) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(sess.SessionID))
	pipe.Del(ctx, sessionByAccountKey(sess.AccountID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("deleting session %s: %w", sess.SessionID, err)
	}
	return c.PublishSessionEviction(ctx, sess.SessionID)
}
