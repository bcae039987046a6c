package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

func characterKey(characterID int64) string {
	return fmt.Sprintf("char:%d", characterID)
}

func dirtyKey(characterID int64) string {
	return fmt.Sprintf("character:%d:dirty", characterID)
}

// SaveCharacterSnapshot stores a JSON-encoded character snapshot with the
// given TTL. WorldService calls this for each dirty player on its periodic
// persistence pass (one-hour TTL); AccountService calls it with a shorter
// TTL right after character select.
func (c *Client) SaveCharacterSnapshot(ctx context.Context, characterID int64, snapshot any, ttl time.Duration) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshaling character %d snapshot: %w", characterID, err)
	}
	if err := c.rdb.Set(ctx, characterKey(characterID), body, ttl).Err(); err != nil {
		return fmt.Errorf("saving character %d snapshot: %w", characterID, err)
	}
	return nil
}

// GetCharacterSnapshot loads and decodes a cached character snapshot into
// dst (a pointer). Returns an error wrapping ErrNotFound on a cache miss.
func (c *Client) GetCharacterSnapshot(ctx context.Context, characterID int64, dst any) error {
	body, err := c.rdb.Get(ctx, characterKey(characterID)).Bytes()
	if err != nil {
		return fmt.Errorf("character %d: %w", characterID, ErrNotFound)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("unmarshaling character %d snapshot: %w", characterID, err)
	}
	return nil
}

// MarkCharacterDirty flags a character as needing a write-back to
// DataService's durable store.
func (c *Client) MarkCharacterDirty(ctx context.Context, characterID int64) error {
	if err := c.rdb.Set(ctx, dirtyKey(characterID), 1, 0).Err(); err != nil {
		return fmt.Errorf("marking character %d dirty: %w", characterID, err)
	}
	return nil
}

// ClearCharacterDirty removes the dirty marker after a successful write-back.
func (c *Client) ClearCharacterDirty(ctx context.Context, characterID int64) error {
	if err := c.rdb.Del(ctx, dirtyKey(characterID)).Err(); err != nil {
		return fmt.Errorf("clearing dirty marker for character %d: %w", characterID, err)
	}
	return nil
}

// ScanDirtyCharacters returns the character ids currently marked dirty.
// Used by DataService's periodic write-back sweep.
func (c *Client) ScanDirtyCharacters(ctx context.Context) ([]int64, error) {
	var ids []int64
	iter := c.rdb.Scan(ctx, 0, "character:*:dirty", 1000).Iterator()
	for iter.Next(ctx) {
		var id int64
		if _, err := fmt.Sscanf(iter.Val(), "character:%d:dirty", &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scanning dirty characters: %w", err)
	}
	return ids, nil
}
