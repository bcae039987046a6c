package store

import (
	"context"
	"fmt"
)

func zonePresenceKey(zoneID, channelID int) string {
	return fmt.Sprintf("presence:zone:%d:channel:%d", zoneID, channelID)
}

// JoinChannel adds a character to a zone channel's presence set. WorldService
// calls it on world entry; no other service reads the set.
func (c *Client) JoinChannel(ctx context.Context, zoneID, channelID int, characterID int64) error {
	if err := c.rdb.SAdd(ctx, zonePresenceKey(zoneID, channelID), characterID).Err(); err != nil {
		return fmt.Errorf("joining zone %d channel %d: %w", zoneID, channelID, err)
	}
	return nil
}

// LeaveChannel removes a character from a zone channel's presence set.
func (c *Client) LeaveChannel(ctx context.Context, zoneID, channelID int, characterID int64) error {
	if err := c.rdb.SRem(ctx, zonePresenceKey(zoneID, channelID), characterID).Err(); err != nil {
		return fmt.Errorf("leaving zone %d channel %d: %w", zoneID, channelID, err)
	}
	return nil
}

// ChannelPopulation returns the current occupant count for a zone channel.
func (c *Client) ChannelPopulation(ctx context.Context, zoneID, channelID int) (int64, error) {
	count, err := c.rdb.SCard(ctx, zonePresenceKey(zoneID, channelID)).Result()
	if err != nil {
		return 0, fmt.Errorf("counting zone %d channel %d: %w", zoneID, channelID, err)
	}
	return count, nil
}
