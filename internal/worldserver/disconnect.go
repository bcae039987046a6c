package worldserver

import (
	"context"
	"log/slog"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

// Disconnect runs the five-step flush a TCP channel going inactive triggers
//. ch and p must still be registered; the caller (Server's read loop on
// exit, including after the idle watchdog closes the client) invokes this
// exactly once per connection.
func (w *World) Disconnect(ctx context.Context, ch *ZoneChannel, p *model.PlayerEntity, c *Client, logger *slog.Logger) {
	p.SetConnected(false)
	objectID := p.ObjectID()

	// 1. Broadcast EntityDespawn to the 3x3 neighborhood.
	events := NewTickEvents()
	events.AddDespawn(wire.EntityDespawn{EntityID: objectID})
	w.broadcast.Flush(ch, events, w.connFor)

	// 2. DataService.SaveCharacter; failures are logged and non-fatal.
	rec := p.ToRecord()
	if w.saveCharacter != nil {
		if err := w.saveCharacter(ctx, rec); err != nil {
			logger.Error("disconnect save failed", "character_id", rec.CharacterID, "error", err)
		}
	}

	// 3. Shared-store cleanup: three independent calls, each failure logged
	// and non-fatal.
	accountID, _, sessionID, _ := c.Identity()
	if err := w.store.ClearCharacterDirty(ctx, rec.CharacterID); err != nil {
		logger.Warn("clearing dirty marker on disconnect failed", "error", err)
	}
	if err := w.store.LeaveChannel(ctx, ch.ZoneID, ch.ChannelID, rec.CharacterID); err != nil {
		logger.Warn("leaving channel presence set on disconnect failed", "error", err)
	}
	if sessionID != "" {
		sess := store.Session{SessionID: sessionID, AccountID: accountID}
		if err := w.store.DeleteSession(ctx, sess); err != nil {
			logger.Warn("deleting session on disconnect failed", "error", err)
		}
	}

	// 4. Remove from ZoneChannel, spatial grid, and EntityManager.
	ch.RemovePlayer(objectID)
	w.Unregister(accountID, objectID)
	w.secrets.Remove(sessionTokenOf(sessionID))

	// 5. Close the TCP channel if still open.
	_ = c.Close()
}
