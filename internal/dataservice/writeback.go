package dataservice

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/store"
)

// Writeback periodically drains the shared store's dirty-character markers
// into the relational store: for every character:X:dirty marker with a
// well-formed char:X snapshot, it produces exactly one Save call and
// then deletes the marker. A character whose snapshot is missing or fails
// to decode is skipped rather than aborting the sweep.
type Writeback struct {
	store      *store.Client
	characters *CharacterData
	interval   time.Duration
	logger     *slog.Logger
}

// NewWriteback constructs a sweeper that runs every interval.
func NewWriteback(s *store.Client, characters *CharacterData, interval time.Duration, logger *slog.Logger) *Writeback {
	if interval <= 0 {
		interval = 300 * time.Second
	}
	return &Writeback{store: s, characters: characters, interval: interval, logger: logger}
}

// Run blocks, sweeping on every tick of the configured interval, until ctx
// is canceled.
func (w *Writeback) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Writeback) sweep(ctx context.Context) {
	ids, err := w.store.ScanDirtyCharacters(ctx)
	if err != nil {
		w.logger.Warn("write-back sweep: scanning dirty characters failed", "error", err)
		return
	}

	for _, id := range ids {
		var rec model.CharacterRecord
		if err := w.store.GetCharacterSnapshot(ctx, id, &rec); err != nil {
			w.logger.Warn("write-back sweep: snapshot missing or malformed, skipping", "character_id", id, "error", err)
			continue
		}
		if rec.CharacterID == 0 {
			w.logger.Warn("write-back sweep: empty snapshot, skipping", "character_id", id)
			continue
		}

		if err := w.characters.Save(ctx, rec); err != nil {
			w.logger.Error("write-back sweep: saving character failed", "character_id", id, "error", err)
			continue
		}
		if err := w.store.ClearCharacterDirty(ctx, id); err != nil {
			w.logger.Warn("write-back sweep: clearing dirty marker failed", "character_id", id, "error", err)
		}
	}
}
