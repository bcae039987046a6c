package worldserver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

// World is the single dedicated tick worker's owning object: zones,
// entities, the input queue, and the collaborators it drives each tick.
// Per-tick simulation runs on the tick goroutine; connection goroutines also
// add and remove players on world entry and disconnect, and network
// goroutines otherwise only publish to InputQueue.
type World struct {
	cfg WorldConfig

	zones     *ZoneManager
	input     *InputQueue
	broadcast *BroadcastService
	store     *store.Client
	secrets   *SecretCache
	metrics   *Metrics
	logger    *slog.Logger
	spawns    *SpawnManager
	skills    *SkillCatalog

	nextEntityID  atomic.Uint32 // players start at 1
	nextMonsterID atomic.Uint32 // offset by model.MonsterObjectIDBase

	mu               sync.RWMutex
	clientsByPlayer  map[uint32]*Client
	playerByAccount  map[int64]uint32
	sessionByAccount map[int64]string

	saveCharacter func(ctx context.Context, rec model.CharacterRecord) error
	lastDropped   int64

	stop chan struct{}
	done chan struct{}
}

// WorldConfig bundles the tunables the tick loop reads every iteration.
type WorldConfig struct {
	TickRateHz             int
	MaxPlayersPerChannel   int
	PersistIntervalSeconds int
	ShutdownBudgetSeconds  int
}

// NewWorld constructs a World ready to run. saveCharacter is the
// DataService write-back call used by the disconnect and shutdown flushes;
// periodic persistence goes through the shared store instead. spawns and skills are the static catalogs loaded once
// at startup from DataService's GameData RPC surface.
func NewWorld(cfg WorldConfig, s *store.Client, metrics *Metrics, logger *slog.Logger, saveCharacter func(context.Context, model.CharacterRecord) error, spawns *SpawnManager, skills *SkillCatalog) *World {
	if cfg.TickRateHz <= 0 {
		cfg.TickRateHz = 20
	}
	w := &World{
		cfg:              cfg,
		zones:            NewZoneManager(cfg.MaxPlayersPerChannel),
		input:            NewInputQueue(50_000),
		broadcast:        NewBroadcastService(logger),
		store:            s,
		secrets:          NewSecretCache(s),
		metrics:          metrics,
		logger:           logger,
		spawns:           spawns,
		skills:           skills,
		clientsByPlayer:  make(map[uint32]*Client),
		playerByAccount:  make(map[int64]uint32),
		sessionByAccount: make(map[int64]string),
		saveCharacter:    saveCharacter,
		stop:             make(chan struct{}),
		done:             make(chan struct{}),
	}
	return w
}

// Zones exposes the zone manager for handshake/admin code.
func (w *World) Zones() *ZoneManager { return w.zones }

// InputQueue exposes the shared inbox for network goroutines to enqueue into.
func (w *World) InputQueue() *InputQueue { return w.input }

// Secrets exposes the UDP HMAC secret cache.
func (w *World) Secrets() *SecretCache { return w.secrets }

// AllocateEntityID hands out the next player object id.
func (w *World) AllocateEntityID() uint32 {
	return w.nextEntityID.Add(1) // first call returns 1
}

// allocateMonsterID hands out the next monster object id, disjoint from
// player ids by model.MonsterObjectIDBase.
func (w *World) allocateMonsterID() uint32 {
	return model.MonsterObjectIDBase + w.nextMonsterID.Add(1)
}

// SeedChannel populates a freshly created channel's monster population
// from the static spawn-point catalog. Called once, right after
// ZoneManager.BestChannel reports created == true.
func (w *World) SeedChannel(ch *ZoneChannel, zoneID int) {
	if w.spawns == nil {
		return
	}
	w.spawns.Seed(ch, zoneID, w.allocateMonsterID)
}

// RegisterConnection binds a player entity id to its owning TCP client and
// account, with compare-and-set semantics against duplicate world entry.
func (w *World) RegisterConnection(accountID int64, playerID uint32, sessionID string, c *Client) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.playerByAccount[accountID]; exists {
		return false
	}
	w.playerByAccount[accountID] = playerID
	w.sessionByAccount[accountID] = sessionID
	w.clientsByPlayer[playerID] = c
	return true
}

// Unregister removes a player's connection bookkeeping (disconnect flush
// step 4).
func (w *World) Unregister(accountID int64, playerID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.playerByAccount, accountID)
	delete(w.sessionByAccount, accountID)
	delete(w.clientsByPlayer, playerID)
}

func (w *World) connFor(playerID uint32) (TCPResponder, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.clientsByPlayer[playerID]
	return c, ok
}

// ResolveSession maps a UDP session token to the account id and session id
// that own it, for UDPListener authentication.
func (w *World) ResolveSession(token uint64) (accountID int64, sessionID string, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for acct, sid := range w.sessionByAccount {
		if sessionTokenOf(sid) == token {
			return acct, sid, true
		}
	}
	return 0, "", false
}

// Run drives the tick loop until Stop is called. Blocks until the final
// tick completes and shutdown flush finishes.
func (w *World) Run(ctx context.Context) {
	defer close(w.done)

	period := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	lastPersist := time.Now()
	var buf []QueuedPacket

	for {
		select {
		case <-w.stop:
			w.shutdownFlush(ctx)
			return
		case <-ctx.Done():
			w.shutdownFlush(context.Background())
			return
		case now := <-ticker.C:
			start := time.Now()
			buf = buf[:0]
			buf = w.input.Drain(buf)
			w.runTick(ctx, buf, period)

			if now.Sub(lastPersist) >= time.Duration(w.cfg.PersistIntervalSeconds)*time.Second {
				w.persistDirty(ctx)
				lastPersist = now
			}

			elapsed := time.Since(start)
			if w.metrics != nil {
				w.metrics.TickDuration.Observe(elapsed.Seconds())
				if elapsed > period {
					w.metrics.TickOverruns.Inc()
				}
			}
			if elapsed > period {
				w.logger.Warn("tick overrun", "elapsed", elapsed, "budget", period)
			}
		}
	}
}

// Stop signals the tick loop to finish its current tick and run shutdown
// flush.
func (w *World) Stop() {
	close(w.stop)
	<-w.done
}

func (w *World) runTick(ctx context.Context, packets []QueuedPacket, period time.Duration) {
	nowMs := time.Now().UnixMilli()
	deltaSeconds := period.Seconds()

	w.dispatchPackets(packets)

	for _, ch := range w.zones.AllChannels() {
		events := NewTickEvents()

		w.applyMovement(ch, period)
		stepPlayerAttacks(ch, nowMs, w.skills, w.spawns, events)
		for _, m := range ch.Monsters() {
			StepMonsterAI(ch, m, nowMs, deltaSeconds, events)
		}
		if w.metrics != nil {
			w.metrics.DamageEvents.Add(float64(len(events.Damages)))
		}

		w.broadcast.Flush(ch, events, w.connFor)
	}

	if w.metrics != nil {
		dropped := w.input.Dropped()
		w.metrics.InputDropped.Add(float64(dropped - w.lastDropped))
		w.lastDropped = dropped
		w.metrics.ConnectedPlayers.Set(float64(w.playerCount()))
	}
}

func (w *World) playerCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.playerByAccount)
}

// dispatchPackets handles every drained packet by opcode.
func (w *World) dispatchPackets(packets []QueuedPacket) {
	for _, pkt := range packets {
		switch pkt.Opcode {
		case wire.OpMovementInput:
			w.handleMovementInput(pkt)
		case wire.OpSelectTarget:
			w.handleSelectTarget(pkt)
		case wire.OpHeartbeat:
			w.handleHeartbeat(pkt)
		case wire.OpChannelSwitch:
			w.handleChannelSwitch(pkt)
		case wire.OpChannelList:
			w.handleChannelList(pkt)
		default:
			w.logger.Debug("unhandled opcode in tick dispatch", "opcode", pkt.Opcode.Name())
		}
	}
}

func (w *World) findPlayer(accountID int64) (*ZoneChannel, *model.PlayerEntity, bool) {
	w.mu.RLock()
	playerID, ok := w.playerByAccount[accountID]
	w.mu.RUnlock()
	if !ok {
		return nil, nil, false
	}
	for _, ch := range w.zones.AllChannels() {
		if p, ok := ch.Player(playerID); ok {
			return ch, p, true
		}
	}
	return nil, nil, false
}

func (w *World) handleMovementInput(pkt QueuedPacket) {
	var msg wire.MovementInput
	if err := wire.DecodePayload(pkt.Payload, &msg); err != nil {
		return
	}
	_, p, ok := w.findPlayer(pkt.AccountID)
	if !ok {
		return
	}

	dx, dy, dz, err := NormalizeInput(msg.DX, msg.DY, msg.DZ, msg.Heading)
	if err != nil {
		return
	}
	p.SetInputVector(dx, dy, dz, msg.Moving, msg.Flying)
	loc := p.Location()
	p.SetLocation(loc.WithHeading(msg.Heading))
}

func (w *World) handleSelectTarget(pkt QueuedPacket) {
	var msg wire.SelectTarget
	if err := wire.DecodePayload(pkt.Payload, &msg); err != nil {
		return
	}
	_, p, ok := w.findPlayer(pkt.AccountID)
	if !ok {
		return
	}
	p.SetTarget(msg.TargetEntityID)
	p.SetAutoAttacking(msg.AutoAttack)
	if msg.SkillID != 0 {
		p.SetPendingSkillID(msg.SkillID)
	}
}

func (w *World) handleHeartbeat(pkt QueuedPacket) {
	var msg wire.Heartbeat
	if err := wire.DecodePayload(pkt.Payload, &msg); err != nil {
		return
	}
	if pkt.Conn == nil {
		return
	}
	_ = pkt.Conn.SendFrame(wire.OpHeartbeat, wire.Heartbeat{
		ClientTimestampMs: msg.ClientTimestampMs,
		ServerTimestampMs: time.Now().UnixMilli(),
	})
}

// handleChannelSwitch moves a player to a specific channel (ChannelID >= 0)
// or the best available channel in a zone (ChannelID < 0), re-running the
// same assignment and neighborhood-broadcast steps EnterWorld uses.
func (w *World) handleChannelSwitch(pkt QueuedPacket) {
	var msg wire.ChannelSwitch
	if err := wire.DecodePayload(pkt.Payload, &msg); err != nil {
		return
	}
	if pkt.Conn == nil {
		return
	}
	oldCh, p, ok := w.findPlayer(pkt.AccountID)
	if !ok {
		return
	}

	zone, ok := w.zones.Zone(msg.ZoneID)
	if !ok {
		_ = pkt.Conn.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrBusiness, Message: "unknown zone"})
		return
	}

	var (
		newCh   *ZoneChannel
		created bool
		err     error
	)
	if msg.ChannelID >= 0 {
		newCh, ok = w.zones.Channel(msg.ZoneID, msg.ChannelID)
		if !ok {
			_ = pkt.Conn.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrBusiness, Message: "unknown channel"})
			return
		}
	} else {
		newCh, created, err = w.zones.BestChannel(msg.ZoneID)
		if err != nil {
			_ = pkt.Conn.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrTransient, Message: "no channel available"})
			return
		}
	}

	if newCh == oldCh {
		return
	}
	if err := newCh.AddPlayer(p); err != nil {
		_ = pkt.Conn.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrBusiness, Message: "channel full"})
		return
	}
	if created {
		w.SeedChannel(newCh, msg.ZoneID)
	}

	despawn := NewTickEvents()
	despawn.AddDespawn(wire.EntityDespawn{EntityID: p.ObjectID()})
	w.broadcast.Flush(oldCh, despawn, w.connFor)
	oldCh.RemovePlayer(p.ObjectID())

	p.SetZone(msg.ZoneID, newCh.ChannelID)
	p.MarkDirty()

	loc := p.Location()
	var entities []wire.EntitySpawn
	for _, id := range newCh.Grid().Nearby(loc.X, loc.Z) {
		if ent, ok := newCh.Entity(id); ok {
			entities = append(entities, SpawnFor(ent))
		}
	}
	_ = pkt.Conn.SendFrame(wire.OpZoneData, wire.ZoneData{
		ZoneID: msg.ZoneID, ZoneName: zone.Name, ChannelID: newCh.ChannelID,
		EntityID: p.ObjectID(), Entities: entities,
	})

	spawn := NewTickEvents()
	spawn.AddSpawn(SpawnFor(p))
	w.broadcast.Flush(newCh, spawn, w.connFor)
}

// handleChannelList answers with the population of every existing channel
// in the requested zone.
func (w *World) handleChannelList(pkt QueuedPacket) {
	var msg wire.ChannelList
	if err := wire.DecodePayload(pkt.Payload, &msg); err != nil {
		return
	}
	if pkt.Conn == nil {
		return
	}
	chans := w.zones.Channels(msg.ZoneID)
	infos := make([]wire.ChannelInfo, 0, len(chans))
	for _, c := range chans {
		infos = append(infos, wire.ChannelInfo{
			ChannelID:  c.ChannelID,
			Population: c.PlayerCount(),
			MaxPlayers: w.cfg.MaxPlayersPerChannel,
		})
	}
	_ = pkt.Conn.SendFrame(wire.OpChannelList, wire.ChannelList{ZoneID: msg.ZoneID, Channels: infos})
}

// applyMovement computes and commits new positions for every moving player
// in ch.
func (w *World) applyMovement(ch *ZoneChannel, period time.Duration) {
	deltaMs := period.Milliseconds()
	for _, p := range ch.Players() {
		dx, dy, dz, moving, flying := p.InputVector()
		if !moving {
			continue
		}

		loc := p.Location()
		candidate := CandidatePosition(loc, dx, dy, dz, p.Dex(), flying, deltaMs)
		ok, reason := ValidateMovement(loc, candidate, p.Dex(), flying, deltaMs)
		if !ok {
			if conn, found := w.connFor(p.ObjectID()); found {
				_ = conn.SendFrame(wire.OpPositionCorrection, wire.PositionCorrection{
					X: loc.X, Y: loc.Y, Z: loc.Z, Heading: loc.Heading, Reason: reason,
				})
			}
			continue
		}

		p.SetLocation(candidate)
		p.MarkDirty()
		ch.Grid().Update(p.ObjectID(), loc.X, loc.Z, candidate.X, candidate.Z)
	}
}

// persistDirty snapshots every dirty player to the shared store and marks
// DataService's write-back queue.
func (w *World) persistDirty(ctx context.Context) {
	for _, ch := range w.zones.AllChannels() {
		for _, p := range ch.Players() {
			if !p.Dirty() {
				continue
			}
			p.ClearDirty()
			rec := p.ToRecord()
			if err := w.store.SaveCharacterSnapshot(ctx, rec.CharacterID, rec, time.Hour); err != nil {
				w.logger.Warn("periodic snapshot failed", "character_id", rec.CharacterID, "error", err)
				continue
			}
			if err := w.store.MarkCharacterDirty(ctx, rec.CharacterID); err != nil {
				w.logger.Warn("marking character dirty failed", "character_id", rec.CharacterID, "error", err)
			}
		}
	}
}

// shutdownFlush force-saves every connected player within the configured
// budget.
func (w *World) shutdownFlush(ctx context.Context) {
	budget := time.Duration(w.cfg.ShutdownBudgetSeconds) * time.Second
	if budget <= 0 {
		budget = 30 * time.Second
	}
	flushCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	for _, ch := range w.zones.AllChannels() {
		for _, p := range ch.Players() {
			if w.saveCharacter == nil {
				continue
			}
			if err := w.saveCharacter(flushCtx, p.ToRecord()); err != nil {
				w.logger.Error("shutdown flush failed, entity lost beyond last snapshot", "character_id", p.CharacterID(), "error", err)
			}
		}
	}
}
