package worldserver

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/la2go/internal/model"
	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/security"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

// Server is the TCP front door for WorldService: it shares the four-stage
// gateway pipeline every service uses and, after EnterWorld
// succeeds, hands each connection's frames to the World's input queue.
type Server struct {
	world   *World
	signer  *security.TokenSigner
	store   *store.Client
	limiter *netutil.ConnLimiter
	udpAddr string

	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewServer constructs a Server bound to world.
func NewServer(world *World, signer *security.TokenSigner, s *store.Client, limiter *netutil.ConnLimiter, udpAddr string, idleTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{
		world:       world,
		signer:      signer,
		store:       s,
		limiter:     limiter,
		udpAddr:     udpAddr,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Serve accepts connections on addr until ctx is canceled.
func (srv *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening %s: %w", addr, err)
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				srv.logger.Warn("accept error", "error", err)
				continue
			}
		}
		go srv.handleConn(ctx, conn)
	}
}

func (srv *Server) handleConn(ctx context.Context, conn net.Conn) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}

	if srv.limiter != nil {
		if err := srv.limiter.Acquire(host); err != nil {
			_ = conn.Close()
			return
		}
		defer srv.limiter.Release(host)
	}

	watchdog := netutil.NewIdleWatchdog(srv.idleTimeout)
	watchdogStop := make(chan struct{})
	defer close(watchdogStop)

	client, err := NewClient(conn, watchdog, srv.logger)
	if err != nil {
		_ = conn.Close()
		return
	}
	client.Start()
	go watchdog.Run(5*time.Second, watchdogStop, client.CloseAsync)

	var (
		ch *ZoneChannel
		p  *model.PlayerEntity
	)
	defer func() {
		if ch != nil && p != nil {
			srv.world.Disconnect(context.Background(), ch, p, client, srv.logger)
		} else {
			_ = client.Close()
		}
	}()

	for {
		if client.Closing() {
			return
		}
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}
		client.Touch()

		if client.State() != ClientStateAuthenticated {
			if frame.Opcode != wire.OpEnterWorld && frame.Opcode != wire.OpHeartbeat {
				continue
			}
			if frame.Opcode == wire.OpEnterWorld {
				var ok bool
				ch, p, ok = srv.handleEnterWorld(ctx, client, frame)
				if !ok {
					return
				}
				continue
			}
		}

		srv.world.InputQueue().Enqueue(QueuedPacket{
			AccountID:  firstIdentity(client),
			Opcode:     frame.Opcode,
			Payload:    frame.Payload,
			Conn:       client,
			ReceivedAt: time.Now(),
		})
	}
}

func firstIdentity(c *Client) int64 {
	accountID, _, _, _ := c.Identity()
	return accountID
}

// handleEnterWorld runs the world-entry handshake: verify the token, load
// the character snapshot, register the connection, assign a channel, and
// answer with the zone snapshot.
func (srv *Server) handleEnterWorld(ctx context.Context, client *Client, frame wire.Frame) (*ZoneChannel, *model.PlayerEntity, bool) {
	var msg wire.EnterWorld
	if err := wire.DecodePayload(frame.Payload, &msg); err != nil {
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrProtocolViolation, Message: "malformed EnterWorld"})
		return nil, nil, false
	}

	// 1. Verify the token.
	claims, err := srv.signer.Verify(msg.Token)
	if err != nil {
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrAuthentication, Message: "invalid token"})
		return nil, nil, false
	}
	accountID, err := claims.AccountID()
	if err != nil {
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrAuthentication, Message: "invalid token"})
		return nil, nil, false
	}

	// 2. Read the character snapshot.
	var rec model.CharacterRecord
	if err := srv.store.GetCharacterSnapshot(ctx, msg.CharacterID, &rec); err != nil {
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrBusiness, Message: "character snapshot missing, re-select"})
		return nil, nil, false
	}

	// 3. Verify the snapshot's account id matches the token's subject.
	if rec.AccountID != accountID {
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrAuthorization, Message: "character does not belong to account"})
		return nil, nil, false
	}

	// 4. Assign entity id, construct PlayerEntity.
	entityID := srv.world.AllocateEntityID()
	p := model.NewPlayerEntity(entityID, rec, claims.SessionID, rec.ZoneID, 0)

	// 5. Atomic registration, reject duplicate world entry.
	if !srv.world.RegisterConnection(accountID, entityID, claims.SessionID, client) {
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrBusiness, Message: "already in world"})
		return nil, nil, false
	}

	// 6. Choose zone/channel.
	zoneID := rec.ZoneID
	if _, ok := srv.world.Zones().Zone(zoneID); !ok {
		zoneID = 1
	}
	ch, created, err := srv.world.Zones().BestChannel(zoneID)
	if err != nil {
		srv.world.Unregister(accountID, entityID)
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrTransient, Message: "no channel available"})
		return nil, nil, false
	}
	if created {
		srv.world.SeedChannel(ch, zoneID)
	}
	p.SetZone(zoneID, ch.ChannelID)
	if err := ch.AddPlayer(p); err != nil {
		srv.world.Unregister(accountID, entityID)
		_ = client.SendFrame(wire.OpErrorResponse, wire.ErrorResponse{Code: wire.ErrBusiness, Message: "channel full"})
		return nil, nil, false
	}

	udpToken := sessionTokenOf(claims.SessionID)
	hmacSecret := randomHMACSecret()
	client.SetAuthenticated(accountID, claims.SessionID, udpToken, hmacSecret)
	client.SetPlayerID(entityID)
	srv.world.Secrets().Put(udpToken, hmacSecret)

	// 7. Presence set.
	if err := srv.store.JoinChannel(ctx, zoneID, ch.ChannelID, rec.CharacterID); err != nil {
		srv.logger.Warn("joining presence set failed", "error", err)
	}

	// 8. ZoneData with the 3x3 neighborhood.
	zone, _ := srv.world.Zones().Zone(zoneID)
	loc := p.Location()
	var entities []wire.EntitySpawn
	for _, id := range ch.Grid().Nearby(loc.X, loc.Z) {
		if ent, ok := ch.Entity(id); ok {
			entities = append(entities, SpawnFor(ent))
		}
	}
	_ = client.SendFrame(wire.OpZoneData, wire.ZoneData{
		ZoneID: zoneID, ZoneName: zone.Name, ChannelID: ch.ChannelID,
		EntityID: entityID, Entities: entities,
	})

	// 9. Broadcast EntitySpawn for the new player to its neighborhood.
	events := NewTickEvents()
	events.AddSpawn(SpawnFor(p))
	srv.world.broadcast.Flush(ch, events, srv.world.connFor)

	return ch, p, true
}

func randomHMACSecret() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

// MintUDPToken exposes the token derivation rule for callers outside this
// package (e.g. tests asserting LoginService/WorldService agree on it).
func MintUDPToken(sessionID string) uint64 {
	return sessionTokenOf(sessionID)
}
