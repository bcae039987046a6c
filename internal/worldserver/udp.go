package worldserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/store"
	"github.com/udisondev/la2go/internal/wire"
)

const (
	udpHeaderSize = 8 + 8 + 2 // sessionToken + sequence + opcode
	udpMACSize    = 32
	udpMinFrame   = udpHeaderSize + udpMACSize
)

// SecretCache is WorldService's per-process sessionToken -> hmacSecret
// cache, populated on EnterWorld and falling back to the
// shared store on a miss.
type SecretCache struct {
	mu      sync.RWMutex
	secrets map[uint64][]byte
	store   *store.Client
}

// NewSecretCache constructs an empty cache backed by store for fallback
// lookups.
func NewSecretCache(s *store.Client) *SecretCache {
	return &SecretCache{secrets: make(map[uint64][]byte), store: s}
}

// Put registers a session's UDP secret, called on successful EnterWorld.
func (c *SecretCache) Put(token uint64, secret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.secrets[token] = secret
}

// Remove drops a session's cached secret on disconnect.
func (c *SecretCache) Remove(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.secrets, token)
}

// Get resolves a session token to its HMAC secret, falling back to the
// shared store's session hash on a process-local miss.
func (c *SecretCache) Get(ctx context.Context, sessionID string, token uint64) ([]byte, bool) {
	c.mu.RLock()
	secret, ok := c.secrets[token]
	c.mu.RUnlock()
	if ok {
		return secret, true
	}

	if sessionID == "" {
		return nil, false
	}
	sess, err := c.store.GetSession(ctx, sessionID)
	if err != nil || sess.HMACSecret == "" {
		return nil, false
	}
	secret = []byte(sess.HMACSecret)
	c.Put(token, secret)
	return secret, true
}

// sessionTokenOf derives the UDP session token from a session id: the
// numeric representation of its first 8 bytes.
func sessionTokenOf(sessionID string) uint64 {
	var b [8]byte
	copy(b[:], sessionID)
	return binary.BigEndian.Uint64(b[:])
}

// udpReplayTracker enforces monotonic sequence numbers per session.
type udpReplayTracker struct {
	mu    sync.Mutex
	marks map[uint64]uint64
}

func newUDPReplayTracker() *udpReplayTracker {
	return &udpReplayTracker{marks: make(map[uint64]uint64)}
}

// Accept reports whether sequence is fresh for token, updating the
// high-water mark if so.
func (t *udpReplayTracker) Accept(token, sequence uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if sequence <= t.marks[token] {
		return false
	}
	t.marks[token] = sequence
	return true
}

// Forget drops a session's replay state on disconnect.
func (t *udpReplayTracker) Forget(token uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.marks, token)
}

// UDPListener receives authenticated movement frames and
// enqueues them onto the shared InputQueue for tick-thread processing.
type UDPListener struct {
	conn    *net.UDPConn
	flood   *netutil.UDPFloodGuard
	replay  *udpReplayTracker
	secrets *SecretCache
	queue   *InputQueue
	// resolveSession maps an authenticated UDP session token back to the
	// owning account id and session id, so the queued packet carries the
	// same routing key TCP frames do, and the secret cache can fall back
	// to the shared store on a process-local miss.
	resolveSession func(token uint64) (accountID int64, sessionID string, ok bool)
	logger         *slog.Logger
}

// NewUDPListener binds addr and constructs a listener. Call Serve to start
// the receive loop.
func NewUDPListener(addr string, flood *netutil.UDPFloodGuard, secrets *SecretCache, queue *InputQueue, resolveSession func(uint64) (int64, string, bool), logger *slog.Logger) (*UDPListener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolving udp addr %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listening udp %s: %w", addr, err)
	}
	return &UDPListener{
		conn:           conn,
		flood:          flood,
		replay:         newUDPReplayTracker(),
		secrets:        secrets,
		queue:          queue,
		resolveSession: resolveSession,
		logger:         logger,
	}, nil
}

// Close releases the socket.
func (l *UDPListener) Close() error { return l.conn.Close() }

// Serve runs the receive loop until the socket is closed.
func (l *UDPListener) Serve(ctx context.Context) {
	buf := make([]byte, 2048)
	for {
		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			l.logger.Warn("udp read error", "error", err)
			continue
		}

		if !l.flood.Allow(addr.String()) {
			continue // silently dropped, sender is over its flood budget
		}

		frame := make([]byte, n)
		copy(frame, buf[:n])
		l.handleFrame(ctx, frame)
	}
}

func (l *UDPListener) handleFrame(ctx context.Context, frame []byte) {
	if len(frame) < udpMinFrame {
		return
	}

	token := binary.BigEndian.Uint64(frame[0:8])
	sequence := binary.BigEndian.Uint64(frame[8:16])
	opcode := wire.Opcode(binary.BigEndian.Uint16(frame[16:18]))
	body := frame[:len(frame)-udpMACSize]
	mac := frame[len(frame)-udpMACSize:]
	payload := frame[udpHeaderSize : len(frame)-udpMACSize]

	accountID, sessionID, ok := l.resolveSession(token)
	if !ok {
		return
	}

	secret, ok := l.secrets.Get(ctx, sessionID, token)
	if !ok {
		return
	}
	if !verifyHMAC(secret, body, mac) {
		return
	}

	if !l.replay.Accept(token, sequence) {
		return
	}

	l.queue.Enqueue(QueuedPacket{
		AccountID: accountID,
		Opcode:    opcode,
		Payload:   payload,
	})
}

func verifyHMAC(secret, body, mac []byte) bool {
	h := hmac.New(sha256.New, secret)
	h.Write(body)
	expected := h.Sum(nil)
	return hmac.Equal(expected, mac)
}
