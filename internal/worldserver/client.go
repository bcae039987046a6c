package worldserver

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/wire"
)

const (
	defaultSendQueueSize = 256
	defaultWriteTimeout  = 5 * time.Second
)

// ClientState tracks a connection's progress through the world entry
// handshake.
type ClientState int32

const (
	ClientStateConnected ClientState = iota
	ClientStateAuthenticated
	ClientStateClosing
)

// Client is one TCP connection to WorldService. It owns an async write
// queue so senders (the tick thread, and connection goroutines broadcasting
// world entry and disconnect) never block on a slow socket.
type Client struct {
	conn net.Conn
	ip   string

	state   atomic.Int32
	closing atomic.Bool

	watchdog *netutil.IdleWatchdog

	mu          sync.Mutex
	accountID   int64
	playerID    uint32 // 0 until EnterWorld succeeds
	sessionID   string
	udpToken    uint64
	hmacSecret  []byte

	sendCh    chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once

	writeTimeout time.Duration
	logger       *slog.Logger
}

// NewClient wraps a freshly accepted TCP connection.
func NewClient(conn net.Conn, watchdog *netutil.IdleWatchdog, logger *slog.Logger) (*Client, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return nil, fmt.Errorf("splitting remote addr: %w", err)
	}
	c := &Client{
		conn:         conn,
		ip:           host,
		watchdog:     watchdog,
		sendCh:       make(chan []byte, defaultSendQueueSize),
		closeCh:      make(chan struct{}),
		writeTimeout: defaultWriteTimeout,
		logger:       logger,
	}
	c.state.Store(int32(ClientStateConnected))
	return c, nil
}

// IP returns the client's remote address (without port).
func (c *Client) IP() string { return c.ip }

// State returns the connection's handshake state.
func (c *Client) State() ClientState { return ClientState(c.state.Load()) }

// SetAuthenticated binds account/session identity after EnterWorld succeeds.
func (c *Client) SetAuthenticated(accountID int64, sessionID string, udpToken uint64, hmacSecret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accountID = accountID
	c.sessionID = sessionID
	c.udpToken = udpToken
	c.hmacSecret = hmacSecret
	c.state.Store(int32(ClientStateAuthenticated))
}

// SetPlayerID records the player entity id assigned on EnterWorld.
func (c *Client) SetPlayerID(id uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
}

// Identity returns the bound account id, player entity id, session id and
// UDP HMAC secret. PlayerID is 0 before EnterWorld completes.
func (c *Client) Identity() (accountID int64, playerID uint32, sessionID string, hmacSecret []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accountID, c.playerID, c.sessionID, c.hmacSecret
}

// SendFrame encodes msg and queues it for the write pump. Implements
// TCPResponder. Never blocks: a full queue marks the client for
// disconnection rather than stalling the tick thread.
func (c *Client) SendFrame(opcode wire.Opcode, msg any) error {
	payload, err := wire.EncodePayload(msg)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", opcode.Name(), err)
	}

	var buf bytes.Buffer
	if err := wire.WriteFrame(&buf, opcode, payload); err != nil {
		return fmt.Errorf("framing %s: %w", opcode.Name(), err)
	}

	select {
	case c.sendCh <- buf.Bytes():
		return nil
	default:
		c.CloseAsync()
		return fmt.Errorf("send queue full for %s, closing connection", c.ip)
	}
}

// writePump drains sendCh to the socket until closeCh fires. Run in its own
// goroutine per connection.
func (c *Client) writePump() {
	for {
		select {
		case frame := <-c.sendCh:
			if c.writeTimeout > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if _, err := c.conn.Write(frame); err != nil {
				c.logger.Warn("write pump error, closing", "addr", c.ip, "error", err)
				c.CloseAsync()
				return
			}
		case <-c.closeCh:
			return
		}
	}
}

// Start launches the write pump. Call once after construction.
func (c *Client) Start() { go c.writePump() }

// Touch records inbound activity for the idle watchdog.
func (c *Client) Touch() {
	if c.watchdog != nil {
		c.watchdog.Touch()
	}
}

// CloseAsync marks the client for disconnection without blocking the
// caller; it also expires the socket's read deadline, so a pending read in
// the owning read loop returns and the loop tears down.
func (c *Client) CloseAsync() {
	c.closing.Store(true)
	c.closeOnce.Do(func() {
		close(c.closeCh)
		_ = c.conn.SetReadDeadline(time.Now())
	})
}

// Closing reports whether CloseAsync has been called.
func (c *Client) Closing() bool { return c.closing.Load() }

// Close closes the underlying socket. Safe to call multiple times.
func (c *Client) Close() error {
	c.CloseAsync()
	return c.conn.Close()
}
