package accountservice

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/udisondev/la2go/internal/netutil"
	"github.com/udisondev/la2go/internal/wire"
)

// Server is the TCP front door for AccountService: it shares the
// four-stage gateway pipeline every service uses and requires every
// non-heartbeat frame to carry (or have previously carried, on the same
// connection) a valid token.
type Server struct {
	handler     *Handler
	limiter     *netutil.ConnLimiter
	idleTimeout time.Duration
	logger      *slog.Logger
}

// NewServer constructs a Server bound to handler.
func NewServer(handler *Handler, limiter *netutil.ConnLimiter, idleTimeout time.Duration, logger *slog.Logger) *Server {
	return &Server{handler: handler, limiter: limiter, idleTimeout: idleTimeout, logger: logger}
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
	defer conn.Close()

	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		host = conn.RemoteAddr().String()
	}

	if srv.limiter != nil {
		if err := srv.limiter.Acquire(host); err != nil {
			return
		}
		defer srv.limiter.Release(host)
	}

	watchdog := netutil.NewIdleWatchdog(srv.idleTimeout)
	stop := make(chan struct{})
	defer close(stop)
	closed := make(chan struct{})
	go watchdog.Run(5*time.Second, stop, func() {
		close(closed)
		_ = conn.Close()
	})

	var (
		authenticated bool
		accountID     int64
	)

	for {
		select {
		case <-closed:
			return
		default:
		}

		frame, err := wire.ReadFrame(conn)
		if err != nil {
			return
		}
		watchdog.Touch()

		switch frame.Opcode {
		case wire.OpHeartbeat:
			srv.handleHeartbeat(conn, frame)
			continue
		case wire.OpCharacterCreate:
			var req wire.CharacterCreate
			if err := wire.DecodePayload(frame.Payload, &req); err != nil {
				sendError(conn, wire.ErrProtocolViolation, "malformed CharacterCreate")
				return
			}
			if !authenticated {
				id, err := srv.authenticateToken(req.Token, conn)
				if err != nil {
					return
				}
				accountID, authenticated = id, true
			}
			resp := srv.handler.HandleCharacterCreate(ctx, accountID, req)
			if resp.Code != 0 {
				sendError(conn, resp.Code, resp.Message)
				continue
			}
			_ = writeFrame(conn, wire.OpCharacterCreate, wire.ErrorResponse{})
		case wire.OpCharacterSelect:
			var req wire.CharacterSelect
			if err := wire.DecodePayload(frame.Payload, &req); err != nil {
				sendError(conn, wire.ErrProtocolViolation, "malformed CharacterSelect")
				return
			}
			if !authenticated {
				id, err := srv.authenticateToken(req.Token, conn)
				if err != nil {
					return
				}
				accountID, authenticated = id, true
			}
			resp, errResp := srv.handler.HandleCharacterSelect(ctx, accountID, req)
			if errResp != nil {
				sendError(conn, errResp.Code, errResp.Message)
				continue
			}
			_ = writeFrame(conn, wire.OpCharacterSelect, resp)
		default:
			sendError(conn, wire.ErrProtocolViolation, "unexpected opcode for AccountService")
			return
		}
	}
}

// authenticateToken verifies tok and sends an ErrAuthentication response
// (closing the caller's intent to keep reading) on failure.
func (srv *Server) authenticateToken(tok string, conn net.Conn) (int64, error) {
	accountID, err := srv.handler.Authenticate(tok)
	if err != nil {
		sendError(conn, wire.ErrAuthentication, "invalid or missing token")
		return 0, err
	}
	return accountID, nil
}

func (srv *Server) handleHeartbeat(conn net.Conn, frame wire.Frame) {
	var hb wire.Heartbeat
	if err := wire.DecodePayload(frame.Payload, &hb); err != nil {
		return
	}
	hb.ServerTimestampMs = time.Now().UnixMilli()
	_ = writeFrame(conn, wire.OpHeartbeat, hb)
}

func sendError(conn net.Conn, code wire.ErrorCode, message string) {
	_ = writeFrame(conn, wire.OpErrorResponse, wire.ErrorResponse{Code: code, Message: message})
}

func writeFrame(conn net.Conn, opcode wire.Opcode, msg any) error {
	payload, err := wire.EncodePayload(msg)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", opcode.Name(), err)
	}
	var buf bytes.Buffer
	if err := wire.WriteFrame(&buf, opcode, payload); err != nil {
		return fmt.Errorf("framing %s: %w", opcode.Name(), err)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_, err = conn.Write(buf.Bytes())
	return err
}
