package loginservice

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

// Server is the TCP front door for LoginService: it shares the four-stage
// gateway pipeline every service uses, decodes register and login requests
// (and echoes heartbeats), and replies synchronously on the same connection.
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
		case wire.OpRegisterRequest:
			srv.handleRegisterFrame(ctx, conn, host, frame)
		case wire.OpLoginRequest:
			srv.handleLoginFrame(ctx, conn, host, frame)
		default:
			sendError(conn, wire.ErrProtocolViolation, "unexpected opcode for LoginService")
			return
		}
	}
}

func (srv *Server) handleHeartbeat(conn net.Conn, frame wire.Frame) {
	var hb wire.Heartbeat
	if err := wire.DecodePayload(frame.Payload, &hb); err != nil {
		return
	}
	hb.ServerTimestampMs = time.Now().UnixMilli()
	_ = writeFrame(conn, wire.OpHeartbeat, hb)
}

func (srv *Server) handleRegisterFrame(ctx context.Context, conn net.Conn, host string, frame wire.Frame) {
	var req wire.RegisterRequest
	if err := wire.DecodePayload(frame.Payload, &req); err != nil {
		sendError(conn, wire.ErrProtocolViolation, "malformed RegisterRequest")
		return
	}
	resp := srv.handler.HandleRegister(ctx, host, req)
	_ = writeFrame(conn, wire.OpRegisterResponse, resp)
}

func (srv *Server) handleLoginFrame(ctx context.Context, conn net.Conn, host string, frame wire.Frame) {
	var req wire.LoginRequest
	if err := wire.DecodePayload(frame.Payload, &req); err != nil {
		sendError(conn, wire.ErrProtocolViolation, "malformed LoginRequest")
		return
	}
	resp := srv.handler.HandleLogin(ctx, host, req)
	_ = writeFrame(conn, wire.OpLoginResponse, resp)
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
