// Package sockettune applies per-connection socket options to accepted
// connections, split into a cross-platform layer (net.TCPConn's own setters)
// and a Linux-specific layer using golang.org/x/sys/unix for options the
// standard library doesn't expose.
package sockettune

import (
	"net"
	"time"
)

// Config holds the tuning knobs, limited to what the standard library and
// golang.org/x/sys/unix can set without cgo.
type Config struct {
	NoDelay   bool
	KeepAlive bool
	KeepAlivePeriod time.Duration
	RecvBuffer int
	SendBuffer int
	QuickAck   bool // Linux only; no-op elsewhere
}

// DefaultConfig returns the defaults: Nagle's algorithm disabled,
// keepalive on with a 60s period, 256 KiB buffers, quick ACKs on Linux.
func DefaultConfig() Config {
	return Config{
		NoDelay:         true,
		KeepAlive:       true,
		KeepAlivePeriod: 60 * time.Second,
		RecvBuffer:      256 * 1024,
		SendBuffer:      256 * 1024,
		QuickAck:        true,
	}
}

// Apply tunes conn per cfg. Non-TCP connections (e.g. in tests using
// net.Pipe) are left untouched.
func Apply(conn net.Conn, cfg Config) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tcpConn.SetNoDelay(cfg.NoDelay); err != nil {
		return err
	}
	if cfg.KeepAlive {
		_ = tcpConn.SetKeepAlive(true)
		_ = tcpConn.SetKeepAlivePeriod(cfg.KeepAlivePeriod)
	}
	if cfg.RecvBuffer > 0 {
		_ = tcpConn.SetReadBuffer(cfg.RecvBuffer)
	}
	if cfg.SendBuffer > 0 {
		_ = tcpConn.SetWriteBuffer(cfg.SendBuffer)
	}

	applyPlatformOptions(tcpConn, cfg)
	return nil
}
