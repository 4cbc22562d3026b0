//go:build linux

package sockettune

import (
	"net"

	"golang.org/x/sys/unix"
)

// applyPlatformOptions sets TCP_QUICKACK, which net.TCPConn doesn't
// expose. Best-effort: failure here never fails Apply.
func applyPlatformOptions(conn *net.TCPConn, cfg Config) {
	if !cfg.QuickAck {
		return
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return
	}
	_ = raw.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1)
	})
}
