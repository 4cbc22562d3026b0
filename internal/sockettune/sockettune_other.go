//go:build !linux

package sockettune

import "net"

// applyPlatformOptions is a no-op outside Linux; TCP_QUICKACK has no
// equivalent the standard library or golang.org/x/sys/unix expose
// portably.
func applyPlatformOptions(conn *net.TCPConn, cfg Config) {}
