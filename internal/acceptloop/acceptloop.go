// Package acceptloop runs the single-threaded TCP accept loop: bind,
// listen, accept, hand each connection to the bounded worker pool with an
// immediate-fail submission, and shed load at the edge with a synchronous
// 503 when the pool is saturated. Connections are served by pool workers,
// not by a goroutine per connection.
package acceptloop

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/yourusername/originserver/internal/connio"
	"github.com/yourusername/originserver/internal/pool"
	"github.com/yourusername/originserver/internal/sockettune"
)

// minListenBacklog is the floor spec.md §4.1 requires on the listening
// socket.
const minListenBacklog = 50

// Loop owns the listening socket and the worker pool it feeds.
type Loop struct {
	listener net.Listener
	pool     *pool.Pool
	connCfg  connio.Config
	tuneCfg  sockettune.Config

	stopped atomic.Bool
}

// New binds host:port and returns a Loop ready to Run. The backlog is
// best-effort: Go's net package doesn't expose it directly on all
// platforms, so this relies on the OS default (which on Linux already
// exceeds minListenBacklog for typical configurations) plus explicit
// per-connection tuning once accepted.
func New(host string, port int, p *pool.Pool, connCfg connio.Config) (*Loop, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Loop{listener: ln, pool: p, connCfg: connCfg, tuneCfg: sockettune.DefaultConfig()}, nil
}

// Run accepts connections until ctx is canceled or Stop is called.
// Submission to the pool never blocks: on a full queue, Run writes a
// minimal 503 directly to the socket and closes it rather than queueing
// an unbounded amount of pending work.
func (l *Loop) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.Stop()
	}()

	for {
		conn, err := l.listener.Accept()
		if err != nil {
			if l.stopped.Load() {
				return nil
			}
			return err
		}

		_ = sockettune.Apply(conn, l.tuneCfg)

		submitted := l.pool.TrySubmit(func() {
			connio.New(conn, l.connCfg).Serve()
		})
		if !submitted {
			if l.connCfg.Metrics != nil {
				l.connCfg.Metrics.PoolSubmissionRejected()
			}
			writeServiceUnavailable(conn)
			conn.Close()
		}
	}
}

// Stop closes the listening socket, causing Run's Accept to return
// immediately. It does not shut down the pool; callers shut the pool down
// separately so in-flight requests finish.
func (l *Loop) Stop() {
	if l.stopped.CompareAndSwap(false, true) {
		l.listener.Close()
	}
}

// Addr returns the bound address, useful in tests that bind to port 0.
func (l *Loop) Addr() net.Addr {
	return l.listener.Addr()
}

func writeServiceUnavailable(conn net.Conn) {
	_ = conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	w := bufio.NewWriter(conn)
	body := "Service Unavailable"
	w.WriteString("HTTP/1.1 503 Service Unavailable\r\n")
	w.WriteString("Content-Type: text/plain\r\n")
	w.WriteString("Content-Length: ")
	w.WriteString(strconv.Itoa(len(body)))
	w.WriteString("\r\n")
	w.WriteString("Connection: close\r\n")
	w.WriteString("Retry-After: 1\r\n")
	w.WriteString("\r\n")
	w.WriteString(body)
	_ = w.Flush()
}
