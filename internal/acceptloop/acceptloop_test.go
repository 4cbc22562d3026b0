package acceptloop

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/originserver/internal/connio"
	"github.com/yourusername/originserver/internal/dispatch"
	"github.com/yourusername/originserver/internal/logging"
	"github.com/yourusername/originserver/internal/pool"
)

type nullRecorder struct{}

func (nullRecorder) RequestCompleted(status int, d time.Duration, bytes int) {}
func (nullRecorder) AdmissionRejected(reason string)                        {}
func (nullRecorder) PoolSubmissionRejected()                                {}
func (nullRecorder) SetPoolQueueDepth(n int64)                              {}
func (nullRecorder) SetPoolActiveWorkers(n int64)                           {}

func testConnCfg(t *testing.T) connio.Config {
	t.Helper()
	resources := t.TempDir()
	return connio.Config{
		ServerHost:         "127.0.0.1",
		MaxHeaderBytes:     8192,
		MaxBodyBytes:       1 << 20,
		MaxURILength:       2048,
		IdleTimeout:        2 * time.Second,
		MaxRequestsPerConn: 100,
		Dispatcher:         dispatch.New(resources, resources, 10<<20),
		Logger:             logging.New(logging.Config{}, 10),
		Metrics:            nullRecorder{},
	}
}

func TestRunAcceptsAndServesConnection(t *testing.T) {
	connCfg := testConnCfg(t)
	p := pool.New(pool.Config{Workers: 2, QueueCap: 2})
	defer p.Shutdown()

	loop, err := New("127.0.0.1", 0, p, connCfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)
	defer loop.Stop()

	conn, err := net.Dial("tcp", loop.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.Write([]byte("GET / HTTP/1.1\r\nHost: 127.0.0.1\r\nConnection: close\r\n\r\n"))
	status, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if !strings.HasPrefix(status, "HTTP/1.1 ") {
		t.Errorf("status line = %q", status)
	}
}

func TestRunReturns503WhenPoolSaturated(t *testing.T) {
	connCfg := testConnCfg(t)
	// Single worker, no queue slack: occupy the worker below, so the next
	// accepted connection's TrySubmit fails immediately.
	p := pool.New(pool.Config{Workers: 1, QueueCap: 0})
	defer p.Shutdown()

	block := make(chan struct{})
	defer close(block)
	if !p.TrySubmit(func() { <-block }) {
		t.Fatalf("TrySubmit of blocking occupant task failed")
	}

	loop, err := New("127.0.0.1", 0, p, connCfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)
	defer loop.Stop()

	conn, err := net.Dial("tcp", loop.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	status, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if !strings.HasPrefix(status, "HTTP/1.1 503") {
		t.Errorf("status line = %q, want 503", status)
	}
}

func TestStopClosesListener(t *testing.T) {
	connCfg := testConnCfg(t)
	p := pool.New(pool.Config{Workers: 1, QueueCap: 1})
	defer p.Shutdown()

	loop, err := New("127.0.0.1", 0, p, connCfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(context.Background()) }()

	loop.Stop()

	if err := <-errCh; err != nil {
		t.Errorf("Run() after Stop() = %v, want nil", err)
	}
}
