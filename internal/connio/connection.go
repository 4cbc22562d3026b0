// Package connio implements the per-connection state machine that drives
// one TCP connection through IDLE → READING_HEADERS → READING_BODY →
// DISPATCHING → WRITING → DECIDING → (IDLE | CLOSED), applying the
// admission layer (size caps, Host validation, rate limiting) ahead of
// the dispatcher on every request.
package connio

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"

	"github.com/yourusername/originserver/internal/cors"
	"github.com/yourusername/originserver/internal/dispatch"
	"github.com/yourusername/originserver/internal/logging"
	"github.com/yourusername/originserver/internal/metrics"
	"github.com/yourusername/originserver/internal/ratelimit"
	"github.com/yourusername/originserver/internal/security"
	"github.com/yourusername/originserver/internal/wire"
)

// State names the Connection Handler's position in its request loop.
type State int

const (
	StateIdle State = iota
	StateReadingHeaders
	StateReadingBody
	StateDispatching
	StateWriting
	StateDeciding
	StateClosed
)

// Config carries every admission and framing limit the connection loop
// enforces, plus the collaborators (dispatcher, rate limiter, logger,
// metrics, CORS) it calls without holding any lock across their I/O.
type Config struct {
	ServerHost string
	ServerPort int

	MaxHeaderBytes     int
	MaxBodyBytes       int64
	MaxURILength       int
	IdleTimeout        time.Duration
	MaxRequestsPerConn int

	Dispatcher  *dispatch.Dispatcher
	RateLimiter *ratelimit.Limiter // nil disables rate limiting
	Logger      *logging.Logger
	Metrics     metrics.Recorder
	CORS        *cors.Handler
}

// Connection owns one accepted net.Conn for its entire lifetime.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	cfg    Config

	state        State
	requestCount int
	clientAddr   string
}

// New wraps conn for a single Serve call.
func New(conn net.Conn, cfg Config) *Connection {
	return &Connection{
		conn:       conn,
		reader:     bufio.NewReaderSize(conn, 4096),
		writer:     bufio.NewWriterSize(conn, 4096),
		cfg:        cfg,
		state:      StateIdle,
		clientAddr: conn.RemoteAddr().String(),
	}
}

// Serve runs the request loop until the connection closes, either because
// the client or server decided not to keep it alive, or because of a
// framing error. It always closes conn before returning.
func (c *Connection) Serve() {
	defer c.conn.Close()

	for {
		c.state = StateIdle
		if c.cfg.IdleTimeout > 0 {
			_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.IdleTimeout))
		}

		start := time.Now()
		c.state = StateReadingHeaders
		block, err := wire.ReadHeaderBlock(c.reader, c.cfg.MaxHeaderBytes)
		if err != nil {
			if isCleanClose(err) {
				return
			}
			c.writeErrorAndClose(statusForParseError(err), err)
			return
		}

		req, err := wire.ParseHeaderBlock(block, c.cfg.MaxURILength)
		if err != nil {
			c.writeErrorAndClose(statusForParseError(err), err)
			return
		}

		if req.ContentLength > 0 {
			c.state = StateReadingBody
			if req.ContentLength > c.cfg.MaxBodyBytes {
				c.writeErrorAndClose(wire.StatusBadRequest, wire.ErrBodyTooLarge)
				return
			}
			body := make([]byte, req.ContentLength)
			if _, err := io.ReadFull(c.reader, body); err != nil {
				c.writeErrorAndClose(wire.StatusBadRequest, wire.ErrUnexpectedEOF)
				return
			}
			req.Body = body
		}

		c.requestCount++
		resp := c.admitAndDispatch(req)

		willClose := c.decideKeepAlive(req, resp)
		resp.SetKeepAlive(!willClose)

		c.state = StateWriting
		if err := resp.Write(c.writer); err != nil {
			return
		}

		c.cfg.Metrics.RequestCompleted(resp.StatusCode, time.Since(start), len(resp.Body))
		c.cfg.Logger.LogRequest(logging.Entry{
			Method:     req.RawMethod,
			Path:       req.Path,
			Status:     resp.StatusCode,
			DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
			Bytes:      len(resp.Body),
			ClientAddr: c.clientAddr,
		})

		c.state = StateDeciding
		if willClose {
			return
		}
	}
}

// admitAndDispatch runs the Size (already enforced above) → Host → Rate
// admission checks, then hands the request to the dispatcher, which
// itself runs the Path Resolver for GET. Every rejection is a response,
// never a raw error.
func (c *Connection) admitAndDispatch(req *wire.Request) *wire.Response {
	host, _ := req.Header.Get("Host")
	if err := security.ValidateHost(host, c.cfg.ServerHost, c.cfg.ServerPort); err != nil {
		c.cfg.Metrics.AdmissionRejected("host")
		c.logViolation(req, "Host header rejected: "+err.Error())
		if errors.Is(err, security.ErrHostMissing) {
			return textError(wire.StatusBadRequest, "missing Host header")
		}
		return textError(wire.StatusForbidden, "Host header not allowed")
	}

	if c.cfg.RateLimiter != nil {
		ip, _, _ := net.SplitHostPort(c.clientAddr)
		if ip == "" {
			ip = c.clientAddr
		}
		if ok, reason := c.cfg.RateLimiter.IsAllowed(ip); !ok {
			c.cfg.Metrics.AdmissionRejected("rate_limit")
			c.logViolation(req, "rate limited: "+reason)
			return textError(wire.StatusForbidden, reason)
		}
	}

	c.state = StateDispatching
	resp, violation := c.cfg.Dispatcher.Dispatch(req)
	if violation != "" {
		c.cfg.Metrics.AdmissionRejected("path")
		c.logViolation(req, violation)
	}

	if c.cfg.CORS != nil && c.cfg.CORS.Enabled() {
		origin, _ := req.Header.Get("Origin")
		c.cfg.CORS.Apply(origin, resp)
		if req.Method == wire.MethodOPTIONS {
			if _, isPreflight := req.Header.Get("Access-Control-Request-Method"); isPreflight {
				c.cfg.CORS.ApplyPreflight(resp)
			}
		}
	}

	return resp
}

func (c *Connection) logViolation(req *wire.Request, reason string) {
	requestLine := req.RawMethod + " " + req.Target + " HTTP/1.1"
	c.cfg.Logger.LogSecurityViolation(c.clientAddr, requestLine, reason)
}

// decideKeepAlive applies spec.md §4.3's close conditions: explicit
// Connection: close, HTTP/1.0 without keep-alive, the connection's
// request budget exhausted, or a 5xx response. It returns true when the
// connection should close.
func (c *Connection) decideKeepAlive(req *wire.Request, resp *wire.Response) bool {
	if !req.WantsKeepAlive() {
		return true
	}
	if c.cfg.MaxRequestsPerConn > 0 && c.requestCount >= c.cfg.MaxRequestsPerConn {
		return true
	}
	if resp.StatusCode >= 500 {
		return true
	}
	return false
}

func (c *Connection) writeErrorAndClose(status int, cause error) {
	resp := textError(status, cause.Error())
	resp.SetKeepAlive(false)
	_ = resp.Write(c.writer)
	c.state = StateClosed
}

func textError(status int, diagnostic string) *wire.Response {
	resp := wire.NewResponse(status, wire.ReasonFor(status))
	resp.SetBody("text/plain; charset=utf-8", []byte(wire.ReasonFor(status)+": "+diagnostic+"\n"))
	return resp
}

func isCleanClose(err error) bool {
	return errors.Is(err, wire.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

func statusForParseError(err error) int {
	switch {
	case errors.Is(err, wire.ErrURITooLong):
		return wire.StatusURITooLong
	case errors.Is(err, wire.ErrRequestLineTooLarge), errors.Is(err, wire.ErrHeadersTooLarge):
		return wire.StatusBadRequest
	case errors.Is(err, wire.ErrChunkedUnsupported):
		return wire.StatusBadRequest
	case errors.Is(err, wire.ErrBadContentLength), errors.Is(err, wire.ErrSmuggling):
		return wire.StatusBadRequest
	default:
		return wire.StatusBadRequest
	}
}
