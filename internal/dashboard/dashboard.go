// Package dashboard runs a peripheral net/http admin listener exposing
// Prometheus metrics and recent security events. It is explicitly not part
// of the hand-rolled core: spec.md carves observability endpoints out of
// the core's scope, and this is where SPEC_FULL.md gives them a concrete
// home, grounded on the original implementation's metrics_endpoint.py and
// security_dashboard.py.
package dashboard

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/originserver/internal/logging"
	"github.com/yourusername/originserver/internal/ratelimit"
)

// Server is the admin listener. It shares no state with the core's accept
// loop beyond read-only references to the logger and rate limiter.
type Server struct {
	addr    string
	logger  *logging.Logger
	limiter *ratelimit.Limiter
	http    *http.Server
}

// New returns a dashboard bound to addr (e.g. "127.0.0.1:9090"). Pass an
// empty addr to leave the dashboard disabled; Start is then a no-op.
func New(addr string, logger *logging.Logger, limiter *ratelimit.Limiter) *Server {
	s := &Server{addr: addr, logger: logger, limiter: limiter}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/security/events", s.handleSecurityEvents)
	mux.HandleFunc("/ratelimit/stats", s.handleRateLimitStats)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start runs the admin listener until ctx is canceled. A no-op if addr
// was empty.
func (s *Server) Start(ctx context.Context) error {
	if s.addr == "" {
		return nil
	}
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return s.http.Shutdown(context.Background())
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleSecurityEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.logger.SecurityEvents())
}

func (s *Server) handleRateLimitStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.limiter == nil {
		_ = json.NewEncoder(w).Encode(ratelimit.Stats{})
		return
	}
	_ = json.NewEncoder(w).Encode(s.limiter.Stats())
}
