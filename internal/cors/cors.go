// Package cors adds optional Cross-Origin Resource Sharing headers to
// responses, off by default per spec.md's scope but available for the
// supplemented feature set in SPEC_FULL.md §8.
package cors

import (
	"strconv"
	"strings"

	"github.com/yourusername/originserver/internal/wire"
)

// Config controls which origins are allowed and what preflight responses
// advertise, in the same shape bolt's middleware.CORSConfig uses.
type Config struct {
	Enabled          bool
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int
}

// DefaultConfig returns CORS disabled; callers opt in explicitly.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"*"},
		MaxAge:       86400,
	}
}

// Handler applies cfg's headers to responses and answers preflight
// requests, precomputing the joined header values once at construction.
type Handler struct {
	cfg              Config
	allowAllOrigins  bool
	originSet        map[string]bool
	allowMethods     string
	allowHeaders     string
	exposeHeaders    string
	maxAge           string
	allowCredentials string
}

// New builds a Handler from cfg, applying the same defaults bolt's CORS
// middleware does when a field is left zero.
func New(cfg Config) *Handler {
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{"*"}
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 86400
	}

	h := &Handler{
		cfg:              cfg,
		allowMethods:     strings.Join(cfg.AllowMethods, ", "),
		allowHeaders:     strings.Join(cfg.AllowHeaders, ", "),
		exposeHeaders:    strings.Join(cfg.ExposeHeaders, ", "),
		maxAge:           strconv.Itoa(cfg.MaxAge),
		allowCredentials: strconv.FormatBool(cfg.AllowCredentials),
		originSet:        make(map[string]bool, len(cfg.AllowOrigins)),
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			h.allowAllOrigins = true
			break
		}
		h.originSet[o] = true
	}
	return h
}

// Apply adds CORS response headers for the given request Origin, and
// reports the Access-Control-Allow-Origin value actually granted (empty
// if none). Callers still answer preflight OPTIONS themselves; Apply only
// sets headers.
func (h *Handler) Apply(requestOrigin string, resp *wire.Response) string {
	if !h.cfg.Enabled {
		return ""
	}

	allowOrigin := ""
	switch {
	case h.allowAllOrigins:
		allowOrigin = "*"
	case requestOrigin != "" && h.originSet[requestOrigin]:
		allowOrigin = requestOrigin
	}
	if allowOrigin == "" {
		return ""
	}

	resp.Header.Set("Access-Control-Allow-Origin", allowOrigin)
	if h.cfg.AllowCredentials {
		resp.Header.Set("Access-Control-Allow-Credentials", h.allowCredentials)
	}
	if len(h.cfg.ExposeHeaders) > 0 {
		resp.Header.Set("Access-Control-Expose-Headers", h.exposeHeaders)
	}
	return allowOrigin
}

// ApplyPreflight adds the preflight-only headers (Allow-Methods,
// Allow-Headers, Max-Age) on top of whatever Apply already set. Callers
// invoke this only for OPTIONS requests that are CORS preflights (i.e.
// carry Access-Control-Request-Method), leaving the spec's plain
// "OPTIONS *" → 204 behavior untouched when CORS is disabled or the
// request isn't a preflight.
func (h *Handler) ApplyPreflight(resp *wire.Response) {
	if !h.cfg.Enabled {
		return
	}
	resp.Header.Set("Access-Control-Allow-Methods", h.allowMethods)
	resp.Header.Set("Access-Control-Allow-Headers", h.allowHeaders)
	resp.Header.Set("Access-Control-Max-Age", h.maxAge)
}

// Enabled reports whether CORS processing is active.
func (h *Handler) Enabled() bool {
	return h.cfg.Enabled
}
