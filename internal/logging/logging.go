// Package logging provides structured JSON request logging plus a
// dedicated security-violation sink, encoding each line with encoding/json
// onto an io.Writer.
package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Config controls where request and security logs go.
type Config struct {
	Output         io.Writer
	SecurityOutput io.Writer // DefaultConfig uses a "security.log" file; New falls back to stderr if nil
}

// DefaultConfig opens security.log in the current directory (append mode,
// created if absent) and writes request logs to stdout.
func DefaultConfig() Config {
	f, err := os.OpenFile("security.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Config{Output: os.Stdout, SecurityOutput: os.Stderr}
	}
	return Config{Output: os.Stdout, SecurityOutput: f}
}

// Entry is one structured request-completion log line.
type Entry struct {
	Time       string `json:"time"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	DurationMS float64 `json:"duration_ms"`
	Bytes      int    `json:"bytes"`
	ClientAddr string `json:"client_addr,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SecurityEvent is one admission-layer rejection, logged to both the
// structured sink and the dedicated security log, and retained in memory
// for the admin dashboard's /security/events endpoint.
type SecurityEvent struct {
	Time       string `json:"time"`
	ClientAddr string `json:"client_addr"`
	RequestLine string `json:"request_line"`
	Reason     string `json:"reason"`
}

// Logger writes structured request logs and security violations, and
// keeps the last maxEvents security events in memory.
type Logger struct {
	cfg       Config
	mu        sync.Mutex
	events    []SecurityEvent
	maxEvents int
}

// New returns a Logger retaining up to maxEvents security events for the
// dashboard; 0 uses a default of 200.
func New(cfg Config, maxEvents int) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	if cfg.SecurityOutput == nil {
		cfg.SecurityOutput = os.Stderr
	}
	if maxEvents <= 0 {
		maxEvents = 200
	}
	return &Logger{cfg: cfg, maxEvents: maxEvents}
}

// LogRequest writes one structured completion line.
func (l *Logger) LogRequest(e Entry) {
	if e.Time == "" {
		e.Time = time.Now().UTC().Format(time.RFC3339)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := json.NewEncoder(l.cfg.Output).Encode(e); err != nil {
		log.Printf("logging: failed to write request log: %v", err)
	}
}

// LogSecurityViolation records a security event to the dedicated sink,
// the structured request log, and the in-memory ring the dashboard reads.
func (l *Logger) LogSecurityViolation(clientAddr, requestLine, reason string) {
	ev := SecurityEvent{
		Time:        time.Now().UTC().Format(time.RFC3339),
		ClientAddr:  clientAddr,
		RequestLine: requestLine,
		Reason:      reason,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	line := "[" + ev.Time + "] SECURITY VIOLATION - " + clientAddr + " - " + requestLine + " - " + reason + "\n"
	if _, err := l.cfg.SecurityOutput.Write([]byte(line)); err != nil {
		log.Printf("logging: failed to write security log: %v", err)
	}
	if err := json.NewEncoder(l.cfg.Output).Encode(ev); err != nil {
		log.Printf("logging: failed to write security event: %v", err)
	}

	l.events = append(l.events, ev)
	if len(l.events) > l.maxEvents {
		l.events = l.events[len(l.events)-l.maxEvents:]
	}
}

// SecurityEvents returns a copy of the retained security events, most
// recent last.
func (l *Logger) SecurityEvents() []SecurityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SecurityEvent, len(l.events))
	copy(out, l.events)
	return out
}
