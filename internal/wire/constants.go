// Package wire implements a manual HTTP/1.1 request parser and response
// serializer. No part of this package depends on net/http; every byte
// between socket and handler is parsed or produced here.
package wire

import "time"

const (
	// MaxRequestLineSize bounds "METHOD SP URI SP VERSION CRLF".
	MaxRequestLineSize = 8192

	// MaxHeaderName bounds a single header field name.
	MaxHeaderName = 256

	// ServerName is advertised in the Server response header.
	ServerName = "originserver/1.0"

	// KeepAliveTimeout is the advertised Keep-Alive "timeout" parameter.
	KeepAliveTimeout = 30 * time.Second

	// KeepAliveMaxRequests is the advertised Keep-Alive "max" parameter.
	KeepAliveMaxRequests = 100
)

var (
	crlf          = []byte("\r\n")
	headerSep     = []byte(": ")
	http11Bytes   = []byte("HTTP/1.1")
	http10Bytes   = []byte("HTTP/1.0")
	headersEnd    = []byte("\r\n\r\n")
)
