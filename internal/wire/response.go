package wire

import (
	"bufio"
	"strconv"
	"time"
)

// Response is a status line, an ordered header set, and a body. Dispatchers
// build one of these; Write serializes it to the wire exactly as built —
// nothing here second-guesses Content-Length or Connection, so callers
// (internal/connio) are responsible for setting both before Write.
type Response struct {
	StatusCode int
	Reason     string
	Header     *Header
	Body       []byte
}

// NewResponse returns a Response with the mandatory Date and Server headers
// already set, per spec.md §4.6.
func NewResponse(statusCode int, reason string) *Response {
	r := &Response{StatusCode: statusCode, Reason: reason, Header: NewHeader()}
	r.Header.Set("Date", time.Now().UTC().Format(time.RFC1123))
	r.Header.Set("Server", ServerName)
	return r
}

// SetBody sets the body and its Content-Length header together, so the two
// can never drift apart.
func (r *Response) SetBody(contentType string, body []byte) {
	r.Body = body
	r.Header.Set("Content-Type", contentType)
	r.Header.Set("Content-Length", strconv.Itoa(len(body)))
}

// SetKeepAlive writes the Connection and (when keeping the connection open)
// Keep-Alive headers that spec.md §4.3/§4.6 require on every response.
func (r *Response) SetKeepAlive(keepAlive bool) {
	if keepAlive {
		r.Header.Set("Connection", "keep-alive")
		r.Header.Set("Keep-Alive",
			"timeout="+strconv.Itoa(int(KeepAliveTimeout.Seconds()))+", max="+strconv.Itoa(KeepAliveMaxRequests))
		return
	}
	r.Header.Set("Connection", "close")
}

// writeChunkSize is the write-side transmission unit spec.md §4.6 calls
// for: bodies are not built as one giant buffered write, they are flushed
// in bounded chunks so a slow client can't force an unbounded server-side
// buffer.
const writeChunkSize = 8192

// Write serializes the status line, headers, and body to w in wire order
// and flushes. Headers are emitted in VisitAll (insertion) order.
func (r *Response) Write(w *bufio.Writer) error {
	if _, err := w.WriteString(statusLine(r.StatusCode, r.Reason)); err != nil {
		return err
	}

	var writeErr error
	r.Header.VisitAll(func(name, value string) {
		if writeErr != nil {
			return
		}
		if _, err := w.WriteString(name); err != nil {
			writeErr = err
			return
		}
		if _, err := w.Write(headerSep); err != nil {
			writeErr = err
			return
		}
		if _, err := w.WriteString(value); err != nil {
			writeErr = err
			return
		}
		if _, err := w.Write(crlf); err != nil {
			writeErr = err
		}
	})
	if writeErr != nil {
		return writeErr
	}
	if _, err := w.Write(crlf); err != nil {
		return err
	}

	for off := 0; off < len(r.Body); off += writeChunkSize {
		end := off + writeChunkSize
		if end > len(r.Body) {
			end = len(r.Body)
		}
		if _, err := w.Write(r.Body[off:end]); err != nil {
			return err
		}
	}

	return w.Flush()
}

func statusLine(code int, reason string) string {
	return "HTTP/1.1 " + strconv.Itoa(code) + " " + reason + "\r\n"
}

// Known status reasons, used by dispatch and admission so call sites don't
// repeat magic strings.
const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusNoContent           = 204
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusRequestTimeout      = 408
	StatusPayloadTooLarge     = 413
	StatusURITooLong          = 414
	StatusUnsupportedMediaType = 415
	StatusHeaderFieldsTooLarge = 431
	StatusInternalServerError = 500
	StatusNotImplemented      = 501
	StatusServiceUnavailable  = 503
	StatusVersionNotSupported = 505
)

var reasonPhrases = map[int]string{
	StatusOK:                   "OK",
	StatusCreated:              "Created",
	StatusNoContent:            "No Content",
	StatusBadRequest:           "Bad Request",
	StatusForbidden:            "Forbidden",
	StatusNotFound:             "Not Found",
	StatusMethodNotAllowed:     "Method Not Allowed",
	StatusRequestTimeout:       "Request Timeout",
	StatusPayloadTooLarge:      "Payload Too Large",
	StatusURITooLong:           "URI Too Long",
	StatusUnsupportedMediaType: "Unsupported Media Type",
	StatusHeaderFieldsTooLarge: "Request Header Fields Too Large",
	StatusInternalServerError:  "Internal Server Error",
	StatusNotImplemented:       "Not Implemented",
	StatusServiceUnavailable:   "Service Unavailable",
	StatusVersionNotSupported:  "HTTP Version Not Supported",
}

// ReasonFor returns the standard reason phrase for code, or "Unknown" if
// code isn't one this server ever emits.
func ReasonFor(code int) string {
	if r, ok := reasonPhrases[code]; ok {
		return r
	}
	return "Unknown"
}
