package wire

import "errors"

// Parse-time errors. The Connection Handler maps each to a status code;
// none of these leak past the handler as a raw error string to the client.
var (
	// ErrBadRequestLine covers a malformed "METHOD URI VERSION" line.
	ErrBadRequestLine = errors.New("wire: malformed request line")

	// ErrRequestLineTooLarge covers a request line over MaxRequestLineSize.
	ErrRequestLineTooLarge = errors.New("wire: request line too large")

	// ErrURITooLong covers a target over the configured Umax.
	ErrURITooLong = errors.New("wire: request target too long")

	// ErrUnsupportedVersion covers anything but HTTP/1.<digit>.
	ErrUnsupportedVersion = errors.New("wire: unsupported HTTP version")

	// ErrBadHeader covers a header line that isn't "name: value".
	ErrBadHeader = errors.New("wire: malformed header line")

	// ErrHeadersTooLarge covers a header block over the configured Hmax
	// before the terminating blank line was found.
	ErrHeadersTooLarge = errors.New("wire: header block too large")

	// ErrBadContentLength covers a Content-Length that isn't a bare
	// non-negative decimal integer (no sign, no leading zeros, no spaces).
	ErrBadContentLength = errors.New("wire: invalid Content-Length")

	// ErrSmuggling covers Transfer-Encoding combined with Content-Length,
	// or duplicate Content-Length headers with conflicting values.
	ErrSmuggling = errors.New("wire: conflicting framing headers")

	// ErrChunkedUnsupported covers any Transfer-Encoding other than identity.
	ErrChunkedUnsupported = errors.New("wire: chunked transfer encoding not supported")

	// ErrUnexpectedEOF covers a connection closed mid-header-block or
	// mid-body.
	ErrUnexpectedEOF = errors.New("wire: unexpected EOF")

	// ErrBodyTooLarge covers a body over the configured Bmax.
	ErrBodyTooLarge = errors.New("wire: body too large")
)
