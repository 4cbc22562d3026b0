package wire

import (
	"bufio"
	"strconv"
	"strings"
)

// ReadHeaderBlock reads from br until it observes the "\r\n\r\n" terminator,
// returning the bytes up to and including that terminator. It enforces
// maxBytes *before* the terminator is found, matching spec.md §4.3's rule
// that an oversized header block is a 400 regardless of what eventually
// follows.
//
// io.EOF with zero bytes read is reported as ErrUnexpectedEOF; a partial
// block (some bytes, then EOF) is also ErrUnexpectedEOF, since there is no
// well-formed request to recover.
func ReadHeaderBlock(br *bufio.Reader, maxBytes int) ([]byte, error) {
	var buf []byte
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			buf = append(buf, line...)
			if len(buf) > maxBytes {
				return nil, ErrHeadersTooLarge
			}
			if hasHeaderTerminator(buf) {
				return buf, nil
			}
		}
		if err != nil {
			return nil, ErrUnexpectedEOF
		}
	}
}

func hasHeaderTerminator(buf []byte) bool {
	n := len(buf)
	return n >= 4 && buf[n-4] == '\r' && buf[n-3] == '\n' && buf[n-2] == '\r' && buf[n-1] == '\n'
}

// ParseHeaderBlock parses a request line plus header fields out of block
// (as produced by ReadHeaderBlock, terminator included). It does not read
// the body; callers use the returned Request.ContentLength to size a
// subsequent body read.
func ParseHeaderBlock(block []byte, maxURILen int) (*Request, error) {
	text := string(block)
	lineEnd := strings.Index(text, "\r\n")
	if lineEnd < 0 {
		return nil, ErrBadRequestLine
	}
	if lineEnd > MaxRequestLineSize {
		return nil, ErrRequestLineTooLarge
	}

	req, err := parseRequestLine(text[:lineEnd], maxURILen)
	if err != nil {
		return nil, err
	}

	rest := text[lineEnd+2:]
	headerEnd := strings.Index(rest, "\r\n\r\n")
	if headerEnd < 0 {
		return nil, ErrBadRequestLine
	}

	h := NewHeader()
	req.Header = h
	var hasCL, hasTE bool
	var clValue int64 = -1

	for _, line := range strings.Split(rest[:headerEnd], "\r\n") {
		if line == "" {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return nil, ErrBadHeader
		}
		name := line[:colon]
		if len(name) > MaxHeaderName || strings.ContainsAny(name, " \t") {
			return nil, ErrBadHeader
		}
		value := strings.Trim(line[colon+1:], " \t")
		if err := h.Add(name, value); err != nil {
			return nil, err
		}

		switch {
		case equalFold(name, "Content-Length"):
			n, perr := parseContentLength(value)
			if perr != nil {
				return nil, perr
			}
			if hasCL && n != clValue {
				return nil, ErrSmuggling
			}
			hasCL, clValue = true, n
		case equalFold(name, "Transfer-Encoding"):
			hasTE = true
			if !equalFold(strings.TrimSpace(value), "identity") {
				return nil, ErrChunkedUnsupported
			}
		case equalFold(name, "Connection"):
			for _, tok := range splitComma(value) {
				if equalFold(tok, "close") {
					req.Close = true
				}
			}
		}
	}

	if hasCL && hasTE {
		return nil, ErrSmuggling
	}
	if h.Count("Host") > 1 {
		return nil, ErrBadHeader
	}

	req.ContentLength = -1
	if hasCL {
		req.ContentLength = clValue
	} else if req.Method == MethodPOST {
		req.ContentLength = 0
	}

	return req, nil
}

func parseRequestLine(line string, maxURILen int) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, ErrBadRequestLine
	}
	method, target, version := parts[0], parts[1], parts[2]

	if method == "" || !isAllLetters(method) {
		return nil, ErrBadRequestLine
	}
	if len(target) == 0 || (target[0] != '/' && target[0] != '*') {
		return nil, ErrBadRequestLine
	}
	if len(target) > maxURILen {
		return nil, ErrURITooLong
	}

	major, minor, err := parseVersion(version)
	if err != nil {
		return nil, err
	}

	path, query := target, ""
	if idx := strings.IndexByte(target, '?'); idx >= 0 {
		path, query = target[:idx], target[idx+1:]
	}

	m := Method(method)
	if m != MethodGET && m != MethodPOST && m != MethodOPTIONS {
		m = MethodUnknown
	}

	return &Request{
		Method:     m,
		RawMethod:  method,
		Target:     target,
		Path:       path,
		RawQuery:   query,
		ProtoMajor: major,
		ProtoMinor: minor,
	}, nil
}

func isAllLetters(s string) bool {
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

func parseVersion(v string) (int, int, error) {
	if len(v) != 8 || !strings.HasPrefix(v, "HTTP/") || v[6] != '.' {
		return 0, 0, ErrUnsupportedVersion
	}
	major, minor := v[5], v[7]
	if major < '0' || major > '9' || minor < '0' || minor > '9' {
		return 0, 0, ErrUnsupportedVersion
	}
	if major != '1' {
		return 0, 0, ErrUnsupportedVersion
	}
	return int(major - '0'), int(minor - '0'), nil
}

// parseContentLength enforces spec.md §4.4: a bare non-negative decimal
// integer, no sign, no leading zeros beyond a single "0", no spaces.
func parseContentLength(v string) (int64, error) {
	if v == "" {
		return 0, ErrBadContentLength
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return 0, ErrBadContentLength
		}
	}
	if len(v) > 1 && v[0] == '0' {
		return 0, ErrBadContentLength
	}
	n, err := strconv.ParseInt(v, 10, 63)
	if err != nil || n < 0 {
		return 0, ErrBadContentLength
	}
	return n, nil
}
