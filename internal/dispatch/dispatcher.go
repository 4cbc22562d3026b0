// Package dispatch implements the request dispatcher's method matrix:
// GET static file serving, POST /upload JSON ingestion, OPTIONS, and the
// catch-all 404/405 responses, per spec.md §4.8.
package dispatch

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/originserver/internal/security"
	"github.com/yourusername/originserver/internal/wire"
)

// maxFileReadChunk is the chunked-read unit spec.md §4.8 specifies for
// accumulating a GET response body.
const maxFileReadChunk = 8192

// Dispatcher routes an admitted Request to its response, consulting the
// filesystem only through security.ResolvePath.
type Dispatcher struct {
	ResourcesDir     string
	UploadsDir       string
	MaxFileReadBytes int64
}

// New returns a Dispatcher rooted at resourcesDir, with uploadsDir as the
// only writable subtree.
func New(resourcesDir, uploadsDir string, maxFileReadBytes int64) *Dispatcher {
	return &Dispatcher{
		ResourcesDir:     resourcesDir,
		UploadsDir:       uploadsDir,
		MaxFileReadBytes: maxFileReadBytes,
	}
}

// Dispatch builds the Response for req. It never returns an error: every
// failure mode (traversal, missing file, bad upload) is represented as a
// Response with the appropriate status code. violation is non-empty when
// the caller should emit a security-violation log event, naming the
// reason.
func (d *Dispatcher) Dispatch(req *wire.Request) (resp *wire.Response, violation string) {
	switch req.Method {
	case wire.MethodGET:
		return d.dispatchGET(req)
	case wire.MethodPOST:
		return d.dispatchPOST(req)
	case wire.MethodOPTIONS:
		return d.dispatchOPTIONS(req), ""
	default:
		return methodNotAllowed(), ""
	}
}

func (d *Dispatcher) dispatchGET(req *wire.Request) (*wire.Response, string) {
	path := req.Path
	if path == "/" {
		path = "/index.html"
	}

	resolved, err := security.ResolvePath(path, d.ResourcesDir)
	if err != nil {
		return errorResponse(wire.StatusForbidden, "path resolution denied"), "path traversal attempt: " + req.Path
	}

	ext := filepath.Ext(resolved)
	contentType, attachment, known := contentTypeFor(ext)
	if !known {
		return errorResponse(wire.StatusUnsupportedMediaType, "unsupported file type"), ""
	}

	body, err := readFileBounded(resolved, d.MaxFileReadBytes)
	if os.IsNotExist(err) {
		return errorResponse(wire.StatusNotFound, "resource not found"), ""
	}
	if err != nil {
		return errorResponse(wire.StatusInternalServerError, "failed to read resource"), ""
	}

	resp := wire.NewResponse(wire.StatusOK, wire.ReasonFor(wire.StatusOK))
	resp.SetBody(contentType, body)
	if attachment {
		resp.Header.Set("Content-Disposition", `attachment; filename="`+filepath.Base(resolved)+`"`)
	}
	return resp, ""
}

func (d *Dispatcher) dispatchPOST(req *wire.Request) (*wire.Response, string) {
	if req.Path != "/upload" {
		return errorResponse(wire.StatusNotFound, "no such resource"), ""
	}

	contentType, _ := req.Header.Get("Content-Type")
	result, err := handleUpload(contentType, req.Body, d.UploadsDir)
	switch err {
	case nil:
		body, _ := json.Marshal(result)
		resp := wire.NewResponse(wire.StatusCreated, wire.ReasonFor(wire.StatusCreated))
		resp.SetBody("application/json; charset=utf-8", body)
		return resp, ""
	case ErrNotJSON:
		return errorResponse(wire.StatusUnsupportedMediaType, "expected application/json"), ""
	case ErrMalformedJSON:
		return errorResponse(wire.StatusBadRequest, "malformed JSON body"), ""
	default:
		return errorResponse(wire.StatusInternalServerError, "failed to store upload"), ""
	}
}

func (d *Dispatcher) dispatchOPTIONS(req *wire.Request) *wire.Response {
	resp := wire.NewResponse(wire.StatusNoContent, wire.ReasonFor(wire.StatusNoContent))
	resp.Header.Set("Allow", "GET, POST, OPTIONS")
	resp.Header.Set("Content-Length", "0")
	return resp
}

func methodNotAllowed() *wire.Response {
	resp := errorResponse(wire.StatusMethodNotAllowed, "method not allowed")
	resp.Header.Set("Allow", "GET, POST, OPTIONS")
	return resp
}

// errorResponse builds a plain-text error body per spec.md §6's format.
func errorResponse(status int, diagnostic string) *wire.Response {
	resp := wire.NewResponse(status, wire.ReasonFor(status))
	resp.SetBody("text/plain; charset=utf-8", []byte(wire.ReasonFor(status)+": "+diagnostic+"\n"))
	return resp
}

// readFileBounded reads f in maxFileReadChunk chunks up to maxBytes. A
// file larger than maxBytes is a hard error (SPEC_FULL.md §4's resolution
// of spec.md's Open Question 3), not a silent truncation.
func readFileBounded(path string, maxBytes int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, os.ErrNotExist
	}

	buf := make([]byte, 0, minInt64(info.Size(), maxBytes)+1)
	chunk := make([]byte, maxFileReadChunk)
	var total int64
	for {
		n, err := f.Read(chunk)
		if n > 0 {
			total += int64(n)
			if total > maxBytes {
				return nil, errFileTooLarge(path, maxBytes)
			}
			buf = append(buf, chunk[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

type fileTooLargeError struct {
	path     string
	maxBytes int64
}

func (e *fileTooLargeError) Error() string {
	return "dispatch: " + e.path + " exceeds " + strconv.FormatInt(e.maxBytes, 10) + " byte read cap"
}

func errFileTooLarge(path string, maxBytes int64) error {
	return &fileTooLargeError{path: path, maxBytes: maxBytes}
}
