package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// uploadResult is the JSON body returned on a successful upload, per
// spec.md §6.
type uploadResult struct {
	Status     string `json:"status"`
	Filepath   string `json:"filepath"`
	Size       int    `json:"size"`
	ReceivedAt string `json:"received_at"`
}

// ErrNotJSON covers a Content-Type other than application/json on
// POST /upload, mapped to 415.
var ErrNotJSON = fmt.Errorf("dispatch: upload content-type is not application/json")

// ErrMalformedJSON covers a body that fails strict JSON parsing, mapped
// to 400.
var ErrMalformedJSON = fmt.Errorf("dispatch: upload body is not valid JSON")

// handleUpload implements POST /upload: strict JSON parse, re-serialize,
// atomic temp-file-plus-rename write under uploadsDir, named
// upload_<UTC-timestamp>_<8-char-random>.json.
func handleUpload(contentType string, body []byte, uploadsDir string) (*uploadResult, error) {
	if !isJSONContentType(contentType) {
		return nil, ErrNotJSON
	}

	var decoded any
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&decoded); err != nil {
		return nil, ErrMalformedJSON
	}
	// A strict parse admits exactly one JSON value; trailing non-whitespace
	// bytes (e.g. "{}{}" or "{} garbage") are a second token and rejected.
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrMalformedJSON
	}

	reserialized, err := json.Marshal(decoded)
	if err != nil {
		return nil, ErrMalformedJSON
	}

	name := uploadFilename(time.Now().UTC())
	finalPath := filepath.Join(uploadsDir, name)

	if err := writeFileAtomic(finalPath, reserialized); err != nil {
		return nil, err
	}

	return &uploadResult{
		Status:     "created",
		Filepath:   "/uploads/" + name,
		Size:       len(reserialized),
		ReceivedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func isJSONContentType(contentType string) bool {
	base := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	return strings.EqualFold(base, "application/json")
}

// uploadFilename builds upload_<UTC-timestamp>_<8-char-random>.json, e.g.
// upload_20260803T142530Z_a1b2c3d4.json.
func uploadFilename(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("upload_%sZ_%s.json", t.Format("20060102T150405"), suffix)
}

// writeFileAtomic writes data to a temp file in the same directory as
// path, then renames it into place, so the file at path is never observed
// partially written.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".upload-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
