package dispatch

import "strings"

// contentTypeEntry pairs a GET response's Content-Type with its
// disposition, per spec.md §4.8's table.
type contentTypeEntry struct {
	contentType string
	attachment  bool
}

var contentTypesByExt = map[string]contentTypeEntry{
	".html": {"text/html; charset=utf-8", false},
	".json": {"application/json; charset=utf-8", false},
	".png":  {"application/octet-stream", true},
	".jpg":  {"application/octet-stream", true},
	".jpeg": {"application/octet-stream", true},
	".gif":  {"application/octet-stream", true},
	".txt":  {"application/octet-stream", true},
	".pdf":  {"application/pdf", false},
}

// contentTypeFor returns the Content-Type and whether the response should
// carry Content-Disposition: attachment for ext (including the leading
// dot), and whether ext is known at all.
func contentTypeFor(ext string) (contentType string, attachment bool, known bool) {
	entry, ok := contentTypesByExt[strings.ToLower(ext)]
	if !ok {
		return "", false, false
	}
	return entry.contentType, entry.attachment, true
}
