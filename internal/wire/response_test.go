package wire

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestNewResponseSetsDateAndServer(t *testing.T) {
	resp := NewResponse(StatusOK, "OK")
	if _, ok := resp.Header.Get("Date"); !ok {
		t.Errorf("Date header not set")
	}
	server, ok := resp.Header.Get("Server")
	if !ok || server != ServerName {
		t.Errorf("Server = %q, ok=%v, want %q", server, ok, ServerName)
	}
}

func TestSetBodySetsContentTypeAndLength(t *testing.T) {
	resp := NewResponse(StatusOK, "OK")
	resp.SetBody("text/plain", []byte("hello"))

	ct, _ := resp.Header.Get("Content-Type")
	if ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	cl, _ := resp.Header.Get("Content-Length")
	if cl != "5" {
		t.Errorf("Content-Length = %q, want 5", cl)
	}
}

func TestSetKeepAliveOn(t *testing.T) {
	resp := NewResponse(StatusOK, "OK")
	resp.SetKeepAlive(true)

	conn, _ := resp.Header.Get("Connection")
	if conn != "keep-alive" {
		t.Errorf("Connection = %q, want keep-alive", conn)
	}
	if ka, ok := resp.Header.Get("Keep-Alive"); !ok || !strings.Contains(ka, "timeout=") {
		t.Errorf("Keep-Alive = %q, ok=%v, want timeout= present", ka, ok)
	}
}

func TestSetKeepAliveOff(t *testing.T) {
	resp := NewResponse(StatusOK, "OK")
	resp.SetKeepAlive(false)

	conn, _ := resp.Header.Get("Connection")
	if conn != "close" {
		t.Errorf("Connection = %q, want close", conn)
	}
	if resp.Header.Has("Keep-Alive") {
		t.Errorf("Keep-Alive header should not be set when closing")
	}
}

func TestResponseWriteWireFormat(t *testing.T) {
	resp := &Response{StatusCode: StatusOK, Reason: "OK", Header: NewHeader()}
	resp.Header.Add("Content-Type", "text/plain")
	resp.Header.Add("Content-Length", "5")
	resp.Body = []byte("hello")

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := resp.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}

	const want = "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nhello"
	if got := buf.String(); got != want {
		t.Errorf("wire bytes = %q, want %q", got, want)
	}
}

func TestResponseWritePreservesHeaderOrder(t *testing.T) {
	resp := &Response{StatusCode: StatusOK, Reason: "OK", Header: NewHeader()}
	resp.Header.Add("X-First", "1")
	resp.Header.Add("X-Second", "2")
	resp.Header.Add("X-Third", "3")
	resp.Body = nil

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := resp.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}

	firstIdx := strings.Index(buf.String(), "X-First")
	secondIdx := strings.Index(buf.String(), "X-Second")
	thirdIdx := strings.Index(buf.String(), "X-Third")
	if !(firstIdx < secondIdx && secondIdx < thirdIdx) {
		t.Errorf("headers out of insertion order: %q", buf.String())
	}
}

func TestResponseWriteChunkedLargeBody(t *testing.T) {
	body := bytes.Repeat([]byte("a"), writeChunkSize*2+17)
	resp := &Response{StatusCode: StatusOK, Reason: "OK", Header: NewHeader(), Body: body}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := resp.Write(w); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), body) {
		t.Errorf("body not written in full")
	}
}

func TestReasonForKnownAndUnknown(t *testing.T) {
	if r := ReasonFor(StatusNotFound); r != "Not Found" {
		t.Errorf("ReasonFor(404) = %q, want Not Found", r)
	}
	if r := ReasonFor(999); r != "Unknown" {
		t.Errorf("ReasonFor(999) = %q, want Unknown", r)
	}
}
