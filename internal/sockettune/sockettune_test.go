package sockettune

import (
	"net"
	"testing"
)

func TestApplyOnNonTCPConnIsNoop(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	if err := Apply(client, DefaultConfig()); err != nil {
		t.Errorf("Apply on net.Pipe conn returned %v, want nil", err)
	}
}

func TestApplyOnTCPConn(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer ln.Close()

	acceptErr := make(chan error, 1)
	var serverConn net.Conn
	go func() {
		c, err := ln.Accept()
		serverConn = c
		acceptErr <- err
	}()

	clientConn, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer clientConn.Close()

	if err := <-acceptErr; err != nil {
		t.Fatalf("Accept: %v", err)
	}
	defer serverConn.Close()

	if err := Apply(serverConn, DefaultConfig()); err != nil {
		t.Errorf("Apply on TCP conn returned %v, want nil", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.NoDelay || !cfg.KeepAlive || !cfg.QuickAck {
		t.Errorf("DefaultConfig = %+v, want NoDelay/KeepAlive/QuickAck all true", cfg)
	}
	if cfg.RecvBuffer <= 0 || cfg.SendBuffer <= 0 {
		t.Errorf("DefaultConfig buffer sizes not positive: %+v", cfg)
	}
}
