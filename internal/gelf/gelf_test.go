package gelf

import (
	"encoding/json"
	"net"
	"testing"
	"time"
)

func TestMessage(t *testing.T) {
	w := &Writer{hostname: "h", service: "qrform"}
	now := time.Unix(1700000000, 0)

	tests := []struct {
		line      string
		wantShort string
		wantLevel int
	}{
		{"2026/02/19 18:43:52 server starting\n", "server starting", 6},
		{"2026/02/19 18:43:52 Warning: corrupt store\n", "Warning: corrupt store", 4},
		{"2026/02/19 18:43:52 Error saving submissions: x\n", "Error saving submissions: x", 3},
		{"PANIC: boom\nstack", "PANIC: boom", 3},
		{"short", "short", 6},
	}
	for _, tt := range tests {
		msg := w.message(tt.line, now)
		if msg["short_message"] != tt.wantShort {
			t.Errorf("%q: short_message = %q, want %q", tt.line, msg["short_message"], tt.wantShort)
		}
		if msg["level"] != tt.wantLevel {
			t.Errorf("%q: level = %v, want %d", tt.line, msg["level"], tt.wantLevel)
		}
		if msg["_service"] != "qrform" {
			t.Errorf("missing service tag")
		}
	}
	if full := w.message("PANIC: boom\nstack", now)["full_message"]; full != "stack" {
		t.Errorf("full_message = %v", full)
	}
}

func TestWriteSendsUDP(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer pc.Close()

	w, err := New(pc.LocalAddr().String(), "qrform")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()

	line := []byte("2026/02/19 18:43:52 hello\n")
	if n, err := w.Write(line); err != nil || n != len(line) {
		t.Fatalf("write: n=%d err=%v", n, err)
	}

	buf := make([]byte, 2048)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(buf[:n], &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["short_message"] != "hello" || got["version"] != "1.1" {
		t.Fatalf("unexpected message %v", got)
	}
}
