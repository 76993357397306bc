package gelf

import (
	"encoding/json"
	"net"
	"os"
	"strings"
	"time"
)

// Writer sends each log line as a GELF 1.1 message over UDP. It implements
// io.Writer so it can sit next to stderr in an io.MultiWriter.
type Writer struct {
	conn     net.Conn
	hostname string
	service  string
}

// New dials addr (e.g. "172.17.0.1:12201"). UDP dialing does not contact
// the peer, so errors here are address errors only.
func New(addr, service string) (*Writer, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = service + "-server"
	}
	return &Writer{conn: conn, hostname: hostname, service: service}, nil
}

// Write never fails the log call; delivery is fire-and-forget.
func (w *Writer) Write(p []byte) (int, error) {
	payload, err := json.Marshal(w.message(string(p), time.Now()))
	if err != nil {
		return len(p), nil
	}
	w.conn.Write(payload)
	return len(p), nil
}

func (w *Writer) Close() error {
	return w.conn.Close()
}

func (w *Writer) message(line string, now time.Time) map[string]any {
	short, full := stripLogPrefix(strings.TrimRight(line, "\n")), ""
	if first, rest, ok := strings.Cut(short, "\n"); ok {
		short, full = first, rest
	}
	msg := map[string]any{
		"version":       "1.1",
		"host":          w.hostname,
		"short_message": short,
		"timestamp":     float64(now.UnixNano()) / 1e9,
		"level":         level(short),
		"_service":      w.service,
	}
	if full != "" {
		msg["full_message"] = full
	}
	return msg
}

// stripLogPrefix drops the std logger's "2006/01/02 15:04:05 " prefix.
func stripLogPrefix(msg string) string {
	if len(msg) > 20 && msg[4] == '/' && msg[7] == '/' && msg[10] == ' ' && msg[13] == ':' {
		return msg[20:]
	}
	return msg
}

// level maps message prefixes to syslog severities.
func level(short string) int {
	switch {
	case strings.Contains(short, "PANIC:"), strings.Contains(short, "Fatal"), strings.HasPrefix(short, "Error"):
		return 3
	case strings.HasPrefix(short, "Warning:"):
		return 4
	}
	return 6
}
