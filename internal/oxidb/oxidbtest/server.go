// Package oxidbtest runs an in-process stand-in for oxidb-server that
// speaks the same framing and the subset of commands the client uses.
package oxidbtest

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"sync"
	"testing"
)

// Server is an in-memory oxidb-server. Documents are held per collection.
type Server struct {
	Host string
	Port int

	ln     net.Listener
	mu     sync.Mutex
	colls  map[string][]map[string]any
	unique map[string][]string
	nextID int
	failOn map[string]string
	wg     sync.WaitGroup
}

// NewServer starts a server on a loopback port and stops it on test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("oxidbtest: listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	s := &Server{
		Host:   "127.0.0.1",
		Port:   addr.Port,
		ln:     ln,
		colls:  make(map[string][]map[string]any),
		unique: make(map[string][]string),
		failOn: make(map[string]string),
	}
	s.wg.Add(1)
	go s.serve()
	t.Cleanup(s.Close)
	return s
}

// FailCommand makes every later cmd return an error response with msg.
// An empty msg clears the failure.
func (s *Server) FailCommand(cmd, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg == "" {
		delete(s.failOn, cmd)
		return
	}
	s.failOn[cmd] = msg
}

// Docs returns a copy of the documents in collection.
func (s *Server) Docs(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.colls[collection]))
	copy(out, s.colls[collection])
	return out
}

func (s *Server) Close() {
	s.ln.Close()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	lenBuf := make([]byte, 4)
	for {
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			return
		}
		payload := make([]byte, binary.LittleEndian.Uint32(lenBuf))
		if _, err := io.ReadFull(conn, payload); err != nil {
			return
		}
		var req map[string]any
		resp := map[string]any{"ok": true}
		if err := json.Unmarshal(payload, &req); err != nil {
			resp = map[string]any{"ok": false, "error": "bad request"}
		} else if data, err := s.dispatch(req); err != nil {
			resp = map[string]any{"ok": false, "error": err.Error()}
		} else {
			resp["data"] = data
		}
		out, _ := json.Marshal(resp)
		frame := make([]byte, 4+len(out))
		binary.LittleEndian.PutUint32(frame, uint32(len(out)))
		copy(frame[4:], out)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req map[string]any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd, _ := req["cmd"].(string)
	if msg, ok := s.failOn[cmd]; ok {
		return nil, fmt.Errorf("%s", msg)
	}
	coll, _ := req["collection"].(string)
	query, _ := req["query"].(map[string]any)

	switch cmd {
	case "ping":
		return "pong", nil
	case "create_unique_index":
		field, _ := req["field"].(string)
		s.unique[coll] = append(s.unique[coll], field)
		return "ok", nil
	case "insert":
		doc, _ := req["doc"].(map[string]any)
		for _, field := range s.unique[coll] {
			for _, existing := range s.colls[coll] {
				if fmt.Sprint(existing[field]) == fmt.Sprint(doc[field]) {
					return nil, fmt.Errorf("duplicate value for unique index %s", field)
				}
			}
		}
		s.nextID++
		doc["_id"] = float64(s.nextID)
		s.colls[coll] = append(s.colls[coll], doc)
		return map[string]any{"id": float64(s.nextID)}, nil
	case "find":
		docs := s.match(coll, query)
		if sortSpec, ok := req["sort"].(map[string]any); ok {
			for field, dir := range sortSpec {
				desc, _ := dir.(float64)
				sort.SliceStable(docs, func(i, j int) bool {
					a, b := fmt.Sprint(docs[i][field]), fmt.Sprint(docs[j][field])
					if desc < 0 {
						return a > b
					}
					return a < b
				})
			}
		}
		if limit, ok := req["limit"].(float64); ok && int(limit) < len(docs) {
			docs = docs[:int(limit)]
		}
		return docs, nil
	case "find_one":
		docs := s.match(coll, query)
		if len(docs) == 0 {
			return nil, nil
		}
		return docs[0], nil
	case "delete_one":
		docs := s.colls[coll]
		for i, d := range docs {
			if matches(d, query) {
				s.colls[coll] = append(docs[:i:i], docs[i+1:]...)
				return map[string]any{"deleted": 1}, nil
			}
		}
		return map[string]any{"deleted": 0}, nil
	case "count":
		return map[string]any{"count": len(s.match(coll, query))}, nil
	}
	return nil, fmt.Errorf("unknown command: %s", strconv.Quote(cmd))
}

func (s *Server) match(coll string, query map[string]any) []map[string]any {
	var out []map[string]any
	for _, d := range s.colls[coll] {
		if matches(d, query) {
			out = append(out, d)
		}
	}
	return out
}

func matches(doc, query map[string]any) bool {
	for k, v := range query {
		if fmt.Sprint(doc[k]) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}
