package db

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/parisxmas/OxiDB/qrform/internal/oxidb"
)

const (
	dialTimeout       = 5 * time.Second
	keepaliveInterval = 10 * time.Second
)

// Pool is a round-robin connection pool for OxiDB with auto-reconnect.
type Pool struct {
	host      string
	port      int
	clients   []*oxidb.Client
	mu        []sync.RWMutex
	idx       uint64
	stop      chan struct{}
	closeOnce sync.Once
}

// NewPool opens size connections to host:port and starts the keepalive loop.
func NewPool(host string, port, size int) (*Pool, error) {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		host:    host,
		port:    port,
		clients: make([]*oxidb.Client, size),
		mu:      make([]sync.RWMutex, size),
		stop:    make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		c, err := oxidb.Connect(host, port, dialTimeout)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("pool: connect client %d: %w", i, err)
		}
		p.clients[i] = c
	}
	go p.keepalive()
	return p, nil
}

// Get returns the next client in round-robin order.
func (p *Pool) Get() *oxidb.Client {
	n := atomic.AddUint64(&p.idx, 1)
	i := int(n % uint64(len(p.clients)))
	p.mu[i].RLock()
	defer p.mu[i].RUnlock()
	return p.clients[i]
}

var errPoolClosed = errors.New("pool: closed")

// Ping checks one connection; used by the health endpoint.
func (p *Pool) Ping() error {
	c := p.Get()
	if c == nil {
		return errPoolClosed
	}
	_, err := c.Ping()
	return err
}

func (p *Pool) reconnect(i int) {
	p.mu[i].Lock()
	defer p.mu[i].Unlock()
	// nil means Close already ran.
	if p.clients[i] == nil {
		return
	}
	p.clients[i].Close()
	c, err := oxidb.Connect(p.host, p.port, dialTimeout)
	if err != nil {
		log.Printf("Warning: pool: reconnect client %d failed: %v", i, err)
		return
	}
	p.clients[i] = c
}

func (p *Pool) keepalive() {
	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.checkClients()
		}
	}
}

// checkClients pings every connection and replaces the dead ones.
func (p *Pool) checkClients() {
	for i := range p.clients {
		p.mu[i].RLock()
		c := p.clients[i]
		p.mu[i].RUnlock()
		if c == nil {
			continue
		}
		if _, err := c.Ping(); err != nil {
			log.Printf("Warning: pool: client %d ping failed, reconnecting: %v", i, err)
			p.reconnect(i)
		}
	}
}

// Close stops the keepalive loop and closes all connections.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.stop)
		for i := range p.clients {
			p.mu[i].Lock()
			if c := p.clients[i]; c != nil {
				c.Close()
				p.clients[i] = nil
			}
			p.mu[i].Unlock()
		}
	})
}
