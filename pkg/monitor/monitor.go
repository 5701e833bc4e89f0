// Package monitor exposes the host state over HTTP: the current tables
// and spectrum as JSON, Prometheus metrics, and a WebSocket feed that
// pushes a status notification whenever a new table pair is synthesized.
// A front panel or a plotting script can follow retune operations live
// instead of polling.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"spwm-host/pkg/analysis"
	"spwm-host/pkg/log"
	"spwm-host/pkg/metrics"
	"spwm-host/pkg/spwm"
)

var monLog = log.GetLogger("monitor")

// Status is the JSON document served at /api/status and pushed over the
// WebSocket feed.
type Status struct {
	SignalFreq  uint32    `json:"signal_freq"`
	MF          uint32    `json:"mf"`
	MA          float64   `json:"ma"`
	H1Sync      uint32    `json:"h1_sync"`
	H2Sync      uint32    `json:"h2_sync"`
	SignalDur   uint32    `json:"signal_duration"`
	Fundamental float64   `json:"fundamental,omitempty"`
	THD         float64   `json:"thd,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

// tablesDoc is the JSON document served at /api/tables.
type tablesDoc struct {
	MF uint32   `json:"mf"`
	H1 []uint32 `json:"h1"`
	H2 []uint32 `json:"h2"`
}

// Server is the monitor HTTP/WebSocket server.
type Server struct {
	addr     string
	server   *http.Server
	upgrader websocket.Upgrader
	running  atomic.Bool

	mu     sync.RWMutex
	status *Status
	tables *tablesDoc

	clientMu sync.Mutex
	clients  map[*client]struct{}
}

type client struct {
	conn   *websocket.Conn
	sendCh chan *Status
	done   chan struct{}
	once   sync.Once
}

// NewServer creates a monitor server listening on addr.
func NewServer(addr string) *Server {
	s := &Server{
		addr:    addr,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/tables", s.handleTables)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler, for serving through a test server.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.running.Store(true)
	monLog.WithField("addr", s.addr).Info("monitor listening")
	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the server and closes all WebSocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	s.clientMu.Lock()
	for c := range s.clients {
		c.close()
	}
	s.clients = make(map[*client]struct{})
	s.clientMu.Unlock()

	return s.server.Shutdown(ctx)
}

// Publish records a freshly synthesized table pair and notifies all
// WebSocket clients. The spectrum may be nil when analysis is disabled.
func (s *Server) Publish(p spwm.Params, tbl *spwm.Tables, sp *analysis.Spectrum) {
	status := &Status{
		SignalFreq:  p.SignalFreq,
		MF:          p.MF,
		MA:          p.MA,
		H1Sync:      tbl.H1Sync,
		H2Sync:      tbl.H2Sync,
		SignalDur:   tbl.SignalDuration,
		GeneratedAt: time.Now(),
	}
	if sp != nil {
		status.Fundamental = sp.Fundamental
		status.THD = sp.THD
	}

	h1 := make([]uint32, len(tbl.H1))
	h2 := make([]uint32, len(tbl.H2))
	copy(h1, tbl.H1)
	copy(h2, tbl.H2)

	s.mu.Lock()
	s.status = status
	s.tables = &tablesDoc{MF: p.MF, H1: h1, H2: h2}
	s.mu.Unlock()

	s.broadcast(status)
}

func (s *Server) broadcast(status *Status) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	for c := range s.clients {
		select {
		case c.sendCh <- status:
		default:
			// Slow consumer; drop the update rather than block.
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	status := s.status
	s.mu.RUnlock()

	if status == nil {
		http.Error(w, "no tables synthesized yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	tables := s.tables
	s.mu.RUnlock()

	if tables == nil {
		http.Error(w, "no tables synthesized yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, tables)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_, _ = w.Write([]byte(metrics.Gather()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("OK\n"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		monLog.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{
		conn:   conn,
		sendCh: make(chan *Status, 4),
		done:   make(chan struct{}),
	}
	s.clientMu.Lock()
	s.clients[c] = struct{}{}
	s.clientMu.Unlock()

	// Replay the current status so a new client does not have to wait
	// for the next synthesis.
	s.mu.RLock()
	if s.status != nil {
		c.sendCh <- s.status
	}
	s.mu.RUnlock()

	go c.writePump()
	c.readPump()

	s.clientMu.Lock()
	delete(s.clients, c)
	s.clientMu.Unlock()
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump discards client input; the feed is one-way. It unblocks when
// the peer disconnects.
func (c *client) readPump() {
	defer c.close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case status := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(status); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monLog.WithError(err).Warn("encode response")
	}
}
