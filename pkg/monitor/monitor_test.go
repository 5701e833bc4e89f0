package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"spwm-host/pkg/spwm"
)

func publishReference(t *testing.T, s *Server) spwm.Params {
	t.Helper()
	p := spwm.Params{SignalFreq: 50, MF: 8, MA: 0.8}
	tbl, err := spwm.Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	s.Publish(p, tbl, nil)
	return p
}

func TestStatusEndpoint(t *testing.T) {
	s := NewServer(":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// Before any synthesis the endpoint reports unavailable.
	resp, err := http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("empty status code = %d, want 503", resp.StatusCode)
	}

	p := publishReference(t, s)

	resp, err = http.Get(ts.URL + "/api/status")
	if err != nil {
		t.Fatalf("GET /api/status: %v", err)
	}
	defer resp.Body.Close()

	var status Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.SignalFreq != p.SignalFreq || status.MF != p.MF {
		t.Errorf("status = %+v, want freq %d mf %d", status, p.SignalFreq, p.MF)
	}
	if status.H1Sync == 0 || status.SignalDur == 0 {
		t.Errorf("status missing timing: %+v", status)
	}
}

func TestTablesEndpoint(t *testing.T) {
	s := NewServer(":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	p := publishReference(t, s)

	resp, err := http.Get(ts.URL + "/api/tables")
	if err != nil {
		t.Fatalf("GET /api/tables: %v", err)
	}
	defer resp.Body.Close()

	var doc struct {
		MF uint32   `json:"mf"`
		H1 []uint32 `json:"h1"`
		H2 []uint32 `json:"h2"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode tables: %v", err)
	}
	if doc.MF != p.MF || len(doc.H1) != int(2*p.MF) || len(doc.H2) != int(2*p.MF) {
		t.Errorf("tables = mf %d, %d/%d entries", doc.MF, len(doc.H1), len(doc.H2))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := NewServer(":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %q", ct)
	}
}

func TestWebSocketPush(t *testing.T) {
	s := NewServer(":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the client.
	time.Sleep(100 * time.Millisecond)
	publishReference(t, s)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var status Status
	if err := conn.ReadJSON(&status); err != nil {
		t.Fatalf("read pushed status: %v", err)
	}
	if status.MF != 8 || status.SignalFreq != 50 {
		t.Errorf("pushed status = %+v", status)
	}
}

func TestWebSocketReplaysCurrentStatus(t *testing.T) {
	s := NewServer(":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	publishReference(t, s)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var status Status
	if err := conn.ReadJSON(&status); err != nil {
		t.Fatalf("read replayed status: %v", err)
	}
	if status.MF != 8 {
		t.Errorf("replayed status = %+v", status)
	}
}
