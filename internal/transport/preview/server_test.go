package preview

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"planetgen.ai/internal/planet"
	"planetgen.ai/internal/sampler"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := planet.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	arts, err := planet.Assemble(cfg, nil)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	var planets []Planet
	for _, a := range arts {
		reg, err := a.Registry(cfg.Seed)
		if err != nil {
			t.Fatalf("Registry: %v", err)
		}
		smp, err := sampler.New(a, reg)
		if err != nil {
			t.Fatalf("sampler: %v", err)
		}
		planets = append(planets, Planet{
			Info:    PlanetInfo{ID: a.Spec.ID, MinY: a.Spec.MinY, MaxY: a.Spec.MaxY, SeaLevel: a.Spec.SeaLevel},
			Sampler: smp,
		})
	}
	s := NewServer(cfg.Namespace, cfg.Seed, planets, 2, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/preview", s.Handler())
	mux.HandleFunc("/v1/planets", s.PlanetsHandler())
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/preview"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(msg, v); err != nil {
		t.Fatalf("unmarshal %s: %v", msg, err)
	}
}

func TestPreview_HelloAndRegion(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)

	if err := conn.WriteJSON(HelloMsg{Type: TypeHello, ProtocolVersion: Version, Client: "test"}); err != nil {
		t.Fatalf("hello: %v", err)
	}
	var welcome WelcomeMsg
	readJSON(t, conn, &welcome)
	if welcome.Type != TypeWelcome || len(welcome.Planets) != 2 || welcome.Planets[0].ID != "mars" {
		t.Fatalf("welcome = %+v", welcome)
	}

	req := RegionMsg{Type: TypeRegion, RequestID: "r1", Planet: "moon", X: 0, Z: 0, Width: 4, Depth: 2, Stride: 32}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("region: %v", err)
	}
	var grid GridMsg
	readJSON(t, conn, &grid)
	if grid.Type != TypeGrid || grid.RequestID != "r1" || len(grid.Columns) != 8 {
		t.Fatalf("grid = %+v", grid)
	}
	if grid.Columns[5].X != 32 || grid.Columns[5].Z != 32 {
		t.Fatalf("column 5 at %d,%d", grid.Columns[5].X, grid.Columns[5].Z)
	}

	req = RegionMsg{Type: TypeRegion, RequestID: "r2", Planet: "venus", Width: 1, Depth: 1, Stride: 1}
	_ = conn.WriteJSON(req)
	var e ErrorMsg
	readJSON(t, conn, &e)
	if e.Code != ErrPlanetNotFound || e.RequestID != "r2" {
		t.Fatalf("error = %+v", e)
	}

	_ = conn.WriteJSON(RegionMsg{Type: TypeRegion, Planet: "moon", Width: 1000, Depth: 1000, Stride: 1})
	readJSON(t, conn, &e)
	if e.Code != ErrBadRequest {
		t.Fatalf("oversized region error = %+v", e)
	}

	_ = conn.WriteJSON(RegionMsg{Type: TypeRegion, RequestID: "r3", Planet: "moon", Width: 3 << 61, Depth: 4, Stride: 1})
	e = ErrorMsg{}
	readJSON(t, conn, &e)
	if e.Code != ErrBadRequest || e.RequestID != "r3" {
		t.Fatalf("overflowing region error = %+v", e)
	}

	_ = conn.WriteJSON(RegionMsg{Type: TypeRegion, RequestID: "r4", Planet: "moon", Width: 257, Depth: 256, Stride: 1})
	e = ErrorMsg{}
	readJSON(t, conn, &e)
	if e.Code != ErrBadRequest || e.RequestID != "r4" {
		t.Fatalf("region over MaxColumns error = %+v", e)
	}
}

func TestPreview_RejectsMissingHello(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv)
	_ = conn.WriteJSON(RegionMsg{Type: TypeRegion, Planet: "moon", Width: 1, Depth: 1, Stride: 1})
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("err = %v", err)
	}
}

func TestPreview_PlanetsHandler(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/planets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var w WelcomeMsg
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Namespace != "adastramekanized" || len(w.Planets) != 2 {
		t.Fatalf("planets = %+v", w)
	}
}
