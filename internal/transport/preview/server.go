package preview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/websocket"

	"planetgen.ai/internal/sampler"
)

// MaxColumns bounds a single REGION request.
const MaxColumns = 256 * 256

// Planet is one sampled planet served by the preview endpoint.
type Planet struct {
	Info    PlanetInfo
	Sampler *sampler.Sampler
}

type Server struct {
	namespace string
	seed      int64
	planets   map[string]Planet
	workers   int
	log       *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(namespace string, seed int64, planets []Planet, workers int, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		namespace: namespace,
		seed:      seed,
		planets:   make(map[string]Planet, len(planets)),
		workers:   workers,
		log:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	for _, p := range planets {
		s.planets[p.Info.ID] = p
	}
	return s
}

func (s *Server) welcome() WelcomeMsg {
	w := WelcomeMsg{Type: TypeWelcome, ProtocolVersion: Version, Namespace: s.namespace, Seed: s.seed}
	for _, p := range s.planets {
		w.Planets = append(w.Planets, p.Info)
	}
	sort.Slice(w.Planets, func(i, j int) bool { return w.Planets[i].ID < w.Planets[j].ID })
	return w
}

// PlanetsHandler serves the WELCOME payload over plain HTTP.
func (s *Server) PlanetsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.welcome())
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if !s.handshake(conn) {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		out := make(chan any, 8)

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case v := <-out:
					if err := writeJSON(conn, v); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop. Requests are served one at a time per connection.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := DecodeBase(msg)
			if err != nil || base.Type != TypeRegion {
				s.send(ctx, out, ErrorMsg{Type: TypeError, Code: ErrBadRequest, Message: "expected REGION"})
				continue
			}
			var req RegionMsg
			if err := json.Unmarshal(msg, &req); err != nil {
				s.send(ctx, out, ErrorMsg{Type: TypeError, Code: ErrBadRequest, Message: err.Error()})
				continue
			}
			s.send(ctx, out, s.serveRegion(ctx, req))
		}
	}
}

func (s *Server) send(ctx context.Context, out chan<- any, v any) {
	select {
	case <-ctx.Done():
	case out <- v:
	}
}

func (s *Server) serveRegion(ctx context.Context, req RegionMsg) any {
	fail := func(code, msg string) ErrorMsg {
		return ErrorMsg{Type: TypeError, RequestID: req.RequestID, Code: code, Message: msg}
	}
	p, ok := s.planets[req.Planet]
	if !ok {
		return fail(ErrPlanetNotFound, fmt.Sprintf("unknown planet %q", req.Planet))
	}
	region := req.Region()
	if err := region.Validate(); err != nil {
		return fail(ErrBadRequest, err.Error())
	}
	if region.Width > MaxColumns || region.Depth > MaxColumns/region.Width {
		return fail(ErrBadRequest, fmt.Sprintf("region exceeds %d columns", MaxColumns))
	}
	start := time.Now()
	cols, err := p.Sampler.SampleRegion(ctx, region, s.workers)
	if errors.Is(err, context.Canceled) {
		return fail(ErrCancelled, err.Error())
	}
	if err != nil {
		return fail(ErrBadRequest, err.Error())
	}
	s.log.Printf("preview %s: sampled %dx%d stride %d in %s", req.Planet, region.Width, region.Depth, region.Stride, time.Since(start))
	return GridMsg{Type: TypeGrid, RequestID: req.RequestID, Planet: req.Planet, Region: region, Columns: cols}
}

func (s *Server) handshake(conn *websocket.Conn) bool {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	base, err := DecodeBase(msg)
	if err != nil || base.Type != TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return false
	}
	if base.ProtocolVersion != Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return false
	}
	return writeJSON(conn, s.welcome()) == nil
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
