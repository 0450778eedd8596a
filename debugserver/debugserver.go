// Package debugserver streams per-frame engine state over a websocket so an
// external viewer (a browser minimap, a recorder) can watch a running game.
// It is diagnostics plumbing, not gameplay networking.
package debugserver

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bloodmagesoftware/xoom/game"
)

// sendBuffer is the per-client queue length. A client that cannot keep up
// skips frames rather than stalling the game loop.
const sendBuffer = 8

// frameMessage is the JSON shape pushed to clients once per tick.
type frameMessage struct {
	Type   string      `json:"type"`
	Player playerState `json:"player"`
	Walls  []wallSpan  `json:"walls"`
}

type playerState struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	AngleDeg float64 `json:"angleDeg"`
}

type wallSpan struct {
	X1      float64 `json:"x1"`
	Y1      float64 `json:"y1"`
	X2      float64 `json:"x2"`
	Y2      float64 `json:"y2"`
	Texture string  `json:"texture"`
}

// Server accepts websocket clients on /ws and broadcasts frame snapshots.
type Server struct {
	upgrader websocket.Upgrader
	httpSrv  *http.Server

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func New(addr string) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		log.Printf("debugserver: listening on ws://%s/ws", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("debugserver: %v", err)
		}
	}()
}

// Shutdown stops the listener and drops all clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}
	s.mu.Unlock()
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("debugserver: upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	log.Printf("debugserver: client connected from %s", r.RemoteAddr)

	go c.writeLoop()
	// Drain reads so close frames and pings are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.drop(c)
				return
			}
		}
	}()
}

func (c *client) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		close(c.send)
		delete(s.clients, c)
	}
}

// Broadcast pushes a frame snapshot to every connected client, dropping the
// frame for clients whose queue is full.
func (s *Server) Broadcast(frame game.Frame) {
	s.mu.Lock()
	if len(s.clients) == 0 {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	msg := frameMessage{
		Type: "frame",
		Player: playerState{
			X:        frame.View.Pos.X(),
			Y:        frame.View.Pos.Y(),
			AngleDeg: frame.View.AngleDeg,
		},
		Walls: make([]wallSpan, 0, len(frame.Walls)),
	}
	for _, w := range frame.Walls {
		msg.Walls = append(msg.Walls, wallSpan{
			X1: w.A.X(), Y1: w.A.Y(),
			X2: w.B.X(), Y2: w.B.Y(),
			Texture: w.Texture,
		})
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("debugserver: marshal: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			// Slow client: skip this frame.
		}
	}
}
