// Gamenight room server
//
// Every client holds one websocket at $prefix/ws and speaks JSON objects
// tagged by "type". Admin pages create rooms and drive them; players join a
// room by code and receive every event the room broadcasts.
//
// Routes:
// - $prefix/ws                  → websocket for all room traffic
// - $prefix/api/rooms/:code     → {"exists": bool}, 404 when missing
// - $prefix/api/rooms/:code/qr  → PNG QR code linking to the join page

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"

	"github.com/Seednode/gamenight/games"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	maxMessageSize = 64 << 10
	sendBuffer     = 32
)

// Messages coming from clients
type ClientMessage struct {
	Type          string            `json:"type"`
	Code          string            `json:"code,omitempty"`          // every room-scoped message
	GamesCount    int               `json:"gamesCount,omitempty"`    // createRoom
	TimeBefore    int               `json:"timeBefore,omitempty"`    // createRoom
	MaxUsers      int               `json:"maxUsers,omitempty"`      // createRoom
	Games         []json.RawMessage `json:"games,omitempty"`         // createRoom
	Username      string            `json:"username,omitempty"`      // joinRoom / submitGuess
	Message       json.RawMessage   `json:"message,omitempty"`       // announcement
	QuestionIndex int               `json:"questionIndex,omitempty"` // submitGuess
	Guess         string            `json:"guess,omitempty"`         // submitGuess
}

// RoomCreatedMessage confirms a createRoom with the code actually used.
type RoomCreatedMessage struct {
	Type string `json:"type"` // "roomCreated"
	Code string `json:"code"`
}

// ErrorMessage goes only to the client whose request failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// RoomStateMessage answers getRoomState; Room is null for unknown codes.
type RoomStateMessage struct {
	Type string           `json:"type"` // "roomState"
	Room *games.RoomState `json:"room"`
}

// SimpleMessage is for acknowledgements without a payload ("roomsDeleted").
type SimpleMessage struct {
	Type string `json:"type"`
}

type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// Client is one websocket connection. It satisfies games.Conn.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
}

// Send queues data without blocking; it is dropped if the client is gone
// or too far behind.
func (c *Client) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) reply(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	c.Send(data)
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
}

type roomServer struct {
	cfg    *Config
	engine *games.Engine
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *roomServer) serveWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(s.cfg, "ERROR: Websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		client := newClient(conn)

		logf(s.cfg, "SERVE: Client %s connected from %s", client.id, realIP(r))

		go client.writePump()
		s.readPump(client)
	}
}

func (s *roomServer) readPump(c *Client) {
	defer func() {
		s.engine.Leave(c)
		c.close()
		_ = c.conn.Close()

		logf(s.cfg, "SERVE: Client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.reply(ErrorMessage{Type: "error", Message: "invalid json"})
			continue
		}

		s.dispatch(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (s *roomServer) dispatch(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "createRoom":
		s.handleCreateRoom(c, msg)

	case "deleteAllRooms":
		s.engine.DeleteAllRooms()
		c.reply(SimpleMessage{Type: "roomsDeleted"})

	case "joinRoom":
		s.handleJoinRoom(c, msg)

	case "startRoom":
		if err := s.engine.Start(msg.Code); err != nil {
			c.reply(ErrorMessage{Type: "error", Message: errorText(err)})
		}

	case "announcement":
		s.engine.Broadcast(msg.Code, games.NewAnnouncement(msg.Message))

	case "startNext":
		_ = s.engine.StartNext(msg.Code)

	case "submitGuess":
		s.engine.SubmitGuess(msg.Code, msg.Username, msg.QuestionIndex, msg.Guess)

	case "getRoomState":
		var state *games.RoomState
		if snap, ok := s.engine.Snapshot(msg.Code); ok {
			state = &snap
		}
		c.reply(RoomStateMessage{Type: "roomState", Room: state})

	default:
		// ignore unknown types
	}
}

func (s *roomServer) handleCreateRoom(c *Client, msg ClientMessage) {
	list, err := games.DecodeGames(msg.Games)
	if err != nil {
		c.reply(ErrorMessage{Type: "error", Message: "invalid game list"})
		return
	}

	room := s.engine.CreateRoom(msg.Code, games.RoomConfig{
		GamesCount: msg.GamesCount,
		TimeBefore: msg.TimeBefore,
		MaxUsers:   msg.MaxUsers,
		Games:      list,
	})

	c.reply(RoomCreatedMessage{Type: "roomCreated", Code: room.Code()})
}

func (s *roomServer) handleJoinRoom(c *Client, msg ClientMessage) {
	if msg.Username == "" {
		c.reply(ErrorMessage{Type: "error", Message: "username is required"})
		return
	}

	if _, err := s.engine.Join(c, msg.Code, msg.Username); err != nil {
		c.reply(ErrorMessage{Type: "error", Message: errorText(err)})
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, games.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, games.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, games.ErrRoomStarted):
		return "Room has already started"
	default:
		return err.Error()
	}
}

func (s *roomServer) serveRoomExists(errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		securityHeaders(s.cfg, w)
		w.Header().Set("Cache-Control", "no-store")

		exists := s.engine.RoomExists(ps.ByName("code"))

		status := http.StatusOK
		if !exists {
			status = http.StatusNotFound
		}

		if err := writeJSON(w, status, RoomExistsResponse{Exists: exists}); err != nil {
			errs <- err
		}
	}
}

// QR handler: generates a PNG QR code pointing players at the join page
// with the room code filled in.
func (s *roomServer) serveQR(errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		code := ps.ByName("code")
		if !s.engine.RoomExists(code) {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		link := scheme + "://" + r.Host + s.cfg.prefix + "/?room=" + url.QueryEscape(code)

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(s.cfg, w)

		if _, err := w.Write(png); err != nil {
			errs <- err
		}
	}
}

func registerRooms(cfg *Config, engine *games.Engine, mux *httprouter.Router, errs chan<- error) {
	s := &roomServer{cfg: cfg, engine: engine}

	mux.GET(cfg.prefix+"/ws", s.serveWS())

	mux.GET(cfg.prefix+"/api/rooms/:code", s.serveRoomExists(errs))

	mux.GET(cfg.prefix+"/api/rooms/:code/qr", s.serveQR(errs))
}
