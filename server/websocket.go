package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/lab1702/rocket-hivemind/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxFrameSize   = 1 << 20
	sendBufferSize = 16
)

// isValidOrigin checks if the origin is allowed to connect
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	// Allow same-origin connections
	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	host := originURL.Hostname()
	return host == "localhost" || host == "127.0.0.1" || strings.HasSuffix(host, ".localhost")
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true,
}

// outbound is one encoded reply and the frame type it goes out as
type outbound struct {
	messageType int
	data        []byte
}

// Client is one connected game host driving a session
type Client struct {
	session *Session
	conn    *websocket.Conn
	send    chan outbound
	server  *Server
	log     *logrus.Entry
}

// Server accepts world feeds and runs one hivemind session per connection
type Server struct {
	cfg        StrategyConfig
	team       game.Team
	opts       []Option
	log        *logrus.Entry
	mu         sync.RWMutex
	clients    map[uuid.UUID]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewServer creates a feed server. Every session runs cfg for team with
// opts applied.
func NewServer(cfg StrategyConfig, team game.Team, log *logrus.Entry, opts ...Option) *Server {
	return &Server{
		cfg:        cfg,
		team:       team,
		opts:       opts,
		log:        log.WithField("component", "server"),
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run tracks client connections until ctx is cancelled, then closes every
// connection
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.session.ID] = client
			s.mu.Unlock()
			client.log.Info("host connected")

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.session.ID]; ok {
				delete(s.clients, client.session.ID)
				close(client.send)
			}
			s.mu.Unlock()
			client.log.Info("host disconnected")

		case <-ctx.Done():
			s.mu.Lock()
			for id, client := range s.clients {
				delete(s.clients, id)
				client.conn.Close()
			}
			s.mu.Unlock()
			s.log.Info("feed server stopped")
			return nil
		}
	}
}

// Sessions returns a snapshot of every connected session
func (s *Server) Sessions() []SessionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SessionStats, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.session.Snapshot())
	}
	return out
}

// HandleWebSocket upgrades a host connection and starts its session
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	session := NewSession(s.cfg, s.team, s.log, s.opts...)
	client := &Client{
		session: session,
		conn:    conn,
		send:    make(chan outbound, sendBufferSize),
		server:  s,
		log:     s.log.WithField("session", session.ID.String()),
	}

	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump handles incoming frames from the host
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read failed")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		reply, ok := c.handleFrame(messageType, data)
		if !ok {
			continue
		}
		if !c.enqueue(messageType == websocket.BinaryMessage, reply) {
			return
		}
	}
}

// handleFrame processes one host frame and returns the reply to send, if any
func (c *Client) handleFrame(messageType int, data []byte) (ServerMessage, bool) {
	msg, err := DecodeHostMessage(messageType, data)
	if err != nil {
		c.session.RecordError()
		c.log.WithError(err).Warn("rejected host frame")
		return ServerMessage{Type: MsgTypeError, Data: ErrorFrame{Message: err.Error()}}, true
	}

	switch msg.Type {
	case MsgTypeWorld:
		return ServerMessage{Type: MsgTypeAssignments, Data: c.session.Apply(msg.World)}, true
	case MsgTypeReset:
		c.session.Reset()
	}
	return ServerMessage{}, false
}

// enqueue encodes msg in the host's encoding and queues it for writePump. It
// returns false when the client is too slow or already gone.
func (c *Client) enqueue(binary bool, msg ServerMessage) bool {
	data, err := EncodeServerMessage(binary, msg)
	if err != nil {
		c.log.WithError(err).Error("encode reply failed")
		return true
	}
	frameType := websocket.TextMessage
	if binary {
		frameType = websocket.BinaryMessage
	}

	select {
	case c.send <- outbound{messageType: frameType, data: data}:
		return true
	default:
		c.log.Warn("send queue full, dropping host")
		return false
	}
}

// writePump sends replies and keepalive pings to the host
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(message.messageType, message.data); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.log.WithError(err).Debug("websocket write failed")
				}
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.server.done:
			return
		}
	}
}
