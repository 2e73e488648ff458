// Package web streams a running GameBoy to one or more browser clients
// over a websocket: completed frames as brotli-compressed PNG images and
// completed audio buffers as uncompressed little-endian PCM. A frame
// identical to the previous one (compared by xxhash) is not sent at all;
// no per-client frame cache is kept.
package web

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

var errNotTCP = errors.New("web: connection is not a raw TCP socket")

// messageType tags the first byte of every message sent to a client.
type messageType byte

const (
	msgFrame messageType = iota
	msgFrameCacheHit
	msgAudio
	msgInput
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected browser, reachable through its own send
// channel so the hub never blocks a slow writer against the others.
type Client struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans frame/audio broadcasts out to every registered client and
// funnels button presses back from every client into one input
// channel for the façade to apply.
type Hub struct {
	log logrus.FieldLogger

	mu      sync.Mutex
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// Input receives (button, pressed) pairs decoded from client
	// messages; a host drains this and applies it to gameboy.Input
	// before the next RunFrame.
	Input chan ButtonEvent
}

// ButtonEvent is one joypad edge reported by a connected client.
type ButtonEvent struct {
	Button  byte
	Pressed bool
}

// NewHub constructs an idle Hub; call Serve to start accepting
// connections on the given address.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		Input:      make(chan ButtonEvent, 16),
	}
}

// Serve starts the websocket endpoint and the hub's run loop. It
// blocks until the listener fails, so callers run it in a goroutine.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebsocket)
	go h.run()
	return http.ListenAndServe(addr, mux)
}

func (h *Hub) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %v", err)
		return
	}

	c := &Client{conn: conn, send: make(chan []byte, 16), hub: h}
	h.register <- c

	if rtt, err := c.rtt(); err == nil {
		h.log.WithField("rtt", rtt).Debug("client connected")
	}

	go c.writePump()
	go c.readPump()
}

// rtt reports the connection's smoothed round-trip time from the
// kernel's TCP_INFO socket option, best-effort: it returns an error on
// anything but a raw TCP transport (e.g. a test using an in-memory pipe).
func (c *Client) rtt() (time.Duration, error) {
	tcpConn, ok := c.conn.UnderlyingConn().(*net.TCPConn)
	if !ok {
		return 0, errNotTCP
	}
	raw, err := tcpConn.SyscallConn()
	if err != nil {
		return 0, err
	}
	var info *unix.TCPInfo
	ctrlErr := raw.Control(func(fd uintptr) {
		info, err = unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	})
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	if err != nil {
		return 0, err
	}
	return time.Duration(info.Rtt) * time.Microsecond, nil
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// client too slow to keep up; drop it rather than
					// stall the whole broadcast
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (c *Client) writePump() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
			break
		}
	}
	c.conn.Close()
}

func (c *Client) readPump() {
	defer func() { c.hub.unregister <- c }()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(data) < 2 {
			continue
		}
		c.hub.Input <- ButtonEvent{Button: data[0], Pressed: data[1] != 0}
	}
}
