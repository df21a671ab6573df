package ws

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Dartline-Delivery/service-pricing/internal/calculator"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4 << 10
)

// SessionEvents is the part of a calculator session a connection drives.
type SessionEvents interface {
	HandleClick(point quoteDomain.GeoPoint) error
	MovePoint(role calculator.MarkerRole, point quoteDomain.GeoPoint) error
	Reset()
	Close()
}

// Client pumps one websocket connection: widget events go to the session,
// keepalive pings go out on a ticker. Commands travel through the Sink.
type Client struct {
	conn    *websocket.Conn
	session SessionEvents
	sink    *Sink
	logger  *zap.Logger
}

// NewClient wires a connection to a session.
func NewClient(conn *websocket.Conn, session SessionEvents, sink *Sink, logger *zap.Logger) *Client {
	return &Client{conn: conn, session: session, sink: sink, logger: logger}
}

// Run blocks until the connection drops, then tears the session down.
func (c *Client) Run() {
	done := make(chan struct{})
	go c.pingLoop(done)

	c.readLoop()

	close(done)
	c.session.Close()
	c.conn.Close()
}

func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt != websocket.TextMessage {
			continue
		}
		// Bare "ping" text keeps dumb clients alive.
		if strings.EqualFold(strings.TrimSpace(string(msg)), "ping") {
			_ = c.sink.Pong()
			continue
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg []byte) {
	var event ClientEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		c.logger.Debug("malformed widget event", zap.Error(err))
		c.pushError("malformed event")
		return
	}

	var err error
	switch event.Type {
	case EventClick:
		err = c.session.HandleClick(quoteDomain.GeoPoint{Latitude: event.Lat, Longitude: event.Lng})
	case EventDrag:
		err = c.session.MovePoint(calculator.MarkerRole(event.Role), quoteDomain.GeoPoint{Latitude: event.Lat, Longitude: event.Lng})
	case EventReset:
		c.session.Reset()
	default:
		c.pushError("unknown event type: " + event.Type)
		return
	}

	if err != nil {
		c.pushError(err.Error())
	}
}

func (c *Client) pushError(message string) {
	if err := c.sink.Error(message); err != nil {
		c.logger.Debug("error push failed", zap.Error(err))
	}
}

func (c *Client) pingLoop(done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.sink.Ping(); err != nil {
				return
			}
		}
	}
}
