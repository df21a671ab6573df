package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Dartline-Delivery/service-pricing/internal/calculator"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

const writeWait = 10 * time.Second

// Sink delivers calculator commands over one websocket connection. Writes
// are serialized through a mutex; the read side never goes through here.
type Sink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewSink wraps a connection for command delivery.
func NewSink(conn *websocket.Conn) *Sink {
	return &Sink{conn: conn}
}

func (s *Sink) write(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// PlaceMarker implements calculator.MapSink.
func (s *Sink) PlaceMarker(role calculator.MarkerRole, point quoteDomain.GeoPoint, hint string) error {
	return s.write(PlaceMarkerCommand{Type: CommandPlaceMarker, Role: string(role), Point: point, Hint: hint})
}

// DrawRoute implements calculator.MapSink.
func (s *Sink) DrawRoute(points []quoteDomain.GeoPoint, style calculator.RouteStyle) error {
	return s.write(DrawRouteCommand{Type: CommandDrawRoute, Points: points, Style: style})
}

// FitBounds implements calculator.MapSink.
func (s *Sink) FitBounds(points []quoteDomain.GeoPoint) error {
	return s.write(FitBoundsCommand{Type: CommandFitBounds, Points: points})
}

// OpenBalloon implements calculator.MapSink.
func (s *Sink) OpenBalloon(role calculator.MarkerRole, text string, autoPan bool) error {
	return s.write(OpenBalloonCommand{Type: CommandOpenBalloon, Role: string(role), Text: text, AutoPan: autoPan})
}

// UpdatePanel implements calculator.MapSink.
func (s *Sink) UpdatePanel(update calculator.PanelUpdate) error {
	return s.write(UpdatePanelCommand{Type: CommandUpdatePanel, Panel: update})
}

// Error reports a rejected event back to the widget.
func (s *Sink) Error(message string) error {
	return s.write(ErrorCommand{Type: CommandError, Message: message})
}

// Ping sends a control ping to keep the connection alive.
func (s *Sink) Ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Pong answers a bare text ping.
func (s *Sink) Pong() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, []byte("pong"))
}
