package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dartline-Delivery/service-pricing/internal/calculator"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
)

// wsPipe upgrades one connection pair: the server end drives the Sink, the
// client end plays the browser widget.
func wsPipe(t *testing.T) (serverConn, clientConn *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conns <- conn
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	clientConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientConn.Close() })

	serverConn = <-conns
	t.Cleanup(func() { serverConn.Close() })
	return serverConn, clientConn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func TestSinkCommands(t *testing.T) {
	serverConn, clientConn := wsPipe(t)
	sink := NewSink(serverConn)

	start := quoteDomain.GeoPoint{Latitude: 41.7151, Longitude: 44.8271}
	finish := quoteDomain.GeoPoint{Latitude: 41.6938, Longitude: 44.8015}

	require.NoError(t, sink.PlaceMarker(calculator.MarkerStart, start, "Pickup"))
	frame := readFrame(t, clientConn)
	assert.Equal(t, CommandPlaceMarker, frame["type"])
	assert.Equal(t, "start", frame["role"])
	assert.Equal(t, "Pickup", frame["hint"])
	point := frame["point"].(map[string]interface{})
	assert.Equal(t, 41.7151, point["lat"])
	assert.Equal(t, 44.8271, point["lng"])

	require.NoError(t, sink.DrawRoute([]quoteDomain.GeoPoint{start, finish}, calculator.RouteStyle{
		StrokeWidth: 5, StrokeColor: "#1E98FF", StrokeOpacity: 0.8,
	}))
	frame = readFrame(t, clientConn)
	assert.Equal(t, CommandDrawRoute, frame["type"])
	assert.Len(t, frame["points"], 2)
	style := frame["style"].(map[string]interface{})
	assert.Equal(t, "#1E98FF", style["stroke_color"])

	require.NoError(t, sink.FitBounds([]quoteDomain.GeoPoint{start, finish}))
	frame = readFrame(t, clientConn)
	assert.Equal(t, CommandFitBounds, frame["type"])

	require.NoError(t, sink.OpenBalloon(calculator.MarkerFinish, "Delivery: 9.60 GEL", true))
	frame = readFrame(t, clientConn)
	assert.Equal(t, CommandOpenBalloon, frame["type"])
	assert.Equal(t, "finish", frame["role"])
	assert.Equal(t, "Delivery: 9.60 GEL", frame["text"])
	assert.Equal(t, true, frame["auto_pan"])

	distance := "12 km"
	cost := "9.60 GEL"
	require.NoError(t, sink.UpdatePanel(calculator.PanelUpdate{Distance: &distance, Cost: &cost}))
	frame = readFrame(t, clientConn)
	assert.Equal(t, CommandUpdatePanel, frame["type"])
	panel := frame["panel"].(map[string]interface{})
	assert.Equal(t, "12 km", panel["distance"])
	assert.Equal(t, "9.60 GEL", panel["cost"])
	// The absent time slot stays off the wire entirely.
	_, hasTime := panel["time"]
	assert.False(t, hasTime)

	require.NoError(t, sink.Error("bad event"))
	frame = readFrame(t, clientConn)
	assert.Equal(t, CommandError, frame["type"])
	assert.Equal(t, "bad event", frame["message"])
}
