package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Dartline-Delivery/service-pricing/internal/calculator"
	quoteDomain "github.com/Dartline-Delivery/service-pricing/internal/domain/quote"
	"github.com/Dartline-Delivery/service-pricing/internal/platform/response"
	"github.com/Dartline-Delivery/service-pricing/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CalculatorHandler upgrades widget connections and runs a calculator
// session per connection.
type CalculatorHandler struct {
	computer     calculator.QuoteComputer
	defaultClass quoteDomain.VehicleClass
	logger       *zap.Logger
}

// NewCalculatorHandler creates a new CalculatorHandler. Sessions price
// against defaultClass unless the connection overrides it.
func NewCalculatorHandler(computer calculator.QuoteComputer, defaultClass quoteDomain.VehicleClass, logger *zap.Logger) *CalculatorHandler {
	return &CalculatorHandler{computer: computer, defaultClass: defaultClass, logger: logger}
}

// RegisterRoutes registers the websocket endpoint.
func (h *CalculatorHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ws/calculator", h.Serve)
}

// Serve handles GET /ws/calculator. An optional class query overrides the
// vehicle class the session prices against.
func (h *CalculatorHandler) Serve(c *gin.Context) {
	opts := calculator.Options{Class: h.defaultClass}
	if class := c.Query("class"); class != "" {
		vc := quoteDomain.VehicleClass(class)
		if !vc.IsValid() {
			response.BadRequest(c, "invalid vehicle class: "+class)
			return
		}
		opts.Class = vc
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sink := ws.NewSink(conn)
	session := calculator.NewSession(h.computer, sink, opts, h.logger)
	client := ws.NewClient(conn, session, sink, h.logger)

	h.logger.Info("calculator session started",
		zap.String("remote", conn.RemoteAddr().String()),
		zap.String("class", string(opts.Class)),
	)
	client.Run()
	h.logger.Info("calculator session closed",
		zap.String("remote", conn.RemoteAddr().String()),
	)
}
