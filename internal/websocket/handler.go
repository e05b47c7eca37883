package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"classpulse/pkg/interfaces"
)

// MessageSink receives every inbound frame and the disconnect event.
// Local interface keeps this package free of routing logic.
type MessageSink interface {
	HandleMessage(peer interfaces.Peer, data []byte)
	HandleDisconnect(peer interfaces.Peer)
}

var upgrader = websocket.Upgrader{
	// Browser extensions connect from arbitrary page origins.
	CheckOrigin:      func(r *http.Request) bool { return true },
	HandshakeTimeout: 10 * time.Second,
}

// Handler upgrades HTTP requests and pumps frames into the sink.
// Connections carry no credentials at upgrade time; identity is
// established by the first REGISTER_* message.
type Handler struct {
	sink         MessageSink
	bufferSize   int
	writeTimeout time.Duration
	log          zerolog.Logger
}

func NewHandler(sink MessageSink, bufferSize int, writeTimeout time.Duration, logger zerolog.Logger) *Handler {
	return &Handler{
		sink:         sink,
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
		log:          logger.With().Str("component", "websocket").Logger(),
	}
}

// HandleWebSocket upgrades the request and runs the connection's read
// loop until the client goes away.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	raw, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	conn := NewConnection(raw, h.bufferSize, h.writeTimeout, h.log)
	h.log.Debug().Str("remote", r.RemoteAddr).Msg("client connected")
	go h.readLoop(conn)
}

// readLoop delivers frames one at a time; any transport failure is an
// implicit disconnect and takes the same cleanup path as a clean close.
func (h *Handler) readLoop(conn *Connection) {
	defer func() {
		h.sink.HandleDisconnect(conn)
		_ = conn.Close()
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
		if messageType == websocket.TextMessage {
			h.sink.HandleMessage(conn, data)
		}
	}
}
