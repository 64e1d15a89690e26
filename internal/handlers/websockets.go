package handlers

import (
	"net/http"
	"strconv"
	"time"

	"heater_control/internal/models"
	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Message types on the telemetry stream.
const (
	wsTypeState     = "state"
	wsTypeTelemetry = "telemetry"
	wsTypeClosed    = "closed"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// telemetryFrame carries the samples appended since the previous frame.
// Reset means the run restarted and Samples is the new series from its start.
type telemetryFrame struct {
	State   models.SessionState      `json:"state"`
	Samples []models.TelemetrySample `json:"samples"`
	Reset   bool                     `json:"reset,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Telemetry stream
// @Description  Websocket. Sends the session state at once, then a telemetry frame every interval with the samples appended since the last frame.
// @Tags         device
// @Param        interval     query  string  false  "Frame interval, e.g. 500ms (max 10s)"
// @Param        interval_ms  query  int     false  "Frame interval in milliseconds"
// @Param        token        query  string  false  "Session token when no Authorization header can be sent"
// @Router       /api/v1/ws [get]
// @Security     BearerAuth
func (h *Handler) wsConnect(c *gin.Context) {
	s := currentSession(c)
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	// The initial state frame carries the current series; later frames
	// carry only samples appended after it.
	samples, cursor, _ := s.Buffer.Read(service.Cursor{})
	if err := h.send(conn, wsEnvelope{Type: wsTypeState, Data: telemetryFrame{State: s.Snapshot(), Samples: samples}}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if _, err := h.services.Sessions.Get(s.ID); err != nil {
				_ = h.send(conn, wsEnvelope{Type: wsTypeClosed, Error: err.Error()})
				return
			}
			var (
				frame = telemetryFrame{State: s.Snapshot()}
				reset bool
			)
			frame.Samples, cursor, reset = s.Buffer.Read(cursor)
			frame.Reset = reset
			if err := h.send(conn, wsEnvelope{Type: wsTypeTelemetry, Data: frame}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, msg wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
