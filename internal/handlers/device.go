package handlers

import (
	"net/http"
	"strconv"

	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, session_active"
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"session_active": h.services.Sessions.Active(),
	})
}

// @Summary      Connect to the device
// @Description  Asks the device-control service to attach to its power supplies.
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "message, state"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string  "device message"
// @Router       /api/v1/device/connect [post]
// @Security     BearerAuth
func (h *Handler) connectDevice(c *gin.Context) {
	s := currentSession(c)
	ack, err := s.Conn.Connect(c.Request.Context())
	if err != nil {
		h.respondError(c, "device_connect_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ack, "state": s.Snapshot()})
}

// @Summary      Session state
// @Description  Connection and run state, current error, latest reading and profile.
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.SessionState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Snapshot())
}

// @Summary      Telemetry samples
// @Description  Samples of the current run after the given cursor. Pass back the returned cursor to read incrementally; reset=true means the run restarted.
// @Tags         device
// @Produce      json
// @Param        since  query     int  false  "Cursor index"
// @Param        epoch  query     int  false  "Cursor epoch"
// @Success      200    {object}  map[string]interface{}  "samples, cursor, reset"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/v1/telemetry [get]
// @Security     BearerAuth
func (h *Handler) getTelemetry(c *gin.Context) {
	var cur service.Cursor
	if qs := c.Query("since"); qs != "" {
		n, err := strconv.Atoi(qs)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'since'; use a non-negative integer"})
			return
		}
		cur.Index = n
	}
	if qs := c.Query("epoch"); qs != "" {
		n, err := strconv.ParseUint(qs, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'epoch'; use a non-negative integer"})
			return
		}
		cur.Epoch = n
	}

	samples, next, reset := currentSession(c).Buffer.Read(cur)
	c.JSON(http.StatusOK, gin.H{
		"samples": samples,
		"cursor":  next,
		"reset":   reset,
	})
}
