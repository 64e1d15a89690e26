package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Start the process
// @Description  Submits the queued profile. Requires a connected device and no run in progress. On success the queue is emptied and telemetry polling starts.
// @Tags         process
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string  "not connected or already running"
// @Failure      502  {object}  map[string]string  "device rejected or unreachable"
// @Router       /api/v1/process/start [post]
// @Security     BearerAuth
func (h *Handler) startProcess(c *gin.Context) {
	s := currentSession(c)
	if err := s.Process.StartProcess(c.Request.Context()); err != nil {
		h.respondError(c, "process_start_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "running", "state": s.Snapshot()})
}

// @Summary      Stop the process
// @Description  Stops telemetry polling and returns to idle. The device itself is not told to stop.
// @Tags         process
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, state"
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/process/stop [post]
// @Security     BearerAuth
func (h *Handler) stopProcess(c *gin.Context) {
	s := currentSession(c)
	if err := s.Process.StopProcess(c.Request.Context()); err != nil {
		h.respondError(c, "process_stop_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped", "state": s.Snapshot()})
}
