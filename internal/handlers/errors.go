package handlers

import (
	"errors"
	"net/http"

	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// statusFor maps a session operation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrStepIndex),
		errors.Is(err, service.ErrUnknownField):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotConnected),
		errors.Is(err, service.ErrRunInProgress),
		errors.Is(err, service.ErrStartPending),
		errors.Is(err, service.ErrNotRunning),
		errors.Is(err, service.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, service.ErrConnectFailed),
		errors.Is(err, service.ErrStartRejected),
		errors.Is(err, service.ErrStartTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the operator-facing message of err. Unmapped errors
// are logged and answered with a generic message.
func (h *Handler) respondError(c *gin.Context, logKey string, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		h.logAndJSONError(c, code, errInternal, logKey, err)
		return
	}
	if h.log != nil {
		h.log.Infow(logKey, "err", err, "status", code)
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
