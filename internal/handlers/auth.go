package handlers

import (
	"errors"
	"net/http"

	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidInput       = "Invalid input data"
	errInvalidCredentials = "Invalid credentials"
	errInternal           = "Internal server error"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Message   string `json:"message" example:"Login successful"`
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
}

// @Summary      Log in
// @Description  Checks operator credentials and opens the device session. Any previous session is closed.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  LoginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	var input loginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		if h.log != nil {
			h.log.Infow("auth_bad_request_body", "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	}

	user, err := h.services.Login(input.Username, input.Password)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidInput})
		return
	case errors.Is(err, service.ErrInvalidCredentials):
		if h.log != nil {
			h.log.Infow("auth_login_rejected", "username", input.Username)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_login_failed", err, "username", input.Username)
		return
	}

	ctx := c.Request.Context()
	s := h.services.Sessions.Open(ctx, user)
	token, err := h.services.GenerateToken(user.ID, s.ID)
	if err != nil {
		_ = h.services.Sessions.Close(ctx, s.ID)
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "auth_token_failed", err, "username", user.Username)
		return
	}

	if h.log != nil {
		h.log.Infow("auth_login", "username", user.Username, "session_id", s.ID)
	}
	c.JSON(http.StatusOK, LoginResponse{Message: "Login successful", Token: token, SessionID: s.ID})
}

// @Summary      Log out
// @Description  Stops any running process and closes the session.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/logout [post]
// @Security     BearerAuth
func (h *Handler) logout(c *gin.Context) {
	s := currentSession(c)
	if err := h.services.Sessions.Close(c.Request.Context(), s.ID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}
