package handlers

import (
	"net/http"
	"strconv"

	"heater_control/internal/models"

	"github.com/gin-gonic/gin"
)

// UpdateStepRequest edits one field of a queued step. Value is the raw
// operator input; anything that is not a number leaves the field unset.
type UpdateStepRequest struct {
	Field string `json:"field" binding:"required" example:"targetTemperature"`
	Value any    `json:"value" example:"80"`
}

type rangeHint struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Advertised to clients only; the queue accepts values outside them.
var fieldHints = map[string]rangeHint{
	"targetTemperature": {Min: models.Float(models.MinTargetTemperatureC), Max: models.Float(models.MaxTargetTemperatureC)},
	"lightIntensity":    {Min: models.Float(models.MinLightIntensity), Max: models.Float(models.MaxLightIntensity)},
	"holdMinutes":       {Min: models.Float(models.MinHoldMinutes)},
}

func profileBody(steps []models.ThermalStep) gin.H {
	if steps == nil {
		steps = []models.ThermalStep{}
	}
	return gin.H{"steps": steps, "hints": fieldHints}
}

// @Summary      Get the profile queue
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "steps, hints"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile [get]
// @Security     BearerAuth
func (h *Handler) getProfile(c *gin.Context) {
	c.JSON(http.StatusOK, profileBody(currentSession(c).Queue.Steps()))
}

// @Summary      Append a step
// @Description  Adds an empty step at the end of the queue. Its entry temperature is the previous step's target.
// @Tags         profile
// @Produce      json
// @Success      201  {object}  map[string]interface{}  "index, steps"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile/steps [post]
// @Security     BearerAuth
func (h *Handler) appendStep(c *gin.Context) {
	q := currentSession(c).Queue
	idx := q.Append()
	body := profileBody(q.Steps())
	body["index"] = idx
	c.JSON(http.StatusCreated, body)
}

// @Summary      Edit a step field
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        index  path      int                true  "Step index"
// @Param        body   body      UpdateStepRequest  true  "Field and value"
// @Success      200    {object}  map[string]interface{}  "steps, hints"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /api/v1/profile/steps/{index} [patch]
// @Security     BearerAuth
func (h *Handler) updateStep(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid step index"})
		return
	}
	var req UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	q := currentSession(c).Queue
	if err := q.UpdateField(idx, req.Field, rawValue(req.Value)); err != nil {
		h.respondError(c, "profile_update_failed", err)
		return
	}
	c.JSON(http.StatusOK, profileBody(q.Steps()))
}

// @Summary      Clear the profile queue
// @Tags         profile
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "steps, hints"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/profile [delete]
// @Security     BearerAuth
func (h *Handler) clearProfile(c *gin.Context) {
	q := currentSession(c).Queue
	q.Clear()
	c.JSON(http.StatusOK, profileBody(q.Steps()))
}

// rawValue turns a JSON value back into the text an operator would type.
func rawValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
