// Package device is the HTTP+JSON client of the device-control service
// that drives the heater and light power supplies.
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"heater_control/internal/models"
)

const (
	connectPath = "/connect"
	startPath   = "/start_process"
	dataPath    = "/get_data"

	maxBodyBytes = 1 << 20
)

// Error is a failure reported by the device service itself, as opposed to
// a transport failure.
type Error struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("device %s: rejected (status %d)", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("device %s: %s", e.Op, e.Message)
}

// IsReported reports whether err carries a device-reported failure.
func IsReported(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// Client talks to the device-control service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL (e.g. http://localhost:5001).
// A nil httpClient falls back to http.DefaultClient.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the device service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type connectResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Connect asks the device service to attach to its power supplies and
// returns the acknowledgment message.
func (c *Client) Connect(ctx context.Context) (string, error) {
	var out connectResponse
	status, err := c.do(ctx, http.MethodPost, connectPath, nil, &out)
	if err != nil {
		return "", fmt.Errorf("connect: %w", err)
	}
	if out.Message != "" {
		return out.Message, nil
	}
	return "", &Error{Op: "connect", StatusCode: status, Message: out.Error}
}

type startRequest struct {
	Profiles []models.SubmittedStep `json:"profiles"`
}

type startResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StartProcess submits the profile. A nil error means the device accepted it.
func (c *Client) StartProcess(ctx context.Context, steps []models.SubmittedStep) error {
	if steps == nil {
		steps = []models.SubmittedStep{}
	}
	var out startResponse
	status, err := c.do(ctx, http.MethodPost, startPath, startRequest{Profiles: steps}, &out)
	if err != nil {
		return fmt.Errorf("start process: %w", err)
	}
	if !out.Success {
		return &Error{Op: "start_process", StatusCode: status, Message: out.Error}
	}
	return nil
}

type sensorPayload struct {
	Temperature *float64 `json:"temperature"`
}

type dataResponse struct {
	Temperature *float64       `json:"temperature"`
	InitialTemp *float64       `json:"initialTemp"`
	Voltage     *float64       `json:"voltage"`
	Current     *float64       `json:"current"`
	Sensor2     *sensorPayload `json:"sensor2"`
	Error       string         `json:"error"`
}

// ReadTelemetry fetches the device's current readings.
func (c *Client) ReadTelemetry(ctx context.Context) (models.Reading, error) {
	var out dataResponse
	status, err := c.do(ctx, http.MethodGet, dataPath, nil, &out)
	if err != nil {
		return models.Reading{}, fmt.Errorf("get data: %w", err)
	}
	if status != http.StatusOK {
		return models.Reading{}, &Error{Op: "get_data", StatusCode: status, Message: out.Error}
	}
	if out.Temperature == nil {
		return models.Reading{}, &Error{Op: "get_data", StatusCode: status, Message: "temperature missing from response"}
	}

	r := models.Reading{
		Temperature:        *out.Temperature,
		InitialTemperature: out.InitialTemp,
		Voltage:            out.Voltage,
		Current:            out.Current,
	}
	if out.Sensor2 != nil {
		r.HeatSinkTemperature = out.Sensor2.Temperature
	}
	return r, nil
}

// do sends a JSON request and decodes the JSON body into out regardless of
// status code; the device service reports failures in the body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return resp.StatusCode, nil
}
