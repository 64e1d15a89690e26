package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"heater_control/internal/device"
	"heater_control/internal/logger"
	"heater_control/internal/models"
	"heater_control/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

// mockAuth issues tokens of the form "tok:<userID>:<sessionID>".
type mockAuth struct {
	mu sync.Mutex

	users    map[string]string // username -> password
	loginErr error
	tokenErr error

	lastParseToken string
}

func newMockAuth() *mockAuth {
	return &mockAuth{users: map[string]string{"operator": "operator"}}
}

func (m *mockAuth) EnsureUser(username, password string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return false, nil
	}
	m.users[username] = password
	return true, nil
}

func (m *mockAuth) Login(username, password string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return models.User{}, service.ErrInvalidInput
	}
	if m.loginErr != nil {
		return models.User{}, m.loginErr
	}
	if pw, ok := m.users[username]; !ok || pw != password {
		return models.User{}, service.ErrInvalidCredentials
	}
	return models.User{ID: 1, Username: username}, nil
}

func (m *mockAuth) GenerateToken(userID int, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	return fmt.Sprintf("tok:%d:%s", userID, sessionID), nil
}

func (m *mockAuth) ParseToken(token string) (service.TokenClaims, error) {
	m.mu.Lock()
	m.lastParseToken = token
	m.mu.Unlock()

	var claims service.TokenClaims
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "tok" {
		return claims, service.ErrInvalidToken
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &claims.UserID); err != nil {
		return claims, service.ErrInvalidToken
	}
	claims.SessionID = parts[2]
	return claims, nil
}

type mockEventLog struct {
	resp   []models.RunEvent
	err    error
	lastF  service.LogFilter
	called int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.RunEvent, error) {
	m.called++
	m.lastF = f
	return m.resp, m.err
}

type mockRunHistory struct {
	resp      []models.Run
	err       error
	lastLimit int
}

func (m *mockRunHistory) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	m.lastLimit = limit
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

// testEnv is a router backed by a real session registry talking to a fake
// device service.
type testEnv struct {
	router   *gin.Engine
	svc      *service.Service
	device   *device.FakeServer
	auth     *mockAuth
	logs     *mockEventLog
	runs     *mockRunHistory
	sessions *service.SessionRegistry
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dev := device.NewFakeServer()
	t.Cleanup(dev.Close)

	env := &testEnv{
		device: dev,
		auth:   newMockAuth(),
		logs:   &mockEventLog{},
		runs:   &mockRunHistory{},
		sessions: service.NewSessionRegistry(service.SessionDeps{
			Device:          device.NewClient(dev.URL, dev.Client()),
			Log:             logger.Nop(),
			Poller:          service.PollerConfig{Cadence: 20 * time.Millisecond},
			DefaultAmbientC: service.DefaultAmbientC,
		}),
	}
	t.Cleanup(func() { env.sessions.CloseAll(context.Background()) })

	env.svc = &service.Service{
		Authorization: env.auth,
		EventLog:      env.logs,
		RunHistory:    env.runs,
		Sessions:      env.sessions,
	}
	env.router = NewHandler(env.svc, nil, opts).InitRoutes()
	return env
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		_ = json.NewEncoder(&buf).Encode(b)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login opens a session as the default operator and returns its token.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	w := e.do(http.MethodPost, "/api/login", "", `{"username":"operator","password":"operator"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d, body=%s", w.Code, w.Body.String())
	}
	var out LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return out.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Error string `json:"error"`
	}
	decode(t, w, &out)
	return out.Error
}
