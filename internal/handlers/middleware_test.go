package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSessionMiddleware_Errors(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		wantErr string
	}{
		{name: "missing header", header: "", wantErr: "missing Authorization header"},
		{name: "invalid scheme", header: "Token abc", wantErr: "invalid Authorization header format"},
		{name: "bearer without token", header: "Bearer", wantErr: "invalid Authorization header format"},
		{name: "invalid token", header: "Bearer expired", wantErr: "invalid or expired token"},
		{name: "unknown session", header: "Bearer tok:1:gone", wantErr: "session is no longer active"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			env.router.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401 (body=%s)", w.Code, w.Body.String())
			}
			if got := errorOf(t, w); got != tc.wantErr {
				t.Fatalf("error message: got %q, want %q", got, tc.wantErr)
			}
		})
	}
}

func TestSessionMiddleware_SetsContext(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.login(t)

	h := NewHandler(env.svc, nil, Options{})
	r := gin.New()
	r.GET("/secure", h.sessionMiddleware, func(c *gin.Context) {
		uid, _ := c.Get(ctxUserID)
		c.JSON(http.StatusOK, gin.H{"userId": uid, "session": currentSession(c).ID})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID  int    `json:"userId"`
		Session string `json:"session"`
	}
	decode(t, w, &resp)
	if resp.UserID != 1 || resp.Session == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if env.auth.lastParseToken != token {
		t.Fatalf("ParseToken got %q, want %q", env.auth.lastParseToken, token)
	}
}

func TestSessionMiddleware_QueryToken(t *testing.T) {
	env := newTestEnv(t, Options{})
	token := env.login(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/state?token="+token, nil)
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
}
