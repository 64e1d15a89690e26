package device

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"

	"heater_control/internal/models"
)

// FakeServer is an in-process device-control service for tests. Zero
// values answer like a healthy device.
type FakeServer struct {
	*httptest.Server

	mu sync.Mutex

	// ConnectError, if set, is returned as {"error": ...} with status 500.
	ConnectError string
	// StartRejected answers /start_process with {"success": false}.
	StartRejected bool
	// Data is returned by /get_data; nil means {"temperature": 25}.
	Data map[string]any
	// DataStatus overrides the /get_data status code.
	DataStatus int
	// DataGate, if set, holds each /get_data response until a value is received.
	DataGate chan struct{}

	connectCalls int
	startCalls   int
	dataCalls    int
	lastProfiles []models.SubmittedStep
}

// NewFakeServer starts a fake device service. Close it when done.
func NewFakeServer() *FakeServer {
	f := &FakeServer{}
	mux := http.NewServeMux()
	mux.HandleFunc(connectPath, f.handleConnect)
	mux.HandleFunc(startPath, f.handleStart)
	mux.HandleFunc(dataPath, f.handleData)
	f.Server = httptest.NewServer(mux)
	return f
}

// Configure mutates the fake under its lock.
func (f *FakeServer) Configure(fn func(f *FakeServer)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// Calls returns how often each endpoint was hit.
func (f *FakeServer) Calls() (connect, start, data int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connectCalls, f.startCalls, f.dataCalls
}

// LastProfiles returns the steps of the most recent /start_process body.
func (f *FakeServer) LastProfiles() []models.SubmittedStep {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastProfiles
}

func (f *FakeServer) handleConnect(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.connectCalls++
	msg := f.ConnectError
	f.mu.Unlock()

	if msg != "" {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Connected to power supplies"})
}

func (f *FakeServer) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	f.mu.Lock()
	f.startCalls++
	f.lastProfiles = req.Profiles
	rejected := f.StartRejected
	f.mu.Unlock()

	if rejected {
		writeJSON(w, http.StatusOK, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (f *FakeServer) handleData(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.dataCalls++
	gate := f.DataGate
	data := f.Data
	status := f.DataStatus
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}
	if data == nil {
		data = map[string]any{"temperature": 25.0}
	}
	if status == 0 {
		status = http.StatusOK
	}
	writeJSON(w, status, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
