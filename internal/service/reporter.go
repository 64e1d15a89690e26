package service

import (
	"sync"
	"time"
)

// ErrorCategory groups failures so a success only clears its own kind.
type ErrorCategory string

const (
	CategoryConnect ErrorCategory = "connect"
	CategoryStart   ErrorCategory = "start"
	CategoryFetch   ErrorCategory = "fetch"
)

// Operator-facing messages.
const (
	msgConnectFailed = "Failed to connect to the device"
	msgStartFailed   = "Failed to start process"
	msgFetchFailed   = "Failed to fetch data"
	msgNotConnected  = "Device is not connected"
	msgRunInProgress = "Process is already running"
)

// ErrorReport is the message currently shown to the operator.
type ErrorReport struct {
	Category ErrorCategory `json:"category"`
	Message  string        `json:"message"`
	At       time.Time     `json:"at"`
}

// ErrorReporter is a single-slot error channel. The last Set wins
// regardless of category; there is no history.
type ErrorReporter struct {
	mu   sync.RWMutex
	slot *ErrorReport
	now  func() time.Time
}

func NewErrorReporter() *ErrorReporter {
	return &ErrorReporter{now: time.Now}
}

// Set replaces whatever is currently shown.
func (r *ErrorReporter) Set(category ErrorCategory, message string) {
	r.mu.Lock()
	r.slot = &ErrorReport{Category: category, Message: message, At: r.now().UTC()}
	r.mu.Unlock()
}

// Clear empties the slot unconditionally.
func (r *ErrorReporter) Clear() {
	r.mu.Lock()
	r.slot = nil
	r.mu.Unlock()
}

// ClearCategory empties the slot only if it holds a failure of category.
func (r *ErrorReporter) ClearCategory(category ErrorCategory) {
	r.mu.Lock()
	if r.slot != nil && r.slot.Category == category {
		r.slot = nil
	}
	r.mu.Unlock()
}

// Current returns the visible report, if any.
func (r *ErrorReporter) Current() (ErrorReport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.slot == nil {
		return ErrorReport{}, false
	}
	return *r.slot, true
}
