package service

import "time"

// LogFilter narrows the audit log by time range and event type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "CONNECT", "START", "STOP", "ERROR", "LOGIN", "LOGOUT"
}

// AuthOptions configure token issuing and credential comparison.
type AuthOptions struct {
	SigningKey string
	TokenTTL   time.Duration
	// LegacyPlaintext compares stored secrets as raw passwords, for
	// credential stores migrated from a flat file.
	LegacyPlaintext bool
}
