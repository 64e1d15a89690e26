package models

// User is an operator allowed to open a session.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	// Secret is a bcrypt hash, or the raw password when the store runs in legacy plaintext mode.
	Secret string `json:"-"`
}
