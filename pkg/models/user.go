package models

// User is keyed by email in the users hash. PasswordHash is a salted
// PBKDF2-SHA512 hex digest; plaintext passwords are never stored.
type User struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	Salt         string `json:"salt"`
	Role         string `json:"role"`
	CreatedAt    int64  `json:"created_at"`
	LastLogin    int64  `json:"last_login,omitempty"`
}

// Session maps a token to its owner. Expiry is fixed at creation (7 days),
// not sliding.
type Session struct {
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}
