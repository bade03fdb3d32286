// Package auth holds the admin user registry and token sessions. Users live
// in a single hash keyed by email; sessions are scalar keys with a fixed
// seven-day expiry.
package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"foliodb/pkg/kv"
	"foliodb/pkg/logger"
	"foliodb/pkg/models"
)

const keyUsers = "users"

// Service owns user and session persistence.
type Service struct {
	kv kv.Client
}

// NewService returns a service over the given client. A nil client is
// accepted; every call then reports kv.ErrNotConfigured or its read-side
// empty equivalent.
func NewService(c kv.Client) *Service {
	return &Service{kv: c}
}

// CreateUser registers an admin user. Email is lowercased; an existing
// record with the same email is an error, not an overwrite.
func (s *Service) CreateUser(email, password, role string) (*models.User, error) {
	if s.kv == nil {
		return nil, kv.ErrNotConfigured
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if _, ok, err := s.kv.HGet(keyUsers, email); err != nil {
		return nil, err
	} else if ok {
		return nil, fmt.Errorf("user %s already exists", email)
	}
	hash, salt, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = "admin"
	}
	u := models.User{
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		Role:         role,
		CreatedAt:    time.Now().UTC().UnixMilli(),
	}
	if err := s.writeUser(&u); err != nil {
		return nil, err
	}
	logger.Info("user_created", "email", email, "role", role)
	return &u, nil
}

// GetUser returns nil when absent or when the store is unreachable.
func (s *Service) GetUser(email string) (*models.User, error) {
	if s.kv == nil {
		return nil, nil
	}
	doc, ok, err := s.kv.HGet(keyUsers, strings.ToLower(email))
	if err != nil {
		logger.Error("user_read_failed", "email", email, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(doc), &u); err != nil {
		logger.Error("user_unmarshal_failed", "email", email, "error", err)
		return nil, nil
	}
	return &u, nil
}

// Authenticate checks the password and, on success, stamps LastLogin and
// returns the user. A wrong password and an unknown email are
// indistinguishable to the caller.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	if s.kv == nil {
		return nil, kv.ErrNotConfigured
	}
	u, err := s.GetUser(email)
	if err != nil || u == nil {
		return nil, nil
	}
	if !VerifyPassword(password, u.PasswordHash, u.Salt) {
		logger.Warn("login_rejected", "email", u.Email)
		return nil, nil
	}
	u.LastLogin = time.Now().UTC().UnixMilli()
	if err := s.writeUser(u); err != nil {
		logger.Error("last_login_write_failed", "email", u.Email, "error", err)
	}
	return u, nil
}

// EnsureUser creates the user only when absent, for bootstrap from config.
func (s *Service) EnsureUser(email, password, role string) error {
	if s.kv == nil {
		return kv.ErrNotConfigured
	}
	u, err := s.GetUser(email)
	if err != nil {
		return err
	}
	if u != nil {
		return nil
	}
	_, err = s.CreateUser(email, password, role)
	return err
}

func (s *Service) writeUser(u *models.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyUsers, u.Email, string(doc))
}
