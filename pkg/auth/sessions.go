package auth

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"foliodb/pkg/kv"
	"foliodb/pkg/logger"
	"foliodb/pkg/models"
)

// SessionTTL is fixed at creation; expiry does not slide on use.
const SessionTTL = 7 * 24 * time.Hour

const sessionPrefix = "session:"

// CreateSession mints a token for an authenticated email and stores it as a
// scalar key with the fixed TTL.
func (s *Service) CreateSession(email string) (string, error) {
	if s.kv == nil {
		return "", kv.ErrNotConfigured
	}
	token := uuid.NewString()
	sess := models.Session{Email: email, CreatedAt: time.Now().UTC().UnixMilli()}
	doc, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	key := sessionPrefix + token
	if err := s.kv.Set(key, string(doc)); err != nil {
		return "", err
	}
	if err := s.kv.Expire(key, SessionTTL); err != nil {
		return "", err
	}
	logger.Info("session_created", "email", email)
	return token, nil
}

// ValidateSession resolves a token to its user. Expired or unknown tokens
// yield nil, not an error; so does a token whose user has since been
// removed.
func (s *Service) ValidateSession(token string) (*models.User, error) {
	if s.kv == nil || token == "" {
		return nil, nil
	}
	doc, ok, err := s.kv.Get(sessionPrefix + token)
	if err != nil {
		logger.Error("session_read_failed", "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		return nil, nil
	}
	return s.GetUser(sess.Email)
}

// DestroySession removes the token. Destroying an absent token is a no-op.
func (s *Service) DestroySession(token string) error {
	if s.kv == nil || token == "" {
		return nil
	}
	return s.kv.Del(sessionPrefix + token)
}
