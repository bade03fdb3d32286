package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// CreateChatSession writes a session metadata record. Messages are held in
// the sibling chat:messages:{id} hash, never inline.
func (s *Store) CreateChatSession(visitor string) (*models.ChatSession, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixMilli()
	sess := models.ChatSession{
		ID:        utils.GenID("chat"),
		Visitor:   visitor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.writeChatSession(&sess); err != nil {
		return nil, err
	}
	logger.Info("chat_session_created", "id", sess.ID)
	return &sess, nil
}

// GetChatSession reads the metadata record and merges in the side hash
// messages sorted by timestamp ascending. Returns nil when absent.
func (s *Store) GetChatSession(id string) (*models.ChatSession, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keySessions, id)
	if err != nil {
		logger.Error("chat_session_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var sess models.ChatSession
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		logger.Error("chat_session_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	raw, err := s.kv.HGetAll(prefixChatMsgs + id)
	if err != nil {
		logger.Error("chat_messages_read_failed", "id", id, "error", err)
		return &sess, nil
	}
	for msgID, msgDoc := range raw {
		var m models.ChatMessage
		if err := json.Unmarshal([]byte(msgDoc), &m); err != nil {
			logger.Error("chat_message_unmarshal_failed", "session", id, "msg", msgID, "error", err)
			continue
		}
		sess.Messages = append(sess.Messages, m)
	}
	sort.Slice(sess.Messages, func(i, j int) bool {
		return sess.Messages[i].Timestamp < sess.Messages[j].Timestamp
	})
	return &sess, nil
}

// ListChatSessions returns session metadata (no messages) newest-activity
// first.
func (s *Store) ListChatSessions() ([]models.ChatSession, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.kv.HGetAll(keySessions)
	if err != nil {
		logger.Error("chat_session_list_failed", "error", err)
		return []models.ChatSession{}, nil
	}
	out := make([]models.ChatSession, 0, len(all))
	for id, doc := range all {
		var sess models.ChatSession
		if err := json.Unmarshal([]byte(doc), &sess); err != nil {
			logger.Error("chat_session_unmarshal_failed", "id", id, "error", err)
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

// AppendChatMessage stores one message in the session's side hash and bumps
// the session's UpdatedAt. Returns nil when the session does not exist.
func (s *Store) AppendChatMessage(sessionID, role, content string) (*models.ChatMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keySessions, sessionID)
	if err != nil || !ok {
		return nil, err
	}
	var sess models.ChatSession
	if err := json.Unmarshal([]byte(doc), &sess); err != nil {
		logger.Error("chat_session_unmarshal_failed", "id", sessionID, "error", err)
		return nil, nil
	}
	m := models.ChatMessage{
		ID:        utils.GenID("cmsg"),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC().UnixMilli(),
	}
	msgDoc, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := s.kv.HSet(prefixChatMsgs+sessionID, m.ID, string(msgDoc)); err != nil {
		return nil, err
	}
	sess.UpdatedAt = m.Timestamp
	if err := s.writeChatSession(&sess); err != nil {
		return nil, err
	}
	logger.Info("chat_message_appended", "session", sessionID, "role", role)
	return &m, nil
}

// DeleteChatSession removes the session record and its entire message hash.
func (s *Store) DeleteChatSession(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	_, ok, err := s.kv.HGet(keySessions, id)
	if err != nil || !ok {
		return false, err
	}
	msgs, err := s.kv.HGetAll(prefixChatMsgs + id)
	if err == nil {
		for msgID := range msgs {
			if err := s.kv.HDel(prefixChatMsgs+id, msgID); err != nil {
				return false, err
			}
		}
	}
	if err := s.kv.HDel(keySessions, id); err != nil {
		return false, err
	}
	logger.Info("chat_session_deleted", "id", id)
	return true, nil
}

func (s *Store) writeChatSession(sess *models.ChatSession) error {
	// Messages never serialize into the session record.
	clone := *sess
	clone.Messages = nil
	doc, err := json.Marshal(clone)
	if err != nil {
		return err
	}
	return s.kv.HSet(keySessions, sess.ID, string(doc))
}
