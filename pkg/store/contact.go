package store

import (
	"encoding/json"
	"sort"
	"time"

	"foliodb/pkg/logger"
	"foliodb/pkg/models"
	"foliodb/pkg/utils"
)

// ContactInput is the public intake shape of a contact message.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactPatch flips the read/replied flags; nil fields are left unchanged.
type ContactPatch struct {
	Read    *bool `json:"read,omitempty"`
	Replied *bool `json:"replied,omitempty"`
}

// CreateContactMessage writes the primary record. Contact messages carry no
// secondary indexes; listings sort by timestamp at read time.
func (s *Store) CreateContactMessage(in ContactInput) (*models.ContactMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	m := models.ContactMessage{
		ID:        utils.GenID("msg"),
		Name:      in.Name,
		Email:     in.Email,
		Subject:   in.Subject,
		Message:   in.Message,
		Timestamp: time.Now().UTC().UnixMilli(),
	}
	if err := s.writeContact(&m); err != nil {
		return nil, err
	}
	logger.Info("contact_message_created", "id", m.ID, "from", m.Email)
	return &m, nil
}

// GetContactMessage returns nil when absent.
func (s *Store) GetContactMessage(id string) (*models.ContactMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, ok, err := s.kv.HGet(keyContact, id)
	if err != nil {
		logger.Error("contact_read_failed", "id", id, "error", err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}
	var m models.ContactMessage
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		logger.Error("contact_unmarshal_failed", "id", id, "error", err)
		return nil, nil
	}
	return &m, nil
}

// ListContactMessages returns all messages newest-first; unreadOnly narrows
// to unread ones.
func (s *Store) ListContactMessages(unreadOnly bool) ([]models.ContactMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	all, err := s.kv.HGetAll(keyContact)
	if err != nil {
		logger.Error("contact_list_failed", "error", err)
		return []models.ContactMessage{}, nil
	}
	out := make([]models.ContactMessage, 0, len(all))
	for id, doc := range all {
		var m models.ContactMessage
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			logger.Error("contact_unmarshal_failed", "id", id, "error", err)
			continue
		}
		if unreadOnly && m.Read {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// UpdateContactMessage merges the read/replied flags. Returns nil when
// absent.
func (s *Store) UpdateContactMessage(id string, patch ContactPatch) (*models.ContactMessage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	m, err := s.GetContactMessage(id)
	if err != nil || m == nil {
		return nil, err
	}
	if patch.Read != nil {
		m.Read = *patch.Read
	}
	if patch.Replied != nil {
		m.Replied = *patch.Replied
	}
	if err := s.writeContact(m); err != nil {
		return nil, err
	}
	logger.Info("contact_message_updated", "id", m.ID, "read", m.Read, "replied", m.Replied)
	return m, nil
}

// DeleteContactMessage removes the primary record.
func (s *Store) DeleteContactMessage(id string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	m, err := s.GetContactMessage(id)
	if err != nil || m == nil {
		return false, err
	}
	if err := s.kv.HDel(keyContact, id); err != nil {
		return false, err
	}
	logger.Info("contact_message_deleted", "id", id)
	return true, nil
}

func (s *Store) writeContact(m *models.ContactMessage) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.kv.HSet(keyContact, m.ID, string(doc))
}
