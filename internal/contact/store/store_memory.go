package store

import (
	"context"
	"sync"

	"rolodex/internal/contact/models"
)

// InMemory keeps contacts in insertion order behind a mutex.
type InMemory struct {
	mu          sync.RWMutex
	contacts    []*models.Contact
	nextContact int64
	nextEmail   int64
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{nextContact: 1, nextEmail: 1}
}

func (s *InMemory) CreateContact(_ context.Context, contact *models.Contact) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if conflicting(contact, s.contacts) {
		return nil, ErrConflict
	}

	stored := contact.Clone()
	stored.ID = s.nextContact
	s.nextContact++
	s.assignEmailIDs(stored)
	s.contacts = append(s.contacts, stored)
	return stored.Clone(), nil
}

func (s *InMemory) GetAllContacts(_ context.Context) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *InMemory) UpdateContact(_ context.Context, contact *models.Contact) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(contact.ID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	replacement := contact.Clone()
	s.assignEmailIDs(replacement)
	s.contacts[idx] = replacement
	return replacement.Clone(), nil
}

func (s *InMemory) DeleteContact(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}
	s.contacts = append(s.contacts[:idx], s.contacts[idx+1:]...)
	return true, nil
}

func (s *InMemory) indexOf(id int64) int {
	for i, c := range s.contacts {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// assignEmailIDs gives every email a fresh identifier; the email set is
// always replaced as a whole, never merged.
func (s *InMemory) assignEmailIDs(c *models.Contact) {
	for i := range c.Emails {
		c.Emails[i].ID = s.nextEmail
		s.nextEmail++
	}
}
