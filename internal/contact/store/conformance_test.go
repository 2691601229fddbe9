package store

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/suite"

	"rolodex/internal/contact/models"
)

// StoreSuite runs the Store contract against any implementation. Concrete
// suites embed it and set newStore; reset clears state between tests.
type StoreSuite struct {
	suite.Suite
	ctx      context.Context
	newStore func() Store
	reset    func()
	store    Store
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	if s.reset != nil {
		s.reset()
	}
	s.store = s.newStore()
}

func newContact(name string, addresses ...string) *models.Contact {
	c := &models.Contact{Name: name, Emails: []models.Email{}}
	for i, a := range addresses {
		c.Emails = append(c.Emails, models.Email{Address: a, IsPrimary: i == 0})
	}
	return c
}

// TestCreationAndLookups verifies created contacts get identifiers and show up in snapshots.
func (s *StoreSuite) TestCreationAndLookups() {
	s.Run("assigns identifiers to contact and emails", func() {
		birth := models.MustDate(1990, time.May, 17)
		in := newContact("Grace Hopper", "grace@example.com", "amazing@example.com")
		in.BirthDate = &birth

		created, err := s.store.CreateContact(s.ctx, in)
		s.Require().NoError(err)
		s.NotZero(created.ID)
		s.Require().Len(created.Emails, 2)
		s.NotZero(created.Emails[0].ID)
		s.NotEqual(created.Emails[0].ID, created.Emails[1].ID)
		s.Zero(in.ID, "input must not be mutated")

		all, err := s.store.GetAllContacts(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 1)
		s.Equal(created.ID, all[0].ID)
		s.Equal("Grace Hopper", all[0].Name)
		s.Require().NotNil(all[0].BirthDate)
		s.Equal(birth, *all[0].BirthDate)
		s.Equal([]string{"grace@example.com", "amazing@example.com"}, all[0].Addresses())
		s.True(all[0].Emails[0].IsPrimary)
	})

	s.Run("returns an empty snapshot when nothing is stored", func() {
		s.SetupTest()
		all, err := s.store.GetAllContacts(s.ctx)
		s.Require().NoError(err)
		s.Empty(all)
	})

	s.Run("snapshots are copies", func() {
		s.SetupTest()
		_, err := s.store.CreateContact(s.ctx, newContact("Copy", "copy@example.com"))
		s.Require().NoError(err)

		all, err := s.store.GetAllContacts(s.ctx)
		s.Require().NoError(err)
		all[0].Name = "mutated"
		all[0].Emails[0].Address = "mutated@example.com"

		again, err := s.store.GetAllContacts(s.ctx)
		s.Require().NoError(err)
		s.Equal("Copy", again[0].Name)
		s.Equal("copy@example.com", again[0].Emails[0].Address)
	})
}

// TestCreateUniqueness verifies the store-level guard on the create path.
func (s *StoreSuite) TestCreateUniqueness() {
	_, err := s.store.CreateContact(s.ctx, newContact("Ada", "ada@example.com"))
	s.Require().NoError(err)

	s.Run("rejects duplicate name", func() {
		_, err := s.store.CreateContact(s.ctx, newContact("Ada", "other@example.com"))
		s.ErrorIs(err, ErrConflict)
	})

	s.Run("rejects shared address", func() {
		_, err := s.store.CreateContact(s.ctx, newContact("Someone", "x@example.com", "ada@example.com"))
		s.ErrorIs(err, ErrConflict)
	})

	s.Run("allows duplicate addresses inside one contact", func() {
		_, err := s.store.CreateContact(s.ctx, newContact("Twice", "twice@example.com", "twice@example.com"))
		s.NoError(err)
	})
}

// TestConcurrentCreateSameName verifies exactly one of many racing creates wins.
func (s *StoreSuite) TestConcurrentCreateSameName() {
	const goroutines = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.CreateContact(s.ctx, newContact("Racer"))
			switch {
			case err == nil:
				successes.Add(1)
			case isConflict(err):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

// TestUpdates verifies full replacement semantics.
func (s *StoreSuite) TestUpdates() {
	created, err := s.store.CreateContact(s.ctx, newContact("Before", "a@example.com", "b@example.com"))
	s.Require().NoError(err)

	s.Run("replaces name, birth date and entire email set", func() {
		birth := models.MustDate(2001, time.January, 2)
		replacement := newContact("After", "c@example.com")
		replacement.ID = created.ID
		replacement.BirthDate = &birth

		updated, err := s.store.UpdateContact(s.ctx, replacement)
		s.Require().NoError(err)
		s.Equal(created.ID, updated.ID)

		all, err := s.store.GetAllContacts(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(all, 1)
		s.Equal("After", all[0].Name)
		s.Equal([]string{"c@example.com"}, all[0].Addresses())
		s.Require().NotNil(all[0].BirthDate)
		s.Equal(birth, *all[0].BirthDate)
	})

	s.Run("clears the birth date", func() {
		replacement := newContact("After", "c@example.com")
		replacement.ID = created.ID

		_, err := s.store.UpdateContact(s.ctx, replacement)
		s.Require().NoError(err)

		all, err := s.store.GetAllContacts(s.ctx)
		s.Require().NoError(err)
		s.Nil(all[0].BirthDate)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		missing := newContact("Ghost")
		missing.ID = created.ID + 1000
		_, err := s.store.UpdateContact(s.ctx, missing)
		s.ErrorIs(err, ErrNotFound)
	})

	s.Run("does not enforce uniqueness", func() {
		other, err := s.store.CreateContact(s.ctx, newContact("Other", "other@example.com"))
		s.Require().NoError(err)

		clash := newContact("After", "c@example.com")
		clash.ID = other.ID
		_, err = s.store.UpdateContact(s.ctx, clash)
		s.NoError(err)
	})
}

// TestDeletes verifies delete reports whether a record was removed.
func (s *StoreSuite) TestDeletes() {
	created, err := s.store.CreateContact(s.ctx, newContact("Doomed", "doomed@example.com"))
	s.Require().NoError(err)

	removed, err := s.store.DeleteContact(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(removed)

	removed, err = s.store.DeleteContact(s.ctx, created.ID)
	s.Require().NoError(err)
	s.False(removed)

	all, err := s.store.GetAllContacts(s.ctx)
	s.Require().NoError(err)
	s.Empty(all)

	s.Run("freed name and address can be reused", func() {
		_, err := s.store.CreateContact(s.ctx, newContact("Doomed", "doomed@example.com"))
		s.NoError(err)
	})
}
