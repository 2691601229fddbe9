// Package contract translates between the JSON wire shape of a contact and
// the domain model.
package contract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rolodex/internal/contact/models"
)

var (
	// ErrMalformedDate is returned for birth dates that are not YYYY-MM-DD
	// calendar dates.
	ErrMalformedDate = errors.New("malformed date")
	// ErrMissingName is returned when a contract has a blank name.
	ErrMissingName = errors.New("contact name is required")
)

// ContactContract is the wire representation of a contact.
type ContactContract struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	BirthDate *string         `json:"birthDate"`
	Emails    []EmailContract `json:"emails"`
}

type EmailContract struct {
	ID        int64  `json:"id"`
	IsPrimary bool   `json:"isPrimary"`
	Address   string `json:"address"`
}

// ParseDate reads a YYYY-MM-DD date. Empty or whitespace-only input is an
// absent date, not an error. Segments need not be zero padded.
func ParseDate(raw string) (*models.Date, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %q has %d segments", ErrMalformedDate, raw, len(parts))
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedDate, raw, err)
		}
		nums[i] = n
	}

	d, err := models.NewDate(nums[0], time.Month(nums[1]), nums[2])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedDate, raw, err)
	}
	return &d, nil
}

// FormatDate renders d as YYYY-MM-DD, or "" for an absent date.
func FormatDate(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// ToContact converts a contract into a domain contact.
func (c ContactContract) ToContact() (*models.Contact, error) {
	if strings.TrimSpace(c.Name) == "" {
		return nil, ErrMissingName
	}

	var birthDate *models.Date
	if c.BirthDate != nil {
		d, err := ParseDate(*c.BirthDate)
		if err != nil {
			return nil, err
		}
		birthDate = d
	}

	emails := make([]models.Email, 0, len(c.Emails))
	for _, e := range c.Emails {
		emails = append(emails, models.Email{ID: e.ID, IsPrimary: e.IsPrimary, Address: e.Address})
	}

	return &models.Contact{
		ID:        c.ID,
		Name:      c.Name,
		BirthDate: birthDate,
		Emails:    emails,
	}, nil
}

// FromContact converts a domain contact to its wire form.
func FromContact(c *models.Contact) ContactContract {
	out := ContactContract{
		ID:     c.ID,
		Name:   c.Name,
		Emails: make([]EmailContract, 0, len(c.Emails)),
	}
	if c.BirthDate != nil {
		s := FormatDate(c.BirthDate)
		out.BirthDate = &s
	}
	for _, e := range c.Emails {
		out.Emails = append(out.Emails, EmailContract{ID: e.ID, IsPrimary: e.IsPrimary, Address: e.Address})
	}
	return out
}

func FromContacts(contacts []*models.Contact) []ContactContract {
	out := make([]ContactContract, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, FromContact(c))
	}
	return out
}
