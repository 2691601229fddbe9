package models

import "slices"

// Contact is a person in the address book.
//
// Invariants:
//   - ID is assigned by the store on create and never changes
//   - Name is non-empty
//   - Email addresses are unique across contacts (enforced on create only);
//     duplicates inside one contact's own set are allowed
type Contact struct {
	ID        int64
	Name      string
	BirthDate *Date
	Emails    []Email
}

// Email is an address owned by exactly one contact.
type Email struct {
	ID        int64
	IsPrimary bool
	Address   string
}

// Clone returns a deep copy so callers never share state with a store.
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	out := *c
	if c.BirthDate != nil {
		d := *c.BirthDate
		out.BirthDate = &d
	}
	out.Emails = slices.Clone(c.Emails)
	if out.Emails == nil {
		out.Emails = []Email{}
	}
	return &out
}

// Addresses returns the contact's email addresses in order.
func (c *Contact) Addresses() []string {
	addresses := make([]string, 0, len(c.Emails))
	for _, e := range c.Emails {
		addresses = append(addresses, e.Address)
	}
	return addresses
}

// SharesAddressWith reports whether any address of c appears, byte for byte,
// among other's addresses.
func (c *Contact) SharesAddressWith(other *Contact) bool {
	if c == nil || other == nil || len(c.Emails) == 0 || len(other.Emails) == 0 {
		return false
	}
	known := make(map[string]struct{}, len(other.Emails))
	for _, e := range other.Emails {
		known[e.Address] = struct{}{}
	}
	for _, e := range c.Emails {
		if _, ok := known[e.Address]; ok {
			return true
		}
	}
	return false
}

// ConflictsWith reports whether creating c would duplicate other's name or
// any of its email addresses.
func (c *Contact) ConflictsWith(other *Contact) bool {
	return c.Name == other.Name || c.SharesAddressWith(other)
}
