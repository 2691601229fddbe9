// Package seed loads contacts from a YAML file through the regular create
// path, so seeded data obeys the same uniqueness rules as API traffic.
package seed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"rolodex/internal/contact/contract"
	"rolodex/internal/contact/models"
	dErrors "rolodex/pkg/domain-errors"
)

// Creator is the subset of the contact service used for seeding.
type Creator interface {
	Create(ctx context.Context, candidate *models.Contact) models.Outcome[*models.Contact]
}

// File is the seed document.
//
//	contacts:
//	  - name: Ada Lovelace
//	    birthDate: "1815-12-10"
//	    emails:
//	      - address: ada@example.com
//	        primary: true
type File struct {
	Contacts []Contact `yaml:"contacts"`
}

type Contact struct {
	Name      string  `yaml:"name"`
	BirthDate *string `yaml:"birthDate"`
	Emails    []Email `yaml:"emails"`
}

type Email struct {
	Address string `yaml:"address"`
	Primary bool   `yaml:"primary"`
}

// Result counts what a seed run did.
type Result struct {
	Created int
	Skipped int
}

// Parse decodes a seed document.
func Parse(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return File{}, fmt.Errorf("decode seed file: %w", err)
	}
	return f, nil
}

// LoadFile parses the seed file at path and creates its contacts.
func LoadFile(ctx context.Context, path string, contacts Creator, logger *slog.Logger) (Result, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open seed file: %w", err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return Result{}, err
	}
	return Apply(ctx, f, contacts, logger)
}

// Apply creates every contact in f. Contacts that already exist (by name or
// email) are skipped so seeding a persistent store twice is harmless. Any
// other failure stops the run.
func Apply(ctx context.Context, f File, contacts Creator, logger *slog.Logger) (Result, error) {
	var res Result
	for i, entry := range f.Contacts {
		candidate, err := entry.toContract().ToContact()
		if err != nil {
			return res, fmt.Errorf("seed contact %d (%q): %w", i, entry.Name, err)
		}

		out := contacts.Create(ctx, candidate)
		switch {
		case out.OK():
			res.Created++
		case out.Err().Code == dErrors.CodeConflict:
			res.Skipped++
			logger.DebugContext(ctx, "seed contact already present", "name", entry.Name)
		default:
			return res, fmt.Errorf("seed contact %d (%q): %w", i, entry.Name, out.Err())
		}
	}
	logger.InfoContext(ctx, "contacts seeded", "created", res.Created, "skipped", res.Skipped)
	return res, nil
}

func (c Contact) toContract() contract.ContactContract {
	out := contract.ContactContract{
		Name:      c.Name,
		BirthDate: c.BirthDate,
		Emails:    make([]contract.EmailContract, 0, len(c.Emails)),
	}
	for _, e := range c.Emails {
		out.Emails = append(out.Emails, contract.EmailContract{Address: e.Address, IsPrimary: e.Primary})
	}
	return out
}
