package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"rolodex/internal/contact/models"
	"rolodex/pkg/platform/tx"
)

// Schema creates the contact tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	birth_date DATE
);

CREATE TABLE IF NOT EXISTS contact_emails (
	id         BIGSERIAL PRIMARY KEY,
	contact_id BIGINT NOT NULL REFERENCES contacts (id) ON DELETE CASCADE,
	is_primary BOOLEAN NOT NULL DEFAULT FALSE,
	address    TEXT NOT NULL,
	position   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS contact_emails_contact_id_idx ON contact_emails (contact_id);
CREATE INDEX IF NOT EXISTS contact_emails_address_idx ON contact_emails (address);
CREATE INDEX IF NOT EXISTS contacts_name_idx ON contacts (name);
`

// createLockKey serializes contact creation across connections.
const createLockKey int64 = 0x726f6c6f646578

const pqUniqueViolation = "23505"

// Migrate applies Schema.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply contact schema: %w", err)
	}
	return nil
}

// PostgresStore persists contacts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

// NewPostgres constructs a PostgreSQL-backed contact store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	created := contact.Clone()
	err := tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, createLockKey); err != nil {
			return fmt.Errorf("acquire create lock: %w", err)
		}

		var taken bool
		err := sqlTx.QueryRowContext(ctx, `
			SELECT EXISTS (SELECT 1 FROM contacts WHERE name = $1)
			    OR EXISTS (SELECT 1 FROM contact_emails WHERE address = ANY($2))`,
			created.Name, pq.Array(created.Addresses()),
		).Scan(&taken)
		if err != nil {
			return fmt.Errorf("check contact uniqueness: %w", err)
		}
		if taken {
			return ErrConflict
		}

		err = sqlTx.QueryRowContext(ctx,
			`INSERT INTO contacts (name, birth_date) VALUES ($1, $2) RETURNING id`,
			created.Name, nullDate(created.BirthDate),
		).Scan(&created.ID)
		if err != nil {
			return fmt.Errorf("insert contact: %w", err)
		}
		return insertEmails(ctx, sqlTx, created)
	})
	if err != nil {
		return nil, translatePostgresError(err)
	}
	return created, nil
}

func (s *PostgresStore) GetAllContacts(ctx context.Context) ([]*models.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, birth_date FROM contacts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	byID := make(map[int64]*models.Contact)
	for rows.Next() {
		var (
			c     models.Contact
			birth sql.NullTime
		)
		if err := rows.Scan(&c.ID, &c.Name, &birth); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		if birth.Valid {
			d := models.DateOf(birth.Time)
			c.BirthDate = &d
		}
		c.Emails = []models.Email{}
		contacts = append(contacts, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}

	emailRows, err := s.db.QueryContext(ctx,
		`SELECT contact_id, id, is_primary, address FROM contact_emails ORDER BY contact_id, position`)
	if err != nil {
		return nil, fmt.Errorf("list contact emails: %w", err)
	}
	defer emailRows.Close()

	for emailRows.Next() {
		var (
			contactID int64
			e         models.Email
		)
		if err := emailRows.Scan(&contactID, &e.ID, &e.IsPrimary, &e.Address); err != nil {
			return nil, fmt.Errorf("scan contact email: %w", err)
		}
		// A contact inserted between the two reads has no row in byID yet.
		if c, ok := byID[contactID]; ok {
			c.Emails = append(c.Emails, e)
		}
	}
	if err := emailRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact emails: %w", err)
	}
	return contacts, nil
}

func (s *PostgresStore) UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	updated := contact.Clone()
	err := tx.Run(ctx, s.db, func(ctx context.Context, sqlTx *sql.Tx) error {
		res, err := sqlTx.ExecContext(ctx,
			`UPDATE contacts SET name = $2, birth_date = $3 WHERE id = $1`,
			updated.ID, updated.Name, nullDate(updated.BirthDate),
		)
		if err != nil {
			return fmt.Errorf("update contact: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update contact rows: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		if _, err := sqlTx.ExecContext(ctx, `DELETE FROM contact_emails WHERE contact_id = $1`, updated.ID); err != nil {
			return fmt.Errorf("clear contact emails: %w", err)
		}
		return insertEmails(ctx, sqlTx, updated)
	})
	if err != nil {
		return nil, translatePostgresError(err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteContact(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete contact rows: %w", err)
	}
	return n > 0, nil
}

// insertEmails writes c.Emails in one statement and copies the generated
// IDs back by position.
func insertEmails(ctx context.Context, sqlTx *sql.Tx, c *models.Contact) error {
	if len(c.Emails) == 0 {
		return nil
	}
	primaries := make([]bool, len(c.Emails))
	addresses := make([]string, len(c.Emails))
	for i, e := range c.Emails {
		primaries[i] = e.IsPrimary
		addresses[i] = e.Address
	}

	rows, err := sqlTx.QueryContext(ctx, `
		INSERT INTO contact_emails (contact_id, is_primary, address, position)
		SELECT $1, e.is_primary, e.address, e.ord
		FROM unnest($2::boolean[], $3::text[]) WITH ORDINALITY AS e (is_primary, address, ord)
		RETURNING id, position`,
		c.ID, pq.Array(primaries), pq.Array(addresses),
	)
	if err != nil {
		return fmt.Errorf("insert contact emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id       int64
			position int
		)
		if err := rows.Scan(&id, &position); err != nil {
			return fmt.Errorf("scan email id: %w", err)
		}
		if position >= 1 && position <= len(c.Emails) {
			c.Emails[position-1].ID = id
		}
	}
	return rows.Err()
}

func nullDate(d *models.Date) sql.NullTime {
	if d == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time(), Valid: true}
}

func translatePostgresError(err error) error {
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrNotFound) {
		return err
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pqErr.Constraint)
	}
	return err
}
