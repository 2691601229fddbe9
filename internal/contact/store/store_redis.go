package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rolodex/internal/contact/models"
)

const (
	redisContactSeqKey = "contacts:seq"
	redisEmailSeqKey   = "contacts:email_seq"
	redisIndexKey      = "contacts:ids"
	redisContactPrefix = "contact:"

	// maxTxRetries bounds optimistic-lock retries when concurrent writers
	// touch the contact index between WATCH and EXEC.
	maxTxRetries = 10
)

// ErrTooMuchContention is returned when a Redis transaction keeps losing
// its optimistic lock.
var ErrTooMuchContention = errors.New("redis: too much contention on contact index")

// redisReader is the subset of commands shared by clients and WATCH transactions.
type redisReader interface {
	ZRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

type redisCounter interface {
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
}

// RedisStore persists contacts as JSON documents in Redis. The ID index is a
// sorted set so listing follows creation order.
type RedisStore struct {
	client redis.UniversalClient
}

var _ Store = (*RedisStore)(nil)

// NewRedis constructs a Redis-backed contact store.
func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

type redisEmail struct {
	ID        int64  `json:"id"`
	IsPrimary bool   `json:"is_primary"`
	Address   string `json:"address"`
}

type redisContact struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	BirthDate string       `json:"birth_date,omitempty"`
	Emails    []redisEmail `json:"emails"`
}

func (s *RedisStore) CreateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	created := contact.Clone()

	txf := func(tx *redis.Tx) error {
		existing, err := s.loadAll(ctx, tx)
		if err != nil {
			return err
		}
		if conflicting(created, existing) {
			return ErrConflict
		}

		id, err := tx.Incr(ctx, redisContactSeqKey).Result()
		if err != nil {
			return fmt.Errorf("allocate contact id: %w", err)
		}
		created.ID = id
		if err := s.assignEmailIDs(ctx, tx, created); err != nil {
			return err
		}
		payload, err := encodeContact(created)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, contactKey(id), payload, 0)
			pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(id), Member: id})
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, redisIndexKey); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *RedisStore) GetAllContacts(ctx context.Context) ([]*models.Contact, error) {
	return s.loadAll(ctx, s.client)
}

func (s *RedisStore) UpdateContact(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	updated := contact.Clone()
	key := contactKey(updated.ID)

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check contact: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := s.assignEmailIDs(ctx, tx, updated); err != nil {
			return err
		}
		payload, err := encodeContact(updated)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RedisStore) DeleteContact(ctx context.Context, id int64) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, contactKey(id))
		pipe.ZRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	return del.Val() > 0, nil
}

// watch runs txf under WATCH on keys, retrying when the optimistic lock fails.
func (s *RedisStore) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooMuchContention
}

func (s *RedisStore) loadAll(ctx context.Context, c redisReader) ([]*models.Contact, error) {
	ids, err := c.ZRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list contact ids: %w", err)
	}
	if len(ids) == 0 {
		return []*models.Contact{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisContactPrefix + id
	}
	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	contacts := make([]*models.Contact, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}
		contact, err := decodeContact(raw)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func (s *RedisStore) assignEmailIDs(ctx context.Context, c redisCounter, contact *models.Contact) error {
	n := int64(len(contact.Emails))
	if n == 0 {
		return nil
	}
	last, err := c.IncrBy(ctx, redisEmailSeqKey, n).Result()
	if err != nil {
		return fmt.Errorf("allocate email ids: %w", err)
	}
	for i := range contact.Emails {
		contact.Emails[i].ID = last - n + int64(i) + 1
	}
	return nil
}

func contactKey(id int64) string {
	return redisContactPrefix + strconv.FormatInt(id, 10)
}

func encodeContact(c *models.Contact) (string, error) {
	doc := redisContact{ID: c.ID, Name: c.Name, Emails: make([]redisEmail, 0, len(c.Emails))}
	if c.BirthDate != nil {
		doc.BirthDate = c.BirthDate.String()
	}
	for _, e := range c.Emails {
		doc.Emails = append(doc.Emails, redisEmail(e))
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode contact: %w", err)
	}
	return string(b), nil
}

func decodeContact(raw string) (*models.Contact, error) {
	var doc redisContact
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode contact: %w", err)
	}
	c := &models.Contact{ID: doc.ID, Name: doc.Name, Emails: make([]models.Email, 0, len(doc.Emails))}
	if doc.BirthDate != "" {
		t, err := time.Parse(time.DateOnly, doc.BirthDate)
		if err != nil {
			return nil, fmt.Errorf("decode contact %d birth date: %w", doc.ID, err)
		}
		d := models.DateOf(t)
		c.BirthDate = &d
	}
	for _, e := range doc.Emails {
		c.Emails = append(c.Emails, models.Email(e))
	}
	return c, nil
}
