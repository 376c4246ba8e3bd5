// Package bbolt provides a BoltDB-backed persona and preference store.
package bbolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vioshim/proxyengine/internal/persona"
	"github.com/vioshim/proxyengine/internal/storage"
)

const (
	personaBucket    = "persona"
	preferenceBucket = "preference"
)

// Store provides a BoltDB-backed storage.PersonaStore and
// storage.PreferenceStore.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// personaRecord is the serialized persona form. Variant parent links are
// rebuilt on load, so variants serialize flat.
type personaRecord struct {
	ID           int64                  `json:"id"`
	OwnerID      int64                  `json:"owner_id"`
	ScopeID      int64                  `json:"scope_id"`
	DisplayName  string                 `json:"display_name"`
	DefaultImage string                 `json:"default_image,omitempty"`
	Pairs        []persona.BoundaryPair `json:"pairs,omitempty"`
	Variants     []variantRecord        `json:"variants,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type variantRecord struct {
	Name  string                 `json:"name"`
	Image string                 `json:"image,omitempty"`
	Pairs []persona.BoundaryPair `json:"pairs,omitempty"`
}

func encodePersona(p *persona.Persona) ([]byte, error) {
	record := personaRecord{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		ScopeID:      p.ScopeID,
		DisplayName:  p.DisplayName,
		DefaultImage: p.DefaultImage,
		Pairs:        p.Pairs,
		CreatedAt:    p.CreatedAt,
	}
	for _, v := range p.Variants {
		record.Variants = append(record.Variants, variantRecord{
			Name:  v.Name,
			Image: v.Image,
			Pairs: v.Pairs,
		})
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal persona: %w", err)
	}
	return payload, nil
}

func decodePersona(payload []byte) (*persona.Persona, error) {
	var record personaRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal persona: %w", err)
	}

	p := &persona.Persona{
		ID:           record.ID,
		OwnerID:      record.OwnerID,
		ScopeID:      record.ScopeID,
		DisplayName:  record.DisplayName,
		DefaultImage: record.DefaultImage,
		Pairs:        record.Pairs,
		CreatedAt:    record.CreatedAt,
	}
	for _, v := range record.Variants {
		p.AddVariant(&persona.Variant{Name: v.Name, Image: v.Image, Pairs: v.Pairs})
	}
	return p, nil
}

// Put persists a persona, assigning the next sequence ID when it has none.
func (s *Store) Put(ctx context.Context, p *persona.Persona) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if p == nil {
		return fmt.Errorf("persona is required")
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return persona.ErrEmptyDisplayName
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(personaBucket))
		if bucket == nil {
			return fmt.Errorf("persona bucket is missing")
		}
		if p.ID == 0 {
			seq, err := bucket.NextSequence()
			if err != nil {
				return fmt.Errorf("next persona id: %w", err)
			}
			p.ID = int64(seq)
		}
		payload, err := encodePersona(p)
		if err != nil {
			return err
		}
		return bucket.Put(recordKey(p.ID), payload)
	})
}

// Get fetches a persona by ID.
func (s *Store) Get(ctx context.Context, id int64) (*persona.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var p *persona.Persona
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(personaBucket))
		if bucket == nil {
			return fmt.Errorf("persona bucket is missing")
		}
		payload := bucket.Get(recordKey(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		decoded, err := decodePersona(payload)
		if err != nil {
			return err
		}
		p = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns an owner's personas within a scope, oldest first. Keys are
// sequence-ordered, so a forward scan already yields creation order.
func (s *Store) List(ctx context.Context, ownerID, scopeID int64) ([]*persona.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var personas []*persona.Persona
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(personaBucket))
		if bucket == nil {
			return fmt.Errorf("persona bucket is missing")
		}
		return bucket.ForEach(func(_, payload []byte) error {
			p, err := decodePersona(payload)
			if err != nil {
				return err
			}
			if p.OwnerID != ownerID || p.ScopeID != scopeID {
				return nil
			}
			personas = append(personas, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return personas, nil
}

// Delete removes a persona by ID.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(personaBucket))
		if bucket == nil {
			return fmt.Errorf("persona bucket is missing")
		}
		return bucket.Delete(recordKey(id))
	})
}

// PutTimezone records a user's IANA timezone name.
func (s *Store) PutTimezone(ctx context.Context, userID int64, zone string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	zone = strings.TrimSpace(zone)
	if zone == "" {
		return fmt.Errorf("timezone is required")
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", zone, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferenceBucket))
		if bucket == nil {
			return fmt.Errorf("preference bucket is missing")
		}
		return bucket.Put(recordKey(userID), []byte(zone))
	})
}

// Timezone fetches a user's IANA timezone name.
func (s *Store) Timezone(ctx context.Context, userID int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == nil || s.db == nil {
		return "", fmt.Errorf("storage is not configured")
	}

	var zone string
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(preferenceBucket))
		if bucket == nil {
			return fmt.Errorf("preference bucket is missing")
		}
		payload := bucket.Get(recordKey(userID))
		if payload == nil {
			return storage.ErrNotFound
		}
		zone = string(payload)
		return nil
	})
	if err != nil {
		return "", err
	}
	return zone, nil
}

// TimezoneFor adapts the preference store to the resolver's timezone
// lookup. A missing preference resolves to UTC.
func (s *Store) TimezoneFor(ctx context.Context, userID int64) (*time.Location, error) {
	zone, err := s.Timezone(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return time.UTC, nil
		}
		return nil, err
	}
	return time.LoadLocation(zone)
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{personaBucket, preferenceBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

func recordKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}
