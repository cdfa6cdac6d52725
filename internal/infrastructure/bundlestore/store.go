// Package bundlestore persists fitted bundles in a BoltDB file.
//
// Each bundle is stored as JSON under its version in the bundles bucket; the
// meta bucket records the most recently saved version.
package bundlestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/compliancelens/backend/internal/domain"
	"github.com/compliancelens/backend/internal/model"
)

const (
	bundlesBucket = "bundles"
	metaBucket    = "meta"
	latestKey     = "latest"
)

// Store provides persistent storage for fitted bundles
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the bundle database at path
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bundlesBucket)); err != nil {
			return fmt.Errorf("create bundles bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
			return fmt.Errorf("create meta bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save validates and stores a bundle and marks it as the latest
func (s *Store) Save(ctx context.Context, bundle *model.Bundle) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bundle.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket([]byte(bundlesBucket)).Put([]byte(bundle.Version), data); err != nil {
			return fmt.Errorf("store bundle: %w", err)
		}
		return tx.Bucket([]byte(metaBucket)).Put([]byte(latestKey), []byte(bundle.Version))
	})
}

// Load returns the bundle with the given version, or the latest when version is empty
func (s *Store) Load(ctx context.Context, version string) (*model.Bundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var bundle model.Bundle
	err := s.db.View(func(tx *bbolt.Tx) error {
		if version == "" {
			latest := tx.Bucket([]byte(metaBucket)).Get([]byte(latestKey))
			if latest == nil {
				return fmt.Errorf("%w: no bundle has been saved", domain.ErrBundleNotFound)
			}
			version = string(latest)
		}

		data := tx.Bucket([]byte(bundlesBucket)).Get([]byte(version))
		if data == nil {
			return fmt.Errorf("%w: version %s", domain.ErrBundleNotFound, version)
		}
		if err := json.Unmarshal(data, &bundle); err != nil {
			return fmt.Errorf("%w: decode version %s: %v", domain.ErrInvalidBundle, version, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := bundle.Validate(); err != nil {
		return nil, err
	}
	return &bundle, nil
}

// List returns summaries of all stored bundles, newest first
func (s *Store) List(ctx context.Context) ([]model.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var summaries []model.Summary
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bundlesBucket)).ForEach(func(k, v []byte) error {
			var bundle model.Bundle
			if err := json.Unmarshal(v, &bundle); err != nil {
				return fmt.Errorf("%w: decode version %s: %v", domain.ErrInvalidBundle, k, err)
			}
			summaries = append(summaries, bundle.Summarize())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}
