// Package blobstore keeps uploaded images in a single bbolt file, keyed by
// a BLAKE3 digest of their content.
package blobstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	bolt "go.etcd.io/bbolt"

	"restaurant-ordering/internal/domain"
)

const MaxObjectSize = 5 << 20

var (
	bucketData = []byte("blobs")
	bucketType = []byte("content_types")
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object is a stored blob and where it can be fetched from.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

type Store struct {
	db      *bolt.DB
	baseURL string
}

// Open creates or opens the store at path. baseURL is the public origin
// the API is reachable on.
func Open(path, baseURL string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create blob dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketData, bucketType} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init blob buckets: %w", err)
	}
	return &Store{db: db, baseURL: baseURL}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Key derives the storage key for data of the given content type.
func Key(data []byte, contentType string) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:16]) + extensions[contentType]
}

func (s *Store) URL(key string) string { return s.baseURL + "/images/" + key }

// Put stores an image. Identical content maps to the same key, so repeated
// uploads are free.
func (s *Store) Put(ctx context.Context, contentType string, data []byte) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if _, ok := extensions[contentType]; !ok {
		return Object{}, domain.Invalid(fmt.Sprintf("unsupported content type %q", contentType))
	}
	if len(data) == 0 {
		return Object{}, domain.Invalid("empty upload")
	}
	if len(data) > MaxObjectSize {
		return Object{}, domain.Invalid(fmt.Sprintf("upload exceeds %d bytes", MaxObjectSize))
	}

	key := Key(data, contentType)
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketData).Put([]byte(key), data); err != nil {
			return err
		}
		return tx.Bucket(bucketType).Put([]byte(key), []byte(contentType))
	})
	if err != nil {
		return Object{}, fmt.Errorf("store blob: %w", err)
	}
	return Object{Key: key, URL: s.URL(key), ContentType: contentType, Size: len(data)}, nil
}

// Get returns a copy of the blob and its content type.
func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	var (
		data []byte
		ct   string
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketData).Get([]byte(key))
		if v == nil {
			return domain.ErrNotFound
		}
		data = append([]byte(nil), v...)
		ct = string(tx.Bucket(bucketType).Get([]byte(key)))
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", fmt.Errorf("blob %s: %w", key, err)
		}
		return nil, "", fmt.Errorf("read blob: %w", err)
	}
	return data, ct, nil
}
