// Package store persists Values in named buckets, either in a bbolt file or
// in memory, and resolves asset references through a persistent Catalog.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/andreyvit/datum"
	"go.etcd.io/bbolt"
)

var (
	ErrNotFound = errors.New("not found")
	ErrKeyEmpty = errors.New("empty bucket name or key")
)

type Options struct {
	Logger *slog.Logger

	// Verbose logs every write at debug level.
	Verbose bool

	// IsTesting trades durability for speed.
	IsTesting bool

	// MmapSize overrides the initial bbolt mmap size.
	MmapSize int

	// Timeout bounds waiting for the file lock held by another process.
	// Defaults to 10 seconds.
	Timeout time.Duration

	// Assets resolves asset names the Catalog does not know.
	Assets datum.AssetResolver
}

// Store is safe for concurrent use. Values it returns are independent
// copies owned by the caller.
type Store struct {
	be      backend
	logger  *slog.Logger
	verbose bool
	catalog *Catalog
}

// Open opens or creates a bbolt-backed store at path.
func Open(path string, opt Options) (*Store, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if bopt.Timeout == 0 {
		bopt.Timeout = 10 * time.Second
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	s := newStore(&boltBackend{bdb}, opt)
	if s.verbose {
		s.logger.Debug("store: opened", slog.String("path", path))
	}
	return s, nil
}

// OpenMemory returns a transient store that keeps everything in memory.
func OpenMemory(opt Options) *Store {
	return newStore(newMemBackend(), opt)
}

func newStore(be backend, opt Options) *Store {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	s := &Store{
		be:      be,
		logger:  opt.Logger,
		verbose: opt.Verbose,
	}
	s.catalog = &Catalog{
		s:        s,
		fallback: opt.Assets,
		cache:    make(map[string]*Asset),
	}
	return s
}

// Catalog returns the asset catalog used to resolve asset references of
// stored values.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

func (s *Store) Close() error {
	if err := s.be.Close(); err != nil {
		return fmt.Errorf("store: closing: %w", err)
	}
	return nil
}

func (s *Store) update(f func(tx backendTx) error) error {
	tx, err := s.be.BeginTx(true)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := f(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) view(f func(tx backendTx) error) error {
	tx, err := s.be.BeginTx(false)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	return f(tx)
}

// Put stores an encoded copy of v under bucket/key, replacing any previous
// value. Pointer elements are not persisted.
func (s *Store) Put(bucket, key string, v *datum.Value) error {
	if bucket == "" || key == "" {
		return ErrKeyEmpty
	}
	rec := appendRecord(nil, v)
	err := s.update(func(tx backendTx) error {
		b, err := tx.CreateBucket(bucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), rec)
	})
	if err != nil {
		return fmt.Errorf("store: put %s/%s: %w", bucket, key, err)
	}
	if s.verbose {
		s.logger.Debug("store: put", slog.String("bucket", bucket), slog.String("key", key), slog.String("kind", v.Kind().String()), slog.Int("size", len(rec)))
	}
	return nil
}

// Get decodes the value stored under bucket/key, resolving asset names
// through the Catalog. It returns ErrNotFound for missing keys and a
// *datum.DataError for corrupted records.
func (s *Store) Get(bucket, key string) (*datum.Value, error) {
	return s.get(bucket, key, s.catalog)
}

func (s *Store) get(bucket, key string, assets datum.AssetResolver) (*datum.Value, error) {
	// decoded outside the transaction: resolving assets may open another one
	var rec []byte
	err := s.view(func(tx backendTx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return ErrNotFound
		}
		data := b.Get(unsafeBytesFromString(key))
		if data == nil {
			return ErrNotFound
		}
		rec = slices.Clone(data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: get %s/%s: %w", bucket, key, err)
	}
	v, err := decodeRecord(rec, assets)
	if err != nil {
		s.logger.Warn("store: corrupted record", slog.String("bucket", bucket), slog.String("key", key), slog.Any("err", err))
		return nil, fmt.Errorf("store: get %s/%s: %w", bucket, key, err)
	}
	return v, nil
}

// Delete removes bucket/key. Deleting a missing key is not an error.
func (s *Store) Delete(bucket, key string) error {
	err := s.update(func(tx backendTx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("store: delete %s/%s: %w", bucket, key, err)
	}
	return nil
}

// Keys returns the keys of bucket that start with prefix, in sorted order.
// A missing bucket has no keys.
func (s *Store) Keys(bucket, prefix string) ([]string, error) {
	var keys []string
	err := s.scan(bucket, prefix, func(k, _ []byte) error {
		keys = append(keys, string(k))
		return nil
	})
	return keys, err
}

// Scan decodes every value of bucket whose key starts with prefix, in key
// order, and calls f with it. Returning false from f stops the scan.
func (s *Store) Scan(bucket, prefix string, f func(key string, v *datum.Value) bool) error {
	var keys []string
	var recs [][]byte
	err := s.scan(bucket, prefix, func(k, data []byte) error {
		keys = append(keys, string(k))
		recs = append(recs, slices.Clone(data))
		return nil
	})
	if err != nil {
		return err
	}
	for i, rec := range recs {
		v, err := decodeRecord(rec, s.catalog)
		if err != nil {
			return fmt.Errorf("store: scan %s/%s: %w", bucket, keys[i], err)
		}
		if !f(keys[i], v) {
			break
		}
	}
	return nil
}

func (s *Store) scan(bucket, prefix string, f func(k, data []byte) error) error {
	err := s.view(func(tx backendTx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		p := []byte(prefix)
		c := b.Cursor()
		for k, data := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, data = c.Next() {
			if err := f(k, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: scan %s: %w", bucket, err)
	}
	return nil
}

// Len returns the number of keys in bucket.
func (s *Store) Len(bucket string) (int, error) {
	var n int
	err := s.view(func(tx backendTx) error {
		if b := tx.Bucket(bucket); b != nil {
			n = b.KeyCount()
		}
		return nil
	})
	return n, err
}

// Size returns the size of the database file in bytes, or 0 for in-memory
// stores.
func (s *Store) Size() (int64, error) {
	var n int64
	err := s.view(func(tx backendTx) error {
		n = tx.Size()
		return nil
	})
	return n, err
}
