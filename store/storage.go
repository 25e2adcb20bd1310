package store

// backend is a transactional key-value storage (bbolt or in-memory) holding
// one flat namespace of buckets.
type backend interface {
	BeginTx(writable bool) (backendTx, error)
	Close() error
}

type backendTx interface {
	Writable() bool

	// Bucket returns nil if the bucket doesn't exist.
	Bucket(name string) backendBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (backendBucket, error)

	Commit() error

	// Rollback aborts the transaction. Safe to call after Commit.
	Rollback() error

	// Size returns the database size in bytes (0 if not applicable).
	Size() int64
}

// backendBucket is a sorted key-value collection. Slices returned by Get and
// the cursor are only valid until the end of the transaction.
type backendBucket interface {
	Get(key []byte) []byte
	Put(key, value []byte) error
	Delete(key []byte) error
	Cursor() backendCursor
	KeyCount() int
}

type backendCursor interface {
	// Seek moves to the first key >= seek.
	Seek(seek []byte) (key, value []byte)
	Next() (key, value []byte)
}
