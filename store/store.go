// Package store provides the key-value persistence layer used by the
// light client and the bridge settlement state. Two backends implement
// the same interface: an in-memory store for tests and tools, and a
// BadgerDB store for durable deployments.
//
// The Create operation is the concurrency primitive the bridge relies
// on for exactly-once completion: it writes a key only if the key does
// not already exist, and fails with ErrKeyExists otherwise. Batches
// extend the same guarantee across multiple keys, applying either all
// operations or none.
package store

import "errors"

// Store errors.
var (
	ErrKeyNotFound  = errors.New("store: key not found")
	ErrKeyExists    = errors.New("store: key already exists")
	ErrBatchWritten = errors.New("store: batch already written")
	ErrClosed       = errors.New("store: closed")
)

// Store is the interface shared by all key-value backends.
type Store interface {
	// Get retrieves the value for a key. Returns ErrKeyNotFound if absent.
	Get(key []byte) ([]byte, error)

	// Put stores a key-value pair, overwriting any existing value.
	Put(key, value []byte) error

	// Create stores a key-value pair only if the key does not exist.
	// Returns ErrKeyExists if the key is already present.
	Create(key, value []byte) error

	// Delete removes a key. It is a no-op if the key does not exist.
	Delete(key []byte) error

	// Has reports whether the key exists.
	Has(key []byte) (bool, error)

	// NewBatch returns an empty write batch targeting this store.
	NewBatch() Batch

	// NewIterator returns an iterator over all keys with the given
	// prefix, starting at or after the start key, in ascending key
	// order. The iterator operates on a snapshot taken at creation.
	NewIterator(prefix, start []byte) Iterator

	Close() error
}

// Batch buffers put, create, and delete operations for atomic
// application. Write applies every buffered operation or none: if any
// Create key already exists the whole batch fails with ErrKeyExists
// and the store is left unchanged. A batch can be written once;
// Reset clears it for reuse.
type Batch interface {
	Put(key, value []byte)
	Create(key, value []byte)
	Delete(key []byte)
	Write() error
	Reset()
	Len() int
}

// Iterator iterates over key-value pairs in ascending key order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
}
