package store

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/zkbridge/zkbridge/log"
)

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Dir is the data directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the whole database in memory. Nothing is written
	// to disk; every entry is lost on Close.
	InMemory bool

	// SyncWrites forces an fsync on every commit.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. Defaults to a
	// discarding logger.
	Logger *log.Logger
}

// BadgerStore is a durable implementation of Store backed by BadgerDB.
// All writes go through serializable transactions, so Create and batch
// writes keep their atomicity guarantees across process restarts.
type BadgerStore struct {
	db     *badger.DB
	closed atomic.Bool
}

// OpenBadger opens (or creates) a BadgerDB-backed store.
func OpenBadger(o BadgerOptions) (*BadgerStore, error) {
	logger := o.Logger
	if logger == nil {
		logger = log.Discard()
	}

	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(o.Dir, 0700); err != nil {
			return nil, fmt.Errorf("store: create data dir: %w", err)
		}
		opts = badger.DefaultOptions(o.Dir)
	}
	opts.SyncWrites = o.SyncWrites
	opts.Logger = &badgerLogger{log: logger.Module("badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get retrieves the value for a key. Returns ErrKeyNotFound if absent.
func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get: %w", err)
	}
	return val, nil
}

// Put stores a key-value pair, overwriting any existing value.
func (s *BadgerStore) Put(key, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("store: put: %w", err)
	}
	return nil
}

// Create stores a key-value pair only if the key is absent. Returns
// ErrKeyExists if the key is already present. The existence check and
// the write happen in one transaction.
func (s *BadgerStore) Create(key, value []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return ErrKeyExists
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, value)
	})
	if err == ErrKeyExists {
		return ErrKeyExists
	}
	if err != nil {
		return fmt.Errorf("store: create: %w", err)
	}
	return nil
}

// Delete removes a key. It is a no-op if the key does not exist.
func (s *BadgerStore) Delete(key []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	return nil
}

// Has reports whether the key exists.
func (s *BadgerStore) Has(key []byte) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store: has: %w", err)
	}
	return found, nil
}

// NewBatch creates a new write batch targeting this store.
func (s *BadgerStore) NewBatch() Batch {
	return &badgerBatch{store: s}
}

// NewIterator returns an iterator over a snapshot of all keys with the
// given prefix, starting at or after the start key.
func (s *BadgerStore) NewIterator(prefix, start []byte) Iterator {
	var items []kvPair
	if s.closed.Load() {
		return &snapshotIterator{pos: -1}
	}
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := prefix
		if bytes.Compare(start, seek) > 0 {
			seek = start
		}
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			items = append(items, kvPair{key: item.KeyCopy(nil), value: val})
		}
		return nil
	})
	return &snapshotIterator{items: items, pos: -1}
}

// Close flushes and closes the database. Further operations return
// ErrClosed.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// badgerBatch buffers operations and applies them in one BadgerDB
// transaction: all writes commit together or the transaction is
// discarded untouched.
type badgerBatch struct {
	store   *BadgerStore
	ops     []batchOp
	written bool
}

func (b *badgerBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), value: copyBytes(value)})
}

func (b *badgerBatch) Create(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), value: copyBytes(value), create: true})
}

func (b *badgerBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), delete: true})
}

func (b *badgerBatch) Write() error {
	if b.written {
		return ErrBatchWritten
	}
	b.written = true

	if b.store.closed.Load() {
		return ErrClosed
	}
	err := b.store.db.Update(func(txn *badger.Txn) error {
		for _, op := range b.ops {
			if !op.create {
				continue
			}
			_, err := txn.Get(op.key)
			if err == nil {
				return ErrKeyExists
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
		}
		for _, op := range b.ops {
			if op.delete {
				if err := txn.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err == ErrKeyExists {
		return ErrKeyExists
	}
	if err != nil {
		return fmt.Errorf("store: batch write: %w", err)
	}
	return nil
}

func (b *badgerBatch) Reset() {
	b.ops = b.ops[:0]
	b.written = false
}

func (b *badgerBatch) Len() int {
	return len(b.ops)
}

// badgerLogger adapts BadgerDB's logger interface to the bridge logger.
// Badger's info output is chatty compaction detail, so it maps to Debug.
type badgerLogger struct {
	log *log.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
