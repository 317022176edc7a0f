package store

import (
	"bytes"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of Store. It is safe for
// concurrent use and suitable for tests and one-shot tooling.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Get retrieves the value for a key. Returns ErrKeyNotFound if absent.
func (m *MemoryStore) Get(key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, ok := m.data[string(key)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

// Put stores a key-value pair. Both key and value are copied.
func (m *MemoryStore) Put(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}

// Create stores a key-value pair only if the key is absent. Returns
// ErrKeyExists if the key is already present.
func (m *MemoryStore) Create(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[string(key)]; ok {
		return ErrKeyExists
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[string(key)] = cp
	return nil
}

// Delete removes a key from the store. It is a no-op if the key does
// not exist.
func (m *MemoryStore) Delete(key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

// Has reports whether the key exists in the store.
func (m *MemoryStore) Has(key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

// Len returns the number of entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }

// NewBatch creates a new write batch targeting this store.
func (m *MemoryStore) NewBatch() Batch {
	return &memoryBatch{store: m}
}

// NewIterator returns an iterator over a snapshot of all keys matching
// the given prefix, starting at or after the start key.
func (m *MemoryStore) NewIterator(prefix, start []byte) Iterator {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var keys []string
	for k := range m.data {
		kb := []byte(k)
		if len(prefix) > 0 && !bytes.HasPrefix(kb, prefix) {
			continue
		}
		if len(start) > 0 && bytes.Compare(kb, start) < 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]kvPair, len(keys))
	for i, k := range keys {
		val := make([]byte, len(m.data[k]))
		copy(val, m.data[k])
		items[i] = kvPair{key: []byte(k), value: val}
	}
	return &snapshotIterator{items: items, pos: -1}
}

// batchOp represents a single buffered batch operation.
type batchOp struct {
	key    []byte
	value  []byte
	create bool
	delete bool
}

// memoryBatch buffers operations for atomic application to a
// MemoryStore. Write holds the store's write lock for the duration,
// checks every Create key, and only then applies.
type memoryBatch struct {
	store   *MemoryStore
	ops     []batchOp
	written bool
}

func (b *memoryBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), value: copyBytes(value)})
}

func (b *memoryBatch) Create(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), value: copyBytes(value), create: true})
}

func (b *memoryBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: copyBytes(key), delete: true})
}

func (b *memoryBatch) Write() error {
	if b.written {
		return ErrBatchWritten
	}
	b.written = true

	b.store.mu.Lock()
	defer b.store.mu.Unlock()

	for _, op := range b.ops {
		if !op.create {
			continue
		}
		if _, ok := b.store.data[string(op.key)]; ok {
			return ErrKeyExists
		}
	}
	for _, op := range b.ops {
		if op.delete {
			delete(b.store.data, string(op.key))
		} else {
			b.store.data[string(op.key)] = op.value
		}
	}
	return nil
}

func (b *memoryBatch) Reset() {
	b.ops = b.ops[:0]
	b.written = false
}

func (b *memoryBatch) Len() int {
	return len(b.ops)
}

func copyBytes(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// kvPair is a key-value pair captured for iteration.
type kvPair struct {
	key   []byte
	value []byte
}

// snapshotIterator iterates over a sorted snapshot of key-value pairs.
// Both backends return it: iteration never observes writes made after
// the iterator was created.
type snapshotIterator struct {
	items []kvPair
	pos   int
}

// Next advances the iterator. Returns false when exhausted.
func (it *snapshotIterator) Next() bool {
	it.pos++
	return it.pos < len(it.items)
}

// Key returns the key at the current position, or nil if the iterator
// is not positioned on a valid entry.
func (it *snapshotIterator) Key() []byte {
	if it.pos < 0 || it.pos >= len(it.items) {
		return nil
	}
	return it.items[it.pos].key
}

// Value returns the value at the current position, or nil if the
// iterator is not positioned on a valid entry.
func (it *snapshotIterator) Value() []byte {
	if it.pos < 0 || it.pos >= len(it.items) {
		return nil
	}
	return it.items[it.pos].value
}

// Release is a no-op for the snapshot iterator.
func (it *snapshotIterator) Release() {}
