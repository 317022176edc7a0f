package store

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

// forEachStore runs a test against every backend.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("badger", func(t *testing.T) {
		s, err := OpenBadger(BadgerOptions{Dir: t.TempDir()})
		if err != nil {
			t.Fatalf("OpenBadger: %v", err)
		}
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

func TestStore_PutGet(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		key := []byte("transfer/abc")
		if _, err := s.Get(key); !errors.Is(err, ErrKeyNotFound) {
			t.Fatalf("Get(missing) = %v, want ErrKeyNotFound", err)
		}

		if err := s.Put(key, []byte("v1")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := s.Get(key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, []byte("v1")) {
			t.Errorf("Get = %q, want v1", got)
		}

		// Overwrite.
		if err := s.Put(key, []byte("v2")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err = s.Get(key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, []byte("v2")) {
			t.Errorf("Get after overwrite = %q, want v2", got)
		}
	})
}

func TestStore_Create_Exclusive(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		key := []byte("completion/xyz")
		if err := s.Create(key, []byte("first")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		err := s.Create(key, []byte("second"))
		if !errors.Is(err, ErrKeyExists) {
			t.Fatalf("second Create = %v, want ErrKeyExists", err)
		}

		// The original value survives the failed create.
		got, err := s.Get(key)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, []byte("first")) {
			t.Errorf("Get = %q, want first", got)
		}
	})
}

func TestStore_DeleteHas(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		key := []byte("k")
		ok, err := s.Has(key)
		if err != nil || ok {
			t.Fatalf("Has(missing) = %v, %v, want false, nil", ok, err)
		}
		if err := s.Put(key, []byte("v")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		ok, err = s.Has(key)
		if err != nil || !ok {
			t.Fatalf("Has = %v, %v, want true, nil", ok, err)
		}
		if err := s.Delete(key); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := s.Get(key); !errors.Is(err, ErrKeyNotFound) {
			t.Fatalf("Get after delete = %v, want ErrKeyNotFound", err)
		}
		// Deleting again is a no-op.
		if err := s.Delete(key); err != nil {
			t.Fatalf("second Delete = %v, want nil", err)
		}
	})
}

func TestStore_Batch_Atomic(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		b := s.NewBatch()
		b.Put([]byte("a"), []byte("1"))
		b.Create([]byte("b"), []byte("2"))
		b.Delete([]byte("absent"))
		if got := b.Len(); got != 3 {
			t.Fatalf("Len = %d, want 3", got)
		}
		if err := b.Write(); err != nil {
			t.Fatalf("Write: %v", err)
		}
		for _, k := range []string{"a", "b"} {
			if ok, _ := s.Has([]byte(k)); !ok {
				t.Errorf("key %q missing after batch write", k)
			}
		}
	})
}

func TestStore_Batch_CreateConflictAppliesNothing(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		if err := s.Put([]byte("taken"), []byte("old")); err != nil {
			t.Fatalf("Put: %v", err)
		}

		b := s.NewBatch()
		b.Put([]byte("side"), []byte("effect"))
		b.Create([]byte("taken"), []byte("new"))
		err := b.Write()
		if !errors.Is(err, ErrKeyExists) {
			t.Fatalf("Write = %v, want ErrKeyExists", err)
		}

		// No partial application: the put must not have landed.
		if ok, _ := s.Has([]byte("side")); ok {
			t.Error("conflicting batch applied a partial write")
		}
		got, err := s.Get([]byte("taken"))
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !bytes.Equal(got, []byte("old")) {
			t.Errorf("existing value = %q, want old", got)
		}
	})
}

func TestStore_Batch_WriteOnce(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		b := s.NewBatch()
		b.Put([]byte("x"), []byte("1"))
		if err := b.Write(); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := b.Write(); !errors.Is(err, ErrBatchWritten) {
			t.Fatalf("second Write = %v, want ErrBatchWritten", err)
		}

		b.Reset()
		if got := b.Len(); got != 0 {
			t.Fatalf("Len after Reset = %d, want 0", got)
		}
		b.Put([]byte("y"), []byte("2"))
		if err := b.Write(); err != nil {
			t.Fatalf("Write after Reset: %v", err)
		}
		if ok, _ := s.Has([]byte("y")); !ok {
			t.Error("key y missing after reused batch")
		}
	})
}

func TestStore_Iterator(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		entries := map[string]string{
			"transfer/01": "a",
			"transfer/02": "b",
			"transfer/03": "c",
			"vault/x":     "d",
		}
		for k, v := range entries {
			if err := s.Put([]byte(k), []byte(v)); err != nil {
				t.Fatalf("Put(%s): %v", k, err)
			}
		}

		it := s.NewIterator([]byte("transfer/"), nil)
		defer it.Release()
		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		want := []string{"transfer/01", "transfer/02", "transfer/03"}
		if len(keys) != len(want) {
			t.Fatalf("iterated %d keys, want %d: %v", len(keys), len(want), keys)
		}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
			}
		}

		// Start skips entries before it.
		it2 := s.NewIterator([]byte("transfer/"), []byte("transfer/02"))
		defer it2.Release()
		var rest []string
		for it2.Next() {
			rest = append(rest, string(it2.Key()))
		}
		if len(rest) != 2 || rest[0] != "transfer/02" {
			t.Errorf("start-bounded iteration = %v, want [transfer/02 transfer/03]", rest)
		}
	})
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 200; i++ {
				key := []byte(fmt.Sprintf("k-%d-%d", g, i))
				if err := s.Put(key, []byte("v")); err != nil {
					t.Errorf("Put: %v", err)
					return
				}
				if _, err := s.Get(key); err != nil {
					t.Errorf("Get: %v", err)
					return
				}
			}
		}(g)
	}
	for g := 0; g < 8; g++ {
		<-done
	}
	if got := s.Len(); got != 8*200 {
		t.Errorf("Len = %d, want %d", got, 8*200)
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := s.Put([]byte("persist"), []byte("me")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := OpenBadger(BadgerOptions{Dir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	got, err := s2.Get([]byte("persist"))
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !bytes.Equal(got, []byte("me")) {
		t.Errorf("Get = %q, want me", got)
	}
}

func TestBadgerStore_Closed(t *testing.T) {
	s, err := OpenBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close is idempotent.
	if err := s.Close(); err != nil {
		t.Fatalf("second Close = %v, want nil", err)
	}

	if _, err := s.Get([]byte("k")); !errors.Is(err, ErrClosed) {
		t.Errorf("Get = %v, want ErrClosed", err)
	}
	if err := s.Put([]byte("k"), []byte("v")); !errors.Is(err, ErrClosed) {
		t.Errorf("Put = %v, want ErrClosed", err)
	}
	if err := s.NewBatch().Write(); !errors.Is(err, ErrClosed) {
		t.Errorf("batch Write = %v, want ErrClosed", err)
	}
}

func TestBadgerStore_InMemory(t *testing.T) {
	s, err := OpenBadger(BadgerOptions{InMemory: true})
	if err != nil {
		t.Fatalf("OpenBadger: %v", err)
	}
	defer s.Close()

	if err := s.Create([]byte("k"), []byte("v")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create([]byte("k"), []byte("v2")); !errors.Is(err, ErrKeyExists) {
		t.Errorf("Create = %v, want ErrKeyExists", err)
	}
}
