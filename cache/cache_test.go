package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func stores(t *testing.T, optFns ...func(o *Options)) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache", "unitai.db"), optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Store{
		"memory": NewInMemoryStore(optFns...),
		"sqlite": sqlite,
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, NamespaceContext, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Put(ctx, NamespaceContext, "k", []byte("v1")))
			require.NoError(t, s.Put(ctx, NamespaceContext, "k", []byte("v2")))

			got, err := s.Get(ctx, NamespaceContext, "k")
			require.NoError(t, err)
			assert.Equal(t, []byte("v2"), got)

			_, err = s.Get(ctx, NamespaceLookup, "k")
			assert.ErrorIs(t, err, ErrNotFound, "namespaces are isolated")

			require.NoError(t, s.Delete(ctx, NamespaceContext, "k"))
			require.NoError(t, s.Delete(ctx, NamespaceContext, "k"))
			_, err = s.Get(ctx, NamespaceContext, "k")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	opt := func(o *Options) {
		o.TTL = time.Hour
		o.Now = clock.Now
	}
	for name, s := range stores(t, opt) {
		t.Run(name, func(t *testing.T) {
			clock.now = time.Unix(1_700_000_000, 0)
			require.NoError(t, s.Put(ctx, NamespaceLookup, "q", []byte("x")))

			clock.now = clock.now.Add(30 * time.Minute)
			_, err := s.Get(ctx, NamespaceLookup, "q")
			require.NoError(t, err)

			clock.now = clock.now.Add(time.Hour)
			_, err = s.Get(ctx, NamespaceLookup, "q")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestInMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Put(ctx, "ns", "k", buf))
	buf[0] = 'z'

	got, err := s.Get(ctx, "ns", "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, 1, s.Len("ns"))
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "unitai.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, NamespaceContext, "k", []byte(`{"a":1}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, NamespaceContext, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestSQLiteStore_Purge(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s, err := NewSQLiteStore(":memory:", func(o *Options) {
		o.TTL = time.Minute
		o.Now = clock.Now
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put(ctx, "ns", "old", []byte("1")))
	clock.now = clock.now.Add(2 * time.Minute)
	require.NoError(t, s.Put(ctx, "ns", "new", []byte("2")))

	n, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "12|feet|meters", Key("12", " Feet ", "METERS"))
}

func TestOpen(t *testing.T) {
	s, err := Open("none", "")
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &InMemoryStore{}, s)

	_, err = Open("sqlite", "")
	assert.Error(t, err)

	_, err = Open("redis", "")
	assert.Error(t, err)
}
