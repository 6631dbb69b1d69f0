package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/errors"
)

func TestLevelDBBackendNewGetSet(t *testing.T) {
	st, err := NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	type record struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	require.NoError(t, st.New("k0", record{Name: "a", Value: 1.5}))

	var fetched record
	require.NoError(t, st.Get("k0", &fetched))
	require.Equal(t, "a", fetched.Name)

	// New on an existing key fails, Set succeeds
	err = st.New("k0", record{Name: "b"})
	require.True(t, errors.ErrorStorageRecordAlreadyExists.Equal(err))
	require.NoError(t, st.Set("k0", record{Name: "b", Value: 2.0}))

	require.NoError(t, st.Get("k0", &fetched))
	require.Equal(t, "b", fetched.Name)
}

func TestLevelDBBackendMissingRecord(t *testing.T) {
	st, err := NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	var v map[string]interface{}
	err = st.Get("missing", &v)
	require.True(t, errors.ErrorStorageRecordDoesNotExist.Equal(err))

	err = st.Set("missing", map[string]string{})
	require.True(t, errors.ErrorStorageRecordDoesNotExist.Equal(err))
}

func TestLevelDBBackendIterator(t *testing.T) {
	st, err := NewTestMemoryLevelDBBackend()
	require.NoError(t, err)
	defer st.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, st.New(fmt.Sprintf("prefixed-%03d", i), i))
	}
	require.NoError(t, st.New("other-000", 99))

	it, closeFunc := st.GetIterator("prefixed-", false)
	defer closeFunc()

	var count int
	for {
		item, hasNext := it()
		if !hasNext {
			break
		}
		require.Contains(t, string(item.Key), "prefixed-")
		count++
	}
	require.Equal(t, 5, count)
}

func TestLevelDBBackendFileScheme(t *testing.T) {
	path := fmt.Sprintf("%s/kairos-storage-test", t.TempDir())
	defer CleanDB(path)

	st, err := NewStorage(Config{Scheme: "file", Path: path})
	require.NoError(t, err)

	require.NoError(t, st.New("k0", 42))

	var fetched int
	require.NoError(t, st.Get("k0", &fetched))
	require.Equal(t, 42, fetched)
	require.NoError(t, st.Close())
}

func TestNewConfigFromString(t *testing.T) {
	config, err := NewConfigFromString("memory://")
	require.NoError(t, err)
	require.Equal(t, "memory", config.Scheme)

	config, err = NewConfigFromString("file:///tmp/kairos-db")
	require.NoError(t, err)
	require.Equal(t, "file", config.Scheme)
	require.Equal(t, "/tmp/kairos-db", config.Path)

	_, err = NewConfigFromString("redis://localhost")
	require.True(t, errors.ErrorInvalidConfig.Equal(err))
}
