package migrate

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestLockRoundTrip(t *testing.T) {
	plan, err := newSequencer(t).Sequence(v1, v2)
	require.NoError(t, err)
	lock := NewLock(plan)
	require.Len(t, lock.Entries, 2)
	assert.Equal(t, LockFormat, lock.Format)

	var buf bytes.Buffer
	require.NoError(t, lock.Encode(&buf))
	got, err := DecodeLock(&buf)
	require.NoError(t, err)
	assert.Equal(t, lock, got)
	require.NoError(t, got.Verify(plan))
}

func TestLockVerify(t *testing.T) {
	released, err := newSequencer(t).Sequence(v1, v2)
	require.NoError(t, err)
	lock := NewLock(released)

	t.Run("new versions are accepted", func(t *testing.T) {
		next, err := newSequencer(t).Sequence(v1, v2, v3)
		require.NoError(t, err)
		assert.NoError(t, lock.Verify(next))
	})

	t.Run("changed version", func(t *testing.T) {
		next, err := newSequencer(t).Sequence(v1, v3)
		require.NoError(t, err)
		err = lock.Verify(next)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLockMismatch))
		assert.Contains(t, err.Error(), "version 0.2 changed")
	})

	t.Run("removed version", func(t *testing.T) {
		next, err := newSequencer(t, WithVersionStart(2)).Sequence(v2)
		require.NoError(t, err)
		err = lock.Verify(next)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLockMismatch))
		assert.Contains(t, err.Error(), "version 0.1 was removed")
	})
}

func TestLockFile(t *testing.T) {
	plan, err := newSequencer(t).Sequence(v1, v2, v3)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "idbschema.lock")

	require.NoError(t, WriteLock(path, NewLock(plan)))
	lock, err := ReadLock(path)
	require.NoError(t, err)
	assert.Equal(t, plan.Versions(), []float64{lock.Entries[0].Version, lock.Entries[1].Version, lock.Entries[2].Version})
	assert.Equal(t, plan.Entries[2].Stores, lock.Entries[2].Stores)
	assert.Equal(t, plan.Entries[2].Checksum, lock.Entries[2].Checksum)

	_, err = ReadLock(filepath.Join(t.TempDir(), "missing.lock"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDecodeLockErrors(t *testing.T) {
	_, err := DecodeLock(bytes.NewReader([]byte("not msgpack")))
	require.Error(t, err)

	b, err := msgpack.Marshal(&Lock{Format: 99})
	require.NoError(t, err)
	_, err = DecodeLock(bytes.NewReader(b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported lock format 99")
}
