package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreSaveLoadClear(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	sess := &Session{Token: "t1", Username: "alice", UserID: "1"}
	require.NoError(t, store.Save(sess))

	// The session file holds a bearer token.
	info, err := os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, sess, loaded)
	require.True(t, loaded.Authenticated())

	require.NoError(t, store.Clear())
	loaded, err = store.Load()
	require.NoError(t, err)
	require.False(t, loaded.Authenticated())
	require.Empty(t, loaded.Token)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.False(t, loaded.Authenticated())
}

func TestStoreLoadPartialRecord(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	// A token without a username must not authenticate.
	require.NoError(t, store.Save(&Session{Token: "t1"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.False(t, loaded.Authenticated())
	require.Empty(t, loaded.Token)
}

func TestStoreClearIsIdempotent(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}
