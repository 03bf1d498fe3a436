package filestore

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenRemove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save("a/b/report.txt", strings.NewReader("hello"), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	rc, err := store.Open("a/b/report.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Remove("a/b/report.txt"))
	_, err = store.Open("a/b/report.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.NoError(t, store.Remove("a/b/report.txt"))
}

func TestLocalStore_TooLargeLeavesNoFile(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	_, err = store.Save("big.bin", strings.NewReader("0123456789AB"), 10)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, statErr := os.Stat(filepath.Join(root, "big.bin"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../outside", "a/../../outside", "/etc/passwd"} {
		_, err := store.Save(key, strings.NewReader("x"), 10)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}
