package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocalStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	s, err := NewLocalStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.DirExists(t, dir)

	path, err := s.Save("JANE_DOE.png", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "JANE_DOE.png"), path)

	// same name, last write wins
	_, err = s.Save("JANE_DOE.png", []byte("second"))
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(b))
}

func TestLocalStore_RecreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	s, err := NewLocalStore(dir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	_, err = s.Save("A.png", []byte("x"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "A.png"))
}

func TestLocalStore_UnsafeNames(t *testing.T) {
	s, err := NewLocalStore(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../../ETC.png", "A/B.png", `A\B.png`, "..PNG"} {
		_, err := s.Save(name, []byte("x"))
		assert.ErrorIs(t, err, ErrUnsafeFilename, "name %q", name)
	}
}
