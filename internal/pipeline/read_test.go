package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bgerrors "github.com/ironsheep/background-remover/internal/errors"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	data, err := ReadFile(path, 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	data, err = ReadFile(path, -1)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))
}

func TestReadFileTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 2<<20+1)), 0o644))

	_, err := ReadFile(path, 2<<20)
	require.Error(t, err)
	assert.True(t, bgerrors.Is(err, bgerrors.ErrCodeDecode))
	assert.Contains(t, err.Error(), "file too large (max 2 MB)")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.png"), 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
