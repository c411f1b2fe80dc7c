package rag

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.pdf")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestFileMD5(t *testing.T) {
	path := writeTempFile(t, []byte("hello world"))

	digest, err := FileMD5(path)
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", digest)
}

func TestFileMD5LargerThanBlockSize(t *testing.T) {
	// spans many read blocks; digest must match the whole content
	content := []byte(strings.Repeat("abcdefgh", 4096))
	path := writeTempFile(t, content)

	digest, err := FileMD5(path)
	require.NoError(t, err)

	same, err := FileMD5(writeTempFile(t, content))
	require.NoError(t, err)
	assert.Equal(t, digest, same)

	different, err := FileMD5(writeTempFile(t, append(content, 'x')))
	require.NoError(t, err)
	assert.NotEqual(t, digest, different)
}

func TestFileMD5MissingFile(t *testing.T) {
	_, err := FileMD5(filepath.Join(t.TempDir(), "absent.pdf"))
	assert.Error(t, err)
}
