package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// WriteFiles writes files below root. Keys are slash-separated relative
// paths (e.g. "modules/welcome/module.desc"); parent directories are created
// as needed.
func WriteFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

// Mkdirs creates each slash-separated directory below root and returns the
// absolute path of the first one.
func Mkdirs(t *testing.T, root string, dirs ...string) string {
	t.Helper()

	var first string
	for i, d := range dirs {
		path := filepath.Join(root, filepath.FromSlash(d))
		require.NoError(t, os.MkdirAll(path, 0o755))
		if i == 0 {
			first = path
		}
	}
	return first
}
