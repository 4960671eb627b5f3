package implementation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	repo := NewFileTokenRepository(path)

	_, found, err := repo.Get(ctx, "xano_token")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Set(ctx, "xano_token", "abc"))
	require.NoError(t, repo.Set(ctx, "other", "def"))

	value, found, err := NewFileTokenRepository(path).Get(ctx, "xano_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", value)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, repo.Delete(ctx, "xano_token"))
	_, found, err = repo.Get(ctx, "xano_token")
	require.NoError(t, err)
	assert.False(t, found)

	value, _, _ = repo.Get(ctx, "other")
	assert.Equal(t, "def", value)

	require.NoError(t, repo.Delete(ctx, "other"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty store removes its file")

	require.NoError(t, repo.Delete(ctx, "never-set"))
}

func TestFileTokenRepositoryRecoversFromCorruption(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{garbage"), 0o600))

	repo := NewFileTokenRepository(path)
	_, _, err := repo.Get(ctx, "xano_token")
	assert.Error(t, err)

	require.NoError(t, repo.Set(ctx, "xano_token", "fresh"))
	value, found, err := repo.Get(ctx, "xano_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fresh", value)
}
