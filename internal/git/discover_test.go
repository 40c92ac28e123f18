package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	_, err := gogit.PlainInit(root, false)
	require.NoError(t, err)

	nested := filepath.Join(root, "services", "api")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	_, err = gogit.PlainInit(nested, false)
	require.NoError(t, err)

	worktree := filepath.Join(root, "linked")
	require.NoError(t, os.MkdirAll(worktree, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(worktree, ".git"), []byte("gitdir: ../elsewhere\n"), 0o644))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "plain"), 0o755))

	repos, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{root, worktree, nested}, repos)
}

func TestDiscover_NoRepos(t *testing.T) {
	repos, err := Discover(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, repos)
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
