package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_CreatesAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	added, err := Append(dir, "dist/")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = Append(dir, " dist/ ")
	require.NoError(t, err)
	assert.False(t, added)

	lines, err := scanLines(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"dist/"}, lines)
}

func TestAppend_AddsMissingNewline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("# keep\nvendor/"), 0o644))

	added, err := Append(dir, "fixtures/")
	require.NoError(t, err)
	assert.True(t, added)

	lines, err := scanLines(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"# keep", "vendor/", "fixtures/"}, lines)
}

func TestAppend_RejectsEmptyAndComment(t *testing.T) {
	_, err := Append(t.TempDir(), "  ")
	assert.Error(t, err)
	_, err = Append(t.TempDir(), "# nope")
	assert.Error(t, err)
}

func scanLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}
