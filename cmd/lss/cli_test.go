package lss

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/lss/internal/config"
)

// resetFlags restores every flag to its default so consecutive in-process
// runs do not leak state through the shared flag variables.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })
	var out, errb bytes.Buffer
	code := executeArgs(args, &out, &errb)
	return code, out.String(), errb.String()
}

func secretDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keys.txt"), []byte("aws = AKIA1234567890ABCDEF\n"), 0o644))
	return dir
}

func TestCLI_JSONAndFailExitCode(t *testing.T) {
	dir := secretDir(t)
	code, out, _ := run(t, "scan", "--format", "json", "--entropy-threshold", "0", "--fail", dir)
	assert.Equal(t, 1, code)

	var arr []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &arr), out)
	require.Len(t, arr, 1)
	assert.Equal(t, []any{"AWS Access Key ID"}, arr[0]["matched_rules"])
	loc := arr[0]["location"].(map[string]any)
	assert.Equal(t, "keys.txt", loc["path"])
}

func TestCLI_FindingsWithoutFailExitZero(t *testing.T) {
	dir := secretDir(t)
	code, out, _ := run(t, "scan", "-f", "json", "--entropy-threshold", "0", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "AWS Access Key ID")
}

func TestCLI_RootScansWithoutSubcommand(t *testing.T) {
	dir := secretDir(t)
	code, out, _ := run(t, "--scan", "-p", dir, "--format", "json", "--entropy-threshold", "0")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "keys.txt")
}

func TestCLI_HumanNoSecrets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("hello\n"), 0o644))
	code, out, errOut := run(t, "scan", "--fail", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "No secrets found")
	assert.Contains(t, errOut, "Scanning")
}

func TestCLI_SARIF(t *testing.T) {
	dir := secretDir(t)
	code, out, _ := run(t, "scan", "--format", "sarif", "--entropy-threshold", "0", dir)
	require.Equal(t, 0, code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "2.1.0", doc["version"])
}

func TestCLI_FatalErrors(t *testing.T) {
	code, _, errOut := run(t, "scan", "--format", "xml", t.TempDir())
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown format")

	code, _, errOut = run(t, "scan", filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "error:")

	code, _, _ = run(t, "scan", "--rules-file", filepath.Join(t.TempDir(), "none.txt"), t.TempDir())
	assert.Equal(t, 2, code)

	code, _, _ = run(t, "scan", "--config", filepath.Join(t.TempDir(), "none.toml"), t.TempDir())
	assert.Equal(t, 2, code)
}

func TestCLI_LocalConfigAndFlagOverride(t *testing.T) {
	dir := secretDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lss.toml"), []byte("entropy_threshold = 0.0\nmin_confidence = 0.95\n"), 0o644))

	code, out, _ := run(t, "scan", "-f", "json", dir)
	require.Equal(t, 0, code)
	assert.JSONEq(t, "[]", out)

	code, out, _ = run(t, "scan", "-f", "json", "--min-confidence", "0", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "AWS Access Key ID")
}

func TestCLI_IgnoreFromConfig(t *testing.T) {
	dir := secretDir(t)
	cfg := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("ignore:\n  - keys.txt\nentropy_threshold: 0\n"), 0o644))

	code, out, errOut := run(t, "scan", "-f", "json", "--config", cfg, "--verbose", "--log-format", "json", dir)
	require.Equal(t, 0, code)
	assert.JSONEq(t, "[]", out)
	assert.Contains(t, errOut, `"msg":"ignore pattern"`)
	assert.Contains(t, errOut, `"pattern":"keys.txt"`)
	assert.Contains(t, errOut, `"source":"config"`)
}

func TestCLI_ScanFlagHiddenFromHelp(t *testing.T) {
	code, out, _ := run(t, "--help")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "--format")
	assert.NotContains(t, out, "--scan")
}

func TestCLI_SymlinkedRoot(t *testing.T) {
	real := secretDir(t)
	link := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	code, out, _ := run(t, "scan", "-f", "json", "--entropy-threshold", "0", link)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "keys.txt")
}

func TestCLI_CustomRulesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.cfg"), []byte("internal_token=zz-9f8e7d6c5b4a\n"), 0o644))
	rf := filepath.Join(t.TempDir(), "rules.txt")
	require.NoError(t, os.WriteFile(rf, []byte("Internal Token::zz-[0-9a-f]{12}::internal::0.7\n"), 0o644))

	code, out, _ := run(t, "scan", "-f", "json", "--entropy-threshold", "0", "--rules-file", rf, "--include-tags", "internal", dir)
	require.Equal(t, 0, code)
	var arr []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &arr))
	require.Len(t, arr, 1)
	assert.Equal(t, []any{"Internal Token"}, arr[0]["matched_rules"])
}

func TestCLI_RulesList(t *testing.T) {
	code, out, _ := run(t, "rules", "list", "--json", "--per-page", "2")
	require.Equal(t, 0, code)
	var page struct {
		Total   int `json:"total"`
		Page    int `json:"page"`
		PerPage int `json:"per_page"`
		Rules   []struct {
			Name string `json:"name"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PerPage)
	assert.Len(t, page.Rules, 2)
	assert.Greater(t, page.Total, 2)

	code, out, _ = run(t, "rules", "list", "GitHub Personal")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Rules 1-1 of 1")
	assert.Contains(t, out, "GitHub Personal Access Token :: ghp_")
}

func TestCLI_ConfigInit(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, ".lss.toml")

	code, stdout, _ := run(t, "config", "init", "--output", out, "--no-history", "--ignore", "testdata/")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "Wrote")

	fc, err := config.LoadFile(out)
	require.NoError(t, err)
	require.NotNil(t, fc.NoHistory)
	assert.True(t, *fc.NoHistory)
	assert.Equal(t, []string{"testdata/"}, fc.Ignore)
	require.NotNil(t, fc.EntropyThreshold)
	assert.InDelta(t, 3.5, *fc.EntropyThreshold, 1e-12)

	code, _, errOut := run(t, "config", "init", "--output", out)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "already exists")

	code, _, _ = run(t, "config", "init", "--output", out, "--force")
	assert.Equal(t, 0, code)
}

func TestCLI_ConfigInitYAML(t *testing.T) {
	out := filepath.Join(t.TempDir(), ".lss.yml")
	code, _, _ := run(t, "config", "init", "--output", out, "--max-bytes", "1024")
	require.Equal(t, 0, code)

	fc, err := config.LoadFile(out)
	require.NoError(t, err)
	require.NotNil(t, fc.MaxBytes)
	assert.Equal(t, int64(1024), *fc.MaxBytes)
}

func TestCLI_IgnoreAddThenScan(t *testing.T) {
	dir := secretDir(t)
	code, out, _ := run(t, "ignore", "add", "-p", dir, "keys.txt")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "added keys.txt")

	code, out, _ = run(t, "ignore", "add", "-p", dir, "keys.txt")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "already present keys.txt")

	code, out, _ = run(t, "scan", "-f", "json", "--entropy-threshold", "0", dir)
	require.Equal(t, 0, code)
	assert.JSONEq(t, "[]", out)
}
