package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/gitscope/internal/git"
)

const sha = "aa72505691ac8ea4bb3ef57c2bff6fa980a61a8d"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
backend = "gitcli"
origin_refs_only = true

[reference]
sha = "`+sha+`"
name = "main"
kind = "GitBranch"
pin_to_merge_head = true

[telemetry]
otlp_endpoint = "localhost:4318"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, &Config{
		Backend:        "gitcli",
		OriginRefsOnly: true,
		Reference:      Reference{SHA: sha, Name: "main", Kind: "GitBranch", PinToMergeHead: true},
		Telemetry:      Telemetry{OTLPEndpoint: "localhost:4318"},
	}, cfg)

	cc := cfg.ComparisonConfig()
	require.True(t, cc.OriginRefsOnly)
	require.True(t, cc.PinToMergeHead)
	require.NotNil(t, cc.Reference)
	require.Equal(t, git.KindBranch, cc.Reference.Kind())
	require.Equal(t, "main", cc.Reference.FriendlyName())
	require.True(t, cc.Reference.PinToMergeHead())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Equal(t, &Config{}, cfg)
	require.Nil(t, cfg.ComparisonConfig().Reference)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load(writeFile(t, "backend = [unterminated"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, `
backend = "native"

[reference]
sha = "`+sha+`"
name = "main"
kind = "GitBranch"
`)
	t.Setenv("GITSCOPE_BACKEND", "gitcli")
	t.Setenv("GITSCOPE_REFERENCE_KIND", "GitTag")
	t.Setenv("GITSCOPE_REFERENCE_NAME", "v1")
	t.Setenv("GITSCOPE_PIN_TO_MERGE_HEAD", "true")
	t.Setenv("GITSCOPE_ORIGIN_REFS_ONLY", "1")
	t.Setenv("GITSCOPE_OTLP_ENDPOINT", "collector:4318")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "gitcli", cfg.Backend)
	require.Equal(t, Reference{SHA: sha, Name: "v1", Kind: "GitTag", PinToMergeHead: true}, cfg.Reference)
	require.True(t, cfg.OriginRefsOnly)
	require.Equal(t, "collector:4318", cfg.Telemetry.OTLPEndpoint)
	require.Equal(t, git.KindTag, cfg.ComparisonConfig().Reference.Kind())
}

func TestEnvOverrideInvalidBool(t *testing.T) {
	t.Setenv("GITSCOPE_PIN_TO_MERGE_HEAD", "sometimes")

	_, err := Load("")
	require.ErrorContains(t, err, "GITSCOPE_PIN_TO_MERGE_HEAD")
}

func TestUnknownKindIsAbsent(t *testing.T) {
	cfg := &Config{Reference: Reference{SHA: sha, Name: "x", Kind: "GitStash"}}
	require.Nil(t, cfg.ComparisonConfig().Reference)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("GITSCOPE_TEST_DOTENV=loaded\n"), 0o644))
	t.Setenv("GITSCOPE_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("GITSCOPE_TEST_DOTENV"))

	LoadDotEnv(env)
	require.Equal(t, "loaded", os.Getenv("GITSCOPE_TEST_DOTENV"))

	// missing files are ignored
	LoadDotEnv(filepath.Join(dir, "missing.env"))
}
