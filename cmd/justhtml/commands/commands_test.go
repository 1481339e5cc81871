package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// run parses args like the binary does and runs the selected command with
// stdout captured.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cli := &CLI{}
	global := &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	parser, err := kong.New(cli, kong.Bind(global), kong.Name("justhtml"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	cli.Init.out = &out
	cli.Build.out = &out
	cli.ConfigOp.Validate.out = &out
	// AfterApply installed a stderr logger; keep test output quiet.
	global.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	err = kctx.Run(cli)
	return out.String(), err
}

func TestInitBuildValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "init")
	require.NoError(t, err)
	require.Contains(t, out, "Wrote justhtml.toml")

	out, err = run(t, "config", "validate")
	require.NoError(t, err)
	require.Equal(t, "justhtml.toml is valid\n", out)

	out, err = run(t, "build", "--report", "--report-format", "yaml")
	require.NoError(t, err)
	require.Contains(t, out, "outcome=success")
	require.FileExists(t, "build/index.html")
	require.FileExists(t, "build/blog.html")
	require.FileExists(t, "build/blog/hello.html")
	require.FileExists(t, "build/style.css")
	require.FileExists(t, "build/build-report.yaml")
}

func TestInit_ExistingConfigExitCode(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "init")
	require.NoError(t, err)

	_, err = run(t, "init")
	require.Error(t, err)
	require.Equal(t, 2, foundationerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	_, err = run(t, "init", "--force")
	require.NoError(t, err)
}

func TestBuild_MissingConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "build")
	require.Error(t, err)
	require.Equal(t, 3, foundationerrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestBuild_InvalidOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "init")
	require.NoError(t, err)

	_, err = run(t, "build", "--report-format", "xml")
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
}

func TestConfigValidate_Print(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile("site.toml", []byte("content_dir = \"./posts\"\n"), 0o600))

	out, err := run(t, "-c", "site.toml", "config", "validate", "--print")
	require.NoError(t, err)
	require.Contains(t, out, "content_dir = './posts'")
	require.Contains(t, out, "content_listing_page = 'blog'")
}

func TestParseLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	require.Equal(t, slog.LevelInfo, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "WARN")
	require.Equal(t, slog.LevelWarn, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "error")
	require.Equal(t, slog.LevelError, parseLogLevel(false))
}

func TestInit_Git(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := run(t, "init", "--git")
	require.NoError(t, err)
	require.DirExists(t, ".git")

	out, err := run(t, "build")
	require.NoError(t, err)
	require.NotContains(t, out, "commit=", "no commits yet")
}
