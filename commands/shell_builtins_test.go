package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josephlewis42/minish/core/config"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()

	return goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)
}

func TestAllBuiltins(t *testing.T) {
	for _, name := range ListBuiltins() {
		t.Run(name, func(t *testing.T) {
			if AllBuiltins[name] == nil {
				t.Fatal("nil builtin", name)
			}
		})
	}

	newGoldie(t).Assert(t, "names", []byte(strings.Join(ListBuiltins(), "\n")+"\n"))
}

func TestHistory(t *testing.T) {
	cases := map[string]struct {
		historySize int
		lines       []string
	}{
		"list": {
			historySize: 10,
			lines:       []string{"echo one", "pwd", "history"},
		},
		"evicted": {
			historySize: 2,
			lines:       []string{"echo one", "echo two", "history"},
		},
		"cleared": {
			historySize: 10,
			lines:       []string{"echo one", "history -c", "history"},
		},
		"pipeline": {
			historySize: 10,
			lines:       []string{"echo one", "history | cat"},
		},
		"conditional": {
			historySize: 10,
			lines:       []string{"echo one", "true && history"},
		},
	}

	g := newGoldie(t)
	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t, func(cfg *config.Configuration) {
				cfg.HistorySize = tc.historySize
			})

			var status int
			for _, line := range tc.lines {
				status = ts.run(line)
			}

			assert.Equal(t, 0, status)
			assert.Empty(t, ts.stderr.String())
			g.Assert(t, tn, ts.stdout.Bytes())
		})
	}
}

func TestHistoryUsage(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run("history extra")

	assert.Equal(t, 1, status)
	assert.Contains(t, ts.stderr.String(), `history: unexpected argument "extra"`)
	assert.Contains(t, ts.stderr.String(), "usage: history [-c]")
	assert.Empty(t, ts.stdout.String())
}

func TestCd(t *testing.T) {
	keepWd(t)
	dir := t.TempDir()

	ts := newTestShell(t)
	status := ts.run("cd " + dir)

	assert.Equal(t, 0, status)
	assert.Equal(t, realpath(t, dir), getwd(t))
	assert.Equal(t, getwd(t), realpath(t, os.Getenv(EnvPWD)))
}

func TestCdHome(t *testing.T) {
	keepWd(t)
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)

	ts := newTestShell(t)
	status := ts.run("cd")

	assert.Equal(t, 0, status)
	assert.Equal(t, realpath(t, dir), getwd(t))
}

func TestCdErrors(t *testing.T) {
	cases := map[string]struct {
		home       string
		line       string
		wantStderr string
	}{
		"home not set": {
			line:       "cd",
			wantStderr: "cd: HOME not set\n",
		},
		"missing directory": {
			home:       "/",
			line:       "cd /minish/does/not/exist",
			wantStderr: "cd: /minish/does/not/exist: no such file or directory\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			wd := keepWd(t)
			t.Setenv(EnvHome, tc.home)

			ts := newTestShell(t)
			status := ts.run(tc.line)

			assert.Equal(t, 1, status)
			assert.Equal(t, tc.wantStderr, ts.stderr.String())
			assert.Equal(t, wd, getwd(t))
		})
	}
}

func TestCdIgnoresExtraArguments(t *testing.T) {
	keepWd(t)
	dir := t.TempDir()

	ts := newTestShell(t)
	status := ts.run("cd " + dir + " extra")

	assert.Equal(t, 0, status)
	assert.Empty(t, ts.stderr.String())
	assert.Equal(t, realpath(t, dir), getwd(t))
}

func TestCdInPipelineIsProcessLocal(t *testing.T) {
	wd := keepWd(t)
	dir := t.TempDir()

	ts := newTestShell(t)
	status := ts.run("cd " + dir + " | cat")

	assert.Equal(t, 0, status)
	assert.Equal(t, wd, getwd(t))
}

func TestCdAsConditionalSecond(t *testing.T) {
	keepWd(t)
	dir := t.TempDir()

	ts := newTestShell(t)
	status := ts.run("true && cd " + dir)

	assert.Equal(t, 0, status)
	assert.Equal(t, realpath(t, dir), getwd(t))
}

func TestCdAsConditionalFirst(t *testing.T) {
	wd := keepWd(t)
	dir := t.TempDir()

	ts := newTestShell(t)
	status := ts.run("cd " + dir + " && pwd")

	assert.Equal(t, 0, status)
	assert.Equal(t, wd, getwd(t))
	assert.Equal(t, wd, realpath(t, strings.TrimSpace(ts.stdout.String())))
}

func TestPwd(t *testing.T) {
	keepWd(t)
	dir := t.TempDir()
	require.NoError(t, os.Chdir(dir))

	ts := newTestShell(t)
	status := ts.run("pwd")

	assert.Equal(t, 0, status)
	assert.Equal(t, realpath(t, dir), realpath(t, strings.TrimSpace(ts.stdout.String())))
}

func TestPwdInPipeline(t *testing.T) {
	wd := keepWd(t)

	ts := newTestShell(t)
	status := ts.run("pwd | cat")

	assert.Equal(t, 0, status)
	assert.Equal(t, wd, realpath(t, strings.TrimSpace(ts.stdout.String())))
}

func TestPwdIgnoresArguments(t *testing.T) {
	wd := keepWd(t)

	ts := newTestShell(t)
	status := ts.run("pwd extra args")

	assert.Equal(t, 0, status)
	assert.Empty(t, ts.stderr.String())
	assert.Equal(t, wd, realpath(t, strings.TrimSpace(ts.stdout.String())))
}

func TestBuiltinHelp(t *testing.T) {
	for _, name := range ListBuiltins() {
		t.Run(name, func(t *testing.T) {
			ts := newTestShell(t)

			status := ts.run(name + " --help")

			assert.Equal(t, 0, status)
			assert.True(t, strings.HasPrefix(ts.stdout.String(), "usage: "+name))
			assert.Contains(t, ts.stdout.String(), "--help")
		})
	}
}

func TestBuiltinUnknownFlag(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run("pwd -z")

	assert.Equal(t, 1, status)
	assert.True(t, strings.HasPrefix(ts.stderr.String(), "pwd: "))
	assert.Contains(t, ts.stderr.String(), "usage: pwd")
}

func TestExit(t *testing.T) {
	ts := newTestShell(t)
	code := -1
	ts.exit = func(c int) {
		code = c
	}

	ts.run("exit")
	assert.Equal(t, 0, code)
}

func TestExitIgnoresArguments(t *testing.T) {
	for _, line := range []string{"exit 3", "exit now please"} {
		t.Run(line, func(t *testing.T) {
			ts := newTestShell(t)
			code := -1
			ts.exit = func(c int) {
				code = c
			}

			ts.run(line)

			assert.Equal(t, 0, code)
			assert.Empty(t, ts.stderr.String())
		})
	}
}

func TestExitInChildDoesNotEndShell(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run("exit && echo after")

	assert.Equal(t, 0, status)
	assert.Equal(t, "after\n", ts.stdout.String())
}
