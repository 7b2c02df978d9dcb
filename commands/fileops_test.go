package commands

import (
	"testing"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/shell/shelltest"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileOpTest runs a command and checks which paths exist afterwards.
type fileOpTest struct {
	name       string
	args       []string
	setup      func(*vfs.Loader) error
	wantOut    string
	wantErr    string
	wantStatus int
	exists     []string
	missing    []string
}

func runFileOpTests(t *testing.T, command shell.CommandFunc, cases []fileOpTest) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := shelltest.Command(command, tc.args[0], tc.args[1:]...)
			cmd.Dir = "/tmp"
			cmd.Setup = tc.setup
			require.NoError(t, cmd.Run())

			assert.Equal(t, tc.wantStatus, cmd.ExitStatus, "exit status")
			assert.Equal(t, tc.wantOut, cmd.Stdout, "stdout")
			assert.Equal(t, tc.wantErr, cmd.Stderr, "stderr")

			for _, p := range tc.exists {
				_, err := cmd.Context.FS.Stat(p)
				assert.NoError(t, err, p)
			}
			for _, p := range tc.missing {
				_, err := cmd.Context.FS.Stat(p)
				assert.ErrorIs(t, err, vfs.ErrNotExist, p)
			}
		})
	}
}

func TestMkdir(t *testing.T) {
	runFileOpTests(t, Mkdir, []fileOpTest{
		{
			name:   "single",
			args:   []string{"mkdir", "a"},
			exists: []string{"/tmp/a"},
		},
		{
			name:    "verbose",
			args:    []string{"mkdir", "-v", "a", "b"},
			wantOut: "mkdir: created directory 'a'\nmkdir: created directory 'b'\n",
			exists:  []string{"/tmp/a", "/tmp/b"},
		},
		{
			name:       "missing parent",
			args:       []string{"mkdir", "a/b/c"},
			wantErr:    "mkdir: cannot create directory 'a/b/c': No such file or directory\n",
			wantStatus: 1,
			missing:    []string{"/tmp/a"},
		},
		{
			name:   "parents",
			args:   []string{"mkdir", "-p", "a/b/c"},
			exists: []string{"/tmp/a/b/c"},
		},
		{
			name:       "exists",
			args:       []string{"mkdir", "f"},
			setup:      writeFiles(map[string]string{"/tmp/f": ""}),
			wantErr:    "mkdir: cannot create directory 'f': File exists\n",
			wantStatus: 1,
		},
		{
			name:       "no permission",
			args:       []string{"mkdir", "/etc/x"},
			wantErr:    "mkdir: cannot create directory '/etc/x': Permission denied\n",
			wantStatus: 1,
			missing:    []string{"/etc/x"},
		},
		{
			name:       "bad mode",
			args:       []string{"mkdir", "-m", "bogus", "a"},
			wantErr:    "mkdir: invalid mode 'bogus'\n",
			wantStatus: 1,
			missing:    []string{"/tmp/a"},
		},
	})
}

func TestMkdir_mode(t *testing.T) {
	cmd := shelltest.Command(shell.CommandFunc(Mkdir), "mkdir", "-m", "700", "/tmp/private")
	require.NoError(t, cmd.Run())

	info, err := cmd.Context.FS.Stat("/tmp/private")
	require.NoError(t, err)
	assert.Equal(t, "rwx------", info.Perm)
	assert.Equal(t, shelltest.User, info.Owner)
}

func TestRmdir(t *testing.T) {
	nested := func(l *vfs.Loader) error {
		return l.Mkdir("/tmp/a/b/c", shelltest.User, shelltest.User, vfs.DefaultDirPerm)
	}

	runFileOpTests(t, Rmdir, []fileOpTest{
		{
			name:    "leaf",
			args:    []string{"rmdir", "a/b/c"},
			setup:   nested,
			exists:  []string{"/tmp/a/b"},
			missing: []string{"/tmp/a/b/c"},
		},
		{
			name:    "parents",
			args:    []string{"rmdir", "-pv", "a/b/c"},
			setup:   nested,
			wantOut: "rmdir: removing directory, 'a/b/c'\nrmdir: removing directory, 'a/b'\nrmdir: removing directory, 'a'\n",
			missing: []string{"/tmp/a"},
		},
		{
			name:       "not empty",
			args:       []string{"rmdir", "a"},
			setup:      nested,
			wantErr:    "rmdir: failed to remove 'a': Directory not empty\n",
			wantStatus: 1,
			exists:     []string{"/tmp/a/b/c"},
		},
		{
			name:       "file",
			args:       []string{"rmdir", "f"},
			setup:      writeFiles(map[string]string{"/tmp/f": ""}),
			wantErr:    "rmdir: failed to remove 'f': Not a directory\n",
			wantStatus: 1,
			exists:     []string{"/tmp/f"},
		},
	})
}

func TestRm(t *testing.T) {
	tree := writeFiles(map[string]string{
		"/tmp/f":         "",
		"/tmp/dir/inner": "",
	})

	runFileOpTests(t, Rm, []fileOpTest{
		{
			name:    "file",
			args:    []string{"rm", "-v", "f"},
			setup:   tree,
			wantOut: "removed 'f'\n",
			missing: []string{"/tmp/f"},
		},
		{
			name:       "directory without recursive",
			args:       []string{"rm", "dir"},
			setup:      tree,
			wantErr:    "rm: cannot remove 'dir': Is a directory\n",
			wantStatus: 1,
			exists:     []string{"/tmp/dir/inner"},
		},
		{
			name:    "recursive",
			args:    []string{"rm", "-rf", "dir"},
			setup:   tree,
			missing: []string{"/tmp/dir"},
		},
		{
			name:    "capital R",
			args:    []string{"rm", "-R", "dir"},
			setup:   tree,
			missing: []string{"/tmp/dir"},
		},
		{
			name:       "missing",
			args:       []string{"rm", "nope"},
			wantErr:    "rm: cannot remove 'nope': No such file or directory\n",
			wantStatus: 1,
		},
		{
			name: "missing forced",
			args: []string{"rm", "-f", "nope"},
		},
		{
			name:       "no permission",
			args:       []string{"rm", "/etc/passwd"},
			setup:      func(l *vfs.Loader) error { return l.WriteFile("/etc/passwd", "", vfs.RootUser, vfs.RootUser, vfs.DefaultFilePerm) },
			wantErr:    "rm: cannot remove '/etc/passwd': Permission denied\n",
			wantStatus: 1,
			exists:     []string{"/etc/passwd"},
		},
	})
}

func TestTouch(t *testing.T) {
	runFileOpTests(t, Touch, []fileOpTest{
		{
			name:   "create",
			args:   []string{"touch", "new.txt"},
			exists: []string{"/tmp/new.txt"},
		},
		{
			name:    "no create",
			args:    []string{"touch", "-c", "new.txt"},
			missing: []string{"/tmp/new.txt"},
		},
		{
			name:       "no permission",
			args:       []string{"touch", "/etc/new.txt"},
			wantErr:    "touch: cannot touch '/etc/new.txt': Permission denied\n",
			wantStatus: 1,
			missing:    []string{"/etc/new.txt"},
		},
		{
			name:       "missing operand",
			args:       []string{"touch"},
			wantErr:    "touch: missing file operand\n",
			wantStatus: 1,
		},
	})
}

func TestChown(t *testing.T) {
	file := writeFiles(map[string]string{"/tmp/f": ""})

	t.Run("as user", func(t *testing.T) {
		cmd := shelltest.Command(shell.CommandFunc(Chown), "chown", "root", "/tmp/f")
		cmd.Setup = file
		require.NoError(t, cmd.Run())

		assert.Equal(t, 1, cmd.ExitStatus)
		assert.Equal(t, "chown: changing ownership of '/tmp/f': Operation not permitted\n", cmd.Stderr)
	})

	t.Run("as root", func(t *testing.T) {
		cmd := shelltest.Command(shell.CommandFunc(Chown), "chown", "-v", "alice:staff", "/tmp/f")
		cmd.Setup = file
		cmd.Env = []string{shell.EnvUser + "=" + vfs.RootUser}
		require.NoError(t, cmd.Run())

		assert.Equal(t, 0, cmd.ExitStatus)
		assert.Equal(t, "ownership of '/tmp/f' retained as alice:staff\n", cmd.Stdout)

		info, err := cmd.Context.FS.Stat("/tmp/f")
		require.NoError(t, err)
		assert.Equal(t, "alice", info.Owner)
		assert.Equal(t, "staff", info.Group)
	})

	t.Run("group only", func(t *testing.T) {
		cmd := shelltest.Command(shell.CommandFunc(Chown), "chown", ":staff", "/tmp/f")
		cmd.Setup = file
		cmd.Env = []string{shell.EnvUser + "=" + vfs.RootUser}
		require.NoError(t, cmd.Run())

		info, err := cmd.Context.FS.Stat("/tmp/f")
		require.NoError(t, err)
		assert.Equal(t, shelltest.User, info.Owner)
		assert.Equal(t, "staff", info.Group)
	})

	t.Run("missing operand", func(t *testing.T) {
		cmd := shelltest.Command(shell.CommandFunc(Chown), "chown", "root")
		require.NoError(t, cmd.Run())

		assert.Equal(t, 1, cmd.ExitStatus)
		assert.Equal(t, "chown: missing operand\n", cmd.Stderr)
	})
}
