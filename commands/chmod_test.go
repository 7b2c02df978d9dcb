package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/shell/shelltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChmodApplyMode(t *testing.T) {
	blank := fs.FileMode(0)
	file := fs.FileMode(0666)

	cases := []struct {
		orig     fs.FileMode
		mode     string
		wantMode fs.FileMode
		wantErr  error
	}{
		// Permissions
		{blank, "+r", ModeRead, nil},
		{blank, "+w", ModeWrite, nil},
		{blank, "+x", ModeExec, nil},
		{blank, "+rwx", fs.FileMode(0777), nil},

		// No-op permissions
		{blank, "+t", blank, nil},
		{blank, "+s", blank, nil},

		// Capital X, only sets execute if a dir or already has an exec bit
		{blank, "+X", blank, nil},
		{fs.ModeDir, "+X", fs.ModeDir | ModeExec, nil},

		// Groups: a,u,g,o
		{blank, "a+r", ModeRead, nil},
		{blank, "a+w", ModeWrite, nil},
		{blank, "a+x", ModeExec, nil},
		{blank, "a+rwx", fs.FileMode(0777), nil},
		{blank, "u+r", ModeRead & ModeMaskUser, nil},
		{blank, "u+w", ModeWrite & ModeMaskUser, nil},
		{blank, "u+x", ModeExec & ModeMaskUser, nil},
		{blank, "u+rwx", fs.FileMode(0777) & ModeMaskUser, nil},
		{blank, "g+r", ModeRead & ModeMaskGroup, nil},
		{blank, "g+w", ModeWrite & ModeMaskGroup, nil},
		{blank, "g+x", ModeExec & ModeMaskGroup, nil},
		{blank, "g+rwx", fs.FileMode(0777) & ModeMaskGroup, nil},
		{blank, "o+r", ModeRead & ModeMaskOther, nil},
		{blank, "o+w", ModeWrite & ModeMaskOther, nil},
		{blank, "o+x", ModeExec & ModeMaskOther, nil},
		{blank, "o+rwx", fs.FileMode(0777) & ModeMaskOther, nil},

		// Actions:
		{ModeWrite | ModeRead, "-w", ModeRead, nil},
		{fs.FileMode(0777), "=r", ModeRead, nil},
		{fs.FileMode(0777), "g=r", fs.FileMode(0747), nil},

		// Clauses
		{file, "u+x,go-w", fs.FileMode(0744), nil},

		// Octal permissions
		{blank, "644", fs.FileMode(0644), nil},

		// Don't wipe non-permission bits
		{fs.ModeDir | fs.ModeSticky, "+x", fs.ModeDir | fs.ModeSticky | ModeExec, nil},
		{fs.ModeDir | fs.ModeSticky, "-x", fs.ModeDir | fs.ModeSticky, nil},
		{fs.ModeDir | fs.ModeSticky, "=x", fs.ModeDir | fs.ModeSticky | ModeExec, nil},
		{fs.ModeDir | fs.ModeSticky, "644", fs.ModeDir | fs.ModeSticky | fs.FileMode(0644), nil},

		// Bad mode expressions
		{file, "o+z", file, errors.New(`invalid mode: "o+z"`)},
		{file, "x", file, errors.New(`invalid mode: "x"`)},
		{file, "u+x,", file, errors.New(`invalid mode: ""`)},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("chmod %q %q to %q %v", tc.mode, tc.orig, tc.wantMode, tc.wantErr), func(t *testing.T) {

			gotMode, gotErr := ChmodApplyMode(tc.mode, tc.orig)
			if tc.wantErr != nil || gotErr != nil {
				if tc.wantErr == nil || gotErr == nil || tc.wantErr.Error() != gotErr.Error() {
					t.Errorf("wanted err %q got err %q", tc.wantErr, gotErr)
				}
			}

			if gotMode != tc.wantMode {
				t.Errorf("wanted mode %q got mode %q", tc.wantMode, gotMode)
			}
		})
	}
}

func TestChmod(t *testing.T) {
	cases := []struct {
		name       string
		args       []string
		wantPerm   string
		wantStatus int
		wantStderr string
	}{
		{"octal", []string{"chmod", "755", "/tmp/a.txt"}, "rwxr-xr-x", 0, ""},
		{"symbolic", []string{"chmod", "go-r", "/tmp/a.txt"}, "rw-------", 0, ""},
		{"looks like a flag", []string{"chmod", "-r", "/tmp/a.txt"}, "-w-------", 0, ""},
		{"missing file", []string{"chmod", "755", "/tmp/nope"}, "rw-r--r--", 1, "chmod: cannot access '/tmp/nope': No such file or directory\n"},
		{"not owner", []string{"chmod", "777", "/etc"}, "rw-r--r--", 1, "chmod: changing permissions of '/etc': Operation not permitted\n"},
		{"bad mode", []string{"chmod", "q+r", "/tmp/a.txt"}, "rw-r--r--", 1, "chmod: invalid mode: \"q+r\"\n"},
		{"missing operand", []string{"chmod", "755"}, "rw-r--r--", 1, "chmod: missing operand\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := shelltest.Command(shell.CommandFunc(Chmod), tc.args[0], tc.args[1:]...)
			cmd.Setup = writeFiles(map[string]string{"/tmp/a.txt": "content"})
			require.NoError(t, cmd.Run())

			assert.Equal(t, tc.wantStatus, cmd.ExitStatus)
			assert.Equal(t, tc.wantStderr, cmd.Stderr)

			info, err := cmd.Context.FS.Stat("/tmp/a.txt")
			require.NoError(t, err)
			assert.Equal(t, tc.wantPerm, info.Perm)
		})
	}
}
