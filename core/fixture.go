package core

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/josephlewis42/vshell/core/config"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
)

// skeleton holds the directories every machine starts with, parents first.
var skeleton = []struct {
	name string
	perm string
}{
	{"/bin", vfs.DefaultDirPerm},
	{"/sbin", vfs.DefaultDirPerm},
	{"/etc", vfs.DefaultDirPerm},
	{"/home", vfs.DefaultDirPerm},
	{"/root", "rwx------"},
	{"/tmp", "rwxrwxrwx"},
	{"/usr", vfs.DefaultDirPerm},
	{"/usr/bin", vfs.DefaultDirPerm},
	{"/usr/sbin", vfs.DefaultDirPerm},
	{"/usr/local", vfs.DefaultDirPerm},
	{"/usr/local/bin", vfs.DefaultDirPerm},
	{"/usr/local/sbin", vfs.DefaultDirPerm},
	{"/var", vfs.DefaultDirPerm},
	{"/var/log", vfs.DefaultDirPerm},
	{"/var/tmp", "rwxrwxrwx"},
}

// BuildFS creates the filesystem described by the configuration. Standard
// commands in registry get executable nodes under /bin and /usr/bin.
func BuildFS(configuration *config.Configuration, registry *shell.Registry, now func() time.Time) (*vfs.FS, error) {
	fs := vfs.New(now)
	fs.System = vfs.SystemInfo{
		Hostname:      configuration.Hostname,
		KernelName:    configuration.Uname.KernelName,
		KernelRelease: configuration.Uname.KernelRelease,
		KernelVersion: configuration.Uname.KernelVersion,
		Machine:       configuration.Uname.HardwarePlatform,
		MemTotalKB:    configuration.Uname.MemTotalKB,
		BootTime:      fs.System.BootTime,
	}

	loader := vfs.NewLoader(fs)
	for _, dir := range skeleton {
		if err := loader.Mkdir(dir.name, vfs.RootUser, vfs.RootUser, dir.perm); err != nil {
			return nil, err
		}
	}

	if configuration.RootFS != "" {
		if err := importRootFS(configuration, loader); err != nil {
			return nil, err
		}
	}

	for _, step := range []func(*config.Configuration, *vfs.Loader) error{
		writeAccounts,
		writeHomes,
		writeNodes,
	} {
		if err := step(configuration, loader); err != nil {
			return nil, err
		}
	}

	for _, def := range registry.Definitions() {
		if !def.Standard {
			continue
		}
		for _, dir := range shell.StandardDirs {
			if err := loader.BindBuiltin(vfs.Join(dir, def.Name), def.Name, vfs.RootUser, vfs.RootUser, "rwxr-xr-x"); err != nil {
				return nil, err
			}
		}
	}

	return fs, nil
}

func importRootFS(configuration *config.Configuration, loader *vfs.Loader) error {
	fd, err := configuration.OpenRootFS()
	if err != nil {
		return err
	}
	defer fd.Close()

	var r io.Reader = fd
	if strings.HasSuffix(configuration.RootFS, ".gz") {
		gz, err := gzip.NewReader(fd)
		if err != nil {
			return fmt.Errorf("opening %s: %w", configuration.RootFS, err)
		}
		defer gz.Close()
		r = gz
	}

	return loader.ImportTar(r, vfs.RootUser, vfs.RootUser)
}

// groupOf returns the primary group name of a passwd entry.
func groupOf(configuration *config.Configuration, entry config.PasswdEntry) string {
	if entry.Username == configuration.User.Username {
		return configuration.User.Group
	}
	return entry.Username
}

func writeAccounts(configuration *config.Configuration, loader *vfs.Loader) error {
	var passwd, group strings.Builder
	for _, u := range configuration.Users {
		// name:password:uid:gid:gecos:home:shell
		fmt.Fprintf(&passwd, "%s:x:%d:%d:%s:%s:%s\n", u.Username, u.UID, u.GID, u.Username, u.Home, u.Shell)
		fmt.Fprintf(&group, "%s:x:%d:\n", groupOf(configuration, u), u.GID)
	}

	for _, file := range []struct {
		name    string
		content string
	}{
		{"/etc/passwd", passwd.String()},
		{"/etc/group", group.String()},
		{"/etc/hostname", configuration.Hostname + "\n"},
	} {
		if err := loader.WriteFile(file.name, file.content, vfs.RootUser, vfs.RootUser, vfs.DefaultFilePerm); err != nil {
			return err
		}
	}
	return nil
}

func writeHomes(configuration *config.Configuration, loader *vfs.Loader) error {
	for _, u := range configuration.Users {
		perm := vfs.DefaultDirPerm
		if u.Username == vfs.RootUser {
			perm = "rwx------"
		}
		if err := loader.Mkdir(u.Home, u.Username, groupOf(configuration, u), perm); err != nil {
			return err
		}
	}
	return nil
}

func writeNodes(configuration *config.Configuration, loader *vfs.Loader) error {
	for _, node := range configuration.Filesystem {
		owner := node.Owner
		if owner == "" {
			owner = vfs.RootUser
		}
		group := node.Group
		if group == "" {
			group = owner
		}

		var err error
		switch node.Type {
		case config.NodeDir:
			perm := node.Perm
			if perm == "" {
				perm = vfs.DefaultDirPerm
			}
			err = loader.Mkdir(node.Path, owner, group, perm)
		default:
			perm := node.Perm
			if perm == "" {
				perm = vfs.DefaultFilePerm
			}
			err = loader.WriteFile(node.Path, node.Content, owner, group, perm)
		}
		if err != nil {
			return fmt.Errorf("filesystem node %s: %w", node.Path, err)
		}
	}
	return nil
}
