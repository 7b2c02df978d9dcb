package vfs

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Loader writes to the tree without permission checks. It exists for seeding
// and must never be handed to running commands.
type Loader struct {
	fs *FS
}

// NewLoader creates a privileged loader for f.
func NewLoader(f *FS) *Loader {
	return &Loader{fs: f}
}

// Mkdir creates name and any missing parents. Directories that already exist
// take on the given owner, group and perm.
func (l *Loader) Mkdir(name, owner, group, perm string) error {
	if !ValidPerm(perm) {
		return pathError("mkdir", name, ErrInvalid)
	}
	dir, err := l.mkdirAll(NormalizePath(name), owner, group, perm)
	if err != nil {
		return err
	}

	dir.Owner, dir.Group, dir.Perm = owner, group, perm
	return nil
}

func (l *Loader) mkdirAll(name, owner, group, perm string) (*Node, error) {
	if _, _, ok := l.fs.mounts.resolve(name); ok {
		return nil, pathError("mkdir", name, ErrNotPermit)
	}

	n := l.fs.root
	current := "/"
	for _, part := range components(name) {
		current = Join(current, part)

		child, err := n.getChild(part)
		switch {
		case err == nil && child.IsDir():
			n = child
			continue
		case err == nil:
			return nil, pathError("mkdir", current, ErrNotDir)
		}

		child = newDirNode(part, perm, owner, group, l.fs.Now())
		n.Children[part] = child
		n = child
	}
	return n, nil
}

// WriteFile creates or replaces a file, creating missing parents owned by the
// same user with DefaultDirPerm.
func (l *Loader) WriteFile(name, content, owner, group, perm string) error {
	_, err := l.writeFile(name, content, owner, group, perm)
	return err
}

func (l *Loader) writeFile(name, content, owner, group, perm string) (*Node, error) {
	name = NormalizePath(name)
	if !ValidPerm(perm) {
		return nil, pathError("write", name, ErrInvalid)
	}

	dir, base := Split(name)
	if base == "" {
		return nil, pathError("write", name, ErrIsDir)
	}
	parent, err := l.mkdirAll(dir, owner, group, DefaultDirPerm)
	if err != nil {
		return nil, err
	}
	if existing, ok := parent.Children[base]; ok && existing.IsDir() {
		return nil, pathError("write", name, ErrIsDir)
	}

	n := newFileNode(base, perm, owner, group, content, l.fs.Now())
	parent.Children[base] = n
	return n, nil
}

// BindBuiltin creates an executable file at name that runs the registered
// command builtin when invoked.
func (l *Loader) BindBuiltin(name, builtin, owner, group, perm string) error {
	n, err := l.writeFile(name, "", owner, group, perm)
	if err != nil {
		return err
	}
	n.Builtin = builtin
	return nil
}

// ImportFs copies every directory and regular file of src below root into the
// tree at the same path, owned by owner and group. Permission bits come from
// src.
func (l *Loader) ImportFs(src afero.Fs, root, owner, group string) error {
	return afero.Walk(src, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := NormalizePath(filepath.ToSlash(path))
		perm := FormatPerm(info.Mode().Perm())

		switch {
		case info.IsDir():
			if name == "/" {
				return nil
			}
			return l.Mkdir(name, owner, group, perm)

		case info.Mode().IsRegular():
			content, err := afero.ReadFile(src, path)
			if err != nil {
				return err
			}
			return l.WriteFile(name, string(content), owner, group, perm)

		default:
			// Links and devices have no representation in the tree.
			return nil
		}
	})
}

// ImportTar unpacks a tar archive into the tree. Entries without a user or
// group name in their header fall back to owner and group.
func (l *Loader) ImportTar(r io.Reader, owner, group string) error {
	t := tar.NewReader(r)
	for {
		hdr, err := t.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return fmt.Errorf("importing tar: %w", err)
		}

		name := NormalizePath(hdr.Name)
		perm := FormatPerm(hdr.FileInfo().Mode().Perm())
		entryOwner, entryGroup := owner, group
		if hdr.Uname != "" {
			entryOwner = hdr.Uname
		}
		if hdr.Gname != "" {
			entryGroup = hdr.Gname
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if name == "/" {
				continue
			}
			err = l.Mkdir(name, entryOwner, entryGroup, perm)

		case tar.TypeReg:
			var content strings.Builder
			if _, err := io.CopyN(&content, t, hdr.Size); err != nil {
				return fmt.Errorf("importing tar: %s: %w", hdr.Name, err)
			}
			var n *Node
			n, err = l.writeFile(name, content.String(), entryOwner, entryGroup, perm)
			if err == nil && !hdr.ModTime.IsZero() {
				n.Modified = hdr.ModTime
			}

		default:
			// Links and devices have no representation in the tree.
			continue
		}

		if err != nil {
			return fmt.Errorf("importing tar: %w", err)
		}
	}
}
