package vfs

import (
	"errors"
	"time"
)

// DevNull is the path of the null device.
const DevNull = "/dev/null"

// FS is the permission checked node tree.
//
// Paths are always interpreted from the root; callers holding a working
// directory should pass them through Resolve first. FS does no locking and
// must only be used from one goroutine at a time.
type FS struct {
	root   *Node
	mounts mountTable

	// Now is used to stamp modification times.
	Now func() time.Time
	// System is reported through /proc.
	System SystemInfo
}

// New creates a tree holding the root directory, /dev/null and /proc.
func New(now func() time.Time) *FS {
	if now == nil {
		now = time.Now
	}

	f := &FS{Now: now, System: DefaultSystemInfo}
	t := now()
	f.System.BootTime = t

	f.root = newDirNode("/", DefaultDirPerm, RootUser, RootUser, t)
	dev := newDirNode("dev", DefaultDirPerm, RootUser, RootUser, t)
	dev.Children["null"] = newFileNode("null", "rw-rw-rw-", RootUser, RootUser, "", t)
	f.root.Children["dev"] = dev
	f.root.Children["proc"] = newDirNode("proc", "r-xr-xr-x", RootUser, RootUser, t)

	f.mounts.add(DevNull, &nullDevice{fs: f})
	f.mounts.add("/proc", &procVolume{fs: f})
	return f
}

func (f *FS) lookup(name string) (*Node, error) {
	if vol, rel, ok := f.mounts.resolve(name); ok {
		return vol.lookup(rel)
	}

	n := f.root
	for _, part := range components(name) {
		child, err := n.getChild(part)
		if err != nil {
			return nil, err
		}
		n = child
	}
	return n, nil
}

// lookupParent returns the directory that holds (or would hold) name.
func (f *FS) lookupParent(name string) (*Node, string, error) {
	dir, base := Split(name)
	if base == "" {
		return nil, "", ErrExist
	}

	parent, err := f.lookup(dir)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDir() {
		return nil, "", ErrNotDir
	}
	return parent, base, nil
}

// mountedBelow reports whether any volume is mounted strictly under name.
func (f *FS) mountedBelow(name string) bool {
	prefix := name + "/"
	if name == "/" {
		prefix = "/"
	}
	for _, m := range f.mounts {
		if len(m.path) > len(prefix) && m.path[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

func (f *FS) create(cred Cred, op, name string, node *Node) error {
	parent, base, err := f.lookupParent(name)
	if err != nil {
		return pathError(op, name, err)
	}
	if err := parent.assertChildNotExist(base); err != nil {
		return pathError(op, name, err)
	}
	if !parent.Allowed(cred, AccessWrite) {
		return pathError(op, name, ErrPermission)
	}

	node.Name = base
	parent.Children[base] = node
	parent.Modified = f.Now()
	return nil
}

// Stat returns a snapshot of the node at name.
func (f *FS) Stat(name string) (*Info, error) {
	name = NormalizePath(name)
	n, err := f.lookup(name)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	info := n.info()
	return &info, nil
}

// Access returns nil if cred may perform access on name.
func (f *FS) Access(cred Cred, name string, access Access) error {
	name = NormalizePath(name)
	n, err := f.lookup(name)
	if err != nil {
		return pathError("access", name, err)
	}
	if !n.Allowed(cred, access) {
		return pathError("access", name, ErrPermission)
	}
	return nil
}

// ReadFile returns the content of a file cred can read.
func (f *FS) ReadFile(cred Cred, name string) (string, error) {
	name = NormalizePath(name)
	n, err := f.lookup(name)
	switch {
	case err != nil:
		return "", pathError("open", name, err)
	case n.IsDir():
		return "", pathError("read", name, ErrIsDir)
	case !n.Allowed(cred, AccessRead):
		return "", pathError("open", name, ErrPermission)
	}

	if vol, rel, ok := f.mounts.resolve(name); ok {
		content, err := vol.read(rel)
		if err != nil {
			return "", pathError("read", name, err)
		}
		return content, nil
	}
	return n.Content, nil
}

// WriteFile replaces the content of name, creating it with perm if it
// doesn't exist. An empty perm means DefaultFilePerm.
func (f *FS) WriteFile(cred Cred, name, content, perm string) error {
	return f.write(cred, "write", name, content, perm, false)
}

// AppendFile adds content to the end of name, creating it with perm if it
// doesn't exist. An empty perm means DefaultFilePerm.
func (f *FS) AppendFile(cred Cred, name, content, perm string) error {
	return f.write(cred, "write", name, content, perm, true)
}

func (f *FS) write(cred Cred, op, name, content, perm string, appendTo bool) error {
	name = NormalizePath(name)
	if perm == "" {
		perm = DefaultFilePerm
	}
	if !ValidPerm(perm) {
		return pathError(op, name, ErrInvalid)
	}

	if vol, rel, ok := f.mounts.resolve(name); ok {
		n, err := vol.lookup(rel)
		switch {
		case err != nil:
			return pathError(op, name, err)
		case n.IsDir():
			return pathError(op, name, ErrIsDir)
		}
		if err := vol.write(rel, content); err != nil {
			return pathError(op, name, err)
		}
		return nil
	}

	n, err := f.lookup(name)
	switch {
	case err == nil:
		if n.IsDir() {
			return pathError(op, name, ErrIsDir)
		}
		if !n.Allowed(cred, AccessWrite) {
			return pathError(op, name, ErrPermission)
		}
		if appendTo {
			content = n.Content + content
		}
		n.setContent(content, f.Now())
		return nil

	case errors.Is(err, ErrNotExist):
		return f.create(cred, op, name, newFileNode("", perm, cred.User, cred.Group, content, f.Now()))

	default:
		return pathError(op, name, err)
	}
}

// Touch refreshes the modification time of name, creating an empty file if it
// doesn't exist.
func (f *FS) Touch(cred Cred, name string) error {
	name = NormalizePath(name)
	if vol, rel, ok := f.mounts.resolve(name); ok {
		if err := vol.write(rel, ""); err != nil {
			return pathError("touch", name, err)
		}
		return nil
	}

	n, err := f.lookup(name)
	switch {
	case err == nil:
		if !n.Allowed(cred, AccessWrite) {
			return pathError("touch", name, ErrPermission)
		}
		n.Modified = f.Now()
		return nil

	case errors.Is(err, ErrNotExist):
		return f.create(cred, "touch", name, newFileNode("", DefaultFilePerm, cred.User, cred.Group, "", f.Now()))

	default:
		return pathError("touch", name, err)
	}
}

// Mkdir creates a single directory. An empty perm means DefaultDirPerm.
func (f *FS) Mkdir(cred Cred, name, perm string) error {
	name = NormalizePath(name)
	if perm == "" {
		perm = DefaultDirPerm
	}
	if !ValidPerm(perm) {
		return pathError("mkdir", name, ErrInvalid)
	}

	if _, _, ok := f.mounts.resolve(name); ok {
		if _, err := f.lookup(name); err == nil {
			return pathError("mkdir", name, ErrExist)
		}
		return pathError("mkdir", name, ErrPermission)
	}

	return f.create(cred, "mkdir", name, newDirNode("", perm, cred.User, cred.Group, f.Now()))
}

// MkdirAll creates name and any missing parents. Existing directories along
// the way are left untouched.
func (f *FS) MkdirAll(cred Cred, name, perm string) error {
	name = NormalizePath(name)
	current := "/"
	for _, part := range components(name) {
		current = Join(current, part)

		n, err := f.lookup(current)
		switch {
		case err == nil && n.IsDir():
			continue
		case err == nil:
			return pathError("mkdir", current, ErrNotDir)
		case !errors.Is(err, ErrNotExist):
			return pathError("mkdir", current, err)
		}

		if err := f.Mkdir(cred, current, perm); err != nil {
			return err
		}
	}
	return nil
}

// ReadDir lists the entries of a directory cred can read, sorted by name.
func (f *FS) ReadDir(cred Cred, name string) ([]Info, error) {
	name = NormalizePath(name)
	n, err := f.lookup(name)
	switch {
	case err != nil:
		return nil, pathError("open", name, err)
	case !n.IsDir():
		return nil, pathError("readdir", name, ErrNotDir)
	case !n.Allowed(cred, AccessRead):
		return nil, pathError("open", name, ErrPermission)
	}

	if vol, rel, ok := f.mounts.resolve(name); ok {
		nodes, err := vol.list(rel)
		if err != nil {
			return nil, pathError("readdir", name, err)
		}
		children := make(map[string]*Node, len(nodes))
		for _, node := range nodes {
			children[node.Name] = node
		}
		return sortedInfos(children), nil
	}

	return sortedInfos(n.Children), nil
}

// Chmod replaces the permission string of name. Only the owner or root may
// change it.
func (f *FS) Chmod(cred Cred, name, perm string) error {
	name = NormalizePath(name)
	if _, _, ok := f.mounts.resolve(name); ok {
		return pathError("chmod", name, ErrNotPermit)
	}

	n, err := f.lookup(name)
	switch {
	case err != nil:
		return pathError("chmod", name, err)
	case cred.User != n.Owner && cred.User != RootUser:
		return pathError("chmod", name, ErrNotPermit)
	case !ValidPerm(perm):
		return pathError("chmod", name, ErrInvalid)
	}

	n.Perm = perm
	return nil
}

// Chown changes the owner and group of name. Empty values are left as they
// are. Only root may change ownership.
func (f *FS) Chown(cred Cred, name, owner, group string) error {
	name = NormalizePath(name)
	if _, _, ok := f.mounts.resolve(name); ok {
		return pathError("chown", name, ErrNotPermit)
	}

	n, err := f.lookup(name)
	switch {
	case err != nil:
		return pathError("chown", name, err)
	case cred.User != RootUser:
		return pathError("chown", name, ErrNotPermit)
	}

	if owner != "" {
		n.Owner = owner
	}
	if group != "" {
		n.Group = group
	}
	return nil
}

// Remove deletes a file or an empty directory.
func (f *FS) Remove(cred Cred, name string) error {
	return f.remove(cred, name, false)
}

// RemoveAll deletes name and everything below it. Nothing is removed unless
// cred may write to every directory that would be emptied.
func (f *FS) RemoveAll(cred Cred, name string) error {
	return f.remove(cred, name, true)
}

func (f *FS) remove(cred Cred, name string, recursive bool) error {
	name = NormalizePath(name)
	if _, _, ok := f.mounts.resolve(name); ok || name == "/" {
		return pathError("remove", name, ErrNotPermit)
	}

	n, err := f.lookup(name)
	if err != nil {
		return pathError("remove", name, err)
	}
	parent, base, err := f.lookupParent(name)
	if err != nil {
		return pathError("remove", name, err)
	}
	if !parent.Allowed(cred, AccessWrite) {
		return pathError("remove", name, ErrPermission)
	}

	if n.IsDir() {
		switch {
		case f.mountedBelow(name):
			return pathError("remove", name, ErrNotPermit)
		case !recursive && len(n.Children) > 0:
			return pathError("remove", name, ErrNotEmpty)
		case recursive:
			if err := checkRemovable(cred, name, n); err != nil {
				return err
			}
		}
	}

	delete(parent.Children, base)
	parent.Modified = f.Now()
	return nil
}

func checkRemovable(cred Cred, name string, dir *Node) error {
	if len(dir.Children) == 0 {
		return nil
	}
	if !dir.Allowed(cred, AccessWrite) {
		return pathError("remove", name, ErrPermission)
	}
	for childName, child := range dir.Children {
		if !child.IsDir() {
			continue
		}
		if err := checkRemovable(cred, Join(name, childName), child); err != nil {
			return err
		}
	}
	return nil
}
