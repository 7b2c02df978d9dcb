package vfs

import (
	"sort"
	"strings"
)

// volume is a synthetic filesystem grafted onto the tree. Paths passed to a
// volume are relative to its mount point and always start with a slash.
type volume interface {
	lookup(rel string) (*Node, error)
	read(rel string) (string, error)
	write(rel, content string) error
	list(rel string) ([]*Node, error)
}

type mount struct {
	// path is the directory the volume is mounted at.
	path string
	vol  volume
}

// mountTable holds mounted volumes, sorted deepest first.
type mountTable []mount

func (mt *mountTable) add(path string, vol volume) {
	*mt = append(*mt, mount{path: NormalizePath(path), vol: vol})
	sort.SliceStable(*mt, func(i, j int) bool {
		return len((*mt)[i].path) > len((*mt)[j].path)
	})
}

func (mt mountTable) resolve(path string) (volume, string, bool) {
	for _, m := range mt {
		// The mount matches if the path is the same, or if path falls under the
		// mount point.
		if path == m.path || strings.HasPrefix(path, m.path+"/") {
			rel := strings.TrimPrefix(path, m.path)
			if rel == "" {
				rel = "/"
			}
			return m.vol, rel, true
		}
	}
	return nil, "", false
}

// nullDevice reads as empty and discards every write.
type nullDevice struct {
	fs *FS
}

func (d *nullDevice) lookup(rel string) (*Node, error) {
	if rel != "/" {
		return nil, ErrNotDir
	}
	return newFileNode("null", "rw-rw-rw-", RootUser, RootUser, "", d.fs.Now()), nil
}

func (d *nullDevice) read(rel string) (string, error) {
	if _, err := d.lookup(rel); err != nil {
		return "", err
	}
	return "", nil
}

func (d *nullDevice) write(rel, _ string) error {
	_, err := d.lookup(rel)
	return err
}

func (d *nullDevice) list(rel string) ([]*Node, error) {
	if _, err := d.lookup(rel); err != nil {
		return nil, err
	}
	return nil, ErrNotDir
}
