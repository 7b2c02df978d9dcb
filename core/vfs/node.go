package vfs

import (
	"io/fs"
	"sort"
	"time"
)

// NodeType distinguishes files from directories.
type NodeType int

const (
	TypeFile NodeType = iota
	TypeDirectory
)

func (t NodeType) String() string {
	if t == TypeDirectory {
		return "directory"
	}
	return "file"
}

// Node is a single entry in the tree.
type Node struct {
	Type NodeType
	Name string
	// Perm holds exactly nine characters, e.g. "rwxr-xr--".
	Perm     string
	Owner    string
	Group    string
	Size     int64
	Modified time.Time

	// Content is only set for files.
	Content string
	// Children is only set for directories and is never nil for them.
	Children map[string]*Node

	// Builtin, if set, binds this node to the named registered command.
	Builtin string
}

func newDirNode(name, perm, owner, group string, now time.Time) *Node {
	return &Node{
		Type:     TypeDirectory,
		Name:     name,
		Perm:     perm,
		Owner:    owner,
		Group:    group,
		Modified: now,
		Children: map[string]*Node{},
	}
}

func newFileNode(name, perm, owner, group, content string, now time.Time) *Node {
	return &Node{
		Type:     TypeFile,
		Name:     name,
		Perm:     perm,
		Owner:    owner,
		Group:    group,
		Size:     int64(len(content)),
		Modified: now,
		Content:  content,
	}
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Type == TypeDirectory
}

func (n *Node) setContent(content string, now time.Time) {
	n.Content = content
	n.Size = int64(len(content))
	n.Modified = now
}

func (n *Node) getChild(name string) (*Node, error) {
	if !n.IsDir() {
		return nil, ErrNotDir
	}

	child, ok := n.Children[name]
	if !ok {
		return nil, ErrNotExist
	}
	return child, nil
}

func (n *Node) assertChildNotExist(name string) error {
	if !n.IsDir() {
		return ErrNotDir
	}
	if _, ok := n.Children[name]; ok {
		return ErrExist
	}
	return nil
}

func (n *Node) info() Info {
	return Info{
		Type:     n.Type,
		Name:     n.Name,
		Perm:     n.Perm,
		Owner:    n.Owner,
		Group:    n.Group,
		Size:     n.Size,
		Modified: n.Modified,
		Builtin:  n.Builtin,
	}
}

// Info is a read-only snapshot of a node's attributes.
type Info struct {
	Type     NodeType
	Name     string
	Perm     string
	Owner    string
	Group    string
	Size     int64
	Modified time.Time
	Builtin  string
}

// IsDir reports whether the snapshot is of a directory.
func (i Info) IsDir() bool {
	return i.Type == TypeDirectory
}

// Mode returns the permission bits along with fs.ModeDir for directories.
func (i Info) Mode() fs.FileMode {
	mode, _ := ParsePerm(i.Perm)
	if i.IsDir() {
		mode |= fs.ModeDir
	}
	return mode
}

// Allowed evaluates the snapshot's permissions for the requester.
func (i Info) Allowed(cred Cred, access Access) bool {
	n := Node{Perm: i.Perm, Owner: i.Owner, Group: i.Group}
	return n.Allowed(cred, access)
}

func sortedInfos(nodes map[string]*Node) []Info {
	out := make([]Info, 0, len(nodes))
	for _, child := range nodes {
		out = append(out, child.info())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
