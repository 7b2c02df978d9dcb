package vfs

import (
	"fmt"
	"io/fs"
	"strings"
)

// Access is the kind of access requested on a node.
type Access int

const (
	AccessRead Access = iota
	AccessWrite
	AccessExecute
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessExecute:
		return "execute"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Cred identifies the user and group making a request.
type Cred struct {
	User  string
	Group string
}

// RootUser is allowed to change ownership of any node.
const RootUser = "root"

const (
	// DefaultFilePerm is used for files created by redirection.
	DefaultFilePerm = "rw-r--r--"
	// DefaultDirPerm is used for directories created without an explicit mode.
	DefaultDirPerm = "rwxr-xr-x"
)

const permLetters = "rwxrwxrwx"

// ValidPerm reports whether perm is exactly nine characters of r, w, x or -
// in the right positions.
func ValidPerm(perm string) bool {
	if len(perm) != len(permLetters) {
		return false
	}
	for i := 0; i < len(perm); i++ {
		if perm[i] != '-' && perm[i] != permLetters[i] {
			return false
		}
	}
	return true
}

// ParsePerm converts a nine character permission string to mode bits.
func ParsePerm(perm string) (fs.FileMode, error) {
	if !ValidPerm(perm) {
		return 0, fmt.Errorf("invalid mode %q", perm)
	}

	var mode fs.FileMode
	for i := 0; i < len(perm); i++ {
		if perm[i] != '-' {
			mode |= 1 << uint(8-i)
		}
	}
	return mode, nil
}

// FormatPerm converts the permission bits of mode to a nine character string.
func FormatPerm(mode fs.FileMode) string {
	var sb strings.Builder
	for i := 0; i < len(permLetters); i++ {
		if mode&(1<<uint(8-i)) != 0 {
			sb.WriteByte(permLetters[i])
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// Allowed evaluates the node's permission string for the requester. The owner
// triad governs if the user owns the node, else the group triad if the group
// matches, else the other triad.
func (n *Node) Allowed(cred Cred, access Access) bool {
	var triad string
	switch {
	case cred.User == n.Owner:
		triad = n.Perm[0:3]
	case cred.Group == n.Group:
		triad = n.Perm[3:6]
	default:
		triad = n.Perm[6:9]
	}

	return triad[int(access)] != '-'
}
