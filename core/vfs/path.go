package vfs

import "strings"

// NormalizePath collapses "." and resolves ".." against the components seen
// so far, never climbing above the root. The result always starts with a
// slash and NormalizePath(NormalizePath(p)) == NormalizePath(p).
func NormalizePath(p string) string {
	var stack []string
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, part)
		}
	}

	return "/" + strings.Join(stack, "/")
}

// Resolve makes p absolute relative to cwd and normalizes it.
func Resolve(cwd, p string) string {
	if strings.HasPrefix(p, "/") {
		return NormalizePath(p)
	}
	return NormalizePath(cwd + "/" + p)
}

// Split breaks a normalized absolute path into its parent directory and final
// name. The root splits into ("/", "").
func Split(p string) (dir, name string) {
	p = NormalizePath(p)
	if p == "/" {
		return "/", ""
	}

	idx := strings.LastIndex(p, "/")
	dir, name = p[:idx], p[idx+1:]
	if dir == "" {
		dir = "/"
	}
	return dir, name
}

// Join joins a directory and a name without normalizing away a trailing "..".
func Join(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}

func components(p string) []string {
	p = NormalizePath(p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}
