package shell

import (
	"regexp"
	"sort"
	"strings"
)

// translateGlob converts a single path segment glob into an anchored regular
// expression. Backslash escaped characters match literally.
func translateGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '\\':
			if i+1 < len(pattern) {
				i++
			}
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

// hasGlobMeta reports whether an escaped glob pattern contains an unescaped
// wildcard.
func hasGlobMeta(pattern string) bool {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '*', '?':
			return true
		}
	}
	return false
}

// unescapeGlob removes the escaping added by globPattern.
func unescapeGlob(pattern string) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '\\' && i+1 < len(pattern) {
			i++
		}
		sb.WriteByte(pattern[i])
	}
	return sb.String()
}

// Glob expands pattern against the final path segment only. Matches are
// returned sorted with the directory part written as the user typed it. A
// wildcard in the directory part, an unreadable directory, or no matches all
// result in nil.
func Glob(ctx *Context, pattern string) []string {
	dirPart, filePart := "", pattern
	if idx := strings.LastIndex(pattern, "/"); idx >= 0 {
		dirPart, filePart = pattern[:idx+1], pattern[idx+1:]
	}
	if hasGlobMeta(dirPart) || !hasGlobMeta(filePart) {
		return nil
	}

	re, err := translateGlob(filePart)
	if err != nil {
		return nil
	}

	dir := unescapeGlob(dirPart)
	lookupDir := dir
	if lookupDir == "" {
		lookupDir = "."
	}
	entries, err := ctx.FS.ReadDir(ctx.Cred(), ctx.Abs(lookupDir))
	if err != nil {
		ctx.Logger().Sugar().Debugf("glob %q: %v", pattern, err)
		return nil
	}

	var matches []string
	for _, entry := range entries {
		if re.MatchString(entry.Name) {
			matches = append(matches, dir+entry.Name)
		}
	}
	sort.Strings(matches)
	return matches
}
