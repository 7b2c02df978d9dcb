package commands

import (
	"fmt"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vfs"
	"github.com/josephlewis42/vshell/core/vos"
	getopt "github.com/pborman/getopt/v2"
)

const (
	// EnvColumns holds the terminal width.
	EnvColumns = "COLUMNS"

	defaultColumns = 80
)

// Ls implements the UNIX ls command.
func Ls(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	opts := getopt.New()
	cmd := &SimpleCommand{
		Use:   "ls [OPTION]... [FILE]...",
		Short: "List information about the FILEs (the current directory by default).",
		flags: opts,
	}

	listAll := opts.Bool('a', "don't ignore entries starting with .")
	longListing := opts.Bool('l', "use a long listing format")
	onePerLine := opts.Bool('1', "list one file per line")
	humanSize := opts.BoolLong("human-readable", 'h', "print human readable sizes")
	lineWidth := opts.IntLong("width", 'w', terminalWidth(ctx), "set the column width, 0 is infinite")
	cmd.ShowHelp = opts.BoolLong("help", '?', "show help and exit")

	var color ColorPrinter
	color.Init(opts, ctx)

	return cmd.Run(args, ctx, io, func() int {
		// Initialize arguments
		operands := cmd.Args()
		if len(operands) == 0 {
			operands = append(operands, ".")
		}
		sort.Strings(operands)

		sizeFmt := func(bytes int64) string {
			return fmt.Sprintf("%d", bytes)
		}
		if *humanSize {
			sizeFmt = BytesToHuman
		}

		if *lineWidth == 0 {
			*lineWidth = math.MaxInt32
		}
		if *onePerLine {
			*lineWidth = 1
		}

		exitCode := 0

		// Files are listed before directories.
		var files []vfs.Info
		var dirs []string
		for _, operand := range operands {
			info, err := ctx.FS.Stat(ctx.Abs(operand))
			if err != nil {
				fmt.Fprintf(io.Stderr, "%s: cannot access '%s': %s\n", args[0], operand, vfs.Reason(err))
				exitCode = 2
				continue
			}
			if info.IsDir() {
				dirs = append(dirs, operand)
				continue
			}
			info.Name = operand
			files = append(files, *info)
		}

		printEntries := func(entries []vfs.Info) {
			if *longListing {
				writeLongListing(io, ctx, entries, sizeFmt, &color)
			} else {
				writeColumns(io, entries, *lineWidth, &color)
			}
		}

		if len(files) > 0 {
			printEntries(files)
		}

		showDirectoryNames := len(operands) > 1
		for i, directory := range dirs {
			allPaths, err := ctx.FS.ReadDir(ctx.Cred(), ctx.Abs(directory))
			if err != nil {
				fmt.Fprintf(io.Stderr, "%s: cannot open directory '%s': %s\n", args[0], directory, vfs.Reason(err))
				exitCode = 2
				continue
			}

			var paths []vfs.Info
			for _, entry := range allPaths {
				if !*listAll && strings.HasPrefix(entry.Name, ".") {
					continue
				}
				paths = append(paths, entry)
			}

			if showDirectoryNames {
				if i > 0 || len(files) > 0 {
					fmt.Fprintln(io.Stdout)
				}
				fmt.Fprintf(io.Stdout, "%s:\n", directory)
			}

			if *longListing {
				var totalSize int64
				for _, p := range paths {
					totalSize += p.Size
				}
				fmt.Fprintf(io.Stdout, "total %d\n", totalSize)
			}
			if len(paths) > 0 {
				printEntries(paths)
			}
		}

		return exitCode
	})
}

// terminalWidth reads $COLUMNS, falling back to 80.
func terminalWidth(ctx *shell.Context) int {
	if width, err := strconv.Atoi(ctx.Env.Getenv(EnvColumns)); err == nil && width >= 0 {
		return width
	}
	return defaultColumns
}

func writeLongListing(io *vos.IOStreams, ctx *shell.Context, entries []vfs.Info, sizeFmt func(int64) string, color *ColorPrinter) {
	currentYear := ctx.FS.Now().Year()

	var ownerWidth, groupWidth, sizeWidth int
	for _, f := range entries {
		ownerWidth = max(ownerWidth, len(f.Owner))
		groupWidth = max(groupWidth, len(f.Group))
		sizeWidth = max(sizeWidth, len(sizeFmt(f.Size)))
	}

	for _, f := range entries {
		// TODO: number of hard links is better approximated by
		// 2 (self + parent) for a directory plus number of direct child
		// directories.
		hardLinks := 1
		typeChar := "-"
		if f.IsDir() {
			hardLinks = 2
			typeChar = "d"
		}

		// Include time if current year.
		modTime := f.Modified.Format("Jan _2  2006")
		if f.Modified.Year() >= currentYear {
			modTime = f.Modified.Format("Jan _2 15:04")
		}

		fmt.Fprintf(io.Stdout, "%s%s %d %-*s %-*s %*s %s %s\n",
			typeChar,
			f.Perm,
			hardLinks,
			ownerWidth, f.Owner,
			groupWidth, f.Group,
			sizeWidth, sizeFmt(f.Size),
			modTime,
			color.Sprintf(Dircolor(f), "%s", f.Name))
	}
}

func writeColumns(io *vos.IOStreams, entries []vfs.Info, lineWidth int, color *ColorPrinter) {
	colWidths := columnize(entries, lineWidth)
	cols := len(colWidths)
	rows := len(entries) / cols
	if len(entries)%cols > 0 {
		rows++
	}

	w := io.Stdout
	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col, width := range colWidths {
			index := (col * rows) + row
			if index >= len(entries) {
				break
			}
			// Add padding if there was a column before this.
			if col > 0 {
				line.WriteString("  ")
			}
			entry := entries[index]
			line.WriteString(color.Sprintf(Dircolor(entry), "%s", entry.Name))
			// Add padding for alignment.
			if pad := width - len(entry.Name); pad > 0 && col < cols-1 {
				line.WriteString(strings.Repeat(" ", pad))
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

type LsColorTest struct {
	color *fcolor.Color
	test  func(info vfs.Info) bool
}

var archiveExtensions = map[string]bool{
	".tar": true,
	".tgz": true,
	".zip": true,
	".gz":  true,
	".bz2": true,
	".bz":  true,
	".tbz": true,
	".deb": true,
	".rpm": true,
	".jar": true,
	".war": true,
	".rar": true,
}

// Color listing comes from: https://askubuntu.com/a/884513
var dircolors = []LsColorTest{
	// Directories are bold blue.
	{color: ColorBoldBlue, test: vfs.Info.IsDir},
	// Bound commands are bold cyan, like the symlinks they usually are.
	{color: ColorBoldCyan, test: func(info vfs.Info) bool {
		return info.Builtin != ""
	}},
	// Executables are bold green.
	{color: ColorBoldGreen, test: func(info vfs.Info) bool {
		return info.Mode().Perm()&0111 > 0
	}},
	// Archives are bold red.
	{color: ColorBoldRed, test: func(info vfs.Info) bool {
		return archiveExtensions[path.Ext(info.Name)]
	}},
}

func Dircolor(info vfs.Info) *fcolor.Color {
	for _, dc := range dircolors {
		if dc.test(info) {
			return dc.color
		}
	}

	// Anything else defaults to white.
	return fcolor.New(fcolor.FgHiWhite)
}

func columnize(paths []vfs.Info, screenWidth int) []int {
	numFiles := len(paths)
	if numFiles == 0 {
		return []int{0}
	}

	const colPadding = 2

	displayLengths := make([]int, len(paths))
	for i, p := range paths {
		displayLengths[i] = len(p.Name)
	}

	// Start with maximum number of columns and work down until all the data fits.
	// 3 is the minimum column width, 1 char filename + 2 padding.
	columns := screenWidth / (1 + colPadding)
	if columns > numFiles {
		columns = numFiles
	}
	if columns < 1 {
		columns = 1
	}
	var maximums []int // Holds maximum size of a name in the column.
	for ; columns >= 1; columns-- {
		rows := numFiles / columns
		if numFiles%columns > 0 {
			rows++
		}
		// Skip layouts that leave a trailing column empty.
		if (columns-1)*rows >= numFiles {
			continue
		}

		maximums = make([]int, columns)
		for i, nameLen := range displayLengths {
			if nameLen > maximums[i/rows] {
				maximums[i/rows] = nameLen
			}
		}

		total := (columns - 1) * colPadding
		for _, m := range maximums {
			total += m
		}
		if total <= screenWidth {
			return maximums
		}
	}

	return maximums
}

var _ shell.CommandFunc = Ls

func init() {
	addBinCmd(shell.Definition{
		Name:        "ls",
		Description: "List directory contents.",
		Usage:       "ls [OPTION]... [FILE]...",
		Command:     shell.CommandFunc(Ls),
	})
}
