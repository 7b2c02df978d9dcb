package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// readMeminfo parses /proc/meminfo into kB values keyed by field name.
func readMeminfo(ctx *shell.Context) (map[string]int64, error) {
	content, err := ctx.FS.ReadFile(ctx.Cred(), "/proc/meminfo")
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64)
	for _, line := range splitLines(content) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		fields := strings.Fields(value)
		if len(fields) == 0 {
			continue
		}
		if kb, err := strconv.ParseInt(fields[0], 10, 64); err == nil {
			out[key] = kb
		}
	}
	return out, nil
}

// Free implements the free command from /proc/meminfo.
func Free(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "free [OPTION]...",
		Short: "Display amount of free and used memory in the system.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	humanSize := cmd.Flags().BoolLong("human-readable", 'h', "print human readable sizes")
	cmd.ShowHelp = cmd.Flags().BoolLong("help", '?', "show help and exit")

	return cmd.Run(args, ctx, io, func() int {
		mem, err := readMeminfo(ctx)
		if err != nil {
			return reportPath(io.Stderr, args[0], "/proc/meminfo", err)
		}

		format := func(kb int64) string {
			if *humanSize {
				return BytesToHuman(kb * 1000)
			}
			return fmt.Sprint(kb)
		}

		total, free, available := mem["MemTotal"], mem["MemFree"], mem["MemAvailable"]
		swapTotal, swapFree := mem["SwapTotal"], mem["SwapFree"]

		w := io.Stdout
		fmt.Fprintln(w, "              total        used        free      shared  buff/cache   available")
		fmt.Fprintf(w, "%-7s%12s%12s%12s%12s%12s%12s\n", "Mem:",
			format(total), format(total-available), format(free), format(0), format(available-free), format(available))
		fmt.Fprintf(w, "%-7s%12s%12s%12s\n", "Swap:",
			format(swapTotal), format(swapTotal-swapFree), format(swapFree))
		return 0
	})
}

var _ shell.CommandFunc = Free

func init() {
	addBinCmd(shell.Definition{
		Name:        "free",
		Description: "Display amount of free and used memory in the system.",
		Usage:       "free [OPTION]...",
		Command:     shell.CommandFunc(Free),
	})
}
