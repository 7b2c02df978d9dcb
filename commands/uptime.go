package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Uptime implements the UNIX uptime command from /proc/uptime and
// /proc/loadavg.
func Uptime(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "uptime [OPTION]...",
		Short: "Tell how long the system has been running.",

		// Never bail, even if args are bad.
		NeverBail: true,
	}

	return cmd.Run(args, ctx, io, func() int {
		raw, err := ctx.FS.ReadFile(ctx.Cred(), "/proc/uptime")
		if err != nil {
			return reportPath(io.Stderr, args[0], "/proc/uptime", err)
		}
		seconds, err := strconv.ParseFloat(strings.Fields(raw + " 0")[0], 64)
		if err != nil {
			return shell.Report(io.Stderr, args[0], err)
		}

		load := []string{"0.00", "0.00", "0.00"}
		if loadavg, err := ctx.FS.ReadFile(ctx.Cred(), "/proc/loadavg"); err == nil {
			if fields := strings.Fields(loadavg); len(fields) >= 3 {
				load = fields[:3]
			}
		}

		uptime := time.Duration(seconds * float64(time.Second))
		day := (24 * time.Hour)
		uptimeDays := uptime / day
		uptime -= uptimeDays * day
		uptimeHours := uptime / time.Hour
		uptime -= uptimeHours * time.Hour
		uptimeMins := uptime / time.Minute

		fmt.Fprintf(
			io.Stdout,
			"%s up %d days,  %02d:%02d,  1 user,  load average: %s, %s, %s\n",
			ctx.FS.Now().Format("15:04:05"),
			uptimeDays,
			uptimeHours,
			uptimeMins,
			load[0], load[1], load[2],
		)
		return 0
	})
}

var _ shell.CommandFunc = Uptime

func init() {
	addBinCmd(shell.Definition{
		Name:        "uptime",
		Description: "Tell how long the system has been running.",
		Usage:       "uptime [OPTION]...",
		Command:     shell.CommandFunc(Uptime),
	})
}
