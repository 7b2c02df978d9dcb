package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// parseSleepInterval reads a number with an optional s, m, h or d suffix.
func parseSleepInterval(arg string) (time.Duration, error) {
	unit := time.Second
	number := arg
	switch {
	case strings.HasSuffix(arg, "s"):
		number = strings.TrimSuffix(arg, "s")
	case strings.HasSuffix(arg, "m"):
		number, unit = strings.TrimSuffix(arg, "m"), time.Minute
	case strings.HasSuffix(arg, "h"):
		number, unit = strings.TrimSuffix(arg, "h"), time.Hour
	case strings.HasSuffix(arg, "d"):
		number, unit = strings.TrimSuffix(arg, "d"), 24*time.Hour
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid time interval '%s'", arg)
	}
	return time.Duration(value * float64(unit)), nil
}

// Sleep implements the POSIX sleep command. It wakes up every poll to check
// for cancellation.
func Sleep(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "sleep NUMBER[SUFFIX]...",
		Short: "Pause for the sum of the given intervals.",
	}

	return cmd.Run(args, ctx, io, func() int {
		operands := cmd.Flags().Args()
		if len(operands) == 0 {
			fmt.Fprintln(io.Stderr, "sleep: missing operand")
			return 1
		}

		var total time.Duration
		for _, arg := range operands {
			interval, err := parseSleepInterval(arg)
			if err != nil {
				fmt.Fprintf(io.Stderr, "sleep: %s\n", err)
				return 1
			}
			total += interval
		}

		cfg := ctx.Registry().FollowConfig()
		// Sleeps are only bounded by time.
		cfg.MaxIterations = int(total/cfg.PollRate) + 1
		tick := newTicker(cfg)

		deadline := time.Now().Add(total)
		for time.Now().Before(deadline) {
			if io.Cancel.Cancelled() {
				return shell.ExitCancelled
			}
			if !tick.Next() {
				break
			}
		}

		if io.Cancel.Cancelled() {
			return shell.ExitCancelled
		}
		return 0
	})
}

var _ shell.CommandFunc = Sleep

func init() {
	addBinCmd(shell.Definition{
		Name:        "sleep",
		Description: "Delay for a specified amount of time.",
		Usage:       "sleep NUMBER[SUFFIX]...",
		Command:     shell.CommandFunc(Sleep),
	})
}
