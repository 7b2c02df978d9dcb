package commands

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/vos"
)

// Uname implements the POSIX command by the same name.
func Uname(args []string, ctx *shell.Context, io *vos.IOStreams) int {
	cmd := &SimpleCommand{
		Use:   "uname [OPTION]...",
		Short: "Display system information.",
	}

	opts := cmd.Flags()
	showAll := opts.BoolLong("all", 'a', "print all information")
	showKernelName := opts.BoolLong("kernel-name", 's', "print the kernel name")
	showNodename := opts.BoolLong("nodename", 'n', "print the network node name")
	showRelease := opts.BoolLong("kernel-release", 'r', "print the kernel release")
	showVersion := opts.BoolLong("kernel-version", 'v', "print the kernel version")
	showMachine := opts.BoolLong("machine", 'm', "print the machine name")

	return cmd.Run(args, ctx, io, func() int {
		sys := ctx.FS.System

		var fields []string
		for _, entry := range []struct {
			flag     *bool
			property string
		}{
			{showKernelName, sys.KernelName},
			{showNodename, currentHostname(ctx)},
			{showRelease, sys.KernelRelease},
			{showVersion, sys.KernelVersion},
			{showMachine, sys.Machine},
		} {
			if *entry.flag || *showAll {
				fields = append(fields, entry.property)
			}
		}

		if len(fields) == 0 {
			fields = append(fields, sys.KernelName)
		}

		fmt.Fprintln(io.Stdout, strings.Join(fields, " "))
		return 0
	})
}

var _ shell.CommandFunc = Uname

func init() {
	addBinCmd(shell.Definition{
		Name:        "uname",
		Description: "Print system information.",
		Usage:       "uname [OPTION]...",
		Command:     shell.CommandFunc(Uname),
	})
}
