package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/josephlewis42/vshell/commands"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/spf13/cobra"
)

var builtinsCmd = &cobra.Command{
	Use:   "builtins",
	Short: "Show the commands built into the shell.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
		for _, def := range commands.ListBuiltinCommands() {
			name := "shell:" + def.Name
			if def.Standard {
				name = shell.StandardDirs[0] + "/" + def.Name
			}
			fmt.Fprintf(w, "%s\t%s\n", name, def.Description)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(builtinsCmd)
}
