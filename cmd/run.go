package cmd

import (
	"bufio"
	"io"
	"strings"

	"github.com/josephlewis42/vshell/core"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/spf13/cobra"
)

var (
	runCommand string
	runEcho    bool
)

// runLines executes each line in order, stopping early if the session exits.
// It returns the status of the last line.
func runLines(session *shell.Session, r io.Reader) (int, error) {
	status := 0
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if exited, code := session.Exited(); exited {
			return code, nil
		}
		status = session.Execute(scanner.Text())
	}
	if exited, code := session.Exited(); exited {
		status = code
	}
	return status, scanner.Err()
}

// runCmd executes lines non-interactively.
var runCmd = &cobra.Command{
	Use:   "run [-c LINE]",
	Short: "Run shell lines from -c or stdin and exit with the last status.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		diagnostics, err := newLogger("")
		if err != nil {
			return err
		}
		defer diagnostics.Sync()

		machine, err := core.NewMachine(cfg, core.MachineOptions{Logger: diagnostics})
		if err != nil {
			return err
		}
		defer machine.Close()

		session, err := machine.NewSession(&shell.TextPresenter{
			Stdout: cmd.OutOrStdout(),
			Stderr: cmd.ErrOrStderr(),
			Echo:   runEcho,
		})
		if err != nil {
			return err
		}
		defer session.Close()

		input := cmd.InOrStdin()
		if cmd.Flags().Changed("command") {
			input = strings.NewReader(runCommand)
		}

		status, err := runLines(session, input)
		if err != nil {
			return err
		}
		if status != 0 {
			cmd.SilenceErrors = true
			return exitStatus(status)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runCommand, "command", "c", "", "line to run instead of reading stdin")
	runCmd.Flags().BoolVar(&runEcho, "echo", false, "print each line with its prompt before running it")
}
