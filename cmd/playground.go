package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/vshell/commands"
	"github.com/josephlewis42/vshell/core"
	"github.com/josephlewis42/vshell/core/config"
	"github.com/josephlewis42/vshell/core/shell"
	"github.com/josephlewis42/vshell/core/ttylog"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	recordPath string
	rootFSPath string
)

// playgroundConfig loads the configuration, falling back to the defaults in a
// temporary directory if there isn't one.
func playgroundConfig(playgroundLogger *log.Logger) (*config.Configuration, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err == nil {
		return cfg, func() {}, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}

	dir, err := os.MkdirTemp("", "playground")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	playgroundLogger.Printf("No config in %q, using defaults in %s\n", cfgPath, dir)
	cfg, err = config.Initialize(dir, playgroundLogger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return cfg, cleanup, nil
}

// openRecording wraps presenter so everything shown is also written to
// recordPath.
func openRecording(presenter shell.Presenter) (*ttylog.Presenter, io.Closer, error) {
	fd, err := os.Create(recordPath)
	if err != nil {
		return nil, nil, err
	}

	sink := ttylog.NewFileSink(recordPath, fd, "vshell playground")
	return ttylog.NewPresenter(presenter, sink, nil), fd, nil
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// playgroundCmd runs the shell interactively on the local terminal.
var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Run the shell interactively in this terminal.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		playgroundLogger := log.New(cmd.ErrOrStderr(), "[playground] ", 0)
		cfg, cleanup, err := playgroundConfig(playgroundLogger)
		if err != nil {
			return err
		}
		defer cleanup()

		if rootFSPath != "" {
			if cfg.RootFS, err = filepath.Abs(rootFSPath); err != nil {
				return err
			}
		}

		diagnostics, err := newLogger(cfg.AppLogPath())
		if err != nil {
			return err
		}
		defer diagnostics.Sync()

		machine, err := core.NewMachine(cfg, core.MachineOptions{Logger: diagnostics})
		if err != nil {
			return err
		}
		defer machine.Close()

		interactive := isTerminal(os.Stdin.Fd())
		completer := &sessionCompleter{}
		rl, err := readline.NewEx(&readline.Config{
			AutoComplete:    completer,
			Stdout:          cmd.OutOrStdout(),
			Stderr:          cmd.ErrOrStderr(),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
			FuncIsTerminal: func() bool {
				return interactive
			},
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		var presenter shell.Presenter = &terminalPresenter{
			stdout:    rl.Stdout(),
			stderr:    rl.Stderr(),
			setPrompt: rl.SetPrompt,
		}

		var recording *ttylog.Presenter
		if recordPath != "" {
			var closer io.Closer
			recording, closer, err = openRecording(presenter)
			if err != nil {
				return err
			}
			defer closer.Close()
			presenter = recording
		}

		session, err := machine.NewSession(presenter)
		if err != nil {
			return err
		}
		defer session.Close()

		if isTerminal(os.Stdout.Fd()) {
			term := os.Getenv(commands.EnvTerm)
			if term == "" {
				term = "xterm"
			}
			session.Context().Env.Setenv(commands.EnvTerm, term)
		}
		completer.session = session

		printBanner(cmd.ErrOrStderr(),
			fmt.Sprintf("Diagnostics in: %s", cfg.AppLogPath()),
			"Press Ctrl-D or type exit to leave.")

		// Interrupts while a command runs cancel it rather than the playground.
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, os.Interrupt)
		defer signal.Stop(sigs)
		go func() {
			for range sigs {
				session.Interrupt()
			}
		}()

		session.Start()
		for {
			if exited, _ := session.Exited(); exited {
				break
			}

			line, err := rl.Readline()
			switch {
			case err == io.EOF:
				session.Exit(session.Context().Status())
				continue
			case err == readline.ErrInterrupt:
				continue
			case err != nil:
				diagnostics.Warn("reading line", zap.Error(err))
				return err
			}

			session.Execute(line)
		}

		if recording != nil {
			if err := recording.Err(); err != nil {
				playgroundLogger.Printf("Recording incomplete: %v\n", err)
			}
		}

		_, code := session.Exited()
		fmt.Fprintf(cmd.ErrOrStderr(), "Exit code: %d\n", code)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
	playgroundCmd.Flags().StringVar(&recordPath, "record", "", "record the session to a file (.cast for asciicast, anything else for a UML tty log)")
	playgroundCmd.Flags().StringVar(&rootFSPath, "rootfs", "", "tar or .tar.gz archive unpacked over the filesystem")
}
