package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/josephlewis42/vshell/core/ttylog"
	"github.com/spf13/cobra"
)

var idleTimeLimit time.Duration

var recordingsCmd = &cobra.Command{
	Use:     "recordings",
	Aliases: []string{"recording", "logs"},
	Short:   "Inspect sessions recorded with playground --record.",
	Long: `Inspect sessions recorded with playground --record. Files ending in .cast
are read as asciicast, anything else as a UML tty log.`,
}

var replayRecordingCmd = &cobra.Command{
	Use:     "replay RECORDING",
	Aliases: []string{"play"},
	Short:   "Replay a recorded session in the terminal at its original pace.",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withRecording(args[0], func(source ttylog.LogSource) error {
			sink := ttylog.NewRealTimePlayback(idleTimeLimit, ttylog.NewClientOutput(cmd.OutOrStdout()))
			return ttylog.Replay(source, sink)
		})
	},
}

var catRecordingCmd = &cobra.Command{
	Use:   "cat RECORDING",
	Short: "Print everything a recorded session showed.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withRecording(args[0], func(source ttylog.LogSource) error {
			return ttylog.Replay(source, ttylog.NewClientOutput(cmd.OutOrStdout()))
		})
	},
}

var inputRecordingCmd = &cobra.Command{
	Use:   "input RECORDING",
	Short: "List the lines typed in a recorded session.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withRecording(args[0], func(source ttylog.LogSource) error {
			var lines []ttylog.Input
			if err := ttylog.Replay(source, ttylog.NewInputCollector(&lines)); err != nil {
				return err
			}
			return writeInput(cmd.OutOrStdout(), lines)
		})
	},
}

var convertRecordingCmd = &cobra.Command{
	Use:   "convert INPUT OUTPUT",
	Short: "Convert a recording between the asciicast and UML formats.",
	Long: `Convert a recording between formats. The format of each file is picked by
its extension, e.g. convert session.log session.cast.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withRecording(args[0], func(source ttylog.LogSource) error {
			out, err := os.Create(args[1])
			if err != nil {
				return err
			}

			sink := ttylog.NewFileSink(args[1], out, filepath.Base(args[0]))
			if err := ttylog.Replay(source, sink); err != nil {
				out.Close()
				return err
			}
			return out.Close()
		})
	},
}

// withRecording opens the recording at path for the duration of fn.
func withRecording(path string, fn func(ttylog.LogSource) error) error {
	fd, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fd.Close()

	return fn(ttylog.NewFileSource(path, fd))
}

func writeInput(w io.Writer, lines []ttylog.Input) error {
	for _, line := range lines {
		if _, err := fmt.Fprintf(w, "%8s  %s\n", line.Offset.Round(time.Millisecond), line.Line); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(recordingsCmd)
	recordingsCmd.AddCommand(replayRecordingCmd, catRecordingCmd, inputRecordingCmd, convertRecordingCmd)

	replayRecordingCmd.Flags().DurationVarP(&idleTimeLimit, "idle-time-limit", "i", 3*time.Second, "maximum time output can be idle (e.g. 3s, 2m, 100ms)")
}
