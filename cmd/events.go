package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/josephlewis42/vshell/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var (
	eventTypes   []string
	eventSession string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the session event log.",
	Long: `Explore the session event log. Every session writes its start and end,
each command line it ran and any failures to the event_log set in the config.`,
}

var eventsReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize sessions, commands and failures as YAML.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withEventLog(func(r io.Reader) error {
			return writeReport(cmd.OutOrStdout(), r)
		})
	},
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print events one per line.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		filter := eventFilter{session: eventSession}
		for _, t := range eventTypes {
			filter.types = append(filter.types, logger.EventType(t))
		}
		return withEventLog(func(r io.Reader) error {
			return writeEvents(cmd.OutOrStdout(), r, filter)
		})
	},
}

func withEventLog(fn func(io.Reader) error) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	fd, err := config.ReadEventLog()
	if err != nil {
		return err
	}
	defer fd.Close()

	return fn(fd)
}

func writeReport(w io.Writer, r io.Reader) error {
	report := logger.NewReport()
	if err := logger.ReadJSONLinesLog(r, report.Update); err != nil {
		return err
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// eventFilter selects events; empty fields match everything.
type eventFilter struct {
	types   []logger.EventType
	session string
}

func (f eventFilter) match(e logger.Event) bool {
	if f.session != "" && e.SessionID != f.session {
		return false
	}
	if len(f.types) == 0 {
		return true
	}
	for _, t := range f.types {
		if e.Type == t {
			return true
		}
	}
	return false
}

func writeEvents(w io.Writer, r io.Reader, filter eventFilter) error {
	var writeErr error
	err := logger.ReadJSONLinesLog(r, func(e logger.Event) {
		if writeErr != nil || !filter.match(e) {
			return
		}
		_, writeErr = fmt.Fprintln(w, formatEvent(e))
	})
	if err != nil {
		return err
	}
	return writeErr
}

// formatEvent renders an event as time, session, type and its fields sorted
// by key.
func formatEvent(e logger.Event) string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{e.Time.UTC().Format(time.RFC3339), e.SessionID, string(e.Type)}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%q", k, fmt.Sprint(e.Fields[k])))
	}
	return strings.Join(parts, "  ")
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsReportCmd, eventsListCmd)

	eventsListCmd.Flags().StringSliceVar(&eventTypes, "type", nil, "only show events of these types (e.g. run_command,panic)")
	eventsListCmd.Flags().StringVar(&eventSession, "session", "", "only show events from this session ID")
}
