package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/josephlewis42/vshell/core/config"
	"github.com/josephlewis42/vshell/core/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgPath   string
	logLevel  string
	logFormat string
)

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// newLogger creates the diagnostic logger, writing to outputPath if it's set
// or stderr otherwise.
func newLogger(outputPath string) (*zap.Logger, error) {
	return logger.New(logger.Config{
		Level:      logLevel,
		Format:     logFormat,
		OutputPath: outputPath,
	})
}

// exitStatus is returned by commands that finish with a non-zero shell
// status.
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vshell",
	Short: "Simulated POSIX shell",
	Long:  `A POSIX-like shell running over a simulated, permission checked filesystem.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()

	var status exitStatus
	if errors.As(err, &status) {
		os.Exit(int(status))
	}
	cobra.CheckErr(err)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "diagnostic log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "diagnostic log format (json|console)")
}
