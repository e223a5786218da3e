// Package commands provides the shellmind CLI command tree.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shellmind-ai/shellmind/internal/logging"
)

var (
	Version   = "0.1.0"
	BuildTime = "dev"
)

var (
	printLogs bool
	logLevel  string
	logToFile bool
)

var rootCmd = &cobra.Command{
	Use:     "shellmind",
	Short:   "shellmind - an LLM-driven shell agent",
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logCfg := logging.DefaultConfig()
		logCfg.Level = logging.ParseLevel(logLevel)
		logCfg.Output = os.Stderr
		logCfg.Pretty = printLogs
		logCfg.LogToFile = logToFile
		if err := logging.Init(logCfg); err != nil {
			fmt.Fprintf(os.Stderr, "shellmind: failed to initialize logging: %v\n", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&printLogs, "verbose", false, "print pretty logs to stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "also write logs to a timestamped file under the OS temp dir")

	rootCmd.SetVersionTemplate(fmt.Sprintf("shellmind %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
