// Package cmd wires the yategrep pipeline into a Cobra CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mylog "github.com/bascanada/yategrep/pkg/log"
)

var logger mylog.MyLoggerOptions

var rootCmd = &cobra.Command{
	Use:    "yategrep [flags] key=value [input|-]",
	Short:  "Domain-specific grep for telephony engine trace logs",
	Long: `yategrep filters telephony engine trace logs: it matches a user-supplied
key=value query against parsed log entries and emits matching entries
together with transitively related entries, found via shared channel
identifiers or network peer addresses, optionally with surrounding context.`,
	PreRun: onCommandStart,
	Args:   cobra.RangeArgs(0, 2),
	RunE:   runGrep,
}

func onCommandStart(cmd *cobra.Command, args []string) {
	mylog.ConfigureMyLogger(&logger)
}

// Execute runs the root command, exiting 1 on argument or run error, per
// the CLI's documented exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logger.Path, "logging-path", "", "file to output logs of the application")
	rootCmd.PersistentFlags().StringVar(&logger.Level, "logging-level", "WARN", "logging level: TRACE DEBUG INFO WARN ERROR")
	rootCmd.PersistentFlags().BoolVar(&logger.Stdout, "logging-stdout", false, "output application log to stdout")

	_ = rootCmd.RegisterFlagCompletionFunc("logging-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, cobra.ShellCompDirectiveNoFileComp
	})

	registerGrepFlags(rootCmd)

	rootCmd.AddCommand(versionCommand)
}
