package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hyperlight",
	Short: "Compile Hyperlight programs to native executables",
	Long: `hyperlight is a small compiler toolchain.  It compiles the typed
Hyperlight surface language to native executables through LLVM IR, and ships
a reusable C-dialect preprocessor for macro-heavy token streams.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// "hyperlight <source>" is shorthand for "hyperlight build <source>".
		if len(args) == 0 {
			return cmd.Help()
		}
		return buildCmd.RunE(cmd, args)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(cppCmd)
	rootCmd.AddCommand(emitIRCmd)
}

func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exit codes: 0 success, 1 semantic error, 2 bad usage or I/O failure.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string { return e.err.Error() }

func semanticErr(err error) error { return exitError{code: 1, err: err} }
func usageErr(err error) error    { return exitError{code: 2, err: err} }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ee, ok := err.(exitError); ok {
			os.Exit(ee.code)
		}
		os.Exit(2)
	}
}
