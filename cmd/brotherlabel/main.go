// Command brotherlabel prints labels on Brother QL and PT series
// printers and analyzes captured raster command streams.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:           "brotherlabel",
		Short:         "Print labels on Brother QL/PT series printers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	root.AddCommand(
		printCmd(),
		analyzeCmd(),
		discoverCmd(),
		modelsCmd(),
		labelsCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// envDefault reads a selection override from the environment. The value
// "auto" counts as unset.
func envDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" && v != "auto" {
		return v
	}
	return fallback
}

// exactlyOne enforces that one of the mutually exclusive source flags is
// set.
func exactlyOne(set ...bool) error {
	n := 0
	for _, s := range set {
		if s {
			n++
		}
	}
	if n != 1 {
		return errors.New("exactly one of --file, --text or --barcode must be given")
	}
	return nil
}
