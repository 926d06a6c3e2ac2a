// Command cvtool runs the CV extraction pipeline and template scorer from the
// command line.
package main

import (
	"fmt"
	"os"

	"cv-portfolio/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var debug, pretty bool

	root := &cobra.Command{
		Use:           "cvtool",
		Short:         "Structure CV documents and recommend portfolio templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, format := "info", "json"
			if debug {
				level = "debug"
			}
			if pretty {
				format = "pretty"
			}
			logger.Init(logger.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()})
		},
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	root.PersistentFlags().BoolVar(&pretty, "pretty", false, "human readable logs")

	root.AddCommand(newExtractCmd(), newTemplateCmd(), newReprocessCmd())
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
