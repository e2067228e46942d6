package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"visionmate.app/multimodal-mate/internal/logger"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Multimodal Mate and Visionary assistant backend",
	Long: `Serves two small web backends on one listener:

  /            document Q&A over uploaded PDFs, Word documents and images
  /visionary/  spoken questions about a camera image, answered with speech

Running without a subcommand is the same as "server serve".`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
}

func main() {
	// Replaced by the environment's configuration once a command runs.
	_ = logger.Setup(logger.DefaultConfig())

	if err := rootCmd.Execute(); err != nil {
		l := logger.WithComponent("cmd")
		l.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	addServeFlags(rootCmd)
}
