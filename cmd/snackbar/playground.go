package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/tui"
)

var playgroundCmd = &cobra.Command{
	Use:   "playground",
	Short: "Try snackbars in the terminal",
	Long: `Run the snackbar lifecycle in the terminal, without snackbard.

The playground uses the timing and animation settings of snackbard's
configuration and draws the snackbar into a block of terminal cells.

Key bindings:
  enter        Show the composed message / tap the snackbar
  i, esc       Start and stop composing
  shift+arrows Swipe
  a, b         Press the action / second action
  d, x         Dismiss the snackbar / close all
  ctrl+k       Toggle the on-screen keyboard
  ctrl+t/s/l/a Cycle duration, animation, level, actions
  ?            Show help
  q            Quit`,
	Args: cobra.NoArgs,
	RunE: runPlayground,
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, args []string) error {
	daemonCfg, err := config.LoadDaemonConfig()
	if err != nil {
		logger.Warn("failed to load daemon config, using defaults", "error", err)
		daemonCfg = config.DefaultDaemonConfig()
	}

	// The alternate screen owns the terminal
	playgroundLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if globalOpts.verbose {
		playgroundLogger = logger
	}

	return tui.Run(tui.RunOptions{
		Config:       cfg,
		DaemonConfig: daemonCfg,
		Logger:       playgroundLogger,
	})
}
