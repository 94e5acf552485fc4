package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/dbus"
)

var dismissOpts struct {
	action string
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss ID",
	Short: "Dismiss a snackbar",
	Long: `Dismiss a snackbar by id, or press one of its actions with --action.

Dismissing a snackbar that is still queued removes it from the queue.`,
	Args: cobra.ExactArgs(1),
	RunE: runDismiss,
}

func init() {
	rootCmd.AddCommand(dismissCmd)

	dismissCmd.Flags().StringVar(&dismissOpts.action, "action", "",
		"Invoke the action with this key instead of dismissing")
}

func runDismiss(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid snackbar id: %s", args[0])
	}

	client, err := dbus.NewClient(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if dismissOpts.action != "" {
		return client.InvokeAction(ctx, uint32(id), dismissOpts.action)
	}
	return client.Dismiss(ctx, uint32(id))
}
