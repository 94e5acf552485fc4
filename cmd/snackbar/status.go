package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/dbus"
)

var statusOpts struct {
	json bool
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether snackbard is running",
	Long: `Report whether snackbard is running and which version it is.

Exits non-zero when the daemon cannot be reached.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.json, "json", false,
		"Output JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := dbus.NewClient(logger)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	info, err := client.ServerInformation(ctx)
	if err != nil {
		return err
	}

	if statusOpts.json {
		encoder := json.NewEncoder(os.Stdout)
		return encoder.Encode(map[string]string{
			"name":    info.Name,
			"vendor":  info.Vendor,
			"version": info.Version,
		})
	}
	fmt.Printf("%s %s (%s)\n", info.Name, info.Version, info.Vendor)
	return nil
}
