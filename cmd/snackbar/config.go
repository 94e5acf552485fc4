package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
)

var configOpts struct {
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write default configuration files",
	Long: `Write the default snackbar and snackbard configuration files.

Existing files are left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print configuration and data paths",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the snackbard configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configPathCmd, configCheckCmd)

	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite existing files")
}

func cliConfigPath() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

// writeIfMissing calls write unless path exists and force is unset. It
// reports whether the file was written.
func writeIfMissing(path string, force bool, write func() error) (bool, error) {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return true, write()
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cliPath := cliConfigPath()
	written, err := writeIfMissing(cliPath, configOpts.force, func() error {
		return config.DefaultConfig().Save(cliPath)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", cliPath, err)
	}
	reportWrite(cliPath, written)

	daemonPath, err := config.DaemonConfigPath()
	if err != nil {
		return err
	}
	written, err = writeIfMissing(daemonPath, configOpts.force, func() error {
		return config.SaveDaemonConfigTo(config.DefaultDaemonConfig(), daemonPath)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", daemonPath, err)
	}
	reportWrite(daemonPath, written)
	return nil
}

func reportWrite(path string, written bool) {
	if written {
		fmt.Println("wrote", path)
	} else {
		fmt.Println("exists", path)
	}
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	daemonPath, err := config.DaemonConfigPath()
	if err != nil {
		return err
	}
	fmt.Println("config: ", cliConfigPath())
	fmt.Println("daemon: ", daemonPath)
	fmt.Println("history:", historyPath())
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	daemonPath, err := config.DaemonConfigPath()
	if err != nil {
		return err
	}
	if _, err := config.LoadDaemonConfigFrom(daemonPath); err != nil {
		return err
	}
	fmt.Println("ok", daemonPath)
	return nil
}
