/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ssargent/betree/pkg/config"
)

var initDataDir string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a new betree config file",
	Args:  cobra.NoArgs,
	// init manages its own config lifecycle rather than opening a tree,
	// so it skips the root command's PersistentPreRunE/PostRunE.
	PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return nil },
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetDefaultConfigPath()
		}
		if config.ConfigExists(path) {
			return fmt.Errorf("config already exists at %s", path)
		}

		cfg, err := config.BootstrapConfig(path, initDataDir)
		if err != nil {
			return err
		}

		fmt.Printf("wrote config to %s (data dir: %s)\n", path, cfg.DataDir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initDataDir, "data-dir", "", "data directory to record in the new config")
	rootCmd.AddCommand(initCmd)
}
