/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/ssargent/betree/pkg/betree"
	"github.com/ssargent/betree/pkg/config"
)

type ctxKey string

const (
	ctxStore ctxKey = "store"
	ctxTree  ctxKey = "tree"
)

var (
	dataDir    string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "betree",
	Short: "A write-optimized ordered key-value index",
	Long: `betree is a command-line client for a Bε-tree: a write-optimized,
on-disk ordered key-value index that buffers writes in internal nodes
and flushes them toward leaves in batches.`,
	PersistentPreRunE: openTree,
	PersistentPostRunE: closeTree,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "directory holding tree node files (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a betree config file")
}

func metaPath(dir string) string {
	return filepath.Join(dir, "meta.yaml")
}

// openTree loads configuration, opens the configured Store, and either
// opens an existing tree's metadata or bootstraps a brand-new tree, then
// stashes both in the command's context for subcommands to retrieve.
func openTree(cmd *cobra.Command, args []string) error {
	cfg, err := loadOrDefaultConfig()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	mpath := metaPath(cfg.DataDir)
	var tree *betree.Tree
	if config.ConfigExists(mpath) {
		meta, err := betree.LoadMeta(mpath)
		if err != nil {
			return err
		}
		tree = betree.Open(meta)
	} else {
		tree, err = betree.New(cfg.Tree.MaxPivots, cfg.Tree.MaxBuffer, store)
		if err != nil {
			return err
		}
		if err := betree.SaveMeta(mpath, tree.Meta()); err != nil {
			return err
		}
	}

	ctx := context.WithValue(cmd.Context(), ctxStore, store)
	ctx = context.WithValue(ctx, ctxTree, tree)
	cmd.SetContext(ctx)
	return nil
}

// closeTree persists the tree's metadata (root id, epoch, id allocator)
// so the next invocation resumes from where this one left off.
func closeTree(cmd *cobra.Command, args []string) error {
	tree, ok := cmd.Context().Value(ctxTree).(*betree.Tree)
	if !ok {
		return nil
	}
	cfg, err := loadOrDefaultConfig()
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return betree.SaveMeta(metaPath(cfg.DataDir), tree.Meta())
}

func loadOrDefaultConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadConfig(configPath)
	}
	defaultPath := config.GetDefaultConfigPath()
	if config.ConfigExists(defaultPath) {
		return config.LoadConfig(defaultPath)
	}
	return config.DefaultConfig(), nil
}

func openStore(cfg *config.Config) (betree.Store, error) {
	switch cfg.Tree.Backend {
	case "pebble":
		return betree.OpenPebbleStore(filepath.Join(cfg.DataDir, "pebble"))
	case "file", "":
		return betree.NewFileStore(filepath.Join(cfg.DataDir, "nodes"))
	default:
		return nil, fmt.Errorf("unknown tree backend %q", cfg.Tree.Backend)
	}
}

func storeFromContext(cmd *cobra.Command) betree.Store {
	return cmd.Context().Value(ctxStore).(betree.Store)
}

func treeFromContext(cmd *cobra.Command) *betree.Tree {
	return cmd.Context().Value(ctxTree).(*betree.Tree)
}
