/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a point-in-time summary of the tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storeFromContext(cmd)
		tree := treeFromContext(cmd)

		stats, err := tree.Stats(store)
		if err != nil {
			return err
		}

		// A fresh id per invocation, so operators can correlate this
		// report with whatever log lines it shows up alongside.
		fmt.Printf("run:        %s\n", ksuid.New())
		fmt.Printf("keys:       %d\n", stats.KeyCount)
		fmt.Printf("epoch:      %d\n", stats.Epoch)
		fmt.Printf("next id:    %d\n", stats.NextID)
		fmt.Printf("max pivots: %d\n", stats.MaxPivots)
		fmt.Printf("max buffer: %d\n", stats.MaxBuffer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
