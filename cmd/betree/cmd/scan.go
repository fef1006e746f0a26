/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Print every key/value pair in ascending key order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storeFromContext(cmd)
		tree := treeFromContext(cmd)

		return tree.Scan(store, func(key, value []byte) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", key, value)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
