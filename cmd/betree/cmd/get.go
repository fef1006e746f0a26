/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Look up the value for a key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storeFromContext(cmd)
		tree := treeFromContext(cmd)

		val, found, err := tree.Get(store, []byte(args[0]))
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintf(cmd.OutOrStdout(), "not found: %s\n", args[0])
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", val.Bytes())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
