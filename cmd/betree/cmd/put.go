/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put [key] [value]",
	Short: "Assign a value to a key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storeFromContext(cmd)
		tree := treeFromContext(cmd)

		txn, err := tree.BeginTxn()
		if err != nil {
			return err
		}
		if err := tree.Upsert(store, txn, []byte(args[0]), []byte(args[1])); err != nil {
			return err
		}
		if err := tree.EndTxn(store, txn); err != nil {
			return err
		}

		fmt.Printf("OK: %s -> %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
