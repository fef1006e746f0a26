/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/ssargent/betree/pkg/betree"
	"github.com/ssargent/betree/pkg/config"
	"github.com/ssargent/betree/pkg/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tree over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := storeFromContext(cmd)
		tree := treeFromContext(cmd)

		cfg, err := loadOrDefaultConfig()
		if err != nil {
			return err
		}

		metrics := betree.NewMetrics(prometheus.DefaultRegisterer)
		server := httpapi.New(tree, store, metrics)

		addr := fmt.Sprintf("%s:%d", cfg.Server.Bind, cfg.Server.Port)
		fmt.Printf("listening on %s\n", addr)
		return http.ListenAndServe(addr, server)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
