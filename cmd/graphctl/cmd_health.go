package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			h, err := apiClient.Health(context.Background())
			if err != nil {
				fatal("health", err)
			}
			if flagFmt == "json" {
				output(h, "")
				return
			}
			fmt.Printf("status=%s version=%s store=%s (%s) uptime=%.0fs\n",
				h.Status, h.Version, h.Store, h.StoreDriver, h.UptimeSeconds)
		},
	}
}
