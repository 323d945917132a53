package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newEdgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Manage edges",
	}
	cmd.AddCommand(edgeAddCmd())
	cmd.AddCommand(edgeGetCmd())
	cmd.AddCommand(edgeRemoveCmd())
	return cmd
}

func edgeAddCmd() *cobra.Command {
	var key, propsJSON string
	cmd := &cobra.Command{
		Use:   "add <collection> <from> <to>",
		Short: "Add an edge between two vertices",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			props, err := parseProps(propsJSON)
			if err != nil {
				fatal("parse props", err)
			}
			if key != "" {
				props["_key"] = key
			}
			e, err := apiClient.Graphs.CreateEdge(context.Background(), requireGraph(), args[0], args[1], args[2], props)
			if err != nil {
				fatal("add edge", err)
			}
			output(e, e.ID())
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Document key (generated when empty)")
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	return cmd
}

func edgeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection/key>",
		Short: "Get an edge",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			e, err := apiClient.Graphs.GetEdge(context.Background(), requireGraph(), args[0])
			if err != nil {
				fatal("get edge", err)
			}
			output(e, e.ID())
		},
	}
}

func edgeRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <collection/key>",
		Short: "Remove an edge",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Graphs.RemoveEdge(context.Background(), requireGraph(), args[0]); err != nil {
				fatal("remove edge", err)
			}
			fmt.Println("removed")
		},
	}
}
