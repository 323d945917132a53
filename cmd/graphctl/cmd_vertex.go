package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newVertexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vertex",
		Short: "Manage vertices",
	}
	cmd.AddCommand(vertexAddCmd())
	cmd.AddCommand(vertexGetCmd())
	cmd.AddCommand(vertexRemoveCmd())
	cmd.AddCommand(vertexListCmd())
	return cmd
}

func vertexAddCmd() *cobra.Command {
	var key, propsJSON string
	cmd := &cobra.Command{
		Use:   "add <collection>",
		Short: "Add a vertex",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			props, err := parseProps(propsJSON)
			if err != nil {
				fatal("parse props", err)
			}
			if key != "" {
				props["_key"] = key
			}
			v, err := apiClient.Graphs.CreateVertex(context.Background(), requireGraph(), args[0], props)
			if err != nil {
				fatal("add vertex", err)
			}
			output(v, v.ID())
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Document key (generated when empty)")
	cmd.Flags().StringVar(&propsJSON, "props", "", "Properties as JSON")
	return cmd
}

func vertexGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection/key>",
		Short: "Get a vertex",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			v, err := apiClient.Graphs.GetVertex(context.Background(), requireGraph(), args[0])
			if err != nil {
				fatal("get vertex", err)
			}
			output(v, v.ID())
		},
	}
}

func vertexRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <collection/key>",
		Short: "Remove a vertex and its edges",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			res, err := apiClient.Graphs.RemoveVertex(context.Background(), requireGraph(), args[0])
			if err != nil {
				fatal("remove vertex", err)
			}
			if flagFmt == "json" {
				output(res, "")
				return
			}
			fmt.Printf("removed %s and %d edge(s)\n", res.Vertex, len(res.RemovedEdges))
		},
	}
}

func vertexListCmd() *cobra.Command {
	var where []string
	var limit int
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List vertices of a collection",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if limit < 0 {
				fmt.Fprintf(os.Stderr, "Error: --limit must be non-negative\n")
				os.Exit(1)
			}
			example, err := parseWhere(where)
			if err != nil {
				fatal("parse where", err)
			}
			vs, err := apiClient.Graphs.ListVertices(context.Background(), requireGraph(), args[0], example, limit)
			if err != nil {
				fatal("list vertices", err)
			}
			outputDocuments(vs)
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "Match key=value (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results")
	return cmd
}
