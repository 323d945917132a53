package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/persistorai/docgraph/client"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage graph definitions",
	}
	cmd.AddCommand(graphListCmd())
	cmd.AddCommand(graphCreateCmd())
	cmd.AddCommand(graphGetCmd())
	cmd.AddCommand(graphDropCmd())
	return cmd
}

func graphListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List graphs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			names, err := apiClient.Graphs.List(context.Background())
			if err != nil {
				fatal("list graphs", err)
			}
			switch flagFmt {
			case "quiet", "table":
				for _, n := range names {
					fmt.Println(n)
				}
			default:
				output(names, "")
			}
		},
	}
}

func graphCreateCmd() *cobra.Command {
	var edgeDefs, orphans []string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a graph",
		Long: "Create a graph. Each --edge is collection:from1,from2:to1,to2; " +
			"leaving out the to part makes the relation undirected.",
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			req := client.CreateGraphRequest{Name: args[0], OrphanCollections: orphans}
			for _, def := range edgeDefs {
				rel, err := parseRelation(def)
				if err != nil {
					fatal("parse edge definition", err)
				}
				req.EdgeDefinitions = append(req.EdgeDefinitions, rel)
			}
			g, err := apiClient.Graphs.Create(context.Background(), req)
			if err != nil {
				fatal("create graph", err)
			}
			outputGraph(g)
		},
	}
	cmd.Flags().StringArrayVar(&edgeDefs, "edge", nil, "Edge definition collection:from[:to] (repeatable)")
	cmd.Flags().StringSliceVar(&orphans, "orphan", nil, "Orphan vertex collections")
	return cmd
}

func graphGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a graph definition",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			g, err := apiClient.Graphs.Get(context.Background(), args[0])
			if err != nil {
				fatal("get graph", err)
			}
			outputGraph(g)
		},
	}
}

func graphDropCmd() *cobra.Command {
	var dropCollections bool
	cmd := &cobra.Command{
		Use:   "drop <name>",
		Short: "Drop a graph",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := apiClient.Graphs.Drop(context.Background(), args[0], dropCollections); err != nil {
				fatal("drop graph", err)
			}
			fmt.Println("dropped")
		},
	}
	cmd.Flags().BoolVar(&dropCollections, "drop-collections", false, "Also drop collections no other graph uses")
	return cmd
}

func outputGraph(g *client.Graph) {
	if flagFmt != "table" {
		output(g, g.Name)
		return
	}
	headers := []string{"EDGE COLLECTION", "FROM", "TO"}
	rows := make([][]string, 0, len(g.EdgeDefinitions)+1)
	for _, rel := range g.EdgeDefinitions {
		rows = append(rows, []string{rel.Collection, strings.Join(rel.From, ","), strings.Join(rel.To, ",")})
	}
	if len(g.OrphanCollections) > 0 {
		rows = append(rows, []string{"(orphans)", strings.Join(g.OrphanCollections, ","), ""})
	}
	formatTable(headers, rows)
}
