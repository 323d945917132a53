package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/persistorai/docgraph/client"
)

func newQueryCmd() *cobra.Command {
	var (
		direction string
		starts    []string
		restricts []string
		filters   []string
		explain   bool
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Traverse the edges of a graph",
		Long: "Traverse edges. Each --restrict narrows the edge collections (comma separated); " +
			"each --filter is a JSON object, or an array of objects any of which may match, " +
			"and every --filter must hold.",
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			req, err := buildTraversal(direction, starts, restricts, filters, explain, limit)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			res, err := apiClient.Graphs.Traverse(context.Background(), requireGraph(), req)
			if err != nil {
				fatal("query", err)
			}
			outputTraversal(res)
		},
	}
	cmd.Flags().StringVar(&direction, "direction", "any", "Edge direction: outbound|inbound|any")
	cmd.Flags().StringSliceVar(&starts, "start", nil, "Start vertex handles")
	cmd.Flags().StringArrayVar(&restricts, "restrict", nil, "Edge collections to keep (repeatable)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Example the edges must match (repeatable)")
	cmd.Flags().BoolVar(&explain, "explain", false, "Print the query without running it")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max edges to return")
	return cmd
}

func buildTraversal(direction string, starts, restricts, filters []string, explain bool, limit int) (client.TraversalRequest, error) {
	if limit < 0 {
		return client.TraversalRequest{}, fmt.Errorf("--limit must be non-negative")
	}
	req := client.TraversalRequest{
		Direction:     direction,
		StartVertices: starts,
		Explain:       explain,
		Limit:         limit,
	}
	for _, r := range restricts {
		names := splitList(r)
		if len(names) == 0 {
			return client.TraversalRequest{}, fmt.Errorf("--restrict must name at least one edge collection")
		}
		req.Restrictions = append(req.Restrictions, names)
	}
	for _, f := range filters {
		group, err := parseFilter(f)
		if err != nil {
			return client.TraversalRequest{}, err
		}
		req.Filters = append(req.Filters, group)
	}
	return req, nil
}

func outputTraversal(res *client.TraversalResult) {
	switch {
	case flagFmt == "json":
		output(res, "")
	case res.Count == nil:
		fmt.Println(res.Query)
	default:
		outputDocuments(res.Edges)
		if flagFmt == "table" {
			fmt.Printf("\n%d edge(s) total", *res.Count)
			if res.HasMore {
				fmt.Print(", more available")
			}
			fmt.Println()
		}
	}
}
