// Command graphctl is the command-line client for a docgraph server.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/persistorai/docgraph/client"
)

// Build-time variables set via ldflags.
var (
	version   = "0.3.0"
	commit    = ""
	buildDate = ""
)

const defaultURL = "http://localhost:3040"

var (
	apiClient *client.Client
	flagURL   string
	flagGraph string
	flagFmt   string
)

func versionString() string {
	if commit != "" && buildDate != "" {
		return fmt.Sprintf("graphctl version %s (commit: %s, built: %s)", version, commit, buildDate)
	}
	return fmt.Sprintf("graphctl version %s-dev", version)
}

type configFile struct {
	// Flat format
	URL   string `yaml:"url"`
	Graph string `yaml:"graph"`
	// Profile format
	Profiles      map[string]configProfile `yaml:"profiles"`
	ActiveProfile string                   `yaml:"active_profile"`
}

type configProfile struct {
	URL   string `yaml:"url"`
	Graph string `yaml:"graph"`
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "graphctl",
		Short:   "graphctl manages named graphs on a docgraph server",
		Version: versionString(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			resolveConfig()
			apiClient = client.New(flagURL, client.WithUserAgent("graphctl/"+version))
		},
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&flagURL, "url", defaultURL, "docgraph server URL (env: DOCGRAPH_URL)")
	rootCmd.PersistentFlags().StringVarP(&flagGraph, "graph", "g", "", "Graph name for vertex, edge and query commands (env: DOCGRAPH_GRAPH)")
	rootCmd.PersistentFlags().StringVar(&flagFmt, "format", "json", "Output format: json|table|quiet")

	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newVertexCmd())
	rootCmd.AddCommand(newEdgeCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newHealthCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfig() {
	// Flag takes precedence, then env, then config file.
	if flagURL == defaultURL {
		if v := os.Getenv("DOCGRAPH_URL"); v != "" {
			flagURL = v
		}
	}
	if flagGraph == "" {
		flagGraph = os.Getenv("DOCGRAPH_GRAPH")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	data, err := os.ReadFile(filepath.Join(home, ".docgraph", "config.yaml"))
	if err != nil {
		return
	}
	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return
	}

	resolvedURL, resolvedGraph := cfg.URL, cfg.Graph
	if cfg.Profiles != nil {
		profileName := cfg.ActiveProfile
		if profileName == "" {
			profileName = "default"
		}
		if p, ok := cfg.Profiles[profileName]; ok {
			if p.URL != "" {
				resolvedURL = p.URL
			}
			if p.Graph != "" {
				resolvedGraph = p.Graph
			}
		}
	}
	if flagURL == defaultURL && resolvedURL != "" {
		flagURL = resolvedURL
	}
	if flagGraph == "" {
		flagGraph = resolvedGraph
	}
}

// requireGraph returns the graph selected by --graph, the environment or the config file.
func requireGraph() string {
	if flagGraph == "" {
		fatal("graph", fmt.Errorf("no graph selected; pass --graph or set DOCGRAPH_GRAPH"))
	}
	return flagGraph
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	os.Exit(1)
}
