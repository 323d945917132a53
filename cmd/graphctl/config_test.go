package main

import (
	"os"
	"path/filepath"
	"testing"
)

// resetFlags restores global flag state after each test.
func resetFlags(t *testing.T) {
	t.Helper()
	orig := struct{ url, graph, fmt string }{flagURL, flagGraph, flagFmt}
	t.Cleanup(func() {
		flagURL = orig.url
		flagGraph = orig.graph
		flagFmt = orig.fmt
	})
	flagURL = defaultURL
	flagGraph = ""
}

// writeConfig points HOME at a temp dir holding the given config file.
func writeConfig(t *testing.T, content string) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	if content == "" {
		return
	}

	cfgDir := filepath.Join(tmp, ".docgraph")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestResolveConfigEnv(t *testing.T) {
	resetFlags(t)
	writeConfig(t, "")
	t.Setenv("DOCGRAPH_URL", "http://env-server:9090")
	t.Setenv("DOCGRAPH_GRAPH", "social")

	resolveConfig()

	if flagURL != "http://env-server:9090" {
		t.Errorf("flagURL: got %q, want %q", flagURL, "http://env-server:9090")
	}
	if flagGraph != "social" {
		t.Errorf("flagGraph: got %q, want %q", flagGraph, "social")
	}
}

func TestResolveConfigFlagTakesPrecedence(t *testing.T) {
	resetFlags(t)
	writeConfig(t, "url: http://from-file:8080\ngraph: filegraph\n")
	t.Setenv("DOCGRAPH_URL", "http://env-server:9090")
	t.Setenv("DOCGRAPH_GRAPH", "")

	flagURL = "http://explicit-flag:1234"
	flagGraph = "explicit"
	resolveConfig()

	if flagURL != "http://explicit-flag:1234" {
		t.Errorf("explicit flag should win; got %q", flagURL)
	}
	if flagGraph != "explicit" {
		t.Errorf("explicit graph should win; got %q", flagGraph)
	}
}

func TestResolveConfigFlatYAML(t *testing.T) {
	resetFlags(t)
	writeConfig(t, "url: http://from-file:8080\ngraph: filegraph\n")
	t.Setenv("DOCGRAPH_URL", "")
	t.Setenv("DOCGRAPH_GRAPH", "")

	resolveConfig()

	if flagURL != "http://from-file:8080" {
		t.Errorf("flagURL from flat config: got %q", flagURL)
	}
	if flagGraph != "filegraph" {
		t.Errorf("flagGraph from flat config: got %q", flagGraph)
	}
}

func TestResolveConfigProfiles(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantURL   string
		wantGraph string
	}{
		{
			name: "active profile",
			content: `
active_profile: staging
profiles:
  default:
    url: http://default:3040
    graph: dev
  staging:
    url: http://staging:4040
    graph: routes
`,
			wantURL:   "http://staging:4040",
			wantGraph: "routes",
		},
		{
			name: "default profile",
			content: `
profiles:
  default:
    url: http://default-profile:5050
`,
			wantURL:   "http://default-profile:5050",
			wantGraph: "",
		},
		{
			name: "profile falls back to flat graph",
			content: `
graph: flat
profiles:
  default:
    url: http://p:1
`,
			wantURL:   "http://p:1",
			wantGraph: "flat",
		},
		{
			name:      "invalid yaml is ignored",
			content:   "profiles: [unclosed",
			wantURL:   defaultURL,
			wantGraph: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			writeConfig(t, tc.content)
			t.Setenv("DOCGRAPH_URL", "")
			t.Setenv("DOCGRAPH_GRAPH", "")

			resolveConfig()

			if flagURL != tc.wantURL {
				t.Errorf("flagURL: got %q, want %q", flagURL, tc.wantURL)
			}
			if flagGraph != tc.wantGraph {
				t.Errorf("flagGraph: got %q, want %q", flagGraph, tc.wantGraph)
			}
		})
	}
}
