package tool

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", name, err)
	}
}

func TestDiscoverManifestsParsesNestedDirectory(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "enrichment")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	writeManifest(t, root, "grant-history.hjson", `{
  id: grant-history
  version: "1.0.0"
  description: look up an org's historical grant records
  capability: reads-external
  input_schema: grant-history-input
  output_schema: grant-history-output
  cost_per_call: 0
  depends_on: []
  cache_ttl_seconds: 604800
}`)
	writeManifest(t, sub, "enrichment.hjson", `{
  id: propublica-enrichment
  version: "1.0.0"
  capability: reads-external
  cost_per_call: 0.0
  cache_ttl_seconds: 86400
}`)

	metas, err := DiscoverManifests(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("expected 2 manifests, got %d", len(metas))
	}

	var found bool
	for _, m := range metas {
		if m.ID == "grant-history" {
			found = true
			if m.Version != "1.0.0" {
				t.Fatalf("expected version 1.0.0, got %s", m.Version)
			}
			if m.CacheTTL.Hours() != 168 {
				t.Fatalf("expected 168h cache ttl, got %v", m.CacheTTL)
			}
		}
	}
	if !found {
		t.Fatalf("expected to find grant-history manifest")
	}
}

func TestDiscoverManifestsIgnoresNonHjsonFiles(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "tool.hjson", `{id: a, version: "1.0.0"}`)
	writeManifest(t, root, "README.md", "not a manifest")

	metas, err := DiscoverManifests(root)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(metas) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(metas))
	}
}

func TestDiscoverManifestsFailsOnMissingID(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "bad.hjson", `{version: "1.0.0"}`)

	if _, err := DiscoverManifests(root); err == nil {
		t.Fatalf("expected error for manifest missing id")
	}
}

func TestDiscoverManifestsFailsOnMissingVersion(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "bad.hjson", `{id: "no-version"}`)

	if _, err := DiscoverManifests(root); err == nil {
		t.Fatalf("expected error for manifest missing version")
	}
}

func TestDiscoverManifestsFailsOnMissingDirectory(t *testing.T) {
	if _, err := DiscoverManifests("/nonexistent/path/does/not/exist"); err == nil {
		t.Fatalf("expected error for missing tools directory")
	}
}
