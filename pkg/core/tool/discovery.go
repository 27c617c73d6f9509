package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	hjson "github.com/hjson/hjson-go/v4"
)

// manifestFile is the declarative per-tool metadata file discovery expects
// alongside (or describing) each registered implementation: identifier,
// version, cost, schema references, and declared dependencies, written in
// Hjson for human-editable comments the way the pack's other declarative
// format choice (workflow YAML) does not allow.
type manifestFile struct {
	ID           string   `json:"id"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Capability   string   `json:"capability"`
	InputSchema  string   `json:"input_schema"`
	OutputSchema string   `json:"output_schema"`
	CostPerCall  float64  `json:"cost_per_call"`
	DependsOn    []string `json:"depends_on"`
	CacheTTLSecs int      `json:"cache_ttl_seconds"`
}

// DiscoverManifests scans dir recursively for *.hjson metadata files and
// parses each into a Metadata value, mirroring the teacher's
// filepath.Walk-based prompt loader (pkg/core/prompt/loader.go) but reading
// Hjson instead of JSON, since tool manifests are hand-authored and benefit
// from comments/trailing commas the way LLM-facing prompt files did not.
func DiscoverManifests(dir string) ([]Metadata, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("tools directory not found: %s", dir)
	}

	var out []Metadata
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".hjson" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read manifest %s: %w", path, err)
		}

		var mf manifestFile
		if err := hjson.Unmarshal(data, &mf); err != nil {
			return fmt.Errorf("parse manifest %s: %w", path, err)
		}
		if mf.ID == "" {
			return fmt.Errorf("manifest %s missing required id", path)
		}
		if mf.Version == "" {
			return fmt.Errorf("manifest %s missing required version", path)
		}

		out = append(out, Metadata{
			ID:           mf.ID,
			Version:      mf.Version,
			Description:  mf.Description,
			Capability:   CapabilityClass(mf.Capability),
			InputSchema:  mf.InputSchema,
			OutputSchema: mf.OutputSchema,
			CostPerCall:  mf.CostPerCall,
			DependsOn:    mf.DependsOn,
			CacheTTL:     time.Duration(mf.CacheTTLSecs) * time.Second,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
