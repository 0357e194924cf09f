package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// loadConfigDoc reads the YAML file at path into the map[string]any shape
// config.Validate expects. File I/O lives here, in the adapter layer, never
// in internal/scheduling — the configuration is a YAML file on disk only
// at this one seam.
func loadConfigDoc(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return doc, nil
}
