package buildtime

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sjc5/lux/internal/common"
)

// Manifest maps an unversioned asset URL ("/dist/js/app.js") to the URL of
// the file that was actually emitted for it.
type Manifest map[string]string

// WriteManifest writes m as indented JSON to the public manifest path.
func WriteManifest(cfg *common.Config, m Manifest) error {
	manifestPath := cfg.GetManifestPath()
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return fmt.Errorf("error creating public dir: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing manifest: %w", err)
	}
	return nil
}
